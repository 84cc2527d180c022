package entities

import (
	"fmt"

	apperrors "github.com/montrealcare/care-router/pkg/errors"
)

// Severity is the triage severity reported by the patient
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// TravelMode is the transport mode used for travel time estimates
type TravelMode string

const (
	ModeDriving TravelMode = "driving"
	ModeWalking TravelMode = "walking"
	ModeTransit TravelMode = "transit"
)

// Facility categories as returned by the lookup provider
const (
	KindHospital = "hospital"
	KindClinic   = "clinic"
)

// Facility represents a healthcare facility returned by the lookup provider.
// Identity is structural; facilities carry no database ID.
type Facility struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Kind    string  `json:"kind"`
	Phone   *string `json:"phone"`
}

// FacilityScore wraps a facility with its travel and predicted wait times.
// Values are never mutated after construction.
type FacilityScore struct {
	Facility             Facility `json:"facility"`
	TravelSeconds        int      `json:"travel_seconds"`
	PredictedWaitSeconds int      `json:"predicted_wait_seconds"`
	TotalSeconds         int      `json:"total_seconds"`
	Explanation          string   `json:"explanation"`
}

// RecommendRequest is the input to the recommendation pipeline
type RecommendRequest struct {
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	Severity   Severity   `json:"severity"`
	Mode       TravelMode `json:"mode"`
	RadiusM    int        `json:"radius_m"`
	IncludeTTS bool       `json:"include_tts"`
}

// Validate rejects malformed requests before any collaborator call is made
func (r *RecommendRequest) Validate() error {
	if r.Lat < -90 || r.Lat > 90 {
		return apperrors.NewValidationError(fmt.Sprintf("latitude %v out of range", r.Lat))
	}
	if r.Lng < -180 || r.Lng > 180 {
		return apperrors.NewValidationError(fmt.Sprintf("longitude %v out of range", r.Lng))
	}

	switch r.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unrecognized severity %q", r.Severity))
	}

	switch r.Mode {
	case ModeDriving, ModeWalking, ModeTransit:
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unrecognized travel mode %q", r.Mode))
	}

	if r.RadiusM <= 0 {
		return apperrors.NewValidationError("radius_m must be positive")
	}

	return nil
}

// CacheKey returns the request fingerprint used for result caching.
// Coordinates are rounded to 4 decimal places (~11m) so near-identical
// origins collapse to the same cache bucket.
func (r *RecommendRequest) CacheKey() string {
	return fmt.Sprintf("recommend:%.4f:%.4f:%s:%s:%d", r.Lat, r.Lng, r.Severity, r.Mode, r.RadiusM)
}

// RecommendResponse is the assembled recommendation
type RecommendResponse struct {
	Recommended    FacilityScore   `json:"recommended"`
	Alternatives   []FacilityScore `json:"alternatives"`
	SpokenText     string          `json:"spoken_text"`
	TTSAudioBase64 *string         `json:"tts_audio_base64"`
}
