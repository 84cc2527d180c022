package services

import (
	"fmt"
	"math"

	"github.com/montrealcare/care-router/internal/domain/entities"
)

// WaitEstimator predicts how long a patient will wait at a facility. It is a
// swappable strategy so a model-backed or feed-backed estimator can replace
// the heuristic without touching the recommendation engine.
type WaitEstimator interface {
	// PredictWaitSeconds must be deterministic and side-effect free
	PredictWaitSeconds(f entities.Facility, severity entities.Severity) int

	// Explain renders a human-readable breakdown of a scored candidate
	Explain(f entities.Facility, travelSeconds, waitSeconds int) string
}

// HeuristicWaitEstimator is the default estimator: fixed base waits by
// facility kind, adjusted by severity.
type HeuristicWaitEstimator struct{}

// NewHeuristicWaitEstimator creates the default wait estimator
func NewHeuristicWaitEstimator() *HeuristicWaitEstimator {
	return &HeuristicWaitEstimator{}
}

// PredictWaitSeconds returns the predicted wait for a facility and severity.
// Clinics start at 20 minutes, anything else at 60. High severity is
// prioritized by triage but floored at 15 minutes; medium takes 75% of base.
func (e *HeuristicWaitEstimator) PredictWaitSeconds(f entities.Facility, severity entities.Severity) int {
	base := 60 * 60
	if f.Kind == entities.KindClinic {
		base = 20 * 60
	}

	switch severity {
	case entities.SeverityHigh:
		if half := base / 2; half > 15*60 {
			return half
		}
		return 15 * 60
	case entities.SeverityLow:
		return base
	default:
		return int(float64(base) * 0.75)
	}
}

// Explain renders "Travel ~X min + estimated wait ~Y min."
func (e *HeuristicWaitEstimator) Explain(f entities.Facility, travelSeconds, waitSeconds int) string {
	return fmt.Sprintf("Travel ~%d min + estimated wait ~%d min.",
		wholeMinutes(travelSeconds), wholeMinutes(waitSeconds))
}

// wholeMinutes rounds seconds to the nearest minute, never reporting less
// than 1 even for sub-minute durations.
func wholeMinutes(seconds int) int {
	mins := int(math.Round(float64(seconds) / 60.0))
	if mins < 1 {
		return 1
	}
	return mins
}
