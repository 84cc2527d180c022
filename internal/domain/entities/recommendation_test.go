package entities

import (
	"testing"

	apperrors "github.com/montrealcare/care-router/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendRequest_Validate(t *testing.T) {
	valid := RecommendRequest{
		Lat:      45.5017,
		Lng:      -73.5673,
		Severity: SeverityLow,
		Mode:     ModeWalking,
		RadiusM:  2000,
	}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*RecommendRequest)
	}{
		{"latitude out of range", func(r *RecommendRequest) { r.Lat = 91 }},
		{"longitude out of range", func(r *RecommendRequest) { r.Lng = -180.5 }},
		{"unknown severity", func(r *RecommendRequest) { r.Severity = "urgent" }},
		{"empty severity", func(r *RecommendRequest) { r.Severity = "" }},
		{"unknown mode", func(r *RecommendRequest) { r.Mode = "cycling" }},
		{"zero radius", func(r *RecommendRequest) { r.RadiusM = 0 }},
		{"negative radius", func(r *RecommendRequest) { r.RadiusM = -100 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)

			err := req.Validate()
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
		})
	}
}

func TestRecommendRequest_CacheKeyRoundsCoordinates(t *testing.T) {
	base := RecommendRequest{
		Lat:      45.50171,
		Lng:      -73.56731,
		Severity: SeverityMedium,
		Mode:     ModeDriving,
		RadiusM:  3000,
	}

	nearby := base
	nearby.Lat = 45.50169 // same 4-decimal bucket

	distant := base
	distant.Lat = 45.51

	assert.Equal(t, base.CacheKey(), nearby.CacheKey())
	assert.NotEqual(t, base.CacheKey(), distant.CacheKey())
}

func TestRecommendRequest_CacheKeyVariesByParameters(t *testing.T) {
	base := RecommendRequest{
		Lat: 45.5017, Lng: -73.5673,
		Severity: SeverityMedium, Mode: ModeDriving, RadiusM: 3000,
	}

	severityChanged := base
	severityChanged.Severity = SeverityHigh

	modeChanged := base
	modeChanged.Mode = ModeTransit

	radiusChanged := base
	radiusChanged.RadiusM = 5000

	keys := map[string]bool{
		base.CacheKey():            true,
		severityChanged.CacheKey(): true,
		modeChanged.CacheKey():     true,
		radiusChanged.CacheKey():   true,
	}
	assert.Len(t, keys, 4)
}
