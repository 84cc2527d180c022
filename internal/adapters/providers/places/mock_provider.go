package places

import (
	"context"
	"math"

	"github.com/montrealcare/care-router/internal/domain/entities"
	"github.com/montrealcare/care-router/internal/domain/providers"
)

// MockFacilityProvider returns deterministic facilities around the origin so
// the service runs end-to-end without Google credentials.
type MockFacilityProvider struct{}

// NewMockFacilityProvider creates a new mock facility provider
func NewMockFacilityProvider() providers.FacilityProvider {
	return &MockFacilityProvider{}
}

// Nearby returns a fixed set of facilities offset from the origin
func (m *MockFacilityProvider) Nearby(ctx context.Context, lat, lng float64, radiusM int, category string) ([]entities.Facility, error) {
	phone := "514-555-0100"
	if category == entities.KindClinic {
		return []entities.Facility{
			{
				Name:    "Mock Walk-In Clinic",
				Address: "456 Rue Sainte-Catherine",
				Lat:     lat + 0.005,
				Lng:     lng - 0.005,
				Kind:    entities.KindClinic,
				Phone:   &phone,
			},
			{
				Name:    "Mock Family Clinic",
				Address: "789 Avenue du Parc",
				Lat:     lat - 0.008,
				Lng:     lng + 0.003,
				Kind:    entities.KindClinic,
			},
		}, nil
	}

	return []entities.Facility{
		{
			Name:    "Mock General Hospital",
			Address: "123 Boulevard Saint-Laurent",
			Lat:     lat + 0.01,
			Lng:     lng + 0.01,
			Kind:    entities.KindHospital,
			Phone:   &phone,
		},
		{
			Name:    "Mock University Hospital",
			Address: "1000 Rue Sherbrooke",
			Lat:     lat - 0.02,
			Lng:     lng - 0.01,
			Kind:    entities.KindHospital,
		},
	}, nil
}

// TravelTimes derives durations from straight-line distance and a per-mode speed
func (m *MockFacilityProvider) TravelTimes(ctx context.Context, lat, lng float64, candidates []entities.Facility, mode entities.TravelMode) ([]int, error) {
	speedKmh := 30.0
	switch mode {
	case entities.ModeWalking:
		speedKmh = 5.0
	case entities.ModeTransit:
		speedKmh = 20.0
	}

	durations := make([]int, len(candidates))
	for i, c := range candidates {
		distKm := haversineKm(lat, lng, c.Lat, c.Lng)
		durations[i] = int(distKm / speedKmh * 3600)
	}
	return durations, nil
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLat := toRadians(lat2 - lat1)
	deltaLng := toRadians(lng2 - lng1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
