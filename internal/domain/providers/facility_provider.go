package providers

import (
	"context"

	"github.com/montrealcare/care-router/internal/domain/entities"
)

// FacilityProvider defines the interface for the facility lookup collaborator
type FacilityProvider interface {
	// Nearby returns facilities of the given category within radiusM meters
	// of the origin
	Nearby(ctx context.Context, lat, lng float64, radiusM int, category string) ([]entities.Facility, error)

	// TravelTimes returns one travel duration in seconds per candidate, in
	// the same order as the candidate list
	TravelTimes(ctx context.Context, lat, lng float64, candidates []entities.Facility, mode entities.TravelMode) ([]int, error)
}
