package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/montrealcare/care-router/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleProvider_Nearby(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hospital", r.URL.Query().Get("type"))
		assert.Equal(t, "3000", r.URL.Query().Get("radius"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"name": "Montreal General Hospital",
					"vicinity": "1650 Cedar Ave",
					"geometry": {"location": {"lat": 45.4966, "lng": -73.5884}}
				},
				{
					"name": "Hopital Notre-Dame",
					"vicinity": "1560 Rue Sherbrooke E",
					"geometry": {"location": {"lat": 45.5266, "lng": -73.5614}}
				}
			]
		}`))
	}))
	defer server.Close()

	provider := NewGoogleFacilityProviderWithOptions("test-key", server.URL, "", server.Client())

	facilities, err := provider.Nearby(context.Background(), 45.5017, -73.5673, 3000, entities.KindHospital)
	require.NoError(t, err)
	require.Len(t, facilities, 2)

	assert.Equal(t, "Montreal General Hospital", facilities[0].Name)
	assert.Equal(t, "1650 Cedar Ave", facilities[0].Address)
	assert.Equal(t, entities.KindHospital, facilities[0].Kind)
	assert.InDelta(t, 45.4966, facilities[0].Lat, 1e-6)
}

func TestGoogleProvider_NearbyClinicMapsToDoctorType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "doctor", r.URL.Query().Get("type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	provider := NewGoogleFacilityProviderWithOptions("test-key", server.URL, "", server.Client())

	facilities, err := provider.Nearby(context.Background(), 45.5017, -73.5673, 3000, entities.KindClinic)
	require.NoError(t, err)
	assert.Empty(t, facilities)
}

func TestGoogleProvider_NearbyRequestDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "key invalid", "results": []}`))
	}))
	defer server.Close()

	provider := NewGoogleFacilityProviderWithOptions("bad-key", server.URL, "", server.Client())

	_, err := provider.Nearby(context.Background(), 45.5017, -73.5673, 3000, entities.KindHospital)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestGoogleProvider_NearbyRequiresAPIKey(t *testing.T) {
	provider := NewGoogleFacilityProvider("")

	_, err := provider.Nearby(context.Background(), 45.5017, -73.5673, 3000, entities.KindHospital)
	assert.Error(t, err)
}

func TestGoogleProvider_TravelTimes(t *testing.T) {
	candidates := []entities.Facility{
		{Name: "A", Lat: 45.50, Lng: -73.58},
		{Name: "B", Lat: 45.52, Lng: -73.56},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "transit", r.URL.Query().Get("mode"))
		assert.Contains(t, r.URL.Query().Get("destinations"), "|")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"rows": [{
				"elements": [
					{"status": "OK", "duration": {"value": 540}},
					{"status": "OK", "duration": {"value": 1260}}
				]
			}]
		}`))
	}))
	defer server.Close()

	provider := NewGoogleFacilityProviderWithOptions("test-key", "", server.URL, server.Client())

	durations, err := provider.TravelTimes(context.Background(), 45.5017, -73.5673, candidates, entities.ModeTransit)
	require.NoError(t, err)
	assert.Equal(t, []int{540, 1260}, durations)
}

func TestGoogleProvider_TravelTimesElementFailure(t *testing.T) {
	candidates := []entities.Facility{{Name: "A", Lat: 45.50, Lng: -73.58}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{"status": "NOT_FOUND"}]}]
		}`))
	}))
	defer server.Close()

	provider := NewGoogleFacilityProviderWithOptions("test-key", "", server.URL, server.Client())

	_, err := provider.TravelTimes(context.Background(), 45.5017, -73.5673, candidates, entities.ModeDriving)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestGoogleProvider_TravelTimesEmptyCandidates(t *testing.T) {
	provider := NewGoogleFacilityProvider("test-key")

	durations, err := provider.TravelTimes(context.Background(), 45.5017, -73.5673, nil, entities.ModeDriving)
	require.NoError(t, err)
	assert.Empty(t, durations)
}

func TestMockProvider_TravelTimesMatchCandidateCount(t *testing.T) {
	provider := NewMockFacilityProvider()
	ctx := context.Background()

	facilities, err := provider.Nearby(ctx, 45.5017, -73.5673, 3000, entities.KindHospital)
	require.NoError(t, err)
	require.NotEmpty(t, facilities)

	durations, err := provider.TravelTimes(ctx, 45.5017, -73.5673, facilities, entities.ModeWalking)
	require.NoError(t, err)
	assert.Len(t, durations, len(facilities))
	for _, d := range durations {
		assert.GreaterOrEqual(t, d, 0)
	}
}
