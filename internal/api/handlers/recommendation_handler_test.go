package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/montrealcare/care-router/internal/adapters/cache"
	"github.com/montrealcare/care-router/internal/api/handlers"
	"github.com/montrealcare/care-router/internal/application/services"
	"github.com/montrealcare/care-router/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFacilityProvider struct {
	mock.Mock
}

func (m *MockFacilityProvider) Nearby(ctx context.Context, lat, lng float64, radiusM int, category string) ([]entities.Facility, error) {
	args := m.Called(ctx, lat, lng, radiusM, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Facility), args.Error(1)
}

func (m *MockFacilityProvider) TravelTimes(ctx context.Context, lat, lng float64, candidates []entities.Facility, mode entities.TravelMode) ([]int, error) {
	args := m.Called(ctx, lat, lng, candidates, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

type MockVoiceSynthesizer struct {
	mock.Mock
}

func (m *MockVoiceSynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func newHandler(facilities *MockFacilityProvider, synth *MockVoiceSynthesizer) *handlers.RecommendationHandler {
	svc := services.NewRecommendationService(
		facilities, synth, cache.NewMemoryAdapter(),
		services.NewHeuristicWaitEstimator(), 60, 20,
	)
	return handlers.NewRecommendationHandler(svc)
}

func postRecommend(t *testing.T, handler *handlers.RecommendationHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Recommend(rec, req)
	return rec
}

func TestRecommend_Success(t *testing.T) {
	facilities := new(MockFacilityProvider)
	handler := newHandler(facilities, nil)

	phone := "514-555-0199"
	found := []entities.Facility{
		{Name: "Montreal General", Address: "1650 Cedar Ave", Lat: 45.4966, Lng: -73.5884, Kind: entities.KindHospital, Phone: &phone},
		{Name: "Hopital Notre-Dame", Address: "1560 Rue Sherbrooke E", Lat: 45.5266, Lng: -73.5614, Kind: entities.KindHospital},
	}
	facilities.On("Nearby", mock.Anything, mock.Anything, mock.Anything, 3000, entities.KindHospital).
		Return(found, nil)
	facilities.On("TravelTimes", mock.Anything, mock.Anything, mock.Anything, found, entities.ModeDriving).
		Return([]int{1200, 480}, nil)

	rec := postRecommend(t, handler,
		`{"lat": 45.5017, "lng": -73.5673, "severity": "medium", "mode": "driving", "radius_m": 3000, "include_tts": false}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp entities.RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Hopital Notre-Dame", resp.Recommended.Facility.Name)
	assert.Equal(t, 480, resp.Recommended.TravelSeconds)
	assert.Equal(t, 2700, resp.Recommended.PredictedWaitSeconds)
	assert.Equal(t, 3180, resp.Recommended.TotalSeconds)
	assert.Equal(t, "Travel ~8 min + estimated wait ~45 min.", resp.Recommended.Explanation)
	require.Len(t, resp.Alternatives, 1)
	assert.Equal(t, "Montreal General", resp.Alternatives[0].Facility.Name)
	assert.Equal(t, "Closest facility is 8 minutes at Hopital Notre-Dame, 1560 Rue Sherbrooke E.", resp.SpokenText)
	assert.Nil(t, resp.TTSAudioBase64)
}

func TestRecommend_WithTTS(t *testing.T) {
	facilities := new(MockFacilityProvider)
	synth := new(MockVoiceSynthesizer)
	handler := newHandler(facilities, synth)

	found := []entities.Facility{{Name: "General", Address: "Main St", Kind: entities.KindHospital}}
	facilities.On("Nearby", mock.Anything, mock.Anything, mock.Anything, 3000, entities.KindHospital).
		Return(found, nil)
	facilities.On("TravelTimes", mock.Anything, mock.Anything, mock.Anything, found, entities.ModeDriving).
		Return([]int{300}, nil)
	synth.On("Synthesize", mock.Anything, "Closest facility is 5 minutes at General, Main St.").
		Return("YXVkaW8=", nil)

	rec := postRecommend(t, handler,
		`{"lat": 45.5017, "lng": -73.5673, "severity": "high", "mode": "driving", "radius_m": 3000, "include_tts": true}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp entities.RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.TTSAudioBase64)
	assert.Equal(t, "YXVkaW8=", *resp.TTSAudioBase64)
}

func TestRecommend_MalformedBody(t *testing.T) {
	handler := newHandler(new(MockFacilityProvider), nil)

	rec := postRecommend(t, handler, `{"lat": not-json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommend_InvalidSeverity(t *testing.T) {
	facilities := new(MockFacilityProvider)
	handler := newHandler(facilities, nil)

	rec := postRecommend(t, handler,
		`{"lat": 45.5, "lng": -73.5, "severity": "critical", "mode": "driving", "radius_m": 3000}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	facilities.AssertNotCalled(t, "Nearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommend_NoFacilitiesIs404(t *testing.T) {
	facilities := new(MockFacilityProvider)
	handler := newHandler(facilities, nil)

	facilities.On("Nearby", mock.Anything, mock.Anything, mock.Anything, 3000, entities.KindHospital).
		Return([]entities.Facility{}, nil)

	rec := postRecommend(t, handler,
		`{"lat": 45.5, "lng": -73.5, "severity": "medium", "mode": "driving", "radius_m": 3000}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "no facilities found")
}

func TestRecommend_TravelTimeMismatchIs500(t *testing.T) {
	facilities := new(MockFacilityProvider)
	handler := newHandler(facilities, nil)

	found := []entities.Facility{
		{Name: "A", Kind: entities.KindHospital},
		{Name: "B", Kind: entities.KindHospital},
	}
	facilities.On("Nearby", mock.Anything, mock.Anything, mock.Anything, 3000, entities.KindHospital).
		Return(found, nil)
	facilities.On("TravelTimes", mock.Anything, mock.Anything, mock.Anything, found, entities.ModeDriving).
		Return([]int{300}, nil)

	rec := postRecommend(t, handler,
		`{"lat": 45.5, "lng": -73.5, "severity": "medium", "mode": "driving", "radius_m": 3000}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRecommend_CollaboratorFailureIs502(t *testing.T) {
	facilities := new(MockFacilityProvider)
	handler := newHandler(facilities, nil)

	facilities.On("Nearby", mock.Anything, mock.Anything, mock.Anything, 3000, entities.KindHospital).
		Return(nil, errors.New("upstream timeout"))

	rec := postRecommend(t, handler,
		`{"lat": 45.5, "lng": -73.5, "severity": "medium", "mode": "driving", "radius_m": 3000}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
