package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/montrealcare/care-router/internal/domain/entities"
	"github.com/montrealcare/care-router/internal/domain/providers"
)

const (
	googleNearbySearchURL   = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	googleDistanceMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"
	defaultHTTPTimeout      = 8 * time.Second
)

// GoogleFacilityProvider implements FacilityProvider using the Google Places
// Nearby Search and Distance Matrix APIs.
type GoogleFacilityProvider struct {
	apiKey     string
	httpClient *http.Client
	nearbyURL  string
	matrixURL  string
}

// NewGoogleFacilityProvider creates a new Google facility provider.
func NewGoogleFacilityProvider(apiKey string) providers.FacilityProvider {
	return NewGoogleFacilityProviderWithOptions(apiKey, "", "", nil)
}

// NewGoogleFacilityProviderWithOptions allows overriding endpoint URLs and the
// HTTP client (used for tests).
func NewGoogleFacilityProviderWithOptions(apiKey, nearbyURL, matrixURL string, httpClient *http.Client) providers.FacilityProvider {
	if strings.TrimSpace(nearbyURL) == "" {
		nearbyURL = googleNearbySearchURL
	}
	if strings.TrimSpace(matrixURL) == "" {
		matrixURL = googleDistanceMatrixURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GoogleFacilityProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		nearbyURL:  nearbyURL,
		matrixURL:  matrixURL,
	}
}

// Nearby returns facilities of the given category within radiusM meters of the origin.
func (g *GoogleFacilityProvider) Nearby(ctx context.Context, lat, lng float64, radiusM int, category string) ([]entities.Facility, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", radiusM))
	params.Set("type", placeType(category))
	params.Set("key", g.apiKey)

	reqURL := fmt.Sprintf("%s?%s", g.nearbyURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build nearby search request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nearby search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("nearby search returned status %d", resp.StatusCode)
	}

	var payload googleNearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode nearby search response: %w", err)
	}

	if payload.Status == "ZERO_RESULTS" {
		return []entities.Facility{}, nil
	}
	if payload.Status != "OK" {
		if payload.ErrorMessage != "" {
			return nil, fmt.Errorf("nearby search failed: %s - %s", payload.Status, payload.ErrorMessage)
		}
		return nil, fmt.Errorf("nearby search failed: %s", payload.Status)
	}

	facilities := make([]entities.Facility, 0, len(payload.Results))
	for _, result := range payload.Results {
		address := result.Vicinity
		if address == "" {
			address = result.FormattedAddress
		}
		facilities = append(facilities, entities.Facility{
			Name:    result.Name,
			Address: address,
			Lat:     result.Geometry.Location.Lat,
			Lng:     result.Geometry.Location.Lng,
			Kind:    category,
		})
	}

	return facilities, nil
}

// TravelTimes returns one travel duration per candidate via a single Distance
// Matrix call, in candidate order.
func (g *GoogleFacilityProvider) TravelTimes(ctx context.Context, lat, lng float64, candidates []entities.Facility, mode entities.TravelMode) ([]int, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}
	if len(candidates) == 0 {
		return []int{}, nil
	}

	destinations := make([]string, len(candidates))
	for i, c := range candidates {
		destinations[i] = fmt.Sprintf("%f,%f", c.Lat, c.Lng)
	}

	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("destinations", strings.Join(destinations, "|"))
	params.Set("mode", string(mode))
	params.Set("key", g.apiKey)

	reqURL := fmt.Sprintf("%s?%s", g.matrixURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build distance matrix request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("distance matrix returned status %d", resp.StatusCode)
	}

	var payload googleDistanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode distance matrix response: %w", err)
	}

	if payload.Status != "OK" {
		if payload.ErrorMessage != "" {
			return nil, fmt.Errorf("distance matrix failed: %s - %s", payload.Status, payload.ErrorMessage)
		}
		return nil, fmt.Errorf("distance matrix failed: %s", payload.Status)
	}

	if len(payload.Rows) == 0 {
		return nil, fmt.Errorf("distance matrix returned no rows")
	}

	elements := payload.Rows[0].Elements
	durations := make([]int, 0, len(elements))
	for i, element := range elements {
		if element.Status != "OK" {
			return nil, fmt.Errorf("distance matrix element %d failed: %s", i, element.Status)
		}
		durations = append(durations, element.Duration.Value)
	}

	return durations, nil
}

// placeType maps facility categories to Google Places types. Clinics are not a
// first-class Places type, so they map to "doctor".
func placeType(category string) string {
	if category == entities.KindClinic {
		return "doctor"
	}
	return "hospital"
}

type googleNearbyResponse struct {
	Status       string               `json:"status"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Results      []googleNearbyResult `json:"results"`
}

type googleNearbyResult struct {
	Name             string         `json:"name"`
	Vicinity         string         `json:"vicinity"`
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleDistanceMatrixResponse struct {
	Status       string                    `json:"status"`
	ErrorMessage string                    `json:"error_message,omitempty"`
	Rows         []googleDistanceMatrixRow `json:"rows"`
}

type googleDistanceMatrixRow struct {
	Elements []googleDistanceMatrixElement `json:"elements"`
}

type googleDistanceMatrixElement struct {
	Status   string             `json:"status"`
	Duration googleMatrixAmount `json:"duration"`
}

type googleMatrixAmount struct {
	Value int `json:"value"`
}
