package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/montrealcare/care-router/internal/domain/entities"
	"github.com/montrealcare/care-router/internal/domain/providers"
	"github.com/montrealcare/care-router/internal/infrastructure/observability"
	apperrors "github.com/montrealcare/care-router/pkg/errors"
)

// candidateCap bounds downstream travel-time and scoring cost no matter how
// many facilities a search radius returns.
const candidateCap = 8

// maxAlternatives is the number of runner-up candidates returned after the
// recommended one.
const maxAlternatives = 5

// RecommendationService orchestrates the end-to-end recommendation pipeline:
// cache check, concurrent candidate retrieval, travel times, wait scoring,
// ranking, optional voice synthesis, and cache write.
type RecommendationService struct {
	facilities providers.FacilityProvider
	voice      providers.VoiceSynthesizer
	cache      providers.CacheProvider
	estimator  WaitEstimator

	ttlSeconds    int
	maxCandidates int
	metrics       *observability.Metrics
}

// NewRecommendationService creates a new recommendation service. The cache is
// constructed once at startup and injected here; voice may be nil when no
// synthesis provider is configured.
func NewRecommendationService(
	facilities providers.FacilityProvider,
	voice providers.VoiceSynthesizer,
	cache providers.CacheProvider,
	estimator WaitEstimator,
	ttlSeconds int,
	maxCandidates int,
) *RecommendationService {
	return &RecommendationService{
		facilities:    facilities,
		voice:         voice,
		cache:         cache,
		estimator:     estimator,
		ttlSeconds:    ttlSeconds,
		maxCandidates: maxCandidates,
	}
}

// SetMetrics attaches observability metrics for cache hit/miss and
// collaborator latency recording
func (s *RecommendationService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Recommend runs the full pipeline for one request
func (s *RecommendationService) Recommend(ctx context.Context, req *entities.RecommendRequest) (*entities.RecommendResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := req.CacheKey()

	// Synthesized-audio responses are never cached or served from cache, so
	// TTS requests skip the lookup entirely.
	if !req.IncludeTTS {
		if cached := s.cachedResponse(ctx, key); cached != nil {
			observability.RecordCacheHit(ctx, s.metrics)
			return cached, nil
		}
		observability.RecordCacheMiss(ctx, s.metrics)
	}

	candidates, err := s.retrieveCandidates(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewNotFoundError("no facilities found in radius")
	}

	start := time.Now()
	durations, err := s.facilities.TravelTimes(ctx, req.Lat, req.Lng, candidates, req.Mode)
	if err != nil {
		return nil, apperrors.NewExternalError("travel time lookup failed", err)
	}
	observability.RecordCollaboratorLatency(ctx, s.metrics, "travel_times", time.Since(start))

	// The matrix result must line up with the candidate list one-to-one;
	// anything else is an integrity failure, never silently repaired.
	if len(durations) != len(candidates) {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("travel time result mismatch: %d durations for %d candidates", len(durations), len(candidates)), nil)
	}

	scored := make([]entities.FacilityScore, len(candidates))
	for i, f := range candidates {
		travel := durations[i]
		wait := s.estimator.PredictWaitSeconds(f, req.Severity)
		scored[i] = entities.FacilityScore{
			Facility:             f,
			TravelSeconds:        travel,
			PredictedWaitSeconds: wait,
			TotalSeconds:         travel + wait,
			Explanation:          s.estimator.Explain(f, travel, wait),
		}
	}

	// Stable sort: ties keep hospitals-before-clinics, then provider order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TotalSeconds < scored[j].TotalSeconds
	})

	best := scored[0]
	alternatives := scored[1:]
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	spoken := fmt.Sprintf("Closest facility is %d minutes at %s, %s.",
		wholeMinutes(best.TravelSeconds), best.Facility.Name, best.Facility.Address)

	resp := &entities.RecommendResponse{
		Recommended:  best,
		Alternatives: alternatives,
		SpokenText:   spoken,
	}

	if req.IncludeTTS {
		if s.voice == nil {
			return nil, apperrors.NewExternalError("voice synthesis is not configured", nil)
		}
		start := time.Now()
		audio, err := s.voice.Synthesize(ctx, spoken)
		if err != nil {
			return nil, apperrors.NewExternalError("voice synthesis failed", err)
		}
		observability.RecordCollaboratorLatency(ctx, s.metrics, "synthesize", time.Since(start))
		resp.TTSAudioBase64 = &audio
	} else {
		s.storeResponse(ctx, key, resp)
	}

	return resp, nil
}

// retrieveCandidates fans out to the facility provider for hospitals (always)
// and clinics (low severity only), joins both branches, and applies the
// candidate cap. Either branch failing fails the whole request.
func (s *RecommendationService) retrieveCandidates(ctx context.Context, req *entities.RecommendRequest) ([]entities.Facility, error) {
	var (
		hospitals, clinics []entities.Facility
		hospErr, clinErr   error
		wg                 sync.WaitGroup
	)

	start := time.Now()
	wg.Add(1)
	go func() {
		defer wg.Done()
		hospitals, hospErr = s.facilities.Nearby(ctx, req.Lat, req.Lng, req.RadiusM, entities.KindHospital)
	}()

	if req.Severity == entities.SeverityLow {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clinics, clinErr = s.facilities.Nearby(ctx, req.Lat, req.Lng, req.RadiusM, entities.KindClinic)
		}()
	}

	wg.Wait()
	observability.RecordCollaboratorLatency(ctx, s.metrics, "nearby", time.Since(start))

	if hospErr != nil {
		return nil, apperrors.NewExternalError("hospital lookup failed", hospErr)
	}
	if clinErr != nil {
		return nil, apperrors.NewExternalError("clinic lookup failed", clinErr)
	}

	// Hospitals first, clinics second, then the hard cap. MAX_CANDIDATES from
	// configuration can only tighten the cap, never widen it.
	limit := candidateCap
	if s.maxCandidates > 0 && s.maxCandidates < limit {
		limit = s.maxCandidates
	}

	candidates := append(hospitals, clinics...)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// cachedResponse returns the cached recommendation for key, or nil on any
// miss, expiry, or decode failure.
func (s *RecommendationService) cachedResponse(ctx context.Context, key string) *entities.RecommendResponse {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).
				Msg("cache lookup failed")
		}
		return nil
	}

	var resp entities.RecommendResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).
			Msg("failed to decode cached recommendation")
		return nil
	}
	return &resp
}

// storeResponse writes a fully assembled, non-audio response to the cache.
// Cache write failures are logged, not surfaced; the response is still valid.
func (s *RecommendationService) storeResponse(ctx context.Context, key string, resp *entities.RecommendResponse) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).
			Msg("failed to encode recommendation for cache")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttlSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).
			Msg("failed to cache recommendation")
	}
}
