package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/montrealcare/care-router/internal/adapters/cache"
	"github.com/montrealcare/care-router/internal/adapters/providers/places"
	"github.com/montrealcare/care-router/internal/adapters/providers/voice"
	"github.com/montrealcare/care-router/internal/api/handlers"
	"github.com/montrealcare/care-router/internal/api/routes"
	"github.com/montrealcare/care-router/internal/application/services"
	"github.com/montrealcare/care-router/internal/domain/providers"
	"github.com/montrealcare/care-router/internal/infrastructure/clients/redis"
	"github.com/montrealcare/care-router/internal/infrastructure/observability"
	"github.com/montrealcare/care-router/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry export is optional; metrics fall back to no-op providers
	// when disabled.
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Result cache: Redis when reachable, in-process otherwise. The service
	// works either way; only cache sharing across instances differs.
	var cacheProvider providers.CacheProvider
	if redisClient, err := redis.NewClient(&cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory result cache")
		cacheProvider = cache.NewMemoryAdapter()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Info().Msg("Redis result cache initialized")
	}

	var facilityProvider providers.FacilityProvider
	switch cfg.Geolocation.Provider {
	case "google":
		if cfg.Geolocation.APIKey == "" {
			log.Warn().Msg("GOOGLE_MAPS_API_KEY is not set; using mock facility provider")
			facilityProvider = places.NewMockFacilityProvider()
		} else {
			facilityProvider = places.NewGoogleFacilityProvider(cfg.Geolocation.APIKey)
		}
	default:
		facilityProvider = places.NewMockFacilityProvider()
	}

	var voiceProvider providers.VoiceSynthesizer
	if elevenlabs, err := voice.NewElevenLabsAdapter(&cfg.Voice); err != nil {
		log.Warn().Err(err).Msg("voice synthesis not configured; using mock voice adapter")
		voiceProvider = voice.NewMockVoiceAdapter()
	} else {
		voiceProvider = elevenlabs
	}

	recommendationService := services.NewRecommendationService(
		facilityProvider,
		voiceProvider,
		cacheProvider,
		services.NewHeuristicWaitEstimator(),
		cfg.Cache.TTLSeconds,
		cfg.Cache.MaxCandidates,
	)
	recommendationService.SetMetrics(metrics)

	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)

	router := routes.NewRouter(recommendationHandler, metrics)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
