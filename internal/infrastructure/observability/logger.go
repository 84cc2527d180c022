package observability

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// InitLogger configures the global zerolog logger. Development environments
// get a human-readable console writer; everything else logs JSON to stdout.
func InitLogger(serviceName, env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(levelFromEnv())

	var base zerolog.Logger
	if env == "development" {
		base = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		base = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
	}
	log.Logger = base.With().Str("service", serviceName).Logger()
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// LoggerFromContext returns the global logger enriched with the active span's
// trace and span ids when a recorded trace is present on the context.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := log.With().Logger()
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		logger = logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}
	return &logger
}
