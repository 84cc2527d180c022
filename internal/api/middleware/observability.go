package middleware

import (
	"net/http"
	"time"

	"github.com/montrealcare/care-router/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

// ObservabilityMiddleware opens a span per request and records request count
// and duration. The mux's route pattern keys the metrics rather than the raw
// path, to keep label cardinality bounded.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := r.Pattern
			if route == "" {
				route = r.URL.Path
			}

			ctx, span := observability.StartSpan(r.Context(), route)
			defer span.End()
			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
			)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			observability.SetSpanAttributes(span, attribute.Int("http.status_code", rec.status))
			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rec.status, time.Since(start))
		})
	}
}
