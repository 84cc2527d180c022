package routes

import (
	"net/http"

	"github.com/montrealcare/care-router/internal/api/handlers"
	"github.com/montrealcare/care-router/internal/api/middleware"
	"github.com/montrealcare/care-router/internal/infrastructure/observability"
)

// Router assembles the HTTP surface: the recommendation endpoint, a health
// probe, and the middleware chain around them.
type Router struct {
	mux            *http.ServeMux
	recommendation *handlers.RecommendationHandler
	metrics        *observability.Metrics
}

func NewRouter(recommendation *handlers.RecommendationHandler, metrics *observability.Metrics) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		recommendation: recommendation,
		metrics:        metrics,
	}
}

// SetupRoutes registers all routes and returns the wrapped handler.
// Middleware applies in reverse registration order; CORS sits outermost so
// error responses also carry CORS headers.
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.mux.HandleFunc("POST /api/recommend", r.recommendation.Recommend)

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)
	return handler
}
