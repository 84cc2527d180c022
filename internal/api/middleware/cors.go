package middleware

import (
	"net/http"
	"os"
	"strings"
)

// CORSMiddleware adds CORS headers for browser clients. Allowed origins come
// from ALLOWED_ORIGINS (comma-separated); the default covers the local
// frontend dev server.
func CORSMiddleware(next http.Handler) http.Handler {
	allowed := []string{"http://localhost:5173"}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		allowed = strings.Split(env, ",")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			switch {
			case allowed[0] == "*":
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case originAllowed(origin, allowed):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if strings.TrimSpace(a) == origin {
			return true
		}
	}
	return false
}
