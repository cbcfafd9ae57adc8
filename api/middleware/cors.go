package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Local dashboards; production sets ARES_REALTIME_ALLOWED_ORIGINS.
var defaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// CORS allows the dashboard origins to call the API and open the alert stream.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotencyKeyHeader, requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, idempotencyReplayHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
