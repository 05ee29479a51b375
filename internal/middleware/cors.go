package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// CORS allows credentials so browsers send the refresh cookie cross-origin.
// A "*" entry reflects the caller's origin, since browsers reject a literal
// wildcard on credentialed responses.
func CORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		MaxAge:           3600,
		AllowCredentials: true,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		opts.AllowOriginFunc = func(string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}

	return cors.New(opts).Handler
}
