package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"community-api/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds handler execution. http.TimeoutHandler writes the body as
// text/html unless the header is already set, so the JSON type is set first.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body, _ := json.Marshal(model.ErrorResponse{
		Code:    "REQUEST_TIMEOUT",
		Status:  http.StatusServiceUnavailable,
		Message: "The request took too long to complete.",
	})

	return func(next http.Handler) http.Handler {
		limited := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			limited.ServeHTTP(w, r)
		})
	}
}
