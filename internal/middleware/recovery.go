package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"community-api/pkg/apierror"
)

func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					if recovered == http.ErrAbortHandler {
						panic(recovered)
					}
					logger.ErrorContext(r.Context(), "panic recovered",
						"error", fmt.Sprintf("%v", recovered),
						"stack", string(debug.Stack()),
					)
					writeError(w, apierror.Internal("Unexpected server error", nil))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
