package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.Principal, error)
}

type contextKey string

const principalContextKey contextKey = "principal"

type AuthMiddleware struct {
	auth   authenticator
	logger *slog.Logger
}

func NewAuthMiddleware(auth authenticator, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{auth: auth, logger: logger}
}

// RequireAuth rejects the request unless it carries a valid bearer access
// token. The reason a token failed is never sent to the client.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, apierror.Unauthenticated("Unauthorized."))
			return
		}

		principal, err := m.auth.Authenticate(r.Context(), raw)
		if err != nil {
			writeError(w, apierror.Unauthenticated("Access denied."))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// OptionalAuth attaches a principal when a valid bearer token is present and
// lets anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.auth.Authenticate(r.Context(), raw)
		if err != nil {
			m.logger.DebugContext(r.Context(), "ignoring invalid optional bearer token")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...model.Role) func(http.Handler) http.Handler {
	roleSet := map[model.Role]struct{}{}
	for _, role := range allowedRoles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, apierror.Unauthenticated("Unauthorized."))
				return
			}

			if _, exists := roleSet[principal.Role]; !exists {
				writeError(w, apierror.AccessDenied("insufficient permissions", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithPrincipal(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(model.Principal)
	return principal, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
