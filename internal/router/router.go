package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"community-api/internal/config"
	"community-api/internal/handler"
	"community-api/internal/metrics"
	"community-api/internal/middleware"
	"community-api/internal/model"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Post    *handler.PostHandler
	Comment *handler.CommentHandler
	Clap    *handler.ClapHandler
	Health  *handler.HealthHandler
}

func New(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", h.Health.Check)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Group(func(api chi.Router) {
		api.Use(rateLimitMiddleware.Handler)
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Post("/sign-in", h.Auth.SignIn)
		api.Get("/revalidate", h.Auth.Revalidate)
		api.Post("/sign-out", h.Auth.SignOut)
		api.Get("/oauth/{provider}/{code}/{scope}", h.Auth.OAuth)

		api.Route("/users", func(users chi.Router) {
			users.Post("/", h.User.Register)
			users.With(authMiddleware.RequireAuth).Get("/stats", h.User.Stats)
			users.Get("/{id}", h.User.FindOne)
			users.With(authMiddleware.RequireAuth).Patch("/", h.User.Update)
			users.With(authMiddleware.RequireAuth).Delete("/", h.User.Delete)
		})

		api.Route("/posts", func(posts chi.Router) {
			posts.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleUser, model.RoleAdmin)).Post("/", h.Post.Create)
			posts.With(authMiddleware.RequireAuth).Get("/", h.Post.ListMine)
			posts.Get("/public", h.Post.ListPublic)
			posts.Get("/public/{slug}", h.Post.FindPublicBySlug)
			posts.With(authMiddleware.OptionalAuth).Get("/{id}", h.Post.FindOne)
			posts.With(authMiddleware.RequireAuth).Patch("/{id}", h.Post.Update)
			posts.With(authMiddleware.RequireAuth).Delete("/{id}", h.Post.Delete)
		})

		api.Route("/comments", func(comments chi.Router) {
			comments.With(authMiddleware.OptionalAuth).Get("/public/{postId}", h.Comment.ListForPost)
			comments.With(authMiddleware.RequireAuth).Post("/{id}", h.Comment.Create)
			comments.With(authMiddleware.RequireAuth).Patch("/{id}", h.Comment.Update)
			comments.With(authMiddleware.RequireAuth).Delete("/{id}", h.Comment.Delete)
		})

		api.Route("/claps", func(claps chi.Router) {
			claps.With(authMiddleware.RequireAuth).Post("/{id}", h.Clap.Add)
			claps.With(authMiddleware.RequireAuth).Delete("/{id}", h.Clap.Remove)
		})
	})

	return r
}
