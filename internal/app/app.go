package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"community-api/internal/breaker"
	"community-api/internal/config"
	"community-api/internal/credential"
	"community-api/internal/database"
	"community-api/internal/handler"
	"community-api/internal/logger"
	"community-api/internal/metrics"
	"community-api/internal/middleware"
	"community-api/internal/model"
	"community-api/internal/oauth"
	"community-api/internal/repository"
	"community-api/internal/router"
	"community-api/internal/service"
	"community-api/internal/storage"
	"community-api/internal/token"
)

type App struct {
	server       *http.Server
	logger       *slog.Logger
	cleanupFuncs []func()
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Env, cfg.LogLevel, os.Stdout)
	slog.SetDefault(log)

	log.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, log, database.Options{
		URL:        cfg.DatabaseURL,
		MaxConns:   cfg.DBMaxConns,
		MinConns:   cfg.DBMinConns,
		LogQueries: cfg.DBLogQueries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	appRouter, err := newRouter(ctx, cfg, log, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		logger: log,
		cleanupFuncs: []func(){
			db.Close,
		},
	}, nil
}

// newRouter builds every service on top of an open database and returns the
// fully wired HTTP handler.
func newRouter(ctx context.Context, cfg *config.Config, log *slog.Logger, db *database.DB) (http.Handler, error) {
	m := metrics.New()
	outbound := &http.Client{Timeout: cfg.OutboundTimeout}

	backend, err := newMediaBackend(ctx, cfg, m, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media backend: %w", err)
	}
	log.Info("media backend ready", "backend", backend.Name())

	userRepo := repository.NewUserRepository(db.Pool)
	postRepo := repository.NewPostRepository(db.Pool)
	mediaRepo := repository.NewMediaRepository(db.Pool)
	networkRepo := repository.NewNetworkRepository(db.Pool)
	commentRepo := repository.NewCommentRepository(db.Pool)
	clapRepo := repository.NewClapRepository(db.Pool)

	verifier := credential.NewVerifier(cfg.BcryptCost)
	sessions := service.NewSessionService(userRepo, token.NewCodec(), verifier, service.SessionConfig{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		SecureCookie:  cfg.IsProduction(),
	}, log)

	var providers []service.IdentityProvider
	if cfg.GitHubClientID != "" {
		cb := breaker.New[model.DelegatedProfile](breaker.DefaultConfig("github"), log, m.BreakerState)
		providers = append(providers, oauth.NewGitHubProvider(oauth.GitHubConfig{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			APIURL:       cfg.GitHubAPIURL,
			Timeout:      cfg.OutboundTimeout,
		}, outbound, cb, log))
	} else {
		log.Warn("GITHUB_CLIENT_ID not set, GitHub sign-in disabled")
	}
	oauthService := service.NewOAuthService(userRepo, sessions, log, providers...)

	reconciler := service.NewAssetReconciler(mediaRepo, backend, service.MediaFolders{
		UserProfile: cfg.MediaUserFolder,
		PostCover:   cfg.MediaPostFolder,
	}, m, log)
	userService := service.NewUserService(userRepo, postRepo, mediaRepo, networkRepo, reconciler, verifier, log)
	postService := service.NewPostService(postRepo, reconciler, log)
	commentService := service.NewCommentService(commentRepo, postRepo, log)
	clapService := service.NewClapService(clapRepo, postRepo)

	resp := handler.NewResponder(log, cfg.IsProduction())
	return router.New(cfg, log, m, middleware.NewAuthMiddleware(sessions, log), router.Handlers{
		Auth:    handler.NewAuthHandler(sessions, oauthService, resp),
		User:    handler.NewUserHandler(userService, resp),
		Post:    handler.NewPostHandler(postService, resp),
		Comment: handler.NewCommentHandler(commentService, resp),
		Clap:    handler.NewClapHandler(clapService, resp),
		Health:  handler.NewHealthHandler(db, resp),
	}), nil
}

func newMediaBackend(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *slog.Logger) (storage.Backend, error) {
	if cfg.MediaBackend != config.MediaBackendS3 {
		return storage.NewPassthroughBackend(log), nil
	}

	s3cfg := storage.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
		Timeout:       cfg.OutboundTimeout,
	}
	s3client, err := storage.NewS3Client(ctx, s3cfg)
	if err != nil {
		return nil, err
	}

	cb := breaker.New[struct{}](breaker.DefaultConfig("s3"), log, m.BreakerState)
	sources := storage.NewSourceReader(storage.NewFetchClient(cfg.OutboundTimeout), cfg.MediaMaxSourceBytes, cfg.OutboundTimeout)
	return storage.NewS3Backend(s3client, s3cfg, sources, cb, log), nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
	case runErr = <-errCh:
		a.logger.Error("server failed", "error", runErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if runErr != nil {
		return runErr
	}
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	a.logger.Info("server stopped")
	return nil
}
