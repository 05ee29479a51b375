package service

import (
	"context"
	"log/slog"
	"strings"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

// OAuthService maps a third-party login onto an existing local identity.
// Unknown accounts are rejected; nothing is provisioned.
type OAuthService struct {
	providers  map[string]IdentityProvider
	identities IdentityFinder
	sessions   *SessionService
	logger     *slog.Logger
}

func NewOAuthService(identities IdentityFinder, sessions *SessionService, logger *slog.Logger, providers ...IdentityProvider) *OAuthService {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]IdentityProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthService{
		providers:  byName,
		identities: identities,
		sessions:   sessions,
		logger:     logger,
	}
}

func (s *OAuthService) SignIn(ctx context.Context, provider string, code string, scope string) (model.Session, error) {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(scope) == "" {
		return model.Session{}, apierror.Validation("Please provide correct parameters", "code and scope are required")
	}

	p, ok := s.providers[strings.ToLower(provider)]
	if !ok {
		return model.Session{}, apierror.NotFound("identity provider", provider)
	}

	profile, err := p.Authenticate(ctx, code)
	if err != nil {
		s.logger.WarnContext(ctx, "delegated authentication failed",
			slog.String("provider", p.Name()),
			slog.Any("error", err),
		)
		return model.Session{}, err
	}

	if strings.TrimSpace(profile.Email) == "" {
		return model.Session{}, apierror.Provider("identity provider returned no e-mail", nil)
	}

	identity, err := s.identities.FindByEmail(ctx, profile.Email)
	if err != nil {
		if apierror.Is(err, apierror.KindNotFound) {
			s.logger.InfoContext(ctx, "delegated login for unknown account",
				slog.String("provider", p.Name()),
				slog.String("subject", profile.Subject),
			)
			return model.Session{}, apierror.NotFound("user", "")
		}
		return model.Session{}, err
	}

	return s.sessions.IssueSession(ctx, identity)
}
