package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"community-api/internal/credential"
	"community-api/internal/model"
	"community-api/internal/token"
	"community-api/pkg/apierror"
)

// RefreshCookieName carries the refresh token. It is the only place the
// refresh token ever travels.
const RefreshCookieName = "USER_TOKEN"

type SessionConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SecureCookie  bool
}

// SessionService issues and checks the stateless access/refresh token pair.
// There is no revocation list and refresh tokens are never rotated.
type SessionService struct {
	identities IdentityFinder
	codec      *token.Codec
	verifier   *credential.Verifier
	cfg        SessionConfig
	logger     *slog.Logger
}

func NewSessionService(identities IdentityFinder, codec *token.Codec, verifier *credential.Verifier, cfg SessionConfig, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		identities: identities,
		codec:      codec,
		verifier:   verifier,
		cfg:        cfg,
		logger:     logger,
	}
}

// Login distinguishes an unknown e-mail (NotFound) from a wrong password
// (InvalidCredentials).
func (s *SessionService) Login(ctx context.Context, email string, password string) (model.Session, error) {
	identity, err := s.identities.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return model.Session{}, err
	}

	if !s.verifier.Verify(password, identity.PasswordHash) {
		s.logger.InfoContext(ctx, "login rejected", slog.String("user_id", identity.ID))
		return model.Session{}, apierror.InvalidCredentials()
	}

	return s.IssueSession(ctx, identity)
}

// IssueSession mints an access and a refresh token for identity. Both carry
// the same {id, role} payload under different secrets.
func (s *SessionService) IssueSession(ctx context.Context, identity model.Identity) (model.Session, error) {
	payload := token.Payload{ID: identity.ID, Role: string(identity.Role)}

	access, _, err := s.codec.Issue(payload, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return model.Session{}, apierror.Internal("could not issue access token", err)
	}

	refresh, refreshExp, err := s.codec.Issue(payload, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return model.Session{}, apierror.Internal("could not issue refresh token", err)
	}

	s.logger.InfoContext(ctx, "session issued", slog.String("user_id", identity.ID))

	return model.Session{
		Profile:          profileOf(identity, access),
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Revalidate mints a new access token from a refresh token. The identity is
// re-read so role changes since the refresh token was issued apply.
func (s *SessionService) Revalidate(ctx context.Context, refreshToken string) (model.SessionProfile, error) {
	if refreshToken == "" {
		return model.SessionProfile{}, apierror.Unauthenticated("Unauthorized.")
	}

	payload, err := s.codec.Verify(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		s.logger.InfoContext(ctx, "refresh token rejected", slog.String("reason", rejectionReason(err)))
		return model.SessionProfile{}, apierror.AccessDenied("Access denied.", err)
	}

	identity, err := s.identities.FindByID(ctx, payload.ID)
	if apierror.Is(err, apierror.KindNotFound) {
		return model.SessionProfile{}, apierror.AccessDenied("Access denied.", err)
	}
	if err != nil {
		return model.SessionProfile{}, err
	}

	access, _, err := s.codec.Issue(token.Payload{ID: identity.ID, Role: string(identity.Role)}, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return model.SessionProfile{}, apierror.Internal("could not issue access token", err)
	}

	return profileOf(identity, access), nil
}

// Logout only checks that a refresh cookie was presented. The token itself
// stays valid until it expires.
func (s *SessionService) Logout(_ context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apierror.Unauthenticated("Unauthorized.")
	}
	return nil
}

// Authenticate verifies an access token and returns its principal.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (model.Principal, error) {
	payload, err := s.codec.Verify(accessToken, s.cfg.AccessSecret)
	if err != nil {
		s.logger.DebugContext(ctx, "access token rejected", slog.String("reason", rejectionReason(err)))
		return model.Principal{}, apierror.Wrap(apierror.KindUnauthenticated, "Access denied.", err)
	}
	return model.Principal{ID: payload.ID, Role: model.ParseRole(payload.Role)}, nil
}

func (s *SessionService) RefreshCookie(session model.Session) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    session.RefreshToken,
		Path:     "/",
		Expires:  session.RefreshExpiresAt,
		MaxAge:   int(s.cfg.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

func (s *SessionService) ClearRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

func profileOf(identity model.Identity, accessToken string) model.SessionProfile {
	return model.SessionProfile{
		ID:           identity.ID,
		Token:        accessToken,
		Name:         identity.Name,
		Email:        identity.Email,
		ProfileImage: identity.ProfileImage,
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, token.ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
