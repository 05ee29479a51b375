package oauth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-api/internal/breaker"
	"community-api/internal/model"
	"community-api/pkg/apierror"
)

type fakeGitHub struct {
	accessToken string
	user        map[string]any
	emails      []map[string]any
	userStatus  int
}

func (f *fakeGitHub) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.Form.Get("code") != "good-code" || f.accessToken == "" {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": f.accessToken,
			"token_type":   "bearer",
			"scope":        "user:email",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.userStatus != 0 {
			w.WriteHeader(f.userStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(f.user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(f.emails)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(srv *httptest.Server) *GitHubProvider {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := GitHubConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/login/oauth/access_token",
		APIURL:       srv.URL,
		Timeout:      2 * time.Second,
	}
	cb := breaker.New[model.DelegatedProfile](breaker.DefaultConfig("github-test"), logger, nil)
	return NewGitHubProvider(cfg, srv.Client(), cb, logger)
}

func TestGitHubAuthenticate(t *testing.T) {
	fake := &fakeGitHub{
		accessToken: "gho_token",
		user:        map[string]any{"id": 42, "login": "alice", "name": "Alice Doe", "email": "a@x.com"},
	}
	provider := newTestProvider(fake.server(t))

	profile, err := provider.Authenticate(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, model.DelegatedProfile{
		Provider: ProviderGitHub,
		Subject:  "42",
		Email:    "a@x.com",
		Name:     "Alice Doe",
	}, profile)
}

func TestGitHubAuthenticateFallsBackToPrimaryEmail(t *testing.T) {
	fake := &fakeGitHub{
		accessToken: "gho_token",
		user:        map[string]any{"id": 7, "login": "bob", "email": nil},
		emails: []map[string]any{
			{"email": "old@x.com", "primary": false, "verified": true},
			{"email": "bob@x.com", "primary": true, "verified": true},
		},
	}
	provider := newTestProvider(fake.server(t))

	profile, err := provider.Authenticate(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", profile.Email)
	assert.Equal(t, "bob", profile.Name)
}

func TestGitHubAuthenticateBadCode(t *testing.T) {
	fake := &fakeGitHub{accessToken: "gho_token"}
	provider := newTestProvider(fake.server(t))

	_, err := provider.Authenticate(context.Background(), "wrong-code")
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindProvider))
}

func TestGitHubAuthenticateUpstreamFailure(t *testing.T) {
	fake := &fakeGitHub{accessToken: "gho_token", userStatus: http.StatusBadGateway}
	provider := newTestProvider(fake.server(t))

	_, err := provider.Authenticate(context.Background(), "good-code")
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindProvider))
}

func TestGitHubAuthenticateRequiresCode(t *testing.T) {
	provider := NewGitHubProvider(GitHubConfig{}, nil, nil, nil)

	_, err := provider.Authenticate(context.Background(), " ")
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}
