package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

const (
	ProviderGitHub = "github"

	defaultGitHubAPIURL = "https://api.github.com"
	maxProfileBytes     = 1 << 20
)

type GitHubConfig struct {
	ClientID     string
	ClientSecret string

	// TokenURL overrides github.Endpoint, mainly for tests and GitHub
	// Enterprise.
	TokenURL string
	APIURL   string
	Timeout  time.Duration
}

// GitHubProvider exchanges an authorization code for a GitHub token and
// reads the e-mail keyed profile behind it.
type GitHubProvider struct {
	oauth   *oauth2.Config
	apiURL  string
	client  *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[model.DelegatedProfile]
	logger  *slog.Logger
}

func NewGitHubProvider(cfg GitHubConfig, client *http.Client, cb *gobreaker.CircuitBreaker[model.DelegatedProfile], logger *slog.Logger) *GitHubProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	endpoint := github.Endpoint
	if cfg.TokenURL != "" {
		endpoint = oauth2.Endpoint{
			AuthURL:   github.Endpoint.AuthURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		}
	}

	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		apiURL = defaultGitHubAPIURL
	}

	return &GitHubProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiURL:  apiURL,
		client:  client,
		timeout: cfg.Timeout,
		breaker: cb,
		logger:  logger,
	}
}

func (p *GitHubProvider) Name() string {
	return ProviderGitHub
}

// Authenticate runs the code exchange and the profile fetch as one outbound
// unit guarded by the breaker and the outbound timeout.
func (p *GitHubProvider) Authenticate(ctx context.Context, code string) (model.DelegatedProfile, error) {
	if strings.TrimSpace(code) == "" {
		return model.DelegatedProfile{}, apierror.Validation("Please provide correct parameters", "code is required")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	run := func() (model.DelegatedProfile, error) {
		return p.authenticate(ctx, code)
	}

	var (
		profile model.DelegatedProfile
		err     error
	)
	if p.breaker != nil {
		profile, err = p.breaker.Execute(run)
	} else {
		profile, err = run()
	}
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			return model.DelegatedProfile{}, err
		}
		return model.DelegatedProfile{}, apierror.Provider("GitHub authentication failed", err)
	}

	return profile, nil
}

func (p *GitHubProvider) authenticate(ctx context.Context, code string) (model.DelegatedProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return model.DelegatedProfile{}, apierror.Provider("Error fetching access token from GitHub.", err)
	}
	if tok.AccessToken == "" {
		return model.DelegatedProfile{}, apierror.Provider("Error fetching access token from GitHub.", nil)
	}

	client := p.oauth.Client(ctx, tok)

	var user githubUser
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return model.DelegatedProfile{}, err
	}

	email := strings.TrimSpace(user.Email)
	if email == "" {
		email, err = p.primaryEmail(ctx, client)
		if err != nil {
			return model.DelegatedProfile{}, err
		}
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	p.logger.DebugContext(ctx, "github profile resolved", slog.Int64("github_id", user.ID))

	return model.DelegatedProfile{
		Provider: ProviderGitHub,
		Subject:  strconv.FormatInt(user.ID, 10),
		Email:    email,
		Name:     name,
	}, nil
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// primaryEmail covers accounts whose public profile hides the address.
func (p *GitHubProvider) primaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []githubEmail
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified && e.Email != "" {
			return e.Email, nil
		}
	}

	return "", apierror.Provider("GitHub account has no verified primary e-mail", nil)
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("build github request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return apierror.Provider("GitHub API unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apierror.Provider("GitHub API request failed",
			fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes)).Decode(dst); err != nil {
		return apierror.Provider("GitHub API returned an invalid body", err)
	}

	return nil
}
