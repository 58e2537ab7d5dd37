package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

// Redirect error codes reported to the browser as ?authError=<code>.
const (
	GoogleErrConfig        = "google_config"
	GoogleErrCancelled     = "google_cancelled"
	GoogleErrState         = "google_state"
	GoogleErrDomain        = "google_domain"
	GoogleErrNotRegistered = "google_not_registered"
	GoogleErrUnknown       = "google_unknown"
)

// GoogleAuthError carries the redirect code for a failed sign-in.
type GoogleAuthError struct {
	Code string
	Err  error
}

func (e *GoogleAuthError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *GoogleAuthError) Unwrap() error { return e.Err }

// GoogleErrorCode extracts the redirect code from err, defaulting to unknown.
func GoogleErrorCode(err error) string {
	var gErr *GoogleAuthError
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return GoogleErrUnknown
}

type googleUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// GoogleConfig configures the institutional Google sign-in.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Domain       string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Timeout      time.Duration
}

// GoogleAuthService runs the OAuth authorization code flow against Google
// and maps the verified profile onto an existing local user.
type GoogleAuthService struct {
	config GoogleConfig
	oauth  *oauth2.Config
	client *http.Client
	users  googleUserRepository
	logger *zap.Logger
}

// NewGoogleAuthService constructs a GoogleAuthService.
func NewGoogleAuthService(cfg GoogleConfig, users googleUserRepository, logger *zap.Logger) *GoogleAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.Domain = strings.ToLower(strings.TrimSpace(cfg.Domain))
	return &GoogleAuthService{
		config: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: &http.Client{Timeout: cfg.Timeout},
		users:  users,
		logger: logger,
	}
}

// Configured reports whether sign-in can be attempted.
func (s *GoogleAuthService) Configured() bool {
	c := s.config
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != "" && c.Domain != "" &&
		c.AuthURL != "" && c.TokenURL != "" && c.UserInfoURL != ""
}

// AuthCodeURL builds the provider authorization URL for state.
func (s *GoogleAuthService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("hd", s.config.Domain),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Authenticate exchanges code for a token, fetches the profile and resolves
// the local user. Every failure is a *GoogleAuthError.
func (s *GoogleAuthService) Authenticate(ctx context.Context, code string) (*models.User, error) {
	if !s.Configured() {
		return nil, &GoogleAuthError{Code: GoogleErrConfig}
	}
	if code == "" {
		return nil, &GoogleAuthError{Code: GoogleErrCancelled}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("google token exchange failed", zap.Error(err))
		return nil, &GoogleAuthError{Code: GoogleErrUnknown, Err: err}
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		s.logger.Warn("google profile fetch failed", zap.Error(err))
		return nil, &GoogleAuthError{Code: GoogleErrUnknown, Err: err}
	}

	email := normaliseEmail(profile.Email)
	if !profile.EmailVerified || !strings.HasSuffix(email, "@"+s.config.Domain) {
		s.logger.Info("google sign-in rejected by domain", zap.String("email", email), zap.Bool("verified", profile.EmailVerified))
		return nil, &GoogleAuthError{Code: GoogleErrDomain}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &GoogleAuthError{Code: GoogleErrNotRegistered}
		}
		return nil, &GoogleAuthError{Code: GoogleErrUnknown, Err: err}
	}
	return user, nil
}

func (s *GoogleAuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*models.GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	token.SetAuthHeader(req)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("userinfo status %d: %s", res.StatusCode, body)
	}

	var profile models.GoogleProfile
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &profile, nil
}
