package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

// SessionConfig configures session token signing.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// SessionService issues and verifies the signed session token stored in the
// session cookie.
type SessionService struct {
	config SessionConfig
	now    func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(cfg SessionConfig) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &SessionService{config: cfg, now: time.Now}
}

// TTL is the lifetime of issued sessions.
func (s *SessionService) TTL() time.Duration { return s.config.TTL }

// Issue signs a session for user.
func (s *SessionService) Issue(user *models.User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, fmt.Errorf("user required")
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.config.TTL)
	claims := models.SessionClaims{
		User: models.SessionUser{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies a session token and returns its claims.
func (s *SessionService) Parse(token string) (*models.SessionClaims, error) {
	if token == "" {
		return nil, appErrors.ErrUnauthorized
	}
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.ErrUnauthorized.WithCause(err, "session expired")
		}
		return nil, appErrors.ErrUnauthorized.WithCause(err, "")
	}
	if claims.User.ID == "" || !claims.User.Role.Valid() {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}
