package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	Update(ctx context.Context, user *models.User) error
}

// Session is a freshly issued session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      models.SessionUser
}

// AuthService provides credential login and self-service account use cases.
type AuthService struct {
	repo      authUserRepository
	sessions  *SessionService
	activity  *SystemLogService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, sessions *SessionService, activity *SystemLogService, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AuthService{repo: repo, sessions: sessions, activity: activity, validator: validate, logger: logger}
}

// Login authenticates by email and password and opens a session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	req.Email = normaliseEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}

	if user.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	session, err := s.OpenSession(ctx, user, Actor{IP: req.IP}, "password")
	if err != nil {
		return nil, err
	}
	return session, nil
}

// OpenSession issues a session for an already authenticated user.
func (s *AuthService) OpenSession(ctx context.Context, user *models.User, actor Actor, method string) (*Session, error) {
	token, expiresAt, err := s.sessions.Issue(user)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	if actor.Claims == nil {
		actor.Claims = &models.SessionClaims{User: models.SessionUser{ID: user.ID, Role: user.Role}}
	}
	s.activity.Record(ctx, actor, models.ActionLogin, "auth", user.ID, map[string]string{"method": method})

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      models.SessionUser{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
	}, nil
}

// Logout records the end of a session. The cookie itself is cleared by the caller.
func (s *AuthService) Logout(ctx context.Context, actor Actor) {
	if actor.Claims == nil {
		return
	}
	s.activity.Record(ctx, actor, models.ActionLogout, "auth", actor.Claims.User.ID, nil)
}

// Me returns the stored profile of the session user.
func (s *AuthService) Me(ctx context.Context, claims *models.SessionClaims) (*models.User, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.repo.FindByID(ctx, claims.User.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, appErrors.Internal(err, "failed to fetch profile")
	}
	return user, nil
}

// UpdateProfile lets a user change their own display settings.
func (s *AuthService) UpdateProfile(ctx context.Context, claims *models.SessionClaims, req models.UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid profile payload")
	}
	user, err := s.Me(ctx, claims)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Internal(err, "failed to update profile")
	}
	return user, nil
}

// ChangePassword updates the user's password. Accounts without a password
// (Google-only) may set one without providing the old password.
func (s *AuthService) ChangePassword(ctx context.Context, actor Actor, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid password payload")
	}
	user, err := s.Me(ctx, actor.Claims)
	if err != nil {
		return err
	}
	if user.PasswordHash != nil {
		if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.OldPassword)) != nil {
			return appErrors.FieldError("old_password", "current password is incorrect")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash), time.Now().UTC()); err != nil {
		return appErrors.Internal(err, "failed to update password")
	}
	s.activity.Record(ctx, actor, models.ActionPasswordChange, "user", user.ID, nil)
	return nil
}
