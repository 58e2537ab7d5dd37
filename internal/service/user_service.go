package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/repository"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// UserService handles user management for admins.
type UserService struct {
	repo      userRepository
	activity  *SystemLogService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, activity *SystemLogService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &UserService{repo: repo, activity: activity, validator: validate, logger: logger}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, appErrors.FieldError("role", "role must be one of: admin teacher student")
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list users")
	}
	page, size := normalisePage(filter.Page, filter.PageSize)
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return user, nil
}

// Create adds a user. Without a password the account can only sign in with Google.
func (s *UserService) Create(ctx context.Context, actor Actor, req models.CreateUserRequest) (*models.User, error) {
	req.Email = normaliseEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid create user payload")
	}

	user := &models.User{Email: req.Email, Name: req.Name, Role: req.Role}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to hash password")
		}
		encoded := string(hash)
		user.PasswordHash = &encoded
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.Internal(err, "failed to create user")
	}

	s.activity.Record(ctx, actor, models.ActionUserCreate, "user", user.ID, map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})
	return user, nil
}

// Update modifies a user's name or role.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, req models.UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid update user payload")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
		changes["name"] = user.Name
	}
	if req.Role != nil && *req.Role != user.Role {
		changes["role"] = map[string]models.UserRole{"from": user.Role, "to": *req.Role}
		user.Role = *req.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Internal(err, "failed to update user")
	}
	s.activity.Record(ctx, actor, models.ActionUserUpdate, "user", user.ID, changes)
	return user, nil
}

// Delete removes a user permanently. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.Claims != nil && actor.Claims.User.ID == id {
		return appErrors.Clone(appErrors.ErrForbidden, "you cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Internal(err, "failed to delete user")
	}
	s.activity.Record(ctx, actor, models.ActionUserDelete, "user", id, nil)
	return nil
}
