package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

const userSelect = `SELECT id, email, password_hash, name, role, avatar_url, last_login, created_at, updated_at FROM users`

var userSortColumns = []string{"email", "name", "role", "created_at", "last_login"}

// UserRepository reads and writes accounts. Emails are stored lower-cased
// and looked up case-insensitively.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository binds the repository to db.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) one(ctx context.Context, op, where string, arg interface{}) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, userSelect+" WHERE "+where+" LIMIT 1", arg)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, sql.ErrNoRows
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// FindByEmail looks an account up by address, ignoring case.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.one(ctx, "find user by email", "LOWER(email) = LOWER($1)", email)
}

// FindByID returns sql.ErrNoRows for unknown ids.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.one(ctx, "find user by id", "id = $1", id)
}

// List pages through accounts filtered by role and a name or email search.
func (r *UserRepository) List(ctx context.Context, opts models.UserFilter) ([]models.User, int, error) {
	var f filter
	if opts.Role != nil {
		f.add("role = ?", *opts.Role)
	}
	f.contains(opts.Search, "email", "name")

	order := orderBy(opts.SortBy, opts.SortOrder, userSortColumns, "created_at")
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, userSelect+f.where()+order+page(opts.Page, opts.PageSize), f.args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"+f.where(), f.args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

// CountByRole feeds the admin dashboard.
func (r *UserRepository) CountByRole(ctx context.Context) ([]models.RoleCount, error) {
	var counts []models.RoleCount
	if err := r.db.SelectContext(ctx, &counts, `SELECT role, COUNT(*) AS total FROM users GROUP BY role ORDER BY role`); err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	return counts, nil
}

// Create assigns an id when missing and stamps both timestamps. A taken
// email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO users (id, email, password_hash, name, role, avatar_url, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :name, :role, :avatar_url, :created_at, :updated_at)`, user)
	if err != nil {
		return classify("create user", err)
	}
	return nil
}

// Update writes name, role and avatar.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	_, err := r.db.NamedExecContext(ctx, `UPDATE users SET name = :name, role = :role, avatar_url = :avatar_url, updated_at = :updated_at WHERE id = :id`, user)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateLastLogin records a successful sign-in.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.touch(ctx, "update last login", `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`, id, at)
}

// UpdatePassword stores a new bcrypt hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return r.touch(ctx, "update password", `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, passwordHash, updatedAt)
}

// Delete removes an account; its enrollments and submissions cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.touch(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

// touch runs a single-row statement, mapping zero affected rows to
// sql.ErrNoRows.
func (r *UserRepository) touch(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
