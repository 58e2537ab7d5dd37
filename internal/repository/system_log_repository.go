package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

const systemLogSelect = `SELECT id, user_id, action, resource, resource_id, details, ip_address, created_at FROM system_logs`

// SystemLogRepository stores the administrative activity trail.
type SystemLogRepository struct {
	db *sqlx.DB
}

// NewSystemLogRepository constructs the repository.
func NewSystemLogRepository(db *sqlx.DB) *SystemLogRepository {
	return &SystemLogRepository{db: db}
}

// Create stores a log entry.
func (r *SystemLogRepository) Create(ctx context.Context, log *models.SystemLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if len(log.Details) == 0 {
		log.Details = types.JSONText("{}")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO system_logs (id, user_id, action, resource, resource_id, details, ip_address, created_at)
VALUES (:id, :user_id, :action, :resource, :resource_id, :details, :ip_address, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create system log: %w", err)
	}
	return nil
}

// List returns log entries newest first with total count.
func (r *SystemLogRepository) List(ctx context.Context, opts models.SystemLogFilter) ([]models.SystemLog, int, error) {
	var f filter
	if opts.Action != "" {
		f.add("action = ?", opts.Action)
	}
	if opts.UserID != "" {
		f.add("user_id = ?", opts.UserID)
	}

	var logs []models.SystemLog
	if err := r.db.SelectContext(ctx, &logs, systemLogSelect+f.where()+" ORDER BY created_at DESC"+page(opts.Page, opts.PageSize), f.args...); err != nil {
		return nil, 0, fmt.Errorf("list system logs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM system_logs"+f.where(), f.args...); err != nil {
		return nil, 0, fmt.Errorf("count system logs: %w", err)
	}
	return logs, total, nil
}
