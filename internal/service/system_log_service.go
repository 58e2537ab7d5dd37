package service

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type systemLogRepository interface {
	Create(ctx context.Context, log *models.SystemLog) error
	List(ctx context.Context, filter models.SystemLogFilter) ([]models.SystemLog, int, error)
}

// Actor identifies who performed a logged action.
type Actor struct {
	Claims *models.SessionClaims
	IP     string
}

// SystemLogService records and lists the activity trail. Recording never
// fails the caller.
type SystemLogService struct {
	repo   systemLogRepository
	logger *zap.Logger
}

// NewSystemLogService constructs a SystemLogService.
func NewSystemLogService(repo systemLogRepository, logger *zap.Logger) *SystemLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemLogService{repo: repo, logger: logger}
}

// Record stores an entry; failures are logged as warnings.
func (s *SystemLogService) Record(ctx context.Context, actor Actor, action, resource, resourceID string, details interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &models.SystemLog{Action: action, Resource: resource, IPAddress: actor.IP}
	if actor.Claims != nil {
		id := actor.Claims.User.ID
		entry.UserID = &id
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			s.logger.Warn("failed to encode system log details", zap.String("action", action), zap.Error(err))
		} else {
			entry.Details = types.JSONText(raw)
		}
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record system log", zap.String("action", action), zap.String("resource", resource), zap.Error(err))
	}
}

// List returns recent activity with pagination.
func (s *SystemLogService) List(ctx context.Context, filter models.SystemLogFilter) ([]models.SystemLog, *models.Pagination, error) {
	page, size := normalisePage(filter.Page, filter.PageSize)
	if s == nil || s.repo == nil {
		return []models.SystemLog{}, &models.Pagination{Page: page, PageSize: size}, nil
	}
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list system logs")
	}
	if logs == nil {
		logs = []models.SystemLog{}
	}
	return logs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func normalisePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
