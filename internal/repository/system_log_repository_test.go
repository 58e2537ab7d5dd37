package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

func TestSystemLogRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSystemLogRepository(db)

	mock.ExpectExec("INSERT INTO system_logs").WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.SystemLog{Action: models.ActionUserCreate, Resource: "user", Details: types.JSONText(`{"email":"a@uni.edu"}`)}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSystemLogRepositoryListByAction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSystemLogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM system_logs WHERE action = $1 ORDER BY created_at DESC LIMIT 5 OFFSET 5")).
		WithArgs(models.ActionEnroll).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "resource", "resource_id", "details", "ip_address", "created_at"}).
			AddRow("l-1", "u-1", models.ActionEnroll, "enrollment", "e-1", []byte(`{}`), "127.0.0.1", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM system_logs WHERE action = $1")).
		WithArgs(models.ActionEnroll).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	logs, total, err := repo.List(context.Background(), models.SystemLogFilter{Action: models.ActionEnroll, Page: 2, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 6, total)
}
