package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

// MaterialRepository persists course materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs the repository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create inserts a material.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	material.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO materials (id, course_id, title, type, url, created_at) VALUES (:id, :course_id, :title, :type, :url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return classify("create material", err)
	}
	return nil
}

// ListByCourse returns a course's materials, newest first.
func (r *MaterialRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Material, error) {
	var items []models.Material
	const query = `SELECT id, course_id, title, type, url, created_at FROM materials WHERE course_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &items, query, courseID); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return items, nil
}
