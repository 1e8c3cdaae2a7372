package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mbayefall/palmares-api/internal/models"
)

// ClassRepository manages persistence for class records.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ResolveOrCreate returns the class with the given name, creating it when
// absent. The second return value reports whether a row was created. Losing
// a creation race falls back to the existing row instead of surfacing a
// uniqueness error.
func (r *ClassRepository) ResolveOrCreate(ctx context.Context, name string) (*models.Class, bool, error) {
	class := models.Class{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	const insert = `INSERT INTO classes (id, name, created_at) VALUES ($1, $2, $3)
        ON CONFLICT (name) DO NOTHING RETURNING id, name, created_at`
	err := r.db.GetContext(ctx, &class, insert, class.ID, class.Name, class.CreatedAt)
	if err == nil {
		return &class, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("create class: %w", err)
	}

	const query = `SELECT id, name, created_at FROM classes WHERE name = $1`
	var existing models.Class
	if err := r.db.GetContext(ctx, &existing, query, name); err != nil {
		return nil, false, fmt.Errorf("find class: %w", err)
	}
	return &existing, false, nil
}

// ListNames returns all class names ordered alphabetically.
func (r *ClassRepository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM classes ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return names, nil
}
