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

// SchoolYearRepository manages persistence for school year records.
type SchoolYearRepository struct {
	db *sqlx.DB
}

// NewSchoolYearRepository constructs a SchoolYearRepository.
func NewSchoolYearRepository(db *sqlx.DB) *SchoolYearRepository {
	return &SchoolYearRepository{db: db}
}

// ResolveOrCreate returns the school year with the given label, creating it
// when absent. The second return value reports whether a row was created.
// A concurrent INSERT racing on the same label is absorbed by the
// ON CONFLICT DO NOTHING clause and resolved by the follow-up SELECT.
func (r *SchoolYearRepository) ResolveOrCreate(ctx context.Context, label string) (*models.SchoolYear, bool, error) {
	year := models.SchoolYear{ID: uuid.NewString(), Label: label, CreatedAt: time.Now().UTC()}
	const insert = `INSERT INTO school_years (id, label, created_at) VALUES ($1, $2, $3)
        ON CONFLICT (label) DO NOTHING RETURNING id, label, created_at`
	err := r.db.GetContext(ctx, &year, insert, year.ID, year.Label, year.CreatedAt)
	if err == nil {
		return &year, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("create school year: %w", err)
	}

	const query = `SELECT id, label, created_at FROM school_years WHERE label = $1`
	var existing models.SchoolYear
	if err := r.db.GetContext(ctx, &existing, query, label); err != nil {
		return nil, false, fmt.Errorf("find school year: %w", err)
	}
	return &existing, false, nil
}

// ListLabels returns all school year labels, most recent first.
func (r *SchoolYearRepository) ListLabels(ctx context.Context) ([]string, error) {
	var labels []string
	if err := r.db.SelectContext(ctx, &labels, `SELECT label FROM school_years ORDER BY label DESC`); err != nil {
		return nil, fmt.Errorf("list school years: %w", err)
	}
	return labels, nil
}
