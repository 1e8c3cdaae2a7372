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

// SectionRepository manages persistence for section records.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// ResolveOrCreate returns the section with the given name, creating it when
// absent. The second return value reports whether a row was created.
func (r *SectionRepository) ResolveOrCreate(ctx context.Context, name string) (*models.Section, bool, error) {
	section := models.Section{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	const insert = `INSERT INTO sections (id, name, created_at) VALUES ($1, $2, $3)
        ON CONFLICT (name) DO NOTHING RETURNING id, name, created_at`
	err := r.db.GetContext(ctx, &section, insert, section.ID, section.Name, section.CreatedAt)
	if err == nil {
		return &section, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("create section: %w", err)
	}

	const query = `SELECT id, name, created_at FROM sections WHERE name = $1`
	var existing models.Section
	if err := r.db.GetContext(ctx, &existing, query, name); err != nil {
		return nil, false, fmt.Errorf("find section: %w", err)
	}
	return &existing, false, nil
}

// ListNames returns all section names ordered alphabetically.
func (r *SectionRepository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM sections ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return names, nil
}
