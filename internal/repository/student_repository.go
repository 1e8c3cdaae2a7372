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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ResolveOrCreate returns the student with the given full name, creating the
// record when absent. The second return value reports whether a row was
// created.
func (r *StudentRepository) ResolveOrCreate(ctx context.Context, fullName string) (*models.Student, bool, error) {
	student := models.Student{ID: uuid.NewString(), FullName: fullName, CreatedAt: time.Now().UTC()}
	const insert = `INSERT INTO students (id, full_name, created_at) VALUES ($1, $2, $3)
        ON CONFLICT (full_name) DO NOTHING RETURNING id, full_name, created_at`
	err := r.db.GetContext(ctx, &student, insert, student.ID, student.FullName, student.CreatedAt)
	if err == nil {
		return &student, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("create student: %w", err)
	}

	const query = `SELECT id, full_name, created_at FROM students WHERE full_name = $1`
	var existing models.Student
	if err := r.db.GetContext(ctx, &existing, query, fullName); err != nil {
		return nil, false, fmt.Errorf("find student: %w", err)
	}
	return &existing, false, nil
}
