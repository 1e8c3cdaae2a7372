package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mbayefall/palmares-api/internal/models"
)

// ResultRepository manages persistence for result facts.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs a ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert inserts the result for its (student, school year) pair or, when the
// pair already exists, updates class and section unconditionally and
// percentage only when the incoming value is non-nil. imported_at is written
// once at insert and never touched by the update arm. The return value
// reports whether a new row was inserted.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.Result) (bool, error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.ImportedAt.IsZero() {
		result.ImportedAt = time.Now().UTC()
	}
	const query = `INSERT INTO results (id, student_id, school_year_id, class_id, section_id, percentage, imported_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (student_id, school_year_id) DO UPDATE SET
            class_id = EXCLUDED.class_id,
            section_id = EXCLUDED.section_id,
            percentage = COALESCE(EXCLUDED.percentage, results.percentage)
        RETURNING (xmax = 0) AS created`
	var created bool
	err := r.db.GetContext(ctx, &created, query,
		result.ID,
		result.StudentID,
		result.SchoolYearID,
		result.ClassID,
		result.SectionID,
		result.Percentage,
		result.ImportedAt,
	)
	if err != nil {
		return false, fmt.Errorf("upsert result: %w", err)
	}
	return created, nil
}

// FindByStudentAndYear fetches the fact row for a (student, school year) pair.
func (r *ResultRepository) FindByStudentAndYear(ctx context.Context, studentID, schoolYearID string) (*models.Result, error) {
	const query = `SELECT id, student_id, school_year_id, class_id, section_id, percentage, imported_at
        FROM results WHERE student_id = $1 AND school_year_id = $2`
	var result models.Result
	if err := r.db.GetContext(ctx, &result, query, studentID, schoolYearID); err != nil {
		return nil, err
	}
	return &result, nil
}

const resultJoin = `FROM results r
        JOIN students st ON st.id = r.student_id
        JOIN classes c ON c.id = r.class_id
        JOIN sections sec ON sec.id = r.section_id
        JOIN school_years sy ON sy.id = r.school_year_id`

func buildResultConditions(filter models.ResultFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(st.full_name ILIKE $%d OR c.name ILIKE $%d OR sec.name ILIKE $%d OR sy.label ILIKE $%d)",
			idx, idx, idx, idx))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("c.name = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("sec.name = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.SchoolYear != "" {
		conditions = append(conditions, fmt.Sprintf("sy.label = $%d", len(args)+1))
		args = append(args, filter.SchoolYear)
	}

	return strings.Join(conditions, " AND "), args
}

// List returns result details matching the filter, ranked by percentage
// descending then student name, with the total match count for pagination.
func (r *ResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, int, error) {
	where, args := buildResultConditions(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 25
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT r.id, st.full_name AS student_name, r.percentage, c.name AS class_name,
        sec.name AS section_name, sy.label AS school_year, r.imported_at
        %s WHERE %s
        ORDER BY r.percentage DESC NULLS LAST, st.full_name ASC LIMIT %d OFFSET %d`, resultJoin, where, size, offset)

	var details []models.ResultDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", resultJoin, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}
	return details, total, nil
}

// ListAll returns every result detail matching the filter, unpaginated, for
// file exports.
func (r *ResultRepository) ListAll(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, error) {
	where, args := buildResultConditions(filter)
	query := fmt.Sprintf(`SELECT r.id, st.full_name AS student_name, r.percentage, c.name AS class_name,
        sec.name AS section_name, sy.label AS school_year, r.imported_at
        %s WHERE %s
        ORDER BY r.percentage DESC NULLS LAST, st.full_name ASC`, resultJoin, where)

	var details []models.ResultDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("export results: %w", err)
	}
	return details, nil
}
