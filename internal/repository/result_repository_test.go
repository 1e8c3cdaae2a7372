package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbayefall/palmares-api/internal/models"
)

func TestResultRepositoryUpsertInserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	pct := 85.5
	mock.ExpectQuery("INSERT INTO results").
		WithArgs(sqlmock.AnyArg(), "student-1", "year-1", "class-1", "section-1", &pct, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created"}).AddRow(true))

	created, err := repo.Upsert(context.Background(), &models.Result{
		StudentID:    "student-1",
		SchoolYearID: "year-1",
		ClassID:      "class-1",
		SectionID:    "section-1",
		Percentage:   &pct,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryUpsertUpdatesExisting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery("INSERT INTO results").
		WithArgs(sqlmock.AnyArg(), "student-1", "year-1", "class-2", "section-1", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created"}).AddRow(false))

	created, err := repo.Upsert(context.Background(), &models.Result{
		StudentID:    "student-1",
		SchoolYearID: "year-1",
		ClassID:      "class-2",
		SectionID:    "section-1",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	pct := 85.5
	rows := sqlmock.NewRows([]string{"id", "student_name", "percentage", "class_name", "section_name", "school_year", "imported_at"}).
		AddRow("result-1", "Awa Diop", &pct, "6A", "Science", "2023-2024", time.Now())
	mock.ExpectQuery("SELECT r.id, st.full_name AS student_name").
		WithArgs("6A", "2023-2024").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("6A", "2023-2024").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	details, total, err := repo.List(context.Background(), models.ResultFilter{Class: "6A", SchoolYear: "2023-2024"})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Awa Diop", details[0].StudentName)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListSearchUsesSingleArg(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery("SELECT r.id, st.full_name AS student_name").
		WithArgs("%diop%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_name", "percentage", "class_name", "section_name", "school_year", "imported_at"}))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("%diop%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	details, total, err := repo.List(context.Background(), models.ResultFilter{Search: "diop"})
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_name", "percentage", "class_name", "section_name", "school_year", "imported_at"}).
		AddRow("result-1", "Awa Diop", nil, "6A", "Science", "2023-2024", time.Now()).
		AddRow("result-2", "Moussa Fall", nil, "6A", "Science", "2023-2024", time.Now())
	mock.ExpectQuery("SELECT r.id, st.full_name AS student_name").
		WillReturnRows(rows)

	details, err := repo.ListAll(context.Background(), models.ResultFilter{})
	require.NoError(t, err)
	assert.Len(t, details, 2)
	assert.Nil(t, details[0].Percentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
