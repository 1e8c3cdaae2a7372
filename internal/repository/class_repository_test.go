package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassRepositoryResolveOrCreateInserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("INSERT INTO classes").
		WithArgs(sqlmock.AnyArg(), "6A", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow("class-1", "6A", time.Now()))

	class, created, err := repo.ResolveOrCreate(context.Background(), "6A")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "class-1", class.ID)
	assert.Equal(t, "6A", class.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryResolveOrCreateFallsBackToExisting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	// ON CONFLICT DO NOTHING returns no row when the name already exists
	mock.ExpectQuery("INSERT INTO classes").
		WithArgs(sqlmock.AnyArg(), "6A", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}))
	mock.ExpectQuery("SELECT id, name, created_at FROM classes WHERE name").
		WithArgs("6A").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow("class-existing", "6A", time.Now()))

	class, created, err := repo.ResolveOrCreate(context.Background(), "6A")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "class-existing", class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListNames(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("SELECT name FROM classes ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("6A").AddRow("6B"))

	names, err := repo.ListNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"6A", "6B"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}
