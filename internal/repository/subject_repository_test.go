package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectRepositoryDuration(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("SELECT duration, duration_unit FROM subjects WHERE id = $1")
	mock.ExpectQuery(query).WithArgs(int64(1860)).
		WillReturnRows(sqlmock.NewRows([]string{"duration", "duration_unit"}).AddRow(8, "weeks"))
	mock.ExpectQuery(query).WithArgs(int64(1861)).
		WillReturnRows(sqlmock.NewRows([]string{"duration", "duration_unit"}).AddRow(nil, nil))
	mock.ExpectQuery(query).WithArgs(int64(1862)).
		WillReturnError(sql.ErrNoRows)

	duration, err := repo.Duration(ctx, 1860)
	require.NoError(t, err)
	require.NotNil(t, duration.Amount)
	require.NotNil(t, duration.Unit)
	assert.Equal(t, 8, *duration.Amount)
	assert.Equal(t, "weeks", *duration.Unit)

	duration, err = repo.Duration(ctx, 1861)
	require.NoError(t, err)
	require.NotNil(t, duration)
	assert.Nil(t, duration.Amount)
	assert.Nil(t, duration.Unit)

	duration, err = repo.Duration(ctx, 1862)
	require.NoError(t, err)
	assert.Nil(t, duration)

	require.NoError(t, mock.ExpectationsWereMet())
}
