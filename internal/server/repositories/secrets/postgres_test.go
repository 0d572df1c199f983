package secrets

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	upsertQ = `(?s)^\s*INSERT\s+INTO\s+secrets\s*\(email,\s*password,\s*nonce,\s*created_at,\s*expires_at,\s*retrieved\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*false\)\s*ON\s+CONFLICT\s*\(email\)\s+DO\s+UPDATE\s+SET.*retrieved\s*=\s*false\s*$`
	takeQ   = `(?s)^\s*DELETE\s+FROM\s+secrets\s+WHERE\s+email\s*=\s*\$1\s+RETURNING\s+email,\s*password,\s*nonce,\s*created_at,\s*expires_at,\s*retrieved\s*$`
	sweepQ  = `(?s)^\s*DELETE\s+FROM\s+secrets\s+WHERE\s+expires_at\s*<\s*\$1\s*$`
)

var now = time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestUpsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	s := &models.VaultedSecret{
		Email: "a@x.io", Password: []byte("ct"), Nonce: []byte("n"),
		CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	}

	mock.ExpectExec(upsertQ).
		WithArgs("a@x.io", []byte("ct"), []byte("n"), now, now.Add(10*time.Minute)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsertQ).WillReturnError(errors.New("db down"))

	require.NoError(t, repo.Upsert(context.Background(), s))

	err := repo.Upsert(context.Background(), s)
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTake(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(takeQ).
		WithArgs("a@x.io").
		WillReturnRows(sqlmock.NewRows([]string{"email", "password", "nonce", "created_at", "expires_at", "retrieved"}).
			AddRow("a@x.io", []byte("ct"), []byte("n"), now, now.Add(time.Minute), false))

	got, err := repo.Take(context.Background(), "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, []byte("ct"), got.Password)
	assert.True(t, got.ExpiresAt.Equal(now.Add(time.Minute)))
	assert.False(t, got.Retrieved)
}

func TestTake_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(takeQ).WithArgs("ghost@x.io").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(takeQ).WithArgs("a@x.io").WillReturnError(errors.New("db err"))

	_, err := repo.Take(context.Background(), "ghost@x.io")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Take(context.Background(), "a@x.io")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db err`, err.Error())
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(sweepQ).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(sweepQ).WithArgs(now).WillReturnError(errors.New("db err"))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = repo.DeleteExpired(context.Background(), now)
	require.Error(t, err)
}
