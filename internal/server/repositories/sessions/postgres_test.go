package sessions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/dmitrijs2005/upscaler/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

var now = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func TestEnsure(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)INSERT INTO sessions \(id, created_at, last_seen_at\).*ON CONFLICT \(id\) DO NOTHING`
	mock.ExpectExec(q).WithArgs("s1", now, now).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Ensure(context.Background(), &models.Session{ID: "s1", CreatedAt: now, LastSeenAt: now})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsure_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO sessions`).WillReturnError(errors.New("db down"))

	err := repo.Ensure(context.Background(), &models.Session{ID: "s1"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestTouch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE sessions SET last_seen_at = \$2 WHERE id = \$1`
	mock.ExpectExec(q).WithArgs("s1", now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("s2", now).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs("s3", now).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))

	require.NoError(t, repo.Touch(context.Background(), "s1", now))
	assert.ErrorIs(t, repo.Touch(context.Background(), "s2", now), common.ErrorNotFound)
	assert.ErrorContains(t, repo.Touch(context.Background(), "s3", now), "rows affected error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `SELECT id, created_at, last_seen_at FROM sessions\s+WHERE id = \$1`
	mock.ExpectQuery(q).WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "last_seen_at"}).AddRow("s1", now, now))
	mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WithArgs("boom").WillReturnError(errors.New("conn reset"))

	s, err := repo.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, &models.Session{ID: "s1", CreatedAt: now, LastSeenAt: now}, s)

	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Get(context.Background(), "boom")
	assert.ErrorContains(t, err, "db error")
}
