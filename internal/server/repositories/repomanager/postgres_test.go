package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/upscaler/internal/server/repositories/processed"
	"github.com/dmitrijs2005/upscaler/internal/server/repositories/sessions"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager()

	var _ sessions.Repository = m.Sessions(db)
	var _ processed.Repository = m.Processed(db)
	assert.NotNil(t, m.Sessions(db))
	assert.NotNil(t, m.Processed(db))
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	require.NoError(t, m.RunMigrations(context.Background(), db))
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	err := m.RunMigrations(context.Background(), db)
	require.EqualError(t, err, "boom")
}

func TestOpenPostgres(t *testing.T) {
	db, mock := newDB(t)

	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })

	sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
		assert.Equal(t, DriverName, driverName)
		return db, nil
	}
	mock.ExpectPing()

	got, err := OpenPostgres(context.Background(), "postgres://x")
	require.NoError(t, err)
	assert.Same(t, db, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenPostgres_PingError(t *testing.T) {
	db, mock := newDB(t)

	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })

	sqlOpen = func(driverName, dsn string) (*sql.DB, error) { return db, nil }
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	_, err := OpenPostgres(context.Background(), "postgres://x")
	require.ErrorContains(t, err, "ping db")
}

func TestOpenPostgres_OpenError(t *testing.T) {
	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })

	sqlOpen = func(driverName, dsn string) (*sql.DB, error) { return nil, errors.New("no driver") }

	_, err := OpenPostgres(context.Background(), "postgres://x")
	require.ErrorContains(t, err, "open db")
}
