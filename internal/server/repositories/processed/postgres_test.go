package processed

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/upscaler/internal/server/models"
	"github.com/google/go-cmp/cmp"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var processedAt = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func sample() *models.ProcessedAsset {
	return &models.ProcessedAsset{
		ID:           "p1",
		SessionID:    "s1",
		SourceID:     "a1",
		FileName:     "cat.png",
		MimeType:     "image/png",
		Width:        100,
		Height:       50,
		ByteSize:     2048,
		ScaleFactor:  2,
		Algorithm:    "bicubic",
		Quality:      90,
		ResultWidth:  200,
		ResultHeight: 100,
		ProcessedAt:  processedAt,
	}
}

func sampleArgs(p *models.ProcessedAsset) []any {
	return []any{p.ID, p.SessionID, p.SourceID, p.FileName, p.MimeType, p.Width, p.Height, p.ByteSize,
		p.ScaleFactor, p.Algorithm, p.Quality, p.ResultWidth, p.ResultHeight, p.ProcessedAt}
}

const insertQ = `(?s)^\s*INSERT\s+INTO\s+processed_assets\b.*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE\s+SET\b.*;\s*$`

func toDriverArgs(args []any) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func TestSave_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	p := sample()
	mock.ExpectExec(insertQ).
		WithArgs(toDriverArgs(sampleArgs(p))...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSave_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).WillReturnError(errors.New("db down"))

	err := repo.Save(context.Background(), sample())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSave_RowsAffectedErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))

	err := repo.Save(context.Background(), sample())
	if err == nil || !regexp.MustCompile(`rows affected error: .*rows-err`).MatchString(err.Error()) {
		t.Fatalf("expected rows affected error, got %v", err)
	}
}

func TestSave_UnexpectedRowsAffected(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), sample())
	if err == nil || !regexp.MustCompile(`unexpected rows affected: 0`).MatchString(err.Error()) {
		t.Fatalf("expected unexpected rows affected error, got %v", err)
	}
}

var selectQ = `SELECT id, session_id, source_id, file_name, mime_type, width, height, byte_size,\s+scale_factor, algorithm, quality, result_width, result_height, processed_at\s+FROM processed_assets\s+WHERE session_id=\$1\s+ORDER BY processed_at, id`

var columns = []string{"id", "session_id", "source_id", "file_name", "mime_type", "width", "height", "byte_size",
	"scale_factor", "algorithm", "quality", "result_width", "result_height", "processed_at"}

func TestListBySession_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	p := sample()
	second := sample()
	second.ID = "p2"
	second.Algorithm = "lanczos"
	second.ProcessedAt = processedAt.Add(time.Minute)

	rows := sqlmock.NewRows(columns)
	for _, r := range []*models.ProcessedAsset{p, second} {
		vals := make([]driver.Value, 0, len(columns))
		for _, a := range sampleArgs(r) {
			vals = append(vals, a)
		}
		rows.AddRow(vals...)
	}
	mock.ExpectQuery(selectQ).WithArgs("s1").WillReturnRows(rows)

	got, err := repo.ListBySession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]*models.ProcessedAsset{p, second}, got); diff != "" {
		t.Fatalf("ListBySession mismatch (-want +got):\n%s", diff)
	}
}

func TestListBySession_QueryErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQ).WithArgs("s1").WillReturnError(errors.New("db err"))

	_, err := repo.ListBySession(context.Background(), "s1")
	if err == nil || !regexp.MustCompile(`failed to select processed assets: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}

func TestListBySession_ScanErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id"}).AddRow("p1")
	mock.ExpectQuery(selectQ).WithArgs("s1").WillReturnRows(rows)

	if _, err := repo.ListBySession(context.Background(), "s1"); err == nil {
		t.Fatal("expected scan error")
	}
}

func TestListBySession_RowsErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	vals := make([]driver.Value, 0, len(columns))
	for _, a := range sampleArgs(sample()) {
		vals = append(vals, a)
	}
	rows := sqlmock.NewRows(columns).AddRow(vals...).RowError(0, errors.New("row-broken"))
	mock.ExpectQuery(selectQ).WithArgs("s1").WillReturnRows(rows)

	_, err := repo.ListBySession(context.Background(), "s1")
	if err == nil || !regexp.MustCompile(`row-broken`).MatchString(err.Error()) {
		t.Fatalf("expected rows error, got %v", err)
	}
}

func TestDeleteBySession(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `DELETE FROM processed_assets WHERE session_id=\$1`
	mock.ExpectExec(q).WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q).WithArgs("s2").WillReturnError(errors.New("locked"))
	mock.ExpectExec(q).WithArgs("s3").WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))

	n, err := repo.DeleteBySession(context.Background(), "s1")
	if err != nil || n != 3 {
		t.Fatalf("want 3 rows, got %d, %v", n, err)
	}
	if _, err := repo.DeleteBySession(context.Background(), "s2"); err == nil {
		t.Fatal("expected delete error")
	}
	if _, err := repo.DeleteBySession(context.Background(), "s3"); err == nil {
		t.Fatal("expected rows affected error")
	}
}
