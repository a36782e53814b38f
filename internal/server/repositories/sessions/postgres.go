// Package sessions persists client sessions.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/dmitrijs2005/upscaler/internal/dbx"
	"github.com/dmitrijs2005/upscaler/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Ensure inserts the session unless it already exists.
func (r *PostgresRepository) Ensure(ctx context.Context, s *models.Session) error {
	query :=
		`INSERT INTO sessions (id, created_at, last_seen_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, s.ID, s.CreatedAt, s.LastSeenAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Touch moves last_seen_at forward. Exactly one row must be affected.
func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE sessions SET last_seen_at = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	query :=
		`SELECT id, created_at, last_seen_at FROM sessions
		 WHERE id = $1
		 `

	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.CreatedAt, &s.LastSeenAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
