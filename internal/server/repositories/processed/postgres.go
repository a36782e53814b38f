// Package processed persists processed-asset metadata. Result bytes are
// never stored.
package processed

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/upscaler/internal/dbx"
	"github.com/dmitrijs2005/upscaler/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save inserts a processed record. Saving the same id twice overwrites the
// earlier row.
func (r *PostgresRepository) Save(ctx context.Context, p *models.ProcessedAsset) error {
	query := `
		INSERT INTO processed_assets (id, session_id, source_id, file_name, mime_type, width, height, byte_size,
			scale_factor, algorithm, quality, result_width, result_height, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id)
		DO UPDATE SET
			file_name = EXCLUDED.file_name,
			scale_factor = EXCLUDED.scale_factor,
			algorithm = EXCLUDED.algorithm,
			quality = EXCLUDED.quality,
			result_width = EXCLUDED.result_width,
			result_height = EXCLUDED.result_height,
			processed_at = EXCLUDED.processed_at;
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.SessionID, p.SourceID, p.FileName, p.MimeType, p.Width, p.Height, p.ByteSize,
		p.ScaleFactor, p.Algorithm, p.Quality, p.ResultWidth, p.ResultHeight, p.ProcessedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// ListBySession returns the session's records, oldest first.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.ProcessedAsset, error) {
	query := `SELECT id, session_id, source_id, file_name, mime_type, width, height, byte_size,
		scale_factor, algorithm, quality, result_width, result_height, processed_at
		FROM processed_assets
		WHERE session_id=$1
		ORDER BY processed_at, id
		`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select processed assets: %w", err)
	}
	defer rows.Close()

	var result []*models.ProcessedAsset
	for rows.Next() {
		var p models.ProcessedAsset
		if err := rows.Scan(&p.ID, &p.SessionID, &p.SourceID, &p.FileName, &p.MimeType, &p.Width, &p.Height, &p.ByteSize,
			&p.ScaleFactor, &p.Algorithm, &p.Quality, &p.ResultWidth, &p.ResultHeight, &p.ProcessedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteBySession removes every record of the session and returns the count.
func (r *PostgresRepository) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM processed_assets WHERE session_id=$1`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed assets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
