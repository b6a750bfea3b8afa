package storage

import (
	"context"
	"database/sql"

	"github.com/guttosm/pricechart/internal/domain/models"
	pq "github.com/lib/pq"
)

// MonthlyRepository defines contract for DB operations on monthly buckets.
type MonthlyRepository interface {
	ReplaceBuckets(ctx context.Context, source string, buckets []models.MonthlyBucket) error
	HasExport(ctx context.Context, source, fingerprint string) (bool, error)
	UpsertExportLog(ctx context.Context, source, fingerprint string, rowCount int) error
}

type monthlyRepository struct {
	db *sql.DB
}

func NewMonthlyRepository(db *sql.DB) MonthlyRepository {
	return &monthlyRepository{db: db}
}

// ReplaceBuckets deletes the stored buckets of source and bulk loads the
// new ones in a single transaction.
func (r *monthlyRepository) ReplaceBuckets(ctx context.Context, source string, buckets []models.MonthlyBucket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_prices WHERE source = $1`, source); err != nil {
		_ = tx.Rollback()
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"monthly_prices",
		"source",
		"month",
		"avg_close",
		"avg_open",
		"avg_volume",
		"scaled_volume",
		"record_count",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, b := range buckets {
		if _, err := stmt.ExecContext(ctx,
			source,
			b.Month,
			b.Close,
			b.Open,
			b.Volume,
			b.ScaledVolume,
			b.Count,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// HasExport checks whether this exact file content was already exported for source.
func (r *monthlyRepository) HasExport(ctx context.Context, source, fingerprint string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM export_log WHERE source = $1 AND fingerprint = $2)`,
		source, fingerprint,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertExportLog records (or refreshes) an export entry.
func (r *monthlyRepository) UpsertExportLog(ctx context.Context, source, fingerprint string, rowCount int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO export_log (source, fingerprint, row_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (source, fingerprint)
		DO UPDATE SET row_count = EXCLUDED.row_count,
					  exported_at = NOW()
	`, source, fingerprint, rowCount)
	return err
}
