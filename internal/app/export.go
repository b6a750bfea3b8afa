package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/guttosm/pricechart/config"
	"github.com/guttosm/pricechart/internal/export"
	"github.com/guttosm/pricechart/internal/logger"
	"github.com/guttosm/pricechart/internal/service"
	"github.com/guttosm/pricechart/internal/storage"
)

// ExportParams are the command line choices for export mode.
type ExportParams struct {
	Formats string // comma separated, e.g. "csv,parquet"
	OutDir  string
	Force   bool
}

// RunExport aggregates the configured source once and writes the result in
// every requested format. A database connection is opened only when the
// postgres format is requested.
func RunExport(ctx context.Context, cfg config.Config, p ExportParams) error {
	formats, err := export.ParseFormats(p.Formats)
	if err != nil {
		return err
	}

	file := NewSource(cfg)
	if err := file.Check(); err != nil {
		return err
	}

	svc := service.NewPriceService(file, AggregateOptions(cfg))
	res, err := svc.Monthly(ctx, nil)
	if err != nil {
		return err
	}

	var repo storage.MonthlyRepository
	if slices.Contains(formats, export.FormatPostgres) {
		db, err := postgresOpener(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize postgres: %w", err)
		}
		defer func() { _ = db.Close() }()
		repo = storage.NewMonthlyRepository(db)
	}

	logger.L().Info().
		Str("source", file.Path).
		Int("kept", res.Kept()).
		Int("dropped", len(res.Dropped)).
		Int("out_of_range", res.OutOfRange).
		Msg("aggregation complete")

	return export.Run(ctx, res, export.Options{
		Formats: formats,
		OutDir:  p.OutDir,
		Source:  file.Path,
		Force:   p.Force,
	}, repo)
}
