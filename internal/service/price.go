package service

import (
	"context"
	"fmt"

	"github.com/guttosm/pricechart/internal/aggregate"
	"github.com/guttosm/pricechart/internal/domain/models"
	"github.com/guttosm/pricechart/internal/logger"
)

// Source provides the current contents of the price file.
type Source interface {
	Load(ctx context.Context) (*models.Table, error)
}

// YearRange overrides the configured aggregation years for one call.
type YearRange struct {
	Start int
	End   int
}

// PriceService defines the read operations behind the HTTP handlers and
// the export mode. Every call reloads the source.
type PriceService interface {
	Table(ctx context.Context) (*models.Table, error)
	Monthly(ctx context.Context, years *YearRange) (*models.MonthlyResult, error)
	Options() aggregate.Options
}

type priceService struct {
	src  Source
	opts aggregate.Options
}

// NewPriceService returns a PriceService aggregating src with opts.
func NewPriceService(src Source, opts aggregate.Options) PriceService {
	return &priceService{src: src, opts: opts}
}

func (s *priceService) Options() aggregate.Options {
	return s.opts
}

func (s *priceService) Table(ctx context.Context) (*models.Table, error) {
	t, err := s.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	return t, nil
}

func (s *priceService) Monthly(ctx context.Context, years *YearRange) (*models.MonthlyResult, error) {
	opts := s.opts
	if years != nil {
		opts = opts.WithYears(years.Start, years.End)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}

	res, err := aggregate.Aggregate(t, opts)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	log := logger.Component("service")
	log.Debug().
		Int("rows", res.TotalRows).
		Int("kept", res.Kept()).
		Int("dropped", len(res.Dropped)).
		Int("out_of_range", res.OutOfRange).
		Int("months", len(res.Buckets)).
		Msg("monthly aggregation")
	if len(res.Dropped) > 0 {
		first := res.Dropped[0]
		log.Warn().
			Int("dropped", len(res.Dropped)).
			Int("first_row", first.Row).
			Str("first_reason", first.Reason).
			Msg("rows dropped during aggregation")
	}

	return res, nil
}
