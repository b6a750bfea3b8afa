package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pricechart/config"
	"github.com/guttosm/pricechart/internal/aggregate"
	"github.com/guttosm/pricechart/internal/api"
	"github.com/guttosm/pricechart/internal/chart"
	"github.com/guttosm/pricechart/internal/middleware"
	"github.com/guttosm/pricechart/internal/service"
	"github.com/guttosm/pricechart/internal/source"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Verifies the price file exists (fails fast otherwise).
//   - Builds the source loader and the price service from cfg.
//   - Creates the HTTP handler layer and the Gin router.
//   - Registers health and readiness probes; readiness re-checks the file.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp(cfg config.Config) (*gin.Engine, func(), error) {
	file := NewSource(cfg)
	if err := file.Check(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize source: %w", err)
	}

	svc := service.NewPriceService(file, AggregateOptions(cfg))

	chartOpts := chart.DefaultOptions()
	if cfg.Chart.Title != "" {
		chartOpts.Title = cfg.Chart.Title
	}
	handler := api.NewHandler(svc, chartOpts)

	middleware.ConfigureRateLimit(cfg.Server.RateLimit, cfg.Server.RateWindow)
	router := api.NewRouter(handler)

	healthHandler := api.NewHealthHandler(file.Check)
	healthHandler.Register(router)

	// Nothing is held open between requests.
	cleanup := func() {}

	return router, cleanup, nil
}

// NewSource builds the file loader described by cfg.Source.
func NewSource(cfg config.Config) *source.File {
	opts := source.DefaultOptions()
	if cfg.Source.Delimiter != 0 {
		opts.Comma = cfg.Source.Delimiter
	}
	opts.SkipRows = cfg.Source.SkipRows
	return source.NewFile(cfg.Source.Path, opts)
}

// AggregateOptions maps cfg.Aggregation onto aggregator options.
func AggregateOptions(cfg config.Config) aggregate.Options {
	opts := aggregate.DefaultOptions()
	opts.StartYear = cfg.Aggregation.StartYear
	opts.EndYear = cfg.Aggregation.EndYear
	opts.VolumeScale = cfg.Aggregation.VolumeScale
	return opts
}
