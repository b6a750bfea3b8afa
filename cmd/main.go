package main

//
//  @title           pricechart API
//  @version         1.0
//  @description     Price file table, monthly chart and aggregates.
//  @termsOfService  https://github.com/guttosm/pricechart
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/pricechart
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        pages
//  @tag.description HTML table and chart pages
//
//  @tag.name        monthly
//  @tag.description Monthly aggregates of the price file
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/pricechart/config"
	_ "github.com/guttosm/pricechart/docs" // swagger docs
	"github.com/guttosm/pricechart/internal/app"
	"github.com/guttosm/pricechart/internal/logger"
	"github.com/guttosm/pricechart/internal/source"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the pricechart application.
//
// Modes (selected via --mode flag):
//   - api:    Serves the price table, the monthly chart and the JSON API.
//   - export: Aggregates once and writes the monthly buckets to files and/or PostgreSQL.
//
// Flags:
//   - --mode:   Execution mode ("api" or "export"). Default: "api".
//   - --port:   Port for the API server. Defaults to SERVER_PORT.
//   - --source: Price file. Defaults to SOURCE_PATH.
//   - --format: Export formats, comma separated (csv, json, parquet, postgres). Default: "csv".
//   - --out:    Output directory for file formats. Default: "./data/out".
//   - --force:  Rewrite PostgreSQL rows even if the same file was already exported.
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api or export")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	src := flag.String("source", config.AppConfig.Source.Path, "Path to the price CSV file")
	format := flag.String("format", "csv", "Export formats: csv,json,parquet,postgres")
	out := flag.String("out", "./data/out", "Output directory for export files")
	force := flag.Bool("force", false, "Rewrite exported rows even if this file was already exported")
	flag.Parse()

	cfg := config.AppConfig
	cfg.Source.Path = *src

	// The price file must be present before anything else runs.
	if err := source.Exists(cfg.Source.Path); err != nil {
		logger.L().Fatal().Err(err).Str("source", cfg.Source.Path).Msg("source file not found")
	}

	switch *mode {
	case "export":
		logger.L().Info().Str("format", *format).Str("out", *out).Msg("running export")

		if err := app.RunExport(ctx, cfg, app.ExportParams{Formats: *format, OutDir: *out, Force: *force}); err != nil {
			logger.L().Fatal().Err(err).Msg("export failed")
		}
		logger.L().Info().Msg("export completed successfully")

	case "api":
		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
