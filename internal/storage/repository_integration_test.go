//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/guttosm/pricechart/internal/domain/models"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "pricechart",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=pricechart sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", host, port.Port(), "pricechart")
	terminate = func() { _ = container.Terminate(context.Background()) }
	return dsn, terminate
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	// migrations path relative to this test file (internal/storage → ../../db/migrations)
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
}

func countBuckets(t *testing.T, db *sql.DB, source string) int {
	t.Helper()
	var cnt int
	if err := db.QueryRow("SELECT COUNT(*) FROM monthly_prices WHERE source=$1", source).Scan(&cnt); err != nil {
		t.Fatalf("count: %v", err)
	}
	return cnt
}

func TestRepository_Integration(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openDB(t, dsn)
	defer db.Close()
	runMigrations(t, db)

	repo := NewMonthlyRepository(db)
	ctx := context.Background()

	jan := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	first := []models.MonthlyBucket{
		{Month: jan, Close: 105, Open: 95, Volume: 3e6, ScaledVolume: 3, Count: 2},
		{Month: feb, Close: 120, Open: 115, Volume: 1e6, ScaledVolume: 1, Count: 1},
	}

	t.Run("replace loads all buckets", func(t *testing.T) {
		if err := repo.ReplaceBuckets(ctx, "tsla.csv", first); err != nil {
			t.Fatalf("replace: %v", err)
		}
		if got := countBuckets(t, db, "tsla.csv"); got != 2 {
			t.Fatalf("want 2 buckets, got %d", got)
		}
	})

	t.Run("replace drops previous buckets of the same source", func(t *testing.T) {
		if err := repo.ReplaceBuckets(ctx, "tsla.csv", first[:1]); err != nil {
			t.Fatalf("replace: %v", err)
		}
		if got := countBuckets(t, db, "tsla.csv"); got != 1 {
			t.Fatalf("want 1 bucket, got %d", got)
		}
		var avg float64
		if err := db.QueryRow("SELECT avg_close FROM monthly_prices WHERE source=$1 AND month=$2", "tsla.csv", jan).Scan(&avg); err != nil {
			t.Fatalf("select: %v", err)
		}
		if avg != 105 {
			t.Fatalf("avg_close=%v, want 105", avg)
		}
	})

	t.Run("export log upsert+exists", func(t *testing.T) {
		if err := repo.UpsertExportLog(ctx, "tsla.csv", "f1", 2); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if err := repo.UpsertExportLog(ctx, "tsla.csv", "f1", 3); err != nil {
			t.Fatalf("second upsert: %v", err)
		}
		ok, err := repo.HasExport(ctx, "tsla.csv", "f1")
		if err != nil || !ok {
			t.Fatalf("exists want true, got ok=%v err=%v", ok, err)
		}
		ok, err = repo.HasExport(ctx, "tsla.csv", "other")
		if err != nil || ok {
			t.Fatalf("exists want false, got ok=%v err=%v", ok, err)
		}
	})
}
