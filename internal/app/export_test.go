package app

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guttosm/pricechart/config"
	"github.com/guttosm/pricechart/internal/export"
)

func TestRunExport_Files(t *testing.T) {
	cfg := testConfig(writePrices(t))
	out := t.TempDir()

	if err := RunExport(context.Background(), cfg, ExportParams{Formats: "csv,json", OutDir: out}); err != nil {
		t.Fatalf("RunExport: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(out, "monthly.csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	// 2021-01: mean close 105, mean volume 3e6 -> 3
	if !strings.Contains(string(b), "2021-01,") || !strings.Contains(string(b), ",105,") {
		t.Fatalf("unexpected csv:\n%s", b)
	}
	if _, err := os.Stat(filepath.Join(out, "monthly.json")); err != nil {
		t.Fatalf("json not written: %v", err)
	}
}

func TestRunExport_BadFormat(t *testing.T) {
	cfg := testConfig(writePrices(t))
	err := RunExport(context.Background(), cfg, ExportParams{Formats: "xml", OutDir: t.TempDir()})
	if !errors.Is(err, export.ErrUnknownFormat) {
		t.Fatalf("want ErrUnknownFormat, got %v", err)
	}
}

func TestRunExport_MissingSource(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.csv"))
	if err := RunExport(context.Background(), cfg, ExportParams{Formats: "csv", OutDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestRunExport_PostgresOpenError(t *testing.T) {
	old := postgresOpener
	postgresOpener = func(config.Config) (*sql.DB, error) { return nil, errors.New("no db") }
	t.Cleanup(func() { postgresOpener = old })

	cfg := testConfig(writePrices(t))
	if err := RunExport(context.Background(), cfg, ExportParams{Formats: "postgres"}); err == nil {
		t.Fatalf("expected error when postgres cannot be opened")
	}
}

func TestRunExport_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	old := postgresOpener
	postgresOpener = func(config.Config) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { postgresOpener = old })

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("prices.csv", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM monthly_prices WHERE source = $1")).
		WithArgs("prices.csv").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET LOCAL").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(".*")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1)) // 2021-01 is the only kept month
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO export_log").
		WithArgs("prices.csv", sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectClose()

	cfg := testConfig(writePrices(t))
	if err := RunExport(context.Background(), cfg, ExportParams{Formats: "postgres"}); err != nil {
		t.Fatalf("RunExport: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
