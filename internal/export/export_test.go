package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/guttosm/pricechart/internal/domain/models"
)

// fakeRepo implements storage.MonthlyRepository in memory.
type fakeRepo struct {
	mu        sync.Mutex
	exported  map[string]bool
	replaced  int
	upserts   int
	replErr   error
	hasErr    error
	lastCount int
}

func (f *fakeRepo) ReplaceBuckets(_ context.Context, _ string, buckets []models.MonthlyBucket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replErr != nil {
		return f.replErr
	}
	f.replaced++
	f.lastCount = len(buckets)
	return nil
}

func (f *fakeRepo) HasExport(_ context.Context, source, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasErr != nil {
		return false, f.hasErr
	}
	return f.exported[source+"|"+fingerprint], nil
}

func (f *fakeRepo) UpsertExportLog(_ context.Context, source, fingerprint string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exported == nil {
		f.exported = map[string]bool{}
	}
	f.exported[source+"|"+fingerprint] = true
	f.upserts++
	return nil
}

func sampleResult() *models.MonthlyResult {
	jan := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	return &models.MonthlyResult{
		Buckets: []models.MonthlyBucket{
			{Month: jan, Close: 105, Open: 95, Volume: 3e6, ScaledVolume: 3, Count: 2},
			{Month: feb, Close: 120.5, Open: 115, Volume: 1e6, ScaledVolume: 1, Count: 1},
		},
	}
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tsla.csv")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return p
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "single", in: "csv", want: []string{"csv"}},
		{name: "mixed case and spaces", in: " JSON , parquet", want: []string{"json", "parquet"}},
		{name: "duplicates", in: "csv,csv,postgres", want: []string{"csv", "postgres"}},
		{name: "unknown", in: "csv,xml", wantErr: true},
		{name: "empty", in: " , ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormats(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Fatalf("want ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleResult().Buckets)
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if rows[0].Month != "2021-01" || rows[1].Month != "2021-02" {
		t.Fatalf("unexpected month labels: %q %q", rows[0].Month, rows[1].Month)
	}
	if !rows[0].MonthTime().Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp does not round trip: %v", rows[0].MonthTime())
	}
	if rows[0].Count != 2 || rows[0].ScaledVolume != 3 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestRun_FileFormats(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "out")
	opts := Options{Formats: []string{FormatCSV, FormatJSON, FormatParquet}, OutDir: out}

	if err := Run(context.Background(), sampleResult(), opts, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// csv
	f, err := os.Open(filepath.Join(out, "monthly.csv"))
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 || records[0][0] != "month" || records[2][0] != "2021-02" || records[2][2] != "120.5" {
		t.Fatalf("unexpected csv: %v", records)
	}

	// json
	b, err := os.ReadFile(filepath.Join(out, "monthly.json"))
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var fromJSON []Row
	if err := json.Unmarshal(b, &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(fromJSON) != 2 || fromJSON[1].Close != 120.5 {
		t.Fatalf("unexpected json rows: %+v", fromJSON)
	}

	// parquet
	fromParquet, err := parquet.ReadFile[Row](filepath.Join(out, "monthly.parquet"))
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	if len(fromParquet) != 2 || fromParquet[0].Month != "2021-01" || fromParquet[0].Volume != 3e6 {
		t.Fatalf("unexpected parquet rows: %+v", fromParquet)
	}
}

func TestRun_EmptyResultWritesEmptyArray(t *testing.T) {
	out := t.TempDir()
	if err := Run(context.Background(), nil, Options{Formats: []string{FormatJSON}, OutDir: out}, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(out, "monthly.json"))
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if string(b) != "[]\n" {
		t.Fatalf("want empty array, got %q", b)
	}
}

func TestRun_PostgresRequiresRepository(t *testing.T) {
	err := Run(context.Background(), sampleResult(), Options{Formats: []string{FormatPostgres}}, nil)
	if !errors.Is(err, ErrNoRepository) {
		t.Fatalf("want ErrNoRepository, got %v", err)
	}
}

func TestRun_UnknownFormat(t *testing.T) {
	err := Run(context.Background(), sampleResult(), Options{Formats: []string{"xml"}, OutDir: t.TempDir()}, nil)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("want ErrUnknownFormat, got %v", err)
	}
}

func TestRun_PostgresIdempotent(t *testing.T) {
	src := writeSource(t, "Price,Close\n")
	repo := &fakeRepo{}
	opts := Options{Formats: []string{FormatPostgres}, Source: src}

	if err := Run(context.Background(), sampleResult(), opts, repo); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if repo.replaced != 1 || repo.upserts != 1 || repo.lastCount != 2 {
		t.Fatalf("first run: replaced=%d upserts=%d count=%d", repo.replaced, repo.upserts, repo.lastCount)
	}

	// same content: skipped
	if err := Run(context.Background(), sampleResult(), opts, repo); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if repo.replaced != 1 {
		t.Fatalf("second run should skip, replaced=%d", repo.replaced)
	}

	// force rewrites
	opts.Force = true
	if err := Run(context.Background(), sampleResult(), opts, repo); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if repo.replaced != 2 || repo.upserts != 2 {
		t.Fatalf("forced run: replaced=%d upserts=%d", repo.replaced, repo.upserts)
	}
}

func TestRun_PostgresErrors(t *testing.T) {
	src := writeSource(t, "Price,Close\n")

	tests := []struct {
		name string
		repo *fakeRepo
		src  string
	}{
		{name: "has export fails", repo: &fakeRepo{hasErr: errors.New("db down")}, src: src},
		{name: "replace fails", repo: &fakeRepo{replErr: errors.New("copy failed")}, src: src},
		{name: "missing source", repo: &fakeRepo{}, src: filepath.Join(t.TempDir(), "missing.csv")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Run(context.Background(), sampleResult(), Options{Formats: []string{FormatPostgres}, Source: tt.src}, tt.repo)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.repo.upserts != 0 {
				t.Fatalf("export log must not be written on failure")
			}
		})
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, sampleResult(), Options{Formats: []string{FormatCSV}, OutDir: t.TempDir()}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	a := writeSource(t, "a")
	b := writeSource(t, "b")
	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	fa2, _ := Fingerprint(a)
	fb, _ := Fingerprint(b)
	if fa != fa2 || fa == fb || len(fa) != 64 {
		t.Fatalf("unexpected fingerprints: %s %s %s", fa, fa2, fb)
	}
}

func TestToPostgres_LogsSkip(t *testing.T) {
	src := writeSource(t, "Price,Close\n")
	repo := &fakeRepo{}
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	opts := Options{Formats: []string{FormatPostgres}, Source: src}

	if err := toPostgres(context.Background(), log, sampleResult().Buckets, opts, repo); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("first write should not log a skip: %s", buf.String())
	}

	if err := toPostgres(context.Background(), log, sampleResult().Buckets, opts, repo); err != nil {
		t.Fatalf("second write: %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	if line["message"] != "already exported" || line["skipped"] != true || line["source"] != "tsla.csv" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if repo.replaced != 1 {
		t.Fatalf("skip must not rewrite buckets, replaced=%d", repo.replaced)
	}
}
