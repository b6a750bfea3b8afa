package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/pricechart/internal/domain/models"
	"github.com/guttosm/pricechart/internal/logger"
	"github.com/guttosm/pricechart/internal/storage"
)

const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatParquet  = "parquet"
	FormatPostgres = "postgres"

	baseName = "monthly"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNoRepository  = errors.New("postgres export requires a repository")
)

// Options controls a single export run.
//
// Fields:
//   - Formats: output formats; see ParseFormats.
//   - OutDir:  directory for file formats, created if missing.
//   - Source:  path of the price file; its base name keys the postgres rows.
//   - Force:   rewrite postgres rows even if this content was already exported.
type Options struct {
	Formats []string
	OutDir  string
	Source  string
	Force   bool
}

// ParseFormats splits a comma-separated list, lowercases and de-duplicates
// it. An empty list or an unsupported entry is an error.
func ParseFormats(list string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.Split(list, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if f != FormatPostgres && NewSaver(f) == nil {
			return nil, fmt.Errorf("%w: %q (use: csv, json, parquet, postgres)", ErrUnknownFormat, f)
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty format list", ErrUnknownFormat)
	}
	return out, nil
}

// Fingerprint returns the hex sha256 of the file at path.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Run writes res in every requested format concurrently. The first failure
// cancels the remaining writers and is returned.
func Run(ctx context.Context, res *models.MonthlyResult, opts Options, repo storage.MonthlyRepository) error {
	if res == nil {
		res = &models.MonthlyResult{}
	}
	rows := Rows(res.Buckets)
	log := logger.Component("export")

	needsDir := false
	for _, f := range opts.Formats {
		if f == FormatPostgres {
			if repo == nil {
				return ErrNoRepository
			}
			continue
		}
		if NewSaver(f) == nil {
			return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
		needsDir = true
	}
	if needsDir {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return fmt.Errorf("create out dir: %w", err)
		}
	}

	log.Info().Strs("formats", opts.Formats).Int("buckets", len(rows)).Str("out", opts.OutDir).Msg("export start")

	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		f := format
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()

			if f == FormatPostgres {
				if err := toPostgres(gctx, log, res.Buckets, opts, repo); err != nil {
					log.Error().Str("format", f).Err(err).Msg("export failed")
					return fmt.Errorf("export %s: %w", f, err)
				}
				log.Info().Str("format", f).Dur("elapsed", time.Since(start)).Msg("export done")
				return nil
			}

			s := NewSaver(f)
			path := filepath.Join(opts.OutDir, baseName+"."+s.Extension())
			if err := s.Save(rows, path); err != nil {
				log.Error().Str("format", f).Str("path", path).Err(err).Msg("export failed")
				return fmt.Errorf("export %s: %w", f, err)
			}
			log.Info().Str("format", f).Str("path", path).Int("rows", len(rows)).Dur("elapsed", time.Since(start)).Msg("export done")
			return nil
		})
	}

	return g.Wait()
}

// toPostgres replaces the stored buckets of the source unless the same file
// content was already exported and force is off.
func toPostgres(ctx context.Context, log zerolog.Logger, buckets []models.MonthlyBucket, opts Options, repo storage.MonthlyRepository) error {
	source := filepath.Base(opts.Source)
	fp, err := Fingerprint(opts.Source)
	if err != nil {
		return fmt.Errorf("fingerprint: %w", err)
	}

	exists, err := repo.HasExport(ctx, source, fp)
	if err != nil {
		return fmt.Errorf("check export log: %w", err)
	}
	if exists && !opts.Force {
		log.Info().Str("source", source).Bool("skipped", true).Msg("already exported")
		return nil
	}

	if err := repo.ReplaceBuckets(ctx, source, buckets); err != nil {
		return fmt.Errorf("replace buckets: %w", err)
	}
	if err := repo.UpsertExportLog(ctx, source, fp, len(buckets)); err != nil {
		return fmt.Errorf("upsert export log: %w", err)
	}
	return nil
}
