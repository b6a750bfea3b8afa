package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/guttosm/pricechart/internal/domain/models"
)

// ErrSourceNotFound is returned when the configured price file is missing.
var ErrSourceNotFound = errors.New("source file not found")

// DefaultRename maps header aliases to canonical column names. Files
// exported by common market-data tools label the date column "Price".
var DefaultRename = map[string]string{"Price": "Date"}

// DefaultSkipRows is the number of data rows following the header that
// carry exporter metadata (ticker row and an empty "Date" row).
const DefaultSkipRows = 2

// Options controls how a price file is read.
//
// Fields:
//   - Comma: field delimiter (default ',').
//   - SkipRows: data rows to discard right after the header.
//   - Rename: header aliases, applied after trimming whitespace.
type Options struct {
	Comma    rune
	SkipRows int
	Rename   map[string]string
}

// DefaultOptions returns the options matching the usual exporter layout.
func DefaultOptions() Options {
	return Options{Comma: ',', SkipRows: DefaultSkipRows, Rename: DefaultRename}
}

// Exists reports ErrSourceNotFound when path is absent or a directory.
// Other stat failures are returned as-is.
func Exists(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}
	return nil
}

// Load opens path and reads it with Read.
func Load(ctx context.Context, path string, opts Options) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(ctx, f, opts)
}

// Read parses a delimited price file into a Table.
//
// Behavior:
//   - The first line is the header; names are trimmed and renamed via opts.Rename.
//   - The next opts.SkipRows lines are discarded.
//   - Rows are padded or truncated to the header width.
//   - An empty input yields an empty table, not an error.
//
// It fails only on I/O or CSV syntax errors and on context cancellation.
func Read(ctx context.Context, in io.Reader, opts Options) (*models.Table, error) {
	r := csv.NewReader(in)
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}
	r.LazyQuotes = true
	r.FieldsPerRecord = -1 // widths are normalized below
	r.ReuseRecord = false

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return &models.Table{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &models.Table{Columns: normalizeHeader(header, opts.Rename)}
	width := len(t.Columns)
	lineNumber := 1
	skipped := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if skipped < opts.SkipRows {
			skipped++
			continue
		}

		t.Rows = append(t.Rows, fitWidth(rec, width))
	}

	return t, nil
}

func normalizeHeader(header []string, rename map[string]string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if to, ok := rename[h]; ok {
			h = to
		}
		out[i] = h
	}
	return out
}

func fitWidth(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	row := make([]string, width)
	copy(row, rec)
	return row
}

// File is a price file on disk. Every Load re-reads it; nothing is cached.
type File struct {
	Path    string
	Options Options
}

// NewFile returns a File reading path with opts.
func NewFile(path string, opts Options) *File {
	return &File{Path: path, Options: opts}
}

// Load reads the file from disk.
func (f *File) Load(ctx context.Context) (*models.Table, error) {
	return Load(ctx, f.Path, f.Options)
}

// Check reports whether the file is currently present.
func (f *File) Check() error {
	return Exists(f.Path)
}
