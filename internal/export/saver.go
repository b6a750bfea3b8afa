package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Saver writes a full set of rows to a single file.
type Saver interface {
	Save(rows []Row, path string) error
	Extension() string
}

// NewSaver returns the file saver for format (csv, json, parquet), or nil
// when format is not a file format.
func NewSaver(format string) Saver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return CSVSaver{}
	case FormatJSON:
		return JSONSaver{}
	case FormatParquet:
		return ParquetSaver{}
	default:
		return nil
	}
}

// CSVSaver writes rows as CSV with a header line.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(rows []Row, path string) error {
	return writeFile(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write([]string{"month", "t", "close", "open", "volume", "scaled_volume", "count"}); err != nil {
			return err
		}
		for _, r := range rows {
			if err := w.Write([]string{
				r.Month,
				strconv.FormatInt(r.Timestamp, 10),
				floatStr(r.Close),
				floatStr(r.Open),
				floatStr(r.Volume),
				floatStr(r.ScaledVolume),
				strconv.FormatInt(r.Count, 10),
			}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// JSONSaver writes rows as an indented JSON array.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(rows []Row, path string) error {
	if rows == nil {
		rows = []Row{}
	}
	return writeFile(path, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	})
}

// writeFile creates path, runs write on it and returns the first of the
// write and close errors.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ParquetSaver writes rows as a Parquet file.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(rows []Row, path string) error {
	return parquet.WriteFile(path, rows)
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
