package aggregate

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/guttosm/pricechart/internal/domain/models"
)

// columns holds the resolved positions of the required columns.
type columns struct {
	date, close, open, volume int
}

func resolveColumns(t *models.Table, o Options) (columns, error) {
	var c columns
	var missing []string
	lookup := func(name string) int {
		i := t.ColumnIndex(name)
		if i < 0 {
			missing = append(missing, name)
		}
		return i
	}
	c.date = lookup(o.DateColumn)
	c.close = lookup(o.CloseColumn)
	c.open = lookup(o.OpenColumn)
	c.volume = lookup(o.VolumeColumn)
	if len(missing) > 0 {
		return c, fmt.Errorf("%w: %v", ErrMissingColumn, missing)
	}
	return c, nil
}

// series accumulates the values of one month.
type series struct {
	close, open, volume []float64
}

// Aggregate computes monthly averages of close, open and volume.
//
// Behavior:
//   - Rows with an unparseable date or an absent close/open/volume are
//     dropped and listed in the result; they never cause an error.
//   - Rows outside [opts.StartYear, opts.EndYear] are counted in OutOfRange.
//   - Months without contributing rows are omitted.
//   - Series are sorted by month, ascending; volume is divided by opts.VolumeScale.
//
// Returns an error only when opts are invalid or a required column is
// missing from a non-empty header. An empty table yields an empty result.
func Aggregate(t *models.Table, opts Options) (*models.MonthlyResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	res := &models.MonthlyResult{
		Buckets: []models.MonthlyBucket{},
		Close:   []models.Point{},
		Open:    []models.Point{},
		Volume:  []models.Point{},
		Dropped: []models.DroppedRecord{},
	}
	if t == nil || (len(t.Columns) == 0 && len(t.Rows) == 0) {
		return res, nil
	}

	cols, err := resolveColumns(t, opts)
	if err != nil {
		return nil, err
	}

	months := make(map[time.Time]*series)
	res.TotalRows = len(t.Rows)

	for i, row := range t.Rows {
		rec, drop := parseRow(i+1, row, cols, opts)
		if drop != nil {
			res.Dropped = append(res.Dropped, *drop)
			continue
		}
		if !opts.InRange(rec.Date.Year()) {
			res.OutOfRange++
			continue
		}

		key := monthStart(rec.Date)
		s, ok := months[key]
		if !ok {
			s = &series{}
			months[key] = s
		}
		s.close = append(s.close, rec.Close.Float64)
		s.open = append(s.open, rec.Open.Float64)
		s.volume = append(s.volume, rec.Volume.Float64)
	}

	keys := make([]time.Time, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	for _, k := range keys {
		s := months[k]
		b := models.MonthlyBucket{
			Month:  k,
			Close:  stat.Mean(s.close, nil),
			Open:   stat.Mean(s.open, nil),
			Volume: stat.Mean(s.volume, nil),
			Count:  len(s.close),
		}
		b.ScaledVolume = b.Volume / opts.VolumeScale

		res.Buckets = append(res.Buckets, b)
		res.Close = append(res.Close, models.Point{Month: k, Value: b.Close})
		res.Open = append(res.Open, models.Point{Month: k, Value: b.Open})
		res.Volume = append(res.Volume, models.Point{Month: k, Value: b.ScaledVolume})
	}

	return res, nil
}

// parseRow converts one table row. The returned DroppedRecord is non-nil
// when the row must be excluded; it names the first failing field.
func parseRow(n int, row []string, c columns, opts Options) (models.PriceRecord, *models.DroppedRecord) {
	rec := models.PriceRecord{Row: n}
	dateCell, closeCell := cell(row, c.date), cell(row, c.close)
	openCell, volumeCell := cell(row, c.open), cell(row, c.volume)

	d, err := parseDate(dateCell)
	if err != nil {
		return rec, &models.DroppedRecord{Row: n, Reason: models.DropInvalidDate, Column: opts.DateColumn, Value: dateCell}
	}
	rec.Date = d
	rec.Close = parseFloat(closeCell)
	rec.Open = parseFloat(openCell)
	rec.Volume = parseFloat(volumeCell)

	if rec.Complete() {
		return rec, nil
	}
	switch {
	case !rec.Close.Valid:
		return rec, &models.DroppedRecord{Row: n, Reason: models.DropInvalidClose, Column: opts.CloseColumn, Value: closeCell}
	case !rec.Open.Valid:
		return rec, &models.DroppedRecord{Row: n, Reason: models.DropInvalidOpen, Column: opts.OpenColumn, Value: openCell}
	default:
		return rec, &models.DroppedRecord{Row: n, Reason: models.DropInvalidVolume, Column: opts.VolumeColumn, Value: volumeCell}
	}
}

// cell returns row[i], or "" when the row is too short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
