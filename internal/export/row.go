package export

import (
	"time"

	"github.com/guttosm/pricechart/internal/domain/models"
)

// Row is the flat record written by the file savers.
type Row struct {
	Timestamp    int64   `json:"t" parquet:"t"`
	Month        string  `json:"month" parquet:"month"`
	Close        float64 `json:"close" parquet:"close"`
	Open         float64 `json:"open" parquet:"open"`
	Volume       float64 `json:"volume" parquet:"volume"`
	ScaledVolume float64 `json:"scaled_volume" parquet:"scaled_volume"`
	Count        int64   `json:"count" parquet:"count"`
}

// monthLayout is the label format shared with the chart axis.
const monthLayout = "2006-01"

// Rows flattens buckets into export rows; Timestamp is the month start in
// Unix milliseconds.
func Rows(buckets []models.MonthlyBucket) []Row {
	rows := make([]Row, 0, len(buckets))
	for _, b := range buckets {
		m := b.Month.UTC()
		rows = append(rows, Row{
			Timestamp:    m.UnixMilli(),
			Month:        m.Format(monthLayout),
			Close:        b.Close,
			Open:         b.Open,
			Volume:       b.Volume,
			ScaledVolume: b.ScaledVolume,
			Count:        int64(b.Count),
		})
	}
	return rows
}

// MonthTime converts a row timestamp back to the month start.
func (r Row) MonthTime() time.Time {
	return time.UnixMilli(r.Timestamp).UTC()
}
