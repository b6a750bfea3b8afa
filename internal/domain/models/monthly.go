package models

import "time"

// Drop reasons reported in DroppedRecord.Reason.
const (
	DropInvalidDate   = "invalid_date"
	DropInvalidClose  = "invalid_close"
	DropInvalidOpen   = "invalid_open"
	DropInvalidVolume = "invalid_volume"
)

// MonthlyBucket holds the averages of all records dated inside one
// calendar month.
//
// Fields:
//   - Month: first day of the month at 00:00 UTC.
//   - Close, Open: arithmetic means of the month's records.
//   - Volume: arithmetic mean of the raw volume.
//   - ScaledVolume: Volume divided by the configured scale (1,000,000 by default).
//   - Count: number of records that contributed.
type MonthlyBucket struct {
	Month        time.Time `json:"month"`
	Close        float64   `json:"close"`
	Open         float64   `json:"open"`
	Volume       float64   `json:"volume"`
	ScaledVolume float64   `json:"scaled_volume"`
	Count        int       `json:"count"`
}

// Point is one (month, value) pair of a chart series.
type Point struct {
	Month time.Time `json:"month"`
	Value float64   `json:"value"`
}

// DroppedRecord describes a row excluded from aggregation because a
// required cell could not be parsed.
type DroppedRecord struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// MonthlyResult is the output of the monthly aggregation.
//
// Close, Open and Volume are aligned with Buckets: the i-th point of each
// series refers to Buckets[i].Month. Volume carries the scaled values.
type MonthlyResult struct {
	Buckets    []MonthlyBucket
	Close      []Point
	Open       []Point
	Volume     []Point
	Dropped    []DroppedRecord
	TotalRows  int
	OutOfRange int
}

// Kept returns how many rows contributed to a bucket.
func (r *MonthlyResult) Kept() int {
	if r == nil {
		return 0
	}
	return r.TotalRows - len(r.Dropped) - r.OutOfRange
}

// Empty reports whether no bucket was produced.
func (r *MonthlyResult) Empty() bool {
	return r == nil || len(r.Buckets) == 0
}
