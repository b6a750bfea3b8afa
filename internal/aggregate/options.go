package aggregate

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a required column is not in the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidOptions is returned by Options.Validate.
	ErrInvalidOptions = errors.New("invalid aggregation options")
)

// Defaults used when Options fields are left zero by DefaultOptions callers.
const (
	DefaultStartYear   = 2020
	DefaultEndYear     = 2025
	DefaultVolumeScale = 1_000_000
)

// Options configures a monthly aggregation run.
//
// Fields:
//   - StartYear, EndYear: inclusive year range of records to keep.
//   - VolumeScale: divisor applied to the monthly mean volume.
//   - DateColumn, CloseColumn, OpenColumn, VolumeColumn: header names.
type Options struct {
	StartYear    int
	EndYear      int
	VolumeScale  float64
	DateColumn   string
	CloseColumn  string
	OpenColumn   string
	VolumeColumn string
}

// DefaultOptions returns the standard 2020..2025 range with volume in millions.
func DefaultOptions() Options {
	return Options{
		StartYear:    DefaultStartYear,
		EndYear:      DefaultEndYear,
		VolumeScale:  DefaultVolumeScale,
		DateColumn:   "Date",
		CloseColumn:  "Close",
		OpenColumn:   "Open",
		VolumeColumn: "Volume",
	}
}

// Validate checks the year range and the volume scale.
func (o Options) Validate() error {
	if o.StartYear > o.EndYear {
		return fmt.Errorf("%w: start year %d after end year %d", ErrInvalidOptions, o.StartYear, o.EndYear)
	}
	if !(o.VolumeScale > 0) {
		return fmt.Errorf("%w: volume scale must be positive, got %v", ErrInvalidOptions, o.VolumeScale)
	}
	return nil
}

// WithYears returns a copy of o restricted to [start, end].
func (o Options) WithYears(start, end int) Options {
	o.StartYear = start
	o.EndYear = end
	return o
}

// InRange reports whether year lies within [StartYear, EndYear].
func (o Options) InRange(year int) bool {
	return year >= o.StartYear && year <= o.EndYear
}
