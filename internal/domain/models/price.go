package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// PriceRecord is one row of the price file after type conversion.
//
// Numeric fields are null.Float so that a cell which failed to parse is
// distinguishable from a real zero. Row is the 1-based row number in the
// source table.
type PriceRecord struct {
	Row    int
	Date   time.Time
	Open   null.Float
	Close  null.Float
	Volume null.Float
}

// Complete reports whether close, open and volume are all present.
func (p PriceRecord) Complete() bool {
	return p.Close.Valid && p.Open.Valid && p.Volume.Valid
}
