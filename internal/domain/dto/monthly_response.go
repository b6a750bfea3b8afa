package dto

import "github.com/guttosm/pricechart/internal/domain/models"

// MonthlyResponse represents the JSON structure returned by the
// GET /api/v1/monthly endpoint.
//
// Fields mirror models.MonthlyResult but keep the API contract stable when
// the internal model changes.
type MonthlyResponse struct {
	StartYear int                    `json:"start_year" example:"2020"`
	EndYear   int                    `json:"end_year" example:"2025"`
	Buckets   []models.MonthlyBucket `json:"buckets"`
	Series    SeriesResponse         `json:"series"`
	Report    DropReport             `json:"report"`
}

// SeriesResponse groups the three chart series. Volume is already scaled.
type SeriesResponse struct {
	Close  []models.Point `json:"close"`
	Open   []models.Point `json:"open"`
	Volume []models.Point `json:"volume"`
}

// DropReport tells how many rows were read, kept, dropped and filtered out.
type DropReport struct {
	TotalRows  int                    `json:"total_rows" example:"1510"`
	Kept       int                    `json:"kept" example:"1498"`
	OutOfRange int                    `json:"out_of_range" example:"10"`
	Dropped    []models.DroppedRecord `json:"dropped"`
}

// NewMonthlyResponse maps an aggregation result to its API shape.
// Nil slices become empty arrays in the JSON output.
func NewMonthlyResponse(res *models.MonthlyResult, startYear, endYear int) MonthlyResponse {
	out := MonthlyResponse{
		StartYear: startYear,
		EndYear:   endYear,
		Buckets:   []models.MonthlyBucket{},
		Series: SeriesResponse{
			Close:  []models.Point{},
			Open:   []models.Point{},
			Volume: []models.Point{},
		},
		Report: DropReport{Dropped: []models.DroppedRecord{}},
	}
	if res == nil {
		return out
	}
	if res.Buckets != nil {
		out.Buckets = res.Buckets
	}
	if res.Close != nil {
		out.Series.Close = res.Close
	}
	if res.Open != nil {
		out.Series.Open = res.Open
	}
	if res.Volume != nil {
		out.Series.Volume = res.Volume
	}
	if res.Dropped != nil {
		out.Report.Dropped = res.Dropped
	}
	out.Report.TotalRows = res.TotalRows
	out.Report.OutOfRange = res.OutOfRange
	out.Report.Kept = res.Kept()
	return out
}
