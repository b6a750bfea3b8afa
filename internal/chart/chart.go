package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/guttosm/pricechart/internal/domain/models"
)

// Series colors and opacity used on the chart page.
const (
	CloseColor    = "#1f77b4"
	OpenColor     = "#ff7f0e"
	VolumeColor   = "#2ca02c"
	VolumeOpacity = 0.4

	monthLayout = "2006-01"
)

// Options controls the page produced by Render.
type Options struct {
	Title  string
	Width  string
	Height string
}

// DefaultOptions returns a full-width page.
func DefaultOptions() Options {
	return Options{Title: "Monthly Close, Open and Volume", Width: "1200px", Height: "600px"}
}

// Build assembles the chart: close and open as lines with markers on the
// price axis, scaled volume as bars on a second axis. An empty result
// still produces a chart, with a "no data" subtitle.
func Build(res *models.MonthlyResult, o Options) *charts.Line {
	months := labels(res)

	subtitle := ""
	if res.Empty() {
		subtitle = "no data"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: o.Width, Height: o.Height}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "30px"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Month", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price", Type: "value"}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "Volume (M)", Type: "value"})

	line.SetXAxis(months).
		AddSeries("Close", lineData(res, func(r *models.MonthlyResult) []models.Point { return r.Close }),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: true}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: CloseColor}),
		).
		AddSeries("Open", lineData(res, func(r *models.MonthlyResult) []models.Point { return r.Open }),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: true}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: OpenColor}),
		)

	bar := charts.NewBar()
	bar.SetXAxis(months).
		AddSeries("Volume (M)", barData(res),
			charts.WithBarChartOpts(opts.BarChart{YAxisIndex: 1}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: VolumeColor, Opacity: VolumeOpacity}),
		)
	line.Overlap(bar)

	return line
}

// Render writes the chart as a standalone HTML page.
func Render(w io.Writer, res *models.MonthlyResult, o Options) error {
	return Build(res, o).Render(w)
}

func labels(res *models.MonthlyResult) []string {
	if res.Empty() {
		return []string{}
	}
	out := make([]string, len(res.Buckets))
	for i, b := range res.Buckets {
		out[i] = b.Month.Format(monthLayout)
	}
	return out
}

func lineData(res *models.MonthlyResult, pick func(*models.MonthlyResult) []models.Point) []opts.LineData {
	if res == nil {
		return []opts.LineData{}
	}
	pts := pick(res)
	out := make([]opts.LineData, len(pts))
	for i, p := range pts {
		out[i] = opts.LineData{Value: p.Value}
	}
	return out
}

func barData(res *models.MonthlyResult) []opts.BarData {
	if res == nil {
		return []opts.BarData{}
	}
	out := make([]opts.BarData, len(res.Volume))
	for i, p := range res.Volume {
		out[i] = opts.BarData{Value: p.Value}
	}
	return out
}
