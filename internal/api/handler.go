package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/guttosm/pricechart/internal/aggregate"
	"github.com/guttosm/pricechart/internal/chart"
	"github.com/guttosm/pricechart/internal/domain/dto"
	"github.com/guttosm/pricechart/internal/middleware"
	"github.com/guttosm/pricechart/internal/service"
	"github.com/guttosm/pricechart/internal/source"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Handler provides HTTP handlers for the table, chart and monthly endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Call the price service (which re-reads the source on every request)
//   - Render HTML pages or JSON DTOs with appropriate HTTP status codes
type Handler struct {
	svc       service.PriceService
	chartOpts chart.Options
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.PriceService): loads and aggregates the price file.
//   - chartOpts (chart.Options): title and size of the /chart page.
func NewHandler(svc service.PriceService, chartOpts chart.Options) *Handler {
	return &Handler{svc: svc, chartOpts: chartOpts}
}

// GetTable handles GET / requests.
//
// Responses:
//   - 200 OK: HTML page with every row of the source file.
//   - 503 Service Unavailable: the source file is missing.
//   - 500 Internal Server Error: the file could not be read.
//
// GetTable godoc
// @Summary      Price table
// @Description  Renders the full price file as a striped HTML table
// @Tags         pages
// @Produce      html
// @Success      200  {string}  string               "HTML page"
// @Failure      500  {object}  dto.ErrorResponse    "Internal Error"
// @Failure      503  {object}  dto.ErrorResponse    "Source unavailable"
// @Router       / [get]
func (h *Handler) GetTable(c *gin.Context) {
	tbl, err := h.svc.Table(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.Render(http.StatusOK, render.HTML{
		Template: pageTemplates,
		Name:     "table.html",
		Data: gin.H{
			"Title":    "CSV Display",
			"Heading":  "CSV Data",
			"Columns":  tbl.Columns,
			"Rows":     tbl.Rows,
			"RowCount": tbl.Len(),
		},
	})
}

// GetChart handles GET /chart requests.
//
// Responses:
//   - 200 OK: HTML page with the monthly close/open lines and volume bars.
//     An empty aggregation still renders a page marked "no data".
//   - 422 Unprocessable Entity: a required column is missing.
//   - 503 Service Unavailable: the source file is missing.
//
// GetChart godoc
// @Summary      Monthly chart
// @Description  Renders monthly average close, open and volume (millions) as an interactive chart
// @Tags         pages
// @Produce      html
// @Success      200  {string}  string               "HTML page"
// @Failure      422  {object}  dto.ErrorResponse    "Missing column"
// @Failure      500  {object}  dto.ErrorResponse    "Internal Error"
// @Failure      503  {object}  dto.ErrorResponse    "Source unavailable"
// @Router       /chart [get]
func (h *Handler) GetChart(c *gin.Context) {
	res, err := h.svc.Monthly(c.Request.Context(), nil)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	// Render into a buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := chart.Render(&buf, res, h.chartOpts); err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to render chart", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// GetMonthly handles GET /api/v1/monthly requests.
//
// Query Parameters:
//   - start_year (int, optional): first year to include; defaults to configuration.
//   - end_year (int, optional): last year to include; defaults to configuration.
//
// GetMonthly godoc
// @Summary      Monthly aggregates
// @Description  Returns monthly average close, open and volume plus a report of dropped rows
// @Tags         monthly
// @Produce      json
// @Param        start_year  query     int  false  "First year (inclusive)" example(2020)
// @Param        end_year    query     int  false  "Last year (inclusive)"  example(2025)
// @Success      200         {object}  dto.MonthlyResponse  "Success"
// @Failure      400         {object}  dto.ErrorResponse    "Bad Request"
// @Failure      422         {object}  dto.ErrorResponse    "Missing column"
// @Failure      500         {object}  dto.ErrorResponse    "Internal Error"
// @Failure      503         {object}  dto.ErrorResponse    "Source unavailable"
// @Router       /api/v1/monthly [get]
func (h *Handler) GetMonthly(c *gin.Context) {
	// ─── Parse optional year range ────────────────────────────
	opts := h.svc.Options()
	start, err := queryInt(c, "start_year", opts.StartYear)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid start_year, expected an integer year", err)
		return
	}
	end, err := queryInt(c, "end_year", opts.EndYear)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid end_year, expected an integer year", err)
		return
	}

	// ─── Aggregate (with request context) ─────────────────────
	res, err := h.svc.Monthly(c.Request.Context(), &service.YearRange{Start: start, End: end})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMonthlyResponse(res, start, end))
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// abortWithServiceError maps service errors to HTTP statuses.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, source.ErrSourceNotFound):
		middleware.AbortWithError(c, http.StatusServiceUnavailable, "source file unavailable", err)
	case errors.Is(err, aggregate.ErrInvalidOptions):
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid year range", err)
	case errors.Is(err, aggregate.ErrMissingColumn):
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, "source file is missing required columns", err)
	default:
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to load prices", err)
	}
}
