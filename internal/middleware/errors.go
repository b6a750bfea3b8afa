package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pricechart/internal/domain/dto"
	"github.com/guttosm/pricechart/internal/logger"
)

// ErrorHandler is a Gin middleware that turns errors attached with c.Error
// into a single JSON ErrorResponse.
//
// Behavior:
//   - Runs the handler chain first.
//   - If nothing was written and c.Errors is not empty, logs the last error
//     and responds 500 with dto.ErrorResponse.
//   - If the last error is already a dto.ErrorResponse, its message is kept.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.ErrorHandler)
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	last := c.Errors.Last().Err
	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().
		Str("request_id", toString(rid)).
		Str("path", c.Request.URL.Path).
		Err(last).
		Msg("request failed")

	var resp dto.ErrorResponse
	if !errors.As(last, &resp) {
		resp = dto.NewErrorResponse("Internal server error", last)
	}

	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, resp)
}

// AbortWithError stops the chain and writes a JSON ErrorResponse with the
// given status. err is recorded on the context for the request logger.
//
// Example:
//
//	middleware.AbortWithError(c, http.StatusBadRequest, "invalid start_year", err)
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
