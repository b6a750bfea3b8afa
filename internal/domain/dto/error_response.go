package dto

import "time"

// ErrorResponse is the JSON body returned for every failed request.
//
// Fields:
//   - Message: short, human readable description.
//   - ErrorDetails: text of the underlying error, when there is one.
//   - Timestamp: when the response was built (UTC).
type ErrorResponse struct {
	Message      string    `json:"message" example:"failed to load source"`
	ErrorDetails string    `json:"error,omitempty" example:"open ./data/prices.csv: no such file or directory"`
	Timestamp    time.Time `json:"timestamp" example:"2025-09-20T12:00:00Z"`
}

// Error implements the error interface so an ErrorResponse can travel
// through gin's c.Error chain.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse stamped with the current time.
// err may be nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
