package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestID tags each request with an id, stored under RequestIDKey and
// echoed in the X-Request-ID response header. A caller-supplied
// X-Request-ID is kept when it is a valid UUID so a page load and the
// chart or API calls it triggers can be correlated; anything else is
// replaced by a fresh v4 UUID.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID())
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := inboundRequestID(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)

		c.Next()
	}
}

// inboundRequestID returns the canonical form of h, or "" when h is not a UUID.
func inboundRequestID(h string) string {
	if h == "" {
		return ""
	}
	u, err := uuid.Parse(h)
	if err != nil {
		return ""
	}
	return u.String()
}
