package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID tags every request with a correlation id, honoring one
// supplied by the caller and minting a fresh UUID otherwise. The id is
// stored on the context for the logging middleware and echoed back in
// the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom reads the correlation id set by RequestID, empty when
// the middleware is not installed.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
