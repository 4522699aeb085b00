package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// GinZapLogger logs every request except health and metrics probes.
func GinZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", requestID),
		}

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors.ByType(gin.ErrorTypeAny) {
				log.Error("Request error", append(fields, zap.Error(ginErr.Err))...)
			}
			return
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("Server error", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}
