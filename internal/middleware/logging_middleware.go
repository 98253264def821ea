package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// quietPaths are logged at Debug so scrapes and probes do not flood the log.
var quietPaths = map[string]bool{
	"/metrics":   true,
	"/v1/health": true,
}

// LoggingMiddleware logs basic request/response details and injects a request_id into context.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()[:8]
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-Id", requestID)

		c.Next()

		var ev *zerolog.Event
		status := c.Writer.Status()
		switch {
		case status >= 500:
			ev = log.Error()
		case quietPaths[path]:
			ev = log.Debug()
		default:
			ev = log.Info()
		}

		ev.Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Str("user_id", c.GetString("user_id")).
			Msg("HTTP Request")
	}
}
