package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/logger"
)

const slowRequest = 500 * time.Millisecond

// RequestRecorder receives one observation per finished request.
// *observability.Metrics satisfies it.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, method, route string, status int, d time.Duration)
}

// RequestLogger logs every request with method, path, status and latency at
// a level chosen by status, and feeds recorder when it is non-nil.
// The health endpoint is recorded but not logged.
func RequestLogger(log *logger.Logger, recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if recorder != nil {
			recorder.RecordRequest(c.Request.Context(), c.Request.Method, route, status, latency)
		}
		if isHealthEndpoint(c.Request.URL.Path) {
			return
		}

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       route,
			"status":      status,
			"duration_ms": latency.Milliseconds(),
			"client":      c.ClientIP(),
		}
		if latency > slowRequest {
			fields["slow"] = true
		}
		if last := c.Errors.Last(); last != nil {
			if appErr, ok := apperrors.AsAppError(last.Err); ok {
				fields["error_code"] = string(appErr.Code)
			}
		}
		logByStatus(log.WithContext(c.Request.Context()), fields, status)
	}
}

func isHealthEndpoint(path string) bool {
	return path == "/health"
}

// logByStatus logs request fields at the level matching the HTTP status.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
