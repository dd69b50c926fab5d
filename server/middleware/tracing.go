package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/observability"
)

// Tracing starts a server span per request, continuing any trace carried in
// the incoming headers. The span is named after the matched route.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := observability.Tracer().Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.String("url.path", c.Request.URL.Path),
			),
		)
		defer span.End()

		if id, ok := c.Get(logger.FieldRequestID); ok {
			span.SetAttributes(attribute.String(observability.AttrRequestID, fmt.Sprint(id)))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			msg := fmt.Sprintf("status %d", status)
			if last := c.Errors.Last(); last != nil {
				msg = last.Error()
			}
			span.SetStatus(codes.Error, msg)
		}
	}
}
