// Package middleware holds the gin middleware of the retail API.
package middleware

import (
	"net/http"

	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrorCodeKey is the Gin context key handlers store the answered error code under
const ErrorCodeKey = "error_code"

// Tracing starts a server span per request with otelgin and, once the
// handler chain has run, tags it with the request id, the caller and the
// error code of a failed answer
func Tracing(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if id := logger.GetRequestID(c.Request.Context()); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if actor, ok := ActorFrom(c); ok {
			span.SetAttributes(
				attribute.String("tenant_id", actor.TenantID.String()),
				attribute.String("user_id", actor.UserID.String()),
			)
		}
		if code := c.GetString(ErrorCodeKey); code != "" {
			span.SetAttributes(attribute.String("error.code", code))
		}
	}
}
