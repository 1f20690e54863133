package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/reportvault/pkg/tracing"
)

// TracingMiddleware 为每个请求开启服务端 span，继承上游 traceparent，服务层的 span 挂在其下.
// 只有 5xx 标记为错误，业务拒绝（4xx）属于正常结果.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		parent := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		ctx, span := tracing.StartSpan(parent, c.Request.Method+" "+c.Request.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("url.path", c.Request.URL.Path),
				attribute.String("client.address", c.ClientIP()),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		if route := c.FullPath(); route != "" {
			span.SetName(c.Request.Method + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}

		span.SetAttributes(attribute.Int("http.response.status_code", status))

		if user := CurrentUser(c); user != "" {
			span.SetAttributes(attribute.String("enduser.id", user), attribute.String("enduser.role", GetRole(c).String()))
		}

		if status >= http.StatusInternalServerError {
			msg := strconv.Itoa(status)
			if len(c.Errors) > 0 {
				msg = c.Errors.String()
			}

			span.SetStatus(codes.Error, msg)
		}
	}
}
