package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/propagation"
)

// extractTraceContext continues an upstream trace when the request carries
// W3C trace context headers.
func extractTraceContext(propagator propagation.TextMapPropagator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requestLogging writes one record per request once the response is done.
// Health checks are logged at debug level.
func requestLogging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		level := slog.LevelInfo
		if c.FullPath() == healthPath {
			level = slog.LevelDebug
		}

		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// recovered answers a panicking handler with the generic 500 body.
func (a *API) recovered(c *gin.Context, p any) {
	a.logger.ErrorContext(c.Request.Context(), "handler panicked",
		"path", c.Request.URL.Path,
		"panic", p)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(internalErrorMessage))
}
