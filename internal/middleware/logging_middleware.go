package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/danuarta/agromart/internal/logging"
)

// LoggerMiddleware makes the request-scoped logger reachable through the
// standard request context, so handlers log without touching gin directly.
func LoggerMiddleware(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLogger := l.With(
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
		)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), reqLogger))
		c.Next()
	}
}
