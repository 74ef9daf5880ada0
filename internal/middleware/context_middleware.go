package middleware

import (
	"jovenva-attendance/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger attaches a logger tagged with request_id to the request
// context, so services can log through contextutil.GetLogger without knowing
// about gin. AuthMiddleware adds user_id once the caller is known.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetString("request_id")
		if rid == "" {
			rid = c.GetHeader("X-Request-ID")
		}
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Header("X-Request-ID", rid)

		reqLogger := logger.With(zap.String("request_id", rid))
		ctx := contextutil.WithRequestID(c.Request.Context(), rid)
		if uid := c.GetString("user_id"); uid != "" {
			reqLogger = reqLogger.With(zap.String("user_id", uid))
			ctx = contextutil.WithUserID(ctx, uid)
		}
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
