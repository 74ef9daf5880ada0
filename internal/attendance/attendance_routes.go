package attendance

import (
	"slices"

	"jovenva-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RegisterRoutes mounts /attendance. auth must populate user_id and role.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc, rdb *redis.Client) {
	guards := []gin.HandlerFunc{middleware.RateLimitByUser(rate.Limit(1), 3)}
	if rdb != nil {
		guards = append(guards, middleware.Idempotency(rdb))
	}
	guarded := func(next gin.HandlerFunc) []gin.HandlerFunc {
		return append(slices.Clone(guards), next)
	}

	attendance := r.Group("/attendance")
	attendance.Use(auth)
	{
		attendance.GET("/window", h.Window)
		attendance.GET("/today", h.Today)
		attendance.GET("/weekly", h.Weekly)
		attendance.POST("/check-in", guarded(h.CheckIn)...)
		attendance.POST("/check-out", guarded(h.CheckOut)...)
	}

	admin := attendance.Group("/admin")
	admin.Use(middleware.RoleMiddleware(middleware.RoleAdmin))
	{
		admin.GET("", h.AdminList)
		admin.GET("/export", h.Export)
	}
}
