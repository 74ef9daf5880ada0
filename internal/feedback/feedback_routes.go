package feedback

import (
	"jovenva-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	feedback := r.Group("/feedback")
	feedback.Use(auth)
	{
		feedback.POST("", h.Submit)
	}

	admin := feedback.Group("/admin")
	admin.Use(middleware.RoleMiddleware(middleware.RoleAdmin))
	{
		admin.GET("", h.AdminList)
	}
}
