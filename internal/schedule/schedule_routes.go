package schedule

import (
	"jovenva-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	schedule := r.Group("/schedule")
	schedule.Use(auth)
	{
		schedule.GET("/daily", h.Daily)
		schedule.POST("/tasks", h.Create)
		schedule.PATCH("/tasks/:id", h.Update)
		schedule.DELETE("/tasks/:id", h.Delete)
	}

	admin := schedule.Group("/admin")
	admin.Use(middleware.RoleMiddleware(middleware.RoleAdmin))
	{
		admin.GET("/tasks", h.AdminList)
	}
}
