package user

import (
	"jovenva-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	users := r.Group("/admin/users")
	users.Use(auth, middleware.RoleMiddleware(middleware.RoleAdmin))
	{
		users.GET("", h.List)
		users.PATCH("/:id/role", h.UpdateRole)
	}
}
