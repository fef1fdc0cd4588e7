package notification

import (
	"approval-portal/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("/empId/:empId", handler.ListByEmployee)
		notifications.PUT("/empId/:empId/:id/read", handler.MarkRead)
	}
}
