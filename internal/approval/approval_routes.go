package approval

import (
	"approval-portal/internal/application"
	"approval-portal/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	for _, spec := range application.Modules() {
		g := r.Group("/" + spec.Code + "/approvals")
		g.Use(middleware.AuthMiddleware())
		{
			g.GET("/pending", handler.PendingForMe(spec))
			g.PUT("/approve/:applnNo", handler.Approve(spec))
			g.PUT("/reject/:applnNo", handler.Reject(spec))
			g.GET("/history/:applnNo", handler.History(spec))
			g.GET("/count/pending/:approverId", handler.CountActionable(spec))
		}
	}
}
