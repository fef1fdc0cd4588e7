package export

import (
	"approval-portal/internal/application"
	"approval-portal/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	for _, spec := range application.Modules() {
		g := r.Group("/" + spec.Code + "/export")
		g.Use(middleware.AuthMiddleware())
		{
			g.GET("/csv", handler.CSV(spec))
			g.GET("/xlsx", handler.XLSX(spec))
			g.GET("/pdf", handler.PDF(spec))
			g.GET("/print", handler.Print(spec))
		}
	}
}
