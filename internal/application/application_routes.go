package application

import (
	"approval-portal/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	for _, spec := range Modules() {
		g := r.Group("/" + spec.Code)
		g.Use(middleware.AuthMiddleware())
		{
			g.POST("/submit", handler.Submit(spec))
			g.PUT("/update/:applnNo", handler.Update(spec))
			g.PUT("/final-submit/:applnNo", handler.FinalSubmit(spec))
			g.GET("/ApplnNo/:applnNo", handler.GetByApplnNo(spec))
			g.GET("/empId/:empId", handler.ListByEmployee(spec))
			g.GET("/all", handler.ListAll(spec))
			g.GET("/count/pending/:empId", handler.CountPending(spec))
		}
	}
}
