package export

import (
	"net/http"
	"time"

	"approval-portal/internal/application"
	"approval-portal/internal/shared/apperror"
	"approval-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves server-side downloads of a module's full list, for
// admins who want the artifact without an open portal session.
type Handler struct {
	apps   application.Service
	logger *zap.Logger
}

func NewHandler(apps application.Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("export.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("export.handler")
	}
	return &Handler{apps: apps, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("export request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) CSV(spec application.ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		apps, err := h.apps.ListAll(c.Request.Context(), spec)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+CSVFileName(spec)+`"`)
		c.Header("Content-Type", "text/csv")
		if err := WriteCSV(c.Writer, spec, apps); err != nil {
			h.logger.Error("write csv failed", zap.Error(err))
		}
	}
}

func (h *Handler) XLSX(spec application.ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		apps, err := h.apps.ListAll(c.Request.Context(), spec)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+XLSXFileName(spec)+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := WriteXLSX(c.Writer, spec, apps); err != nil {
			h.logger.Error("write xlsx failed", zap.Error(err))
		}
	}
}

func (h *Handler) PDF(spec application.ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		apps, err := h.apps.ListAll(c.Request.Context(), spec)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+PDFFileName(spec)+`"`)
		c.Header("Content-Type", "application/pdf")
		if err := WritePDF(c.Writer, spec, apps, time.Now()); err != nil {
			h.logger.Error("write pdf failed", zap.Error(err))
		}
	}
}

func (h *Handler) Print(spec application.ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		apps, err := h.apps.ListAll(c.Request.Context(), spec)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		if err := WritePrintHTML(c.Writer, spec, apps, time.Now()); err != nil {
			h.logger.Error("write print view failed", zap.Error(err))
		}
	}
}
