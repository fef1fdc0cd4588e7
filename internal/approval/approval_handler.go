package approval

import (
	"net/http"
	"strconv"
	"strings"

	"approval-portal/internal/application"
	"approval-portal/internal/shared/apperror"
	"approval-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("approval.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.handler")
	}
	return &Handler{service: service, logger: l}
}

// writeServiceError keeps the conflict shape the approver console shows
// verbatim: a 409 is a plain-text body, everything else the envelope.
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("approval request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	if httpErr.Status == http.StatusConflict {
		c.String(http.StatusConflict, httpErr.Message)
		return
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func approverParams(c *gin.Context) (approverID string, roleNo int) {
	approverID = strings.TrimSpace(c.Query("approverId"))
	if approverID == "" {
		approverID = c.GetString("emp_id")
	}
	roleNo, _ = strconv.Atoi(c.Query("roleNo"))
	return approverID, roleNo
}

func (h *Handler) PendingForMe(spec application.ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		approverID, _ := approverParams(c)
		items, err := h.service.PendingForMe(c.Request.Context(), spec, approverID)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, items)
	}
}

func (h *Handler) Approve(spec application.ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		approverID, roleNo := approverParams(c)
		item, err := h.service.Approve(c.Request.Context(), spec, c.Param("applnNo"), approverID, roleNo, c.Query("remarks"))
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, item)
	}
}

func (h *Handler) Reject(spec application.ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		approverID, roleNo := approverParams(c)
		item, err := h.service.Reject(c.Request.Context(), spec, c.Param("applnNo"), approverID, roleNo, c.Query("remarks"))
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, item)
	}
}

func (h *Handler) History(spec application.ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.service.History(c.Request.Context(), spec, c.Param("applnNo"))
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, resp)
	}
}

// CountActionable writes the bare integer as text for the sidebar badge.
func (h *Handler) CountActionable(spec application.ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		approverID := c.Param("approverId")
		count, err := h.service.CountActionableForMe(c.Request.Context(), spec, approverID)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		c.String(http.StatusOK, strconv.FormatInt(count, 10))
	}
}
