package application

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"approval-portal/internal/shared/apperror"
	"approval-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Form field names the browser sends alongside the module-specific extras.
var baseFormFields = map[string]bool{
	"applnNo":       true,
	"empId":         true,
	"name":          true,
	"directorate":   true,
	"division":      true,
	"contact":       true,
	"reason":        true,
	"startDate":     true,
	"endDate":       true,
	"retainedFiles": true,
}

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("application.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("application.handler")
	}
	return &Handler{service: service, logger: l}
}

// writeServiceError renders errors in the shapes the form code expects:
// field validation failures as a bare {"fieldErrors": ..., "message": ...}
// object, conflicts as a plain-text body, everything else in the standard
// envelope.
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"fieldErrors": vErr.Fields,
			"message":     "Please correct the highlighted fields",
		})
		return
	}

	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("application request failed",
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

func (h *Handler) parseSubmitForm(c *gin.Context) (SubmitInput, []*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return SubmitInput{}, nil, err
	}

	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	in := SubmitInput{
		ApplnNo:       value("applnNo"),
		EmpID:         value("empId"),
		Name:          value("name"),
		Directorate:   value("directorate"),
		Division:      value("division"),
		Contact:       value("contact"),
		Reason:        value("reason"),
		StartDate:     value("startDate"),
		EndDate:       value("endDate"),
		RetainedFiles: SplitFileNames(value("retainedFiles")),
		Extras:        map[string]string{},
	}
	for key, vs := range form.Value {
		if !baseFormFields[key] && len(vs) > 0 {
			in.Extras[key] = vs[0]
		}
	}

	return in, form.File["files"], nil
}

func openUploads(headers []*multipart.FileHeader) ([]Upload, func(), error) {
	uploads := make([]Upload, 0, len(headers))
	closers := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range closers {
			f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, f)
		uploads = append(uploads, Upload{FileName: fh.Filename, Content: f})
	}
	return uploads, closeAll, nil
}

func (h *Handler) Submit(spec ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, fileHeaders, err := h.parseSubmitForm(c)
		if err != nil {
			h.logger.Warn("http submit multipart parse failed", zap.Error(err))
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid form data", err.Error())
			return
		}

		uploads, closeFiles, err := openUploads(fileHeaders)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid attachment", err.Error())
			return
		}
		defer closeFiles()
		in.NewFiles = uploads

		resp, err := h.service.Submit(c.Request.Context(), spec, in)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusCreated, resp)
	}
}

func (h *Handler) Update(spec ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		applnNo := c.Param("applnNo")

		in, fileHeaders, err := h.parseSubmitForm(c)
		if err != nil {
			h.logger.Warn("http update multipart parse failed", zap.Error(err))
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid form data", err.Error())
			return
		}

		uploads, closeFiles, err := openUploads(fileHeaders)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid attachment", err.Error())
			return
		}
		defer closeFiles()
		in.NewFiles = uploads

		resp, err := h.service.Update(c.Request.Context(), spec, applnNo, in)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, resp)
	}
}

func (h *Handler) FinalSubmit(spec ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		applnNo := c.Param("applnNo")
		empID := strings.TrimSpace(c.Query("empId"))
		if empID == "" {
			empID = c.GetString("emp_id")
		}

		resp, err := h.service.FinalSubmit(c.Request.Context(), spec, applnNo, empID)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, resp)
	}
}

func (h *Handler) GetByApplnNo(spec ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.service.GetByApplnNo(c.Request.Context(), spec, c.Param("applnNo"))
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, resp)
	}
}

func (h *Handler) ListByEmployee(spec ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.service.ListByEmployee(c.Request.Context(), spec, c.Param("empId"))
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, resp)
	}
}

func (h *Handler) ListAll(spec ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.service.ListAll(c.Request.Context(), spec)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, resp)
	}
}

// CountPending writes the bare integer as text; the sidebar badge consumes
// the body verbatim.
func (h *Handler) CountPending(spec ModuleSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := h.service.CountPending(c.Request.Context(), spec, c.Param("empId"))
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		c.String(http.StatusOK, strconv.FormatInt(count, 10))
	}
}
