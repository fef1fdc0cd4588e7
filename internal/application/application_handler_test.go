package application_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"approval-portal/internal/application"
	apperrors "approval-portal/internal/application/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeApplicationService struct {
	submitFn         func(ctx context.Context, spec application.ModuleSpec, in application.SubmitInput) (application.ApplicationResponse, error)
	updateFn         func(ctx context.Context, spec application.ModuleSpec, applnNo string, in application.SubmitInput) (application.ApplicationResponse, error)
	finalSubmitFn    func(ctx context.Context, spec application.ModuleSpec, applnNo, empID string) (application.ApplicationResponse, error)
	getByApplnNoFn   func(ctx context.Context, spec application.ModuleSpec, applnNo string) (application.ApplicationResponse, error)
	listByEmployeeFn func(ctx context.Context, spec application.ModuleSpec, empID string) ([]application.ApplicationResponse, error)
	listAllFn        func(ctx context.Context, spec application.ModuleSpec) ([]application.ApplicationResponse, error)
	countPendingFn   func(ctx context.Context, spec application.ModuleSpec, empID string) (int64, error)
}

func (f *fakeApplicationService) Submit(ctx context.Context, spec application.ModuleSpec, in application.SubmitInput) (application.ApplicationResponse, error) {
	return f.submitFn(ctx, spec, in)
}
func (f *fakeApplicationService) Update(ctx context.Context, spec application.ModuleSpec, applnNo string, in application.SubmitInput) (application.ApplicationResponse, error) {
	return f.updateFn(ctx, spec, applnNo, in)
}
func (f *fakeApplicationService) FinalSubmit(ctx context.Context, spec application.ModuleSpec, applnNo, empID string) (application.ApplicationResponse, error) {
	return f.finalSubmitFn(ctx, spec, applnNo, empID)
}
func (f *fakeApplicationService) GetByApplnNo(ctx context.Context, spec application.ModuleSpec, applnNo string) (application.ApplicationResponse, error) {
	return f.getByApplnNoFn(ctx, spec, applnNo)
}
func (f *fakeApplicationService) ListByEmployee(ctx context.Context, spec application.ModuleSpec, empID string) ([]application.ApplicationResponse, error) {
	return f.listByEmployeeFn(ctx, spec, empID)
}
func (f *fakeApplicationService) ListAll(ctx context.Context, spec application.ModuleSpec) ([]application.ApplicationResponse, error) {
	return f.listAllFn(ctx, spec)
}
func (f *fakeApplicationService) CountPending(ctx context.Context, spec application.ModuleSpec, empID string) (int64, error) {
	return f.countPendingFn(ctx, spec, empID)
}

// submitForm builds the multipart body the browser form sends.
func submitForm(t *testing.T, fields map[string]string, fileNames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		assert.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range fileNames {
		part, err := mw.CreateFormFile("files", name)
		assert.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4"))
		assert.NoError(t, err)
	}
	assert.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestApplicationHandler_Submit(t *testing.T) {
	t.Run("success splits base fields from module extras", func(t *testing.T) {
		svc := &fakeApplicationService{
			submitFn: func(ctx context.Context, spec application.ModuleSpec, in application.SubmitInput) (application.ApplicationResponse, error) {
				assert.Equal(t, "da", spec.Code)
				assert.Equal(t, "EMP001", in.EmpID)
				assert.Equal(t, "Official travel", in.Reason)
				assert.Equal(t, "Accommodation", in.Extras["purpose"])
				assert.NotContains(t, in.Extras, "empId")
				assert.Equal(t, []string{"1_keep.pdf"}, in.RetainedFiles)
				assert.Len(t, in.NewFiles, 1)
				assert.Equal(t, "bill.pdf", in.NewFiles[0].FileName)
				return application.ApplicationResponse{
					ApplnNo: in.ApplnNo,
					Status:  application.StatusDraft,
				}, nil
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body, contentType := submitForm(t, map[string]string{
			"applnNo":       "DA-1733011200000",
			"empId":         "EMP001",
			"name":          "A. Sharma",
			"contact":       "9876543210",
			"reason":        "Official travel",
			"startDate":     "2026-03-01",
			"endDate":       "2026-03-03",
			"purpose":       "Accommodation",
			"billDate":      "2026-03-02",
			"billAmount":    "1250.50",
			"retainedFiles": "1_keep.pdf",
		}, "bill.pdf")
		c.Request = httptest.NewRequest(http.MethodPost, "/da/submit", body)
		c.Request.Header.Set("Content-Type", contentType)

		h.Submit(application.DA)(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got application.ApplicationResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "DA-1733011200000", got.ApplnNo)
		assert.Equal(t, application.StatusDraft, got.Status)
	})

	t.Run("negative field errors use the bare form shape", func(t *testing.T) {
		svc := &fakeApplicationService{
			submitFn: func(ctx context.Context, spec application.ModuleSpec, in application.SubmitInput) (application.ApplicationResponse, error) {
				return application.ApplicationResponse{}, &application.ValidationError{Fields: application.ErrorMap{
					"endDate": "end date must not be before start date",
					"contact": "contact must be a 10 digit number",
				}}
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body, contentType := submitForm(t, map[string]string{"empId": "EMP001"})
		c.Request = httptest.NewRequest(http.MethodPost, "/da/submit", body)
		c.Request.Header.Set("Content-Type", contentType)

		h.Submit(application.DA)(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var got struct {
			FieldErrors map[string]string `json:"fieldErrors"`
			Message     string            `json:"message"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Please correct the highlighted fields", got.Message)
		assert.Len(t, got.FieldErrors, 2)
		assert.Contains(t, got.FieldErrors, "endDate")
	})

	t.Run("negative duplicate period is a plain-text conflict", func(t *testing.T) {
		svc := &fakeApplicationService{
			submitFn: func(ctx context.Context, spec application.ModuleSpec, in application.SubmitInput) (application.ApplicationResponse, error) {
				return application.ApplicationResponse{}, apperrors.ErrDuplicatePeriod
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body, contentType := submitForm(t, map[string]string{"empId": "EMP001"})
		c.Request = httptest.NewRequest(http.MethodPost, "/da/submit", body)
		c.Request.Header.Set("Content-Type", contentType)

		h.Submit(application.DA)(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Duplicate application for this period", w.Body.String())
	})
}

func TestApplicationHandler_FinalSubmit(t *testing.T) {
	t.Run("success falls back to authenticated employee", func(t *testing.T) {
		svc := &fakeApplicationService{
			finalSubmitFn: func(ctx context.Context, spec application.ModuleSpec, applnNo, empID string) (application.ApplicationResponse, error) {
				assert.Equal(t, "DA-1733011200000", applnNo)
				assert.Equal(t, "EMP001", empID)
				return application.ApplicationResponse{ApplnNo: applnNo, Status: application.StatusPending}, nil
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPut, "/da/final-submit/DA-1733011200000", nil)
		c.Params = gin.Params{{Key: "applnNo", Value: "DA-1733011200000"}}
		c.Set("emp_id", "EMP001")

		h.FinalSubmit(application.DA)(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative non-draft", func(t *testing.T) {
		svc := &fakeApplicationService{
			finalSubmitFn: func(ctx context.Context, spec application.ModuleSpec, applnNo, empID string) (application.ApplicationResponse, error) {
				return application.ApplicationResponse{}, apperrors.ErrNotDraft
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPut, "/da/final-submit/DA-1", nil)
		c.Params = gin.Params{{Key: "applnNo", Value: "DA-1"}}

		h.FinalSubmit(application.DA)(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
	})
}

func TestApplicationHandler_CountPending(t *testing.T) {
	t.Run("success writes the bare integer", func(t *testing.T) {
		svc := &fakeApplicationService{
			countPendingFn: func(ctx context.Context, spec application.ModuleSpec, empID string) (int64, error) {
				assert.Equal(t, "EMP001", empID)
				return 7, nil
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/da/count/pending/EMP001", nil)
		c.Params = gin.Params{{Key: "empId", Value: "EMP001"}}

		h.CountPending(application.DA)(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "7", w.Body.String())
	})
}

func TestApplicationHandler_GetByApplnNo(t *testing.T) {
	t.Run("negative not found", func(t *testing.T) {
		svc := &fakeApplicationService{
			getByApplnNoFn: func(ctx context.Context, spec application.ModuleSpec, applnNo string) (application.ApplicationResponse, error) {
				return application.ApplicationResponse{}, apperrors.ErrApplicationNotFound
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/da/ApplnNo/DA-404", nil)
		c.Params = gin.Params{{Key: "applnNo", Value: "DA-404"}}

		h.GetByApplnNo(application.DA)(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
	})
}
