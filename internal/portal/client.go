// Package portal is the browser-side core of the admin portal: an HTTP
// client for the application service plus the local state the UI drives —
// form state, the list cache, the approver worklist, the session snapshot,
// and the count poller. Everything here assumes the server is the sole
// authority; local state is a cache, never a source of truth.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"approval-portal/internal/application"
	"approval-portal/internal/approval"
	"approval-portal/internal/auth"

	"go.uber.org/zap"
)

// FieldErrors is a 400 validation response: per-field messages the form
// merges into its own error state.
type FieldErrors struct {
	Fields  application.ErrorMap `json:"fieldErrors"`
	Message string               `json:"message"`
}

func (e *FieldErrors) Error() string {
	return e.Message
}

// ConflictError is a 409 whose plain-text body is shown to the user
// verbatim.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StatusError covers every other non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Body)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *zap.Logger
}

func NewClient(baseURL string, logger ...*zap.Logger) *Client {
	l := zap.L().Named("portal.client")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("portal.client")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  l,
	}
}

// SetToken installs the bearer token from a login response.
func (c *Client) SetToken(token string) {
	c.token = token
}

type envelope struct {
	Ok   bool            `json:"ok"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return raw, nil
	case res.StatusCode == http.StatusBadRequest:
		var fieldErrs FieldErrors
		if json.Unmarshal(raw, &fieldErrs) == nil && len(fieldErrs.Fields) > 0 {
			return nil, &fieldErrs
		}
		return nil, &StatusError{Status: res.StatusCode, Body: string(raw)}
	case res.StatusCode == http.StatusConflict:
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = "You are not the correct approval authority"
		}
		return nil, &ConflictError{Message: msg}
	default:
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", res.StatusCode),
		)
		return nil, &StatusError{Status: res.StatusCode, Body: string(raw)}
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	raw, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	return json.Unmarshal(env.Data, out)
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, empID, password string) (auth.LoginResponse, error) {
	payload, _ := json.Marshal(map[string]string{"empId": empID, "password": password})
	raw, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, bytes.NewReader(payload), "application/json")
	if err != nil {
		return auth.LoginResponse{}, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return auth.LoginResponse{}, err
	}
	var resp auth.LoginResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		return auth.LoginResponse{}, err
	}
	c.SetToken(resp.Token)
	return resp, nil
}

// List fetches one employee's applications for a module, normalized into
// the canonical shape.
func (c *Client) List(ctx context.Context, spec application.ModuleSpec, empID string) ([]application.ApplicationResponse, error) {
	var wire []wireApplication
	if err := c.getJSON(ctx, "/api/v1/"+spec.Code+"/empId/"+url.PathEscape(empID), nil, &wire); err != nil {
		return nil, err
	}
	return normalizeAll(wire), nil
}

// ListAll fetches the full module list (admin views).
func (c *Client) ListAll(ctx context.Context, spec application.ModuleSpec) ([]application.ApplicationResponse, error) {
	var wire []wireApplication
	if err := c.getJSON(ctx, "/api/v1/"+spec.Code+"/all", nil, &wire); err != nil {
		return nil, err
	}
	return normalizeAll(wire), nil
}

// Submit posts a new application as multipart form data.
func (c *Client) Submit(ctx context.Context, spec application.ModuleSpec, in application.SubmitInput) (application.ApplicationResponse, error) {
	return c.sendForm(ctx, http.MethodPost, "/api/v1/"+spec.Code+"/submit", spec, in)
}

// Update rewrites an editable application in place.
func (c *Client) Update(ctx context.Context, spec application.ModuleSpec, applnNo string, in application.SubmitInput) (application.ApplicationResponse, error) {
	return c.sendForm(ctx, http.MethodPut, "/api/v1/"+spec.Code+"/update/"+url.PathEscape(applnNo), spec, in)
}

// FinalSubmit sends a draft for approval. Status-only: no field payload.
func (c *Client) FinalSubmit(ctx context.Context, spec application.ModuleSpec, applnNo, empID string) (application.ApplicationResponse, error) {
	q := url.Values{"empId": {empID}}
	raw, err := c.do(ctx, http.MethodPut, "/api/v1/"+spec.Code+"/final-submit/"+url.PathEscape(applnNo), q, nil, "")
	if err != nil {
		return application.ApplicationResponse{}, err
	}
	return decodeApplicationEnvelope(raw)
}

func (c *Client) sendForm(ctx context.Context, method, path string, spec application.ModuleSpec, in application.SubmitInput) (application.ApplicationResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"applnNo":       in.ApplnNo,
		"empId":         in.EmpID,
		"name":          in.Name,
		"directorate":   in.Directorate,
		"division":      in.Division,
		"contact":       in.Contact,
		"reason":        in.Reason,
		"startDate":     in.StartDate,
		"endDate":       in.EndDate,
		"retainedFiles": application.JoinFileNames(in.RetainedFiles),
	}
	for k, v := range in.Extras {
		fields[k] = v
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return application.ApplicationResponse{}, err
		}
	}
	for _, up := range in.NewFiles {
		part, err := mw.CreateFormFile("files", up.FileName)
		if err != nil {
			return application.ApplicationResponse{}, err
		}
		if _, err := io.Copy(part, up.Content); err != nil {
			return application.ApplicationResponse{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return application.ApplicationResponse{}, err
	}

	raw, err := c.do(ctx, method, path, nil, &buf, mw.FormDataContentType())
	if err != nil {
		return application.ApplicationResponse{}, err
	}
	return decodeApplicationEnvelope(raw)
}

// Pending fetches the approver's worklist for a module.
func (c *Client) Pending(ctx context.Context, spec application.ModuleSpec, approverID string) ([]approval.PendingItem, error) {
	q := url.Values{"approverId": {approverID}}
	var items []approval.PendingItem
	if err := c.getJSON(ctx, "/api/v1/"+spec.Code+"/approvals/pending", q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Approve records an approval under the given role.
func (c *Client) Approve(ctx context.Context, spec application.ModuleSpec, applnNo, approverID string, roleNo int, remarks string) error {
	return c.decide(ctx, spec, "approve", applnNo, approverID, roleNo, remarks)
}

// Reject records a rejection under the given role.
func (c *Client) Reject(ctx context.Context, spec application.ModuleSpec, applnNo, approverID string, roleNo int, remarks string) error {
	return c.decide(ctx, spec, "reject", applnNo, approverID, roleNo, remarks)
}

func (c *Client) decide(ctx context.Context, spec application.ModuleSpec, verb, applnNo, approverID string, roleNo int, remarks string) error {
	q := url.Values{
		"approverId": {approverID},
		"roleNo":     {strconv.Itoa(roleNo)},
		"remarks":    {remarks},
	}
	_, err := c.do(ctx, http.MethodPut, "/api/v1/"+spec.Code+"/approvals/"+verb+"/"+url.PathEscape(applnNo), q, nil, "")
	return err
}

// Audit fetches the flattened approval history for one application.
func (c *Client) Audit(ctx context.Context, spec application.ModuleSpec, applnNo string) (approval.AuditResponse, error) {
	var resp approval.AuditResponse
	err := c.getJSON(ctx, "/api/v1/"+spec.Code+"/approvals/history/"+url.PathEscape(applnNo), nil, &resp)
	return resp, err
}

// CountPending fetches the submitter's pending-count badge value. The body
// is a bare integer as text.
func (c *Client) CountPending(ctx context.Context, spec application.ModuleSpec, empID string) (int, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v1/"+spec.Code+"/count/pending/"+url.PathEscape(empID), nil, nil, "")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(raw)))
}

// CountActionable fetches the approver's worklist-count badge value.
func (c *Client) CountActionable(ctx context.Context, spec application.ModuleSpec, approverID string) (int, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v1/"+spec.Code+"/approvals/count/pending/"+url.PathEscape(approverID), nil, nil, "")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(raw)))
}

func decodeApplicationEnvelope(raw []byte) (application.ApplicationResponse, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return application.ApplicationResponse{}, err
	}
	var wire wireApplication
	if err := json.Unmarshal(env.Data, &wire); err != nil {
		return application.ApplicationResponse{}, err
	}
	return wire.normalize(), nil
}
