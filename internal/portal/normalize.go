package portal

import (
	"encoding/json"
	"strings"
	"time"

	"approval-portal/internal/application"
)

// wireApplication tolerates the shape drift older endpoints exhibit:
// the application number may arrive as "applnNo" or "ApplnNo", and
// "fileName" may be a semicolon-joined string or a list. normalize folds
// both into the canonical response shape so the rest of the portal never
// sees the variants.
type wireApplication struct {
	ApplnNo     string            `json:"applnNo"`
	AltApplnNo  string            `json:"ApplnNo"`
	Module      string            `json:"module"`
	EmpID       string            `json:"empId"`
	Name        string            `json:"name"`
	Directorate string            `json:"directorate"`
	Division    string            `json:"division"`
	Contact     string            `json:"contact"`
	Reason      string            `json:"reason"`
	StartDate   string            `json:"startDate"`
	EndDate     string            `json:"endDate"`
	Extras      map[string]string `json:"extras"`
	FileName    json.RawMessage   `json:"fileName"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (w wireApplication) normalize() application.ApplicationResponse {
	applnNo := w.ApplnNo
	if applnNo == "" {
		applnNo = w.AltApplnNo
	}
	return application.ApplicationResponse{
		ApplnNo:     applnNo,
		Module:      w.Module,
		EmpID:       w.EmpID,
		Name:        w.Name,
		Directorate: w.Directorate,
		Division:    w.Division,
		Contact:     w.Contact,
		Reason:      w.Reason,
		StartDate:   w.StartDate,
		EndDate:     w.EndDate,
		Extras:      w.Extras,
		FileName:    normalizeFileName(w.FileName),
		Status:      w.Status,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func normalizeAll(wire []wireApplication) []application.ApplicationResponse {
	out := make([]application.ApplicationResponse, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.normalize())
	}
	return out
}

func normalizeFileName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return application.JoinFileNames(list)
	}
	return ""
}
