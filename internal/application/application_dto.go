package application

import (
	"io"
	"strings"
	"time"
)

// Upload is a new attachment carried in a multipart submit/update.
type Upload struct {
	FileName string
	Content  io.Reader
}

// SubmitInput carries everything a draft save, update, or final submit
// needs. Extras holds module-specific fields keyed by field name, still
// as the raw strings the form sent; validation and normalization happen
// in the service.
type SubmitInput struct {
	ApplnNo     string
	EmpID       string
	Name        string
	Directorate string
	Division    string
	Contact     string
	Reason      string
	StartDate   string
	EndDate     string
	Extras      map[string]string

	NewFiles      []Upload
	RetainedFiles []string
}

// fieldMap flattens the input into the map shape the validator consumes.
func (in SubmitInput) fieldMap(spec ModuleSpec) map[string]string {
	fields := map[string]string{
		"reason":    in.Reason,
		"contact":   in.Contact,
		"startDate": in.StartDate,
		"endDate":   in.EndDate,
	}
	for _, f := range spec.RequiredText {
		if _, ok := fields[f]; !ok {
			fields[f] = in.Extras[f]
		}
	}
	for _, f := range spec.NumericFields {
		fields[f] = in.Extras[f]
	}
	for _, f := range spec.DateFields {
		fields[f] = in.Extras[f]
	}
	for _, f := range spec.YearFields {
		fields[f] = in.Extras[f]
	}
	return fields
}

func (in SubmitInput) attachmentCount() int {
	return len(in.NewFiles) + len(in.RetainedFiles)
}

// ApplicationResponse is the canonical JSON shape for one application.
type ApplicationResponse struct {
	ApplnNo     string            `json:"applnNo"`
	Module      string            `json:"module"`
	EmpID       string            `json:"empId"`
	Name        string            `json:"name"`
	Directorate string            `json:"directorate"`
	Division    string            `json:"division"`
	Contact     string            `json:"contact"`
	Reason      string            `json:"reason"`
	StartDate   string            `json:"startDate"`
	EndDate     string            `json:"endDate"`
	Extras      map[string]string `json:"extras,omitempty"`
	FileName    string            `json:"fileName"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func ToResponse(a *Application) ApplicationResponse {
	return ApplicationResponse{
		ApplnNo:     a.ApplnNo,
		Module:      a.Module,
		EmpID:       a.EmpID,
		Name:        a.Name,
		Directorate: a.Directorate,
		Division:    a.Division,
		Contact:     a.Contact,
		Reason:      a.Reason,
		StartDate:   a.StartDate.Format(dateLayout),
		EndDate:     a.EndDate.Format(dateLayout),
		Extras:      a.extrasAsStrings(),
		FileName:    a.FileName,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func ToResponseList(apps []Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, ToResponse(&apps[i]))
	}
	return out
}

// JoinFileNames produces the semicolon-joined manifest stored on the entity.
func JoinFileNames(names []string) string {
	clean := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			clean = append(clean, n)
		}
	}
	return strings.Join(clean, ";")
}

// SplitFileNames is the inverse of JoinFileNames; empty manifests yield nil.
func SplitFileNames(manifest string) []string {
	if strings.TrimSpace(manifest) == "" {
		return nil
	}
	parts := strings.Split(manifest, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
