package portal

import (
	"errors"
	"time"

	"approval-portal/internal/application"
)

// FormState holds the draft field values for exactly one application,
// new or being edited, together with its attachment partition and the
// current field-keyed error map.
type FormState struct {
	Spec application.ModuleSpec

	ApplnNo     string
	EmpID       string
	Name        string
	Directorate string
	Division    string
	Fields      map[string]string

	NewFiles      []application.Upload
	RetainedFiles []string

	Errors application.ErrorMap

	now func() time.Time
}

// NewFormState starts an empty form for a new application, pre-filled
// with the session's identity snapshot.
func NewFormState(spec application.ModuleSpec, s Session) *FormState {
	return &FormState{
		Spec:        spec,
		EmpID:       s.EmpID,
		Name:        s.Name,
		Directorate: s.Directorate,
		Division:    s.Division,
		Fields: map[string]string{
			"contact": s.Phone,
		},
		Errors: application.ErrorMap{},
		now:    time.Now,
	}
}

// LoadFrom populates the form from an existing application for editing.
// Server files become the retained list; there are no new files yet.
func (f *FormState) LoadFrom(app application.ApplicationResponse) {
	f.ApplnNo = app.ApplnNo
	f.EmpID = app.EmpID
	f.Name = app.Name
	f.Directorate = app.Directorate
	f.Division = app.Division
	f.Fields = map[string]string{
		"reason":    app.Reason,
		"contact":   app.Contact,
		"startDate": app.StartDate,
		"endDate":   app.EndDate,
	}
	for k, v := range app.Extras {
		f.Fields[k] = v
	}
	f.RetainedFiles = application.SplitFileNames(app.FileName)
	f.NewFiles = nil
	f.Errors = application.ErrorMap{}
}

func (f *FormState) SetField(name, value string) {
	if f.Fields == nil {
		f.Fields = map[string]string{}
	}
	f.Fields[name] = value
}

// AttachFile queues a local file for the next submission.
func (f *FormState) AttachFile(up application.Upload) {
	f.NewFiles = append(f.NewFiles, up)
}

// RemoveServerFile drops a retained server file; omitting it from the
// next update is an explicit delete.
func (f *FormState) RemoveServerFile(storedName string) {
	kept := f.RetainedFiles[:0]
	for _, n := range f.RetainedFiles {
		if n != storedName {
			kept = append(kept, n)
		}
	}
	f.RetainedFiles = kept
}

// Validate runs the shared validation rules and stores the result as the
// form's error map. Returns true when the form may be submitted.
func (f *FormState) Validate() bool {
	f.Errors = application.Validate(f.Spec, f.Fields, len(f.NewFiles)+len(f.RetainedFiles))
	return len(f.Errors) == 0
}

// ApplyServerErrors merges authoritative server-side field errors into
// the local error map; server entries win on key collisions.
func (f *FormState) ApplyServerErrors(errs *FieldErrors) {
	if f.Errors == nil {
		f.Errors = application.ErrorMap{}
	}
	for k, v := range errs.Fields {
		f.Errors[k] = v
	}
}

// Input assembles the submission payload. A brand-new form is assigned
// its application number here, once, and keeps it on retries.
func (f *FormState) Input() application.SubmitInput {
	if f.ApplnNo == "" {
		f.ApplnNo = f.Spec.NewApplnNo(f.now())
	}
	extras := map[string]string{}
	base := map[string]bool{"reason": true, "contact": true, "startDate": true, "endDate": true}
	for k, v := range f.Fields {
		if !base[k] {
			extras[k] = v
		}
	}
	return application.SubmitInput{
		ApplnNo:       f.ApplnNo,
		EmpID:         f.EmpID,
		Name:          f.Name,
		Directorate:   f.Directorate,
		Division:      f.Division,
		Contact:       application.NormalizeContact(f.Fields["contact"]),
		Reason:        f.Fields["reason"],
		StartDate:     f.Fields["startDate"],
		EndDate:       f.Fields["endDate"],
		Extras:        extras,
		NewFiles:      f.NewFiles,
		RetainedFiles: f.RetainedFiles,
	}
}

// ErrNotEditable blocks the edit action for anything past DRAFT.
var ErrNotEditable = errors.New("This application has already been sent for approval and can no longer be edited")
