package portal

import (
	"context"
	"errors"
	"io"
	"time"

	"approval-portal/internal/application"
	"approval-portal/internal/export"
)

// ApplicantView drives one module's submitter screen: the employee's own
// list, the single form being edited, and the submit/update/send-for-
// approval actions. Every successful mutation reloads the list; the view
// never patches a record locally.
type ApplicantView struct {
	Spec  application.ModuleSpec
	Cache ListCache
	Form  *FormState

	client   *Client
	sessions *SessionStore
}

func NewApplicantView(spec application.ModuleSpec, client *Client, sessions *SessionStore) *ApplicantView {
	return &ApplicantView{
		Spec:     spec,
		client:   client,
		sessions: sessions,
	}
}

// Reload replaces the cached list from the server.
func (v *ApplicantView) Reload(ctx context.Context) error {
	session, err := v.sessions.Load()
	if err != nil {
		return err
	}
	return v.Cache.Load(ctx, func(ctx context.Context) ([]application.ApplicationResponse, error) {
		return v.client.List(ctx, v.Spec, session.EmpID)
	})
}

// NewApplication starts a fresh form pre-filled from the session.
func (v *ApplicantView) NewApplication() error {
	session, err := v.sessions.Load()
	if err != nil {
		return err
	}
	v.Form = NewFormState(v.Spec, session)
	return nil
}

// BeginEdit populates the form from a cached application. Anything past
// DRAFT refuses to load and surfaces a blocking message instead.
func (v *ApplicantView) BeginEdit(applnNo string) error {
	app, ok := v.Cache.Find(applnNo)
	if !ok {
		return errors.New("application not found in the current list")
	}
	if !v.Spec.Editable(app.Status) {
		return ErrNotEditable
	}
	form := &FormState{Spec: v.Spec, now: time.Now}
	form.LoadFrom(app)
	v.Form = form
	return nil
}

// Submit validates locally, then creates or updates depending on whether
// the form was loaded from an existing application. Server field errors
// merge into the form's error map; success reloads the list and clears
// the form.
func (v *ApplicantView) Submit(ctx context.Context) error {
	if v.Form == nil {
		return errors.New("no form in progress")
	}
	if !v.Form.Validate() {
		// Failing fields stay highlighted; no network call is made.
		return errors.New("Please correct the highlighted fields")
	}

	in := v.Form.Input()
	var err error
	if _, found := v.Cache.Find(v.Form.ApplnNo); found {
		_, err = v.client.Update(ctx, v.Spec, v.Form.ApplnNo, in)
	} else {
		_, err = v.client.Submit(ctx, v.Spec, in)
	}
	if err != nil {
		var fieldErrs *FieldErrors
		if errors.As(err, &fieldErrs) {
			v.Form.ApplyServerErrors(fieldErrs)
		}
		return err
	}

	v.Form = nil
	return v.Reload(ctx)
}

// SendForApproval performs the status-only final submit, then reloads.
func (v *ApplicantView) SendForApproval(ctx context.Context, applnNo string) error {
	session, err := v.sessions.Load()
	if err != nil {
		return err
	}
	if _, err := v.client.FinalSubmit(ctx, v.Spec, applnNo, session.EmpID); err != nil {
		return err
	}
	return v.Reload(ctx)
}

// ExportCSV writes the current searched snapshot, not the raw cache.
func (v *ApplicantView) ExportCSV(w io.Writer, query string) error {
	return export.WriteCSV(w, v.Spec, v.Cache.Search(query))
}

// ExportPrint renders the print document for the current snapshot.
func (v *ApplicantView) ExportPrint(w io.Writer, query string) error {
	return export.WritePrintHTML(w, v.Spec, v.Cache.Search(query), time.Now())
}
