package portal

import (
	"context"
	"io"
	"time"

	"approval-portal/internal/application"
	"approval-portal/internal/approval"
	"approval-portal/internal/export"
)

// ApproverView drives one module's approver console: the annotated
// worklist, the selected tab, and per-item remarks. Tab switches are
// pure re-filters; only decisions and explicit refreshes hit the network.
type ApproverView struct {
	Spec application.ModuleSpec

	items   []approval.PendingItem
	tab     approval.Tab
	remarks map[string]string

	client   *Client
	sessions *SessionStore
}

func NewApproverView(spec application.ModuleSpec, client *Client, sessions *SessionStore) *ApproverView {
	return &ApproverView{
		Spec:     spec,
		tab:      approval.TabPending,
		remarks:  map[string]string{},
		client:   client,
		sessions: sessions,
	}
}

// Refresh replaces the worklist from the server and implicitly drops all
// drafted remarks.
func (v *ApproverView) Refresh(ctx context.Context) error {
	session, err := v.sessions.Load()
	if err != nil {
		return err
	}
	items, err := v.client.Pending(ctx, v.Spec, session.EmpID)
	if err != nil {
		v.items = nil
		return err
	}
	v.items = items
	v.remarks = map[string]string{}
	return nil
}

// SelectTab changes the visible partition without any network call.
func (v *ApproverView) SelectTab(tab approval.Tab) {
	v.tab = tab
}

func (v *ApproverView) Tab() approval.Tab {
	return v.tab
}

// Visible filters the cached worklist for the selected tab.
func (v *ApproverView) Visible() []approval.PendingItem {
	return approval.FilterTab(v.tab, v.items)
}

// TabCounts sizes every tab from the one cached list.
func (v *ApproverView) TabCounts() map[approval.Tab]int {
	counts := make(map[approval.Tab]int, len(approval.Tabs()))
	for _, tab := range approval.Tabs() {
		counts[tab] = len(approval.FilterTab(tab, v.items))
	}
	return counts
}

// SetRemarks drafts free-text remarks for one item; they ride along with
// the next decision on that item.
func (v *ApproverView) SetRemarks(applnNo, text string) {
	v.remarks[applnNo] = text
}

func (v *ApproverView) Remarks(applnNo string) string {
	return v.remarks[applnNo]
}

// Approve records an approval under the active role, then reconciles by
// refreshing. Without an active role it short-circuits locally.
func (v *ApproverView) Approve(ctx context.Context, applnNo string) error {
	return v.decide(ctx, applnNo, v.client.Approve)
}

// Reject records a rejection under the active role, then refreshes.
func (v *ApproverView) Reject(ctx context.Context, applnNo string) error {
	return v.decide(ctx, applnNo, v.client.Reject)
}

type decideFunc func(ctx context.Context, spec application.ModuleSpec, applnNo, approverID string, roleNo int, remarks string) error

func (v *ApproverView) decide(ctx context.Context, applnNo string, act decideFunc) error {
	session, err := v.sessions.Load()
	if err != nil {
		return err
	}
	if session.ActiveRole == nil {
		return ErrNoActiveRole
	}

	if err := act(ctx, v.Spec, applnNo, session.EmpID, session.ActiveRole.RoleNo, v.remarks[applnNo]); err != nil {
		// The decision may have raced another approver; reconcile with the
		// server before surfacing the message. The item stays under its
		// prior tab until the refresh says otherwise.
		_ = v.Refresh(ctx)
		return err
	}
	return v.Refresh(ctx)
}

// Audit fetches the two-stage history for one item on demand.
func (v *ApproverView) Audit(ctx context.Context, applnNo string) (approval.AuditResponse, error) {
	return v.client.Audit(ctx, v.Spec, applnNo)
}

// ExportCSV serializes exactly what the selected tab shows.
func (v *ApproverView) ExportCSV(w io.Writer) error {
	return export.WriteCSV(w, v.Spec, visibleApplications(v.Visible()))
}

// ExportPrint renders the print document for the selected tab.
func (v *ApproverView) ExportPrint(w io.Writer) error {
	return export.WritePrintHTML(w, v.Spec, visibleApplications(v.Visible()), time.Now())
}

func visibleApplications(items []approval.PendingItem) []application.ApplicationResponse {
	out := make([]application.ApplicationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, item.Application)
	}
	return out
}
