package approval

import "approval-portal/internal/application"

// Tab names one view of an approver's worklist. Membership is computed
// from the approver's own relationship to each application, so the same
// application shows up under different tabs for different approvers.
type Tab string

const (
	TabPending          Tab = "PENDING"
	TabForwarded        Tab = "FORWARDED"
	TabApproved         Tab = "APPROVED"
	TabRejected         Tab = "REJECTED"
	TabRejectedByHigher Tab = "REJECTED_BY_HIGHER"
)

const (
	ActionApproved = "APPROVED"
	ActionRejected = "REJECTED"
)

// Tabs lists every worklist tab in display order.
func Tabs() []Tab {
	return []Tab{TabPending, TabForwarded, TabApproved, TabRejected, TabRejectedByHigher}
}

// TabView is the per-approver projection a tab decision needs: the
// application's overall status plus what this approver can do and did do.
type TabView struct {
	Status    string
	CanAct    bool
	ActedByMe bool
	MyAction  string
}

// InTab decides whether an application belongs on the given tab for the
// approver the view was computed for. Every view lands in at most one tab:
// either the approver can still act, or their recorded action combined
// with the overall status places it.
func InTab(tab Tab, v TabView) bool {
	switch tab {
	case TabPending:
		return v.CanAct
	case TabForwarded:
		return v.ActedByMe && v.MyAction == ActionApproved && v.Status == application.StatusInApproval
	case TabApproved:
		return v.ActedByMe && v.MyAction == ActionApproved && v.Status == application.StatusApproved
	case TabRejected:
		return v.ActedByMe && v.MyAction == ActionRejected
	case TabRejectedByHigher:
		return v.ActedByMe && v.MyAction == ActionApproved && v.Status == application.StatusRejected
	default:
		return false
	}
}

// FilterTab keeps the items belonging on the given tab, preserving order.
func FilterTab(tab Tab, items []PendingItem) []PendingItem {
	out := make([]PendingItem, 0, len(items))
	for _, item := range items {
		if InTab(tab, item.TabView()) {
			out = append(out, item)
		}
	}
	return out
}
