package approval

import (
	"time"

	"approval-portal/internal/application"
)

// PendingItem is one application in an approver's worklist, carrying the
// per-approver flags the tab filter runs on.
type PendingItem struct {
	Application application.ApplicationResponse `json:"application"`
	Status      string                          `json:"status"`
	CanAct      bool                            `json:"canAct"`
	ActedByMe   bool                            `json:"actedByMe"`
	MyAction    *string                         `json:"myAction"`
}

func (p PendingItem) TabView() TabView {
	v := TabView{
		Status:    p.Status,
		CanAct:    p.CanAct,
		ActedByMe: p.ActedByMe,
	}
	if p.MyAction != nil {
		v.MyAction = *p.MyAction
	}
	return v
}

// AuditResponse flattens both stages of an application's chain into the
// rec1/rec2 shape the audit view renders.
type AuditResponse struct {
	ApplnNo string `json:"applnNo"`
	Module  string `json:"module"`
	Status  string `json:"status"`

	Rec1ID         string `json:"rec1Id"`
	Rec1Name       string `json:"rec1Name"`
	Rec1Role       string `json:"rec1Role"`
	Rec1Action     string `json:"rec1Action"`
	Rec1ActionDate string `json:"rec1ActionDate"`
	Rec1Remarks    string `json:"rec1Remarks"`

	Rec2ID         string `json:"rec2Id"`
	Rec2Name       string `json:"rec2Name"`
	Rec2Role       string `json:"rec2Role"`
	Rec2Action     string `json:"rec2Action"`
	Rec2ActionDate string `json:"rec2ActionDate"`
	Rec2Remarks    string `json:"rec2Remarks"`
}

const actionDateLayout = "2006-01-02 15:04"

func fillAuditStage(resp *AuditResponse, s Stage) {
	action := ""
	if s.Action != nil {
		action = *s.Action
	}
	actionDate := ""
	if s.ActionDate != nil {
		actionDate = s.ActionDate.In(time.Local).Format(actionDateLayout)
	}
	switch s.Stage {
	case 1:
		resp.Rec1ID = s.ApproverID
		resp.Rec1Name = s.ApproverName
		resp.Rec1Role = s.RoleName
		resp.Rec1Action = action
		resp.Rec1ActionDate = actionDate
		resp.Rec1Remarks = s.Remarks
	case 2:
		resp.Rec2ID = s.ApproverID
		resp.Rec2Name = s.ApproverName
		resp.Rec2Role = s.RoleName
		resp.Rec2Action = action
		resp.Rec2ActionDate = actionDate
		resp.Rec2Remarks = s.Remarks
	}
}
