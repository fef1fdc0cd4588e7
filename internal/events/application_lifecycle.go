package events

import "time"

const (
	ApplicationLifecycleTopic = "hr.application.lifecycle.v1"

	TypeApplicationSubmitted = "application_submitted"
	TypeApplicationApproved  = "application_approved"
	TypeApplicationRejected  = "application_rejected"
)

// ApplicationStatusChangedEvent is published whenever an application moves
// between workflow statuses. Consumers fan it out into notifications.
type ApplicationStatusChangedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	Module     string    `json:"module"`
	ApplnNo    string    `json:"appln_no"`
	EmpID      string    `json:"emp_id"`
	Status     string    `json:"status"`
	ActorName  string    `json:"actor_name,omitempty"`
	Remarks    string    `json:"remarks,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
