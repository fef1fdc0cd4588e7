package approval

import (
	"time"

	"github.com/google/uuid"
)

// Stage is one approver's slot in an application's two-step chain.
// Stage 1 is the first recommender, stage 2 the final authority. Action
// stays nil until the approver decides.
type Stage struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApplnNo      string    `gorm:"type:varchar(40);not null;index:idx_approval_stages_appln"`
	Module       string    `gorm:"type:varchar(10);not null"`
	Stage        int       `gorm:"not null"`
	ApproverID   string    `gorm:"type:varchar(20);not null;index:idx_approval_stages_approver"`
	ApproverName string    `gorm:"type:varchar(255);not null"`
	RoleNo       int       `gorm:"not null"`
	RoleName     string    `gorm:"type:varchar(120);not null"`
	Action       *string   `gorm:"type:varchar(10)"`
	ActionDate   *time.Time
	Remarks      string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *Stage) TableName() string {
	return "approval_stages"
}

// Route maps a directorate to one approver slot; the two rows per
// directorate seed the stage chain when an application is sent for
// approval.
type Route struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Directorate  string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_approval_routes_dte_stage"`
	Stage        int       `gorm:"not null;uniqueIndex:uq_approval_routes_dte_stage"`
	ApproverID   string    `gorm:"type:varchar(20);not null"`
	ApproverName string    `gorm:"type:varchar(255);not null"`
	RoleNo       int       `gorm:"not null"`
	RoleName     string    `gorm:"type:varchar(120);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r *Route) TableName() string {
	return "approval_routes"
}
