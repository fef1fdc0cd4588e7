package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one inbox entry for an employee, produced from
// application lifecycle events.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpID     string    `gorm:"type:varchar(20);not null;index:idx_notifications_emp"`
	Module    string    `gorm:"type:varchar(10);not null"`
	ApplnNo   string    `gorm:"type:varchar(40);not null"`
	Message   string    `gorm:"type:text;not null"`
	Read      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}
