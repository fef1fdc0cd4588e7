package application

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Application is one Leave/TA/DA/LTC submission. The identity snapshot
// (name, directorate, division, contact) is copied from the submitter's
// profile at submission time and not re-derived afterwards. Module-specific
// fields live in Extras; the attachment manifest is kept semicolon-joined
// in FileName, matching the wire shape.
type Application struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApplnNo string    `gorm:"type:varchar(40);uniqueIndex;not null"`
	Module  string    `gorm:"type:varchar(10);not null;index:idx_applications_module_emp"`

	EmpID       string `gorm:"type:varchar(20);not null;index:idx_applications_module_emp"`
	Name        string `gorm:"type:varchar(255);not null"`
	Directorate string `gorm:"type:varchar(120)"`
	Division    string `gorm:"type:varchar(120)"`
	Contact     string `gorm:"type:varchar(10)"`

	Reason    string            `gorm:"type:text"`
	StartDate time.Time         `gorm:"type:date;not null"`
	EndDate   time.Time         `gorm:"type:date;not null"`
	Extras    datatypes.JSONMap `gorm:"type:jsonb"`
	FileName  string            `gorm:"type:text"`

	Status string `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_applications_status"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_applications_deleted_at"`
}

func (a *Application) extrasAsStrings() map[string]string {
	if len(a.Extras) == 0 {
		return nil
	}
	out := make(map[string]string, len(a.Extras))
	for k, v := range a.Extras {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func extrasFromStrings(extras map[string]string) datatypes.JSONMap {
	if len(extras) == 0 {
		return nil
	}
	out := make(datatypes.JSONMap, len(extras))
	for k, v := range extras {
		out[k] = v
	}
	return out
}
