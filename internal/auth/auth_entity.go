package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is one portal account. Roles holds the approval roles the employee
// may act under, as a JSON list; the browser picks one active role after
// login.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpID       string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Directorate string    `gorm:"type:varchar(120)"`
	Division    string    `gorm:"type:varchar(120)"`
	Phone       string    `gorm:"type:varchar(10)"`

	Password           string         `gorm:"type:varchar(255);not null"`
	Roles              datatypes.JSON `gorm:"type:jsonb"`
	LastPasswordChange time.Time      `gorm:"not null"`
	IsActive           bool           `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Role is one approval capacity: the role itself plus the directorate and
// division it applies to.
type Role struct {
	RoleName string `json:"roleName"`
	RoleNo   int    `json:"roleNo"`
	Dte      string `json:"dte"`
	Div      string `json:"div"`
}
