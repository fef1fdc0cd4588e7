package application

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusDraft      = "DRAFT"
	StatusPending    = "PENDING"
	StatusInApproval = "IN_APPROVAL"
	StatusApproved   = "APPROVED"
	StatusRejected   = "REJECTED"
)

// ModuleSpec describes one application module (leave, ta, da, ltc): the
// extra fields it collects on top of the common set, its validation rules,
// and its lifecycle policy. All four modules share the same entity, service
// and handlers; only the ModuleSpec differs.
type ModuleSpec struct {
	Code   string // route segment, e.g. "da"
	Prefix string // application number prefix, e.g. "DA"
	Label  string

	RequiredText  []string // extra required free-text fields
	NumericFields []string // extra fields that must parse as numbers
	DateFields    []string // extra required date fields
	YearFields    []string // extra fields that must be exactly 4 digits

	AttachmentsRequired bool
	EditableStatuses    []string

	// ExtraColumns lists the module-specific fields in export column order.
	ExtraColumns []string
}

func (m ModuleSpec) Editable(status string) bool {
	for _, s := range m.EditableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// NewApplnNo builds a fresh application number, e.g. "DA-1733000000000".
// The number is assigned once at creation and never changes.
func (m ModuleSpec) NewApplnNo(now time.Time) string {
	return fmt.Sprintf("%s-%d", m.Prefix, now.UnixMilli())
}

var (
	Leave = ModuleSpec{
		Code:                "leave",
		Prefix:              "LEAVE",
		Label:               "Leave",
		AttachmentsRequired: true,
		EditableStatuses:    []string{StatusDraft},
	}

	TA = ModuleSpec{
		Code:                "ta",
		Prefix:              "TA",
		Label:               "Travel Allowance",
		RequiredText:        []string{"travelMode"},
		NumericFields:       []string{"distance", "taAmount"},
		AttachmentsRequired: true,
		EditableStatuses:    []string{StatusDraft},
		ExtraColumns:        []string{"travelMode", "distance", "taAmount"},
	}

	DA = ModuleSpec{
		Code:                "da",
		Prefix:              "DA",
		Label:               "Daily Allowance",
		RequiredText:        []string{"purpose"},
		NumericFields:       []string{"billAmount"},
		DateFields:          []string{"billDate"},
		AttachmentsRequired: true,
		EditableStatuses:    []string{StatusDraft},
		ExtraColumns:        []string{"billDate", "billAmount", "purpose"},
	}

	LTC = ModuleSpec{
		Code:                "ltc",
		Prefix:              "LTC",
		Label:               "Leave Travel Concession",
		RequiredText:        []string{"destination"},
		NumericFields:       []string{"familyCount"},
		YearFields:          []string{"claimYear"},
		AttachmentsRequired: true,
		EditableStatuses:    []string{StatusDraft},
		ExtraColumns:        []string{"destination", "familyCount", "claimYear"},
	}
)

func Modules() []ModuleSpec {
	return []ModuleSpec{Leave, TA, DA, LTC}
}

func ModuleByCode(code string) (ModuleSpec, bool) {
	for _, m := range Modules() {
		if m.Code == strings.ToLower(code) {
			return m, true
		}
	}
	return ModuleSpec{}, false
}
