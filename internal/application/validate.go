package application

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "approval-portal/internal/application/errors"
)

// ErrorMap keys failing field names to user-facing messages. An empty map
// means every rule passed.
type ErrorMap map[string]string

// ValidationError carries the field-keyed error map of a failed submission.
// Handlers serialize it as {"fieldErrors": ..., "message": ...}.
type ValidationError struct {
	Fields ErrorMap
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "validation failed: " + strings.Join(keys, ", ")
}

// dateLayout is the wire format for every date field.
const dateLayout = "2006-01-02"

var (
	nonDigit    = regexp.MustCompile(`\D`)
	yearPattern = regexp.MustCompile(`^\d{4}$`)
	numberJunk  = regexp.MustCompile(`[^\d.\-]`)
)

// NormalizeContact strips every non-digit character and truncates to 10
// digits. The normalized value, not the raw keystrokes, is what gets
// validated and persisted. Idempotent: normalizing twice changes nothing.
func NormalizeContact(raw string) string {
	digits := nonDigit.ReplaceAllString(raw, "")
	if len(digits) > 10 {
		digits = digits[:10]
	}
	return digits
}

// ParseDate parses a YYYY-MM-DD wire date. Dates are compared as calendar
// dates, never lexicographically.
func ParseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, apperrors.ErrInvalidDateFormat
	}
	return t, nil
}

func parseNumber(v string) (float64, error) {
	cleaned := numberJunk.ReplaceAllString(v, "")
	return strconv.ParseFloat(cleaned, 64)
}

// Validate applies every rule of the module spec to the flat field map and
// the attachment count. Pure: no side effects, rules independent of order.
// The same function backs both the portal client's pre-flight check and the
// authoritative server-side check.
func Validate(spec ModuleSpec, fields map[string]string, attachmentCount int) ErrorMap {
	errs := ErrorMap{}

	requireText := func(key string) {
		if strings.TrimSpace(fields[key]) == "" {
			errs[key] = key + " is required"
		}
	}

	requireText("reason")
	for _, key := range spec.RequiredText {
		requireText(key)
	}

	start, startErr := ParseDate(fields["startDate"])
	if fields["startDate"] == "" || startErr != nil {
		errs["startDate"] = "a valid start date is required"
	}
	end, endErr := ParseDate(fields["endDate"])
	if fields["endDate"] == "" || endErr != nil {
		errs["endDate"] = "a valid end date is required"
	} else if startErr == nil && end.Before(start) {
		errs["endDate"] = "end date must not be before start date"
	}

	for _, key := range spec.DateFields {
		if _, err := ParseDate(fields[key]); err != nil {
			errs[key] = key + " must be a valid date"
		}
	}

	if len(NormalizeContact(fields["contact"])) != 10 {
		errs["contact"] = "contact must be a 10 digit number"
	}

	for _, key := range spec.NumericFields {
		if _, err := parseNumber(fields[key]); err != nil {
			errs[key] = key + " must be a number"
		}
	}

	for _, key := range spec.YearFields {
		if !yearPattern.MatchString(fields[key]) {
			errs[key] = key + " must be a 4 digit year"
		}
	}

	if spec.AttachmentsRequired && attachmentCount == 0 {
		errs["files"] = "at least one attachment is required"
	}

	return errs
}
