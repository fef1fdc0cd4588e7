package application_test

import (
	"strings"
	"testing"
	"time"

	"approval-portal/internal/application"

	"github.com/stretchr/testify/assert"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	assert.NoError(t, err)
	return ts
}

func validDAFields() map[string]string {
	return map[string]string{
		"reason":     "Official travel to regional office",
		"contact":    "9876543210",
		"startDate":  "2026-03-01",
		"endDate":    "2026-03-03",
		"billDate":   "2026-03-02",
		"billAmount": "1250.50",
		"purpose":    "Accommodation",
	}
}

func TestNormalizeContact(t *testing.T) {
	t.Run("strips non-digits and truncates", func(t *testing.T) {
		assert.Equal(t, "9876543210", application.NormalizeContact("98-765-43210"))
		assert.Equal(t, "9876543210", application.NormalizeContact("(987) 654-3210 ext 99"))
		assert.Equal(t, "98765", application.NormalizeContact("9 8 7 6 5"))
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{"98-765-43210", "9876543210", "abc123", ""}
		for _, in := range inputs {
			once := application.NormalizeContact(in)
			assert.Equal(t, once, application.NormalizeContact(once))
		}
	})
}

func TestValidate_DA(t *testing.T) {
	t.Run("all rules pass", func(t *testing.T) {
		errs := application.Validate(application.DA, validDAFields(), 1)
		assert.Empty(t, errs)
	})

	t.Run("required text fails on whitespace", func(t *testing.T) {
		fields := validDAFields()
		fields["reason"] = "   "
		fields["purpose"] = ""

		errs := application.Validate(application.DA, fields, 1)

		assert.Contains(t, errs, "reason")
		assert.Contains(t, errs, "purpose")
	})

	t.Run("end date before start date", func(t *testing.T) {
		fields := validDAFields()
		fields["startDate"] = "2026-03-10"
		fields["endDate"] = "2026-03-09"

		errs := application.Validate(application.DA, fields, 1)

		assert.Contains(t, errs, "endDate")
		assert.NotContains(t, errs, "startDate")
	})

	t.Run("dates compared as calendar dates not strings", func(t *testing.T) {
		// "2026-1-2" style input would break a lexicographic compare; the
		// strict layout rejects it as a format error instead.
		fields := validDAFields()
		fields["startDate"] = "2026-3-1"

		errs := application.Validate(application.DA, fields, 1)

		assert.Contains(t, errs, "startDate")
	})

	t.Run("contact validated after normalization", func(t *testing.T) {
		fields := validDAFields()
		fields["contact"] = "98-765-43210"
		assert.Empty(t, application.Validate(application.DA, fields, 1))

		fields["contact"] = "12345"
		errs := application.Validate(application.DA, fields, 1)
		assert.Contains(t, errs, "contact")
	})

	t.Run("numeric field rejects junk", func(t *testing.T) {
		fields := validDAFields()
		fields["billAmount"] = "1,250.50" // thousands separator strips clean
		assert.Empty(t, application.Validate(application.DA, fields, 1))

		fields["billAmount"] = "twelve hundred"
		errs := application.Validate(application.DA, fields, 1)
		assert.Contains(t, errs, "billAmount")
	})

	t.Run("extra date field required", func(t *testing.T) {
		fields := validDAFields()
		fields["billDate"] = "not-a-date"

		errs := application.Validate(application.DA, fields, 1)

		assert.Contains(t, errs, "billDate")
	})

	t.Run("missing attachments fail the files rule", func(t *testing.T) {
		errs := application.Validate(application.DA, validDAFields(), 0)
		assert.Contains(t, errs, "files")
	})
}

func TestValidate_LTC(t *testing.T) {
	fields := map[string]string{
		"reason":      "Annual family trip",
		"contact":     "9876543210",
		"startDate":   "2026-05-01",
		"endDate":     "2026-05-15",
		"destination": "Shimla",
		"familyCount": "4",
		"claimYear":   "2026",
	}

	t.Run("valid", func(t *testing.T) {
		assert.Empty(t, application.Validate(application.LTC, fields, 2))
	})

	t.Run("claim year must be exactly four digits", func(t *testing.T) {
		for _, bad := range []string{"26", "20266", "twenty26", ""} {
			f := map[string]string{}
			for k, v := range fields {
				f[k] = v
			}
			f["claimYear"] = bad

			errs := application.Validate(application.LTC, f, 2)
			assert.Contains(t, errs, "claimYear", "claimYear=%q", bad)
		}
	})
}

func TestValidate_RulesIndependentOfOrder(t *testing.T) {
	// Every failing field is reported, not just the first.
	errs := application.Validate(application.DA, map[string]string{}, 0)

	for _, key := range []string{"reason", "purpose", "startDate", "endDate", "contact", "billDate", "billAmount", "files"} {
		assert.Contains(t, errs, key)
	}
}

func TestModuleSpec_NewApplnNo(t *testing.T) {
	no := application.DA.NewApplnNo(mustTime(t, "2024-12-01T00:00:00Z"))
	assert.True(t, strings.HasPrefix(no, "DA-"))
	assert.Equal(t, "DA-1733011200000", no)
}

func TestJoinSplitFileNames(t *testing.T) {
	joined := application.JoinFileNames([]string{"a.pdf", " b.png ", ""})
	assert.Equal(t, "a.pdf;b.png", joined)

	assert.Equal(t, []string{"a.pdf", "b.png"}, application.SplitFileNames("a.pdf; b.png;"))
	assert.Nil(t, application.SplitFileNames("  "))
}
