package portal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"approval-portal/internal/application"
	"approval-portal/internal/portal"

	"github.com/stretchr/testify/assert"
)

func newSessions(t *testing.T, s portal.Session) *portal.SessionStore {
	t.Helper()
	st := portal.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	assert.NoError(t, st.Save(s))
	return st
}

// applicantServer answers the list endpoint with the given body and
// accepts submits/updates; it counts every request it sees.
func applicantServer(t *testing.T, listBody string, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "/empId/"):
			w.Write([]byte(listBody))
		case strings.Contains(r.URL.Path, "/final-submit/"):
			w.Write([]byte(`{"ok":true,"data":{"applnNo":"DA-100","status":"PENDING"}}`))
		case strings.Contains(r.URL.Path, "/update/"):
			w.Write([]byte(`{"ok":true,"data":{"applnNo":"DA-100","status":"DRAFT"}}`))
		case strings.HasSuffix(r.URL.Path, "/submit"):
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"ok":true,"data":{"applnNo":"DA-999","status":"DRAFT"}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
}

const draftListBody = `{"ok":true,"data":[
	{"applnNo":"DA-100","empId":"EMP001","status":"DRAFT","reason":"Travel","contact":"9876543210","startDate":"2026-03-01","endDate":"2026-03-03","fileName":"1_a.pdf"},
	{"applnNo":"DA-200","empId":"EMP001","status":"PENDING","reason":"Medical"}
]}`

func TestApplicantView_Reload(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int64
	srv := applicantServer(t, draftListBody, &hits)
	defer srv.Close()

	v := portal.NewApplicantView(application.DA, portal.NewClient(srv.URL), newSessions(t, sessionFixture()))

	assert.NoError(t, v.Reload(ctx))
	assert.Equal(t, 2, v.Cache.Len())
}

func TestApplicantView_BeginEdit(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int64
	srv := applicantServer(t, draftListBody, &hits)
	defer srv.Close()

	v := portal.NewApplicantView(application.DA, portal.NewClient(srv.URL), newSessions(t, sessionFixture()))
	assert.NoError(t, v.Reload(ctx))

	t.Run("success loads a draft into the form", func(t *testing.T) {
		assert.NoError(t, v.BeginEdit("DA-100"))
		assert.NotNil(t, v.Form)
		assert.Equal(t, "DA-100", v.Form.ApplnNo)
		assert.Equal(t, []string{"1_a.pdf"}, v.Form.RetainedFiles)
	})

	t.Run("negative anything past draft refuses to load", func(t *testing.T) {
		v.Form = nil

		err := v.BeginEdit("DA-200")

		assert.ErrorIs(t, err, portal.ErrNotEditable)
		assert.Nil(t, v.Form)
	})

	t.Run("negative unknown number", func(t *testing.T) {
		assert.Error(t, v.BeginEdit("DA-404"))
	})
}

func TestApplicantView_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("negative invalid form makes no network call", func(t *testing.T) {
		var hits atomic.Int64
		srv := applicantServer(t, draftListBody, &hits)
		defer srv.Close()

		v := portal.NewApplicantView(application.DA, portal.NewClient(srv.URL), newSessions(t, sessionFixture()))
		assert.NoError(t, v.NewApplication())
		before := hits.Load()

		err := v.Submit(ctx)

		assert.EqualError(t, err, "Please correct the highlighted fields")
		assert.NotEmpty(t, v.Form.Errors)
		assert.Equal(t, before, hits.Load())
	})

	t.Run("success on a new form creates then reloads", func(t *testing.T) {
		var hits atomic.Int64
		var sawSubmit, sawUpdate bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			switch {
			case strings.HasSuffix(r.URL.Path, "/submit"):
				sawSubmit = true
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"ok":true,"data":{"applnNo":"DA-999","status":"DRAFT"}}`))
			case strings.Contains(r.URL.Path, "/update/"):
				sawUpdate = true
				w.Write([]byte(`{"ok":true,"data":{}}`))
			case strings.Contains(r.URL.Path, "/empId/"):
				w.Write([]byte(draftListBody))
			}
		}))
		defer srv.Close()

		v := portal.NewApplicantView(application.DA, portal.NewClient(srv.URL), newSessions(t, sessionFixture()))
		assert.NoError(t, v.NewApplication())
		v.Form.SetField("reason", "Official travel")
		v.Form.SetField("startDate", "2026-03-01")
		v.Form.SetField("endDate", "2026-03-03")
		v.Form.SetField("purpose", "Accommodation")
		v.Form.SetField("billDate", "2026-03-02")
		v.Form.SetField("billAmount", "1250.50")
		v.Form.AttachFile(application.Upload{FileName: "bill.pdf", Content: strings.NewReader("x")})

		err := v.Submit(ctx)

		assert.NoError(t, err)
		assert.True(t, sawSubmit)
		assert.False(t, sawUpdate)
		assert.Nil(t, v.Form)
		assert.Equal(t, 2, v.Cache.Len())
	})

	t.Run("success on an edited draft updates in place", func(t *testing.T) {
		var hits atomic.Int64
		var sawUpdate bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			switch {
			case strings.Contains(r.URL.Path, "/update/DA-100"):
				sawUpdate = true
				w.Write([]byte(`{"ok":true,"data":{"applnNo":"DA-100","status":"DRAFT"}}`))
			case strings.Contains(r.URL.Path, "/empId/"):
				w.Write([]byte(draftListBody))
			}
		}))
		defer srv.Close()

		v := portal.NewApplicantView(application.DA, portal.NewClient(srv.URL), newSessions(t, sessionFixture()))
		assert.NoError(t, v.Reload(ctx))
		assert.NoError(t, v.BeginEdit("DA-100"))
		v.Form.SetField("purpose", "Accommodation")
		v.Form.SetField("billDate", "2026-03-02")
		v.Form.SetField("billAmount", "1250.50")
		v.Form.SetField("startDate", "2026-03-01")
		v.Form.SetField("endDate", "2026-03-03")

		err := v.Submit(ctx)

		assert.NoError(t, err)
		assert.True(t, sawUpdate)
		assert.Nil(t, v.Form)
	})

	t.Run("negative server field errors merge into the form", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"fieldErrors":{"billAmount":"billAmount must be a number"},"message":"Please correct the highlighted fields"}`))
		}))
		defer srv.Close()

		v := portal.NewApplicantView(application.DA, portal.NewClient(srv.URL), newSessions(t, sessionFixture()))
		assert.NoError(t, v.NewApplication())
		v.Form.SetField("reason", "Official travel")
		v.Form.SetField("startDate", "2026-03-01")
		v.Form.SetField("endDate", "2026-03-03")
		v.Form.SetField("purpose", "Accommodation")
		v.Form.SetField("billDate", "2026-03-02")
		v.Form.SetField("billAmount", "1250.50")
		v.Form.AttachFile(application.Upload{FileName: "bill.pdf", Content: strings.NewReader("x")})

		err := v.Submit(ctx)

		assert.Error(t, err)
		assert.NotNil(t, v.Form)
		assert.Equal(t, "billAmount must be a number", v.Form.Errors["billAmount"])
	})
}

func TestApplicantView_SendForApproval(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int64
	srv := applicantServer(t, draftListBody, &hits)
	defer srv.Close()

	v := portal.NewApplicantView(application.DA, portal.NewClient(srv.URL), newSessions(t, sessionFixture()))
	assert.NoError(t, v.Reload(ctx))

	assert.NoError(t, v.SendForApproval(ctx, "DA-100"))
	// final-submit plus the follow-up reload, on top of the first reload.
	assert.Equal(t, int64(3), hits.Load())
}
