package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"approval-portal/internal/auth"
)

// ErrNoActiveRole is the blocking message shown when an approval action
// is attempted without a selected role.
var ErrNoActiveRole = errors.New("No active role selected. Please login again.")

// Session is the cached login snapshot plus the role the user picked for
// this sitting. Everything except ActiveRole comes verbatim from the
// login response.
type Session struct {
	Token       string      `json:"token"`
	EmpID       string      `json:"empId"`
	Name        string      `json:"name"`
	Directorate string      `json:"directorate"`
	Division    string      `json:"division"`
	Phone       string      `json:"phone"`
	Roles       []auth.Role `json:"roles"`
	ActiveRole  *auth.Role  `json:"activeRole,omitempty"`

	LastPasswordChangeDate string `json:"lastPasswordChangeDate"`
	DaysToPasswordExpiry   int    `json:"daysToPasswordExpiry"`
	PasswordExpiringSoon   bool   `json:"passwordExpiringSoon"`
}

// NewSession builds the snapshot from a login response.
func NewSession(resp auth.LoginResponse) Session {
	return Session{
		Token:                  resp.Token,
		EmpID:                  resp.EmpID,
		Name:                   resp.Name,
		Directorate:            resp.Directorate,
		Division:               resp.Division,
		Phone:                  resp.Phone,
		Roles:                  resp.Roles,
		LastPasswordChangeDate: resp.LastPasswordChangeDate,
		DaysToPasswordExpiry:   resp.DaysToPasswordExpiry,
		PasswordExpiringSoon:   resp.PasswordExpiringSoon,
	}
}

// SelectRole sets the active role by role number; the role must be one of
// the session's own.
func (s *Session) SelectRole(roleNo int) error {
	for i := range s.Roles {
		if s.Roles[i].RoleNo == roleNo {
			s.ActiveRole = &s.Roles[i]
			return nil
		}
	}
	return fmt.Errorf("role %d not held by this user", roleNo)
}

// SessionStore persists the session as a JSON file. Views re-read the
// file on every access rather than holding the snapshot in memory, so a
// login or role switch in one view is seen by all others.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load reads the current session; a missing file means logged out.
func (st *SessionStore) Load() (Session, error) {
	raw, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt session file behaves like a logged-out state.
		return Session{}, nil
	}
	return s, nil
}

func (st *SessionStore) Save(s Session) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(st.path, raw, 0o600)
}

// Clear logs out by removing the stored session.
func (st *SessionStore) Clear() error {
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
