package auth

type LoginRequest struct {
	EmpID    string `json:"empId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest links an employee profile to a portal account. The
// identity snapshot and role list are stored as-is and echoed back in
// every session snapshot afterwards.
type RegisterRequest struct {
	EmpID       string `json:"empId" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	Name        string `json:"name" binding:"required"`
	Directorate string `json:"directorate"`
	Division    string `json:"division"`
	Phone       string `json:"phone"`
	Roles       []Role `json:"roles"`
}

type ChangePasswordRequest struct {
	EmpID       string `json:"empId" binding:"required"`
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// LoginResponse is the session snapshot the browser caches: identity for
// pre-filling forms, roles for the approver console, and the password
// expiry hint the dashboard surfaces.
type LoginResponse struct {
	Token string `json:"token"`

	EmpID       string `json:"empId"`
	Name        string `json:"name"`
	Directorate string `json:"directorate"`
	Division    string `json:"division"`
	Phone       string `json:"phone"`
	Roles       []Role `json:"roles"`

	LastPasswordChangeDate string `json:"lastPasswordChangeDate"`
	DaysToPasswordExpiry   int    `json:"daysToPasswordExpiry"`
	PasswordExpiringSoon   bool   `json:"passwordExpiringSoon"`
}
