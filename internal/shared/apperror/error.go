package apperror

import "fmt"

// AppError is the error type every sentinel in this codebase is built
// from. Comparisons go through errors.Is, which matches the sentinel
// pointer itself, so sentinels must be declared once and shared.
type AppError struct {
	Code       string
	Message    string // safe to show to the user
	HTTPStatus int
	Err        error // wrapped cause, may be nil
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds a sentinel error with the given code, user-facing message
// and HTTP status.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}
