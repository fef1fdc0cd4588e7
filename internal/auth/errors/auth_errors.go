package autherrors

import (
	"net/http"

	"approval-portal/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"invalid employee id or password",
		http.StatusUnauthorized,
	)
	ErrPasswordExpired = apperror.New(
		apperror.CodeForbidden,
		"password has expired, please change it before logging in",
		http.StatusForbidden,
	)
	ErrPasswordMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"current password is incorrect",
		http.StatusBadRequest,
	)
	ErrPasswordReused = apperror.New(
		apperror.CodeInvalidInput,
		"new password must differ from the current one",
		http.StatusBadRequest,
	)
	ErrEmpIDTaken = apperror.New(
		apperror.CodeConflict,
		"This employee id is already registered",
		http.StatusConflict,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"invalid or expired token",
		http.StatusUnauthorized,
	)
	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"failed to generate token",
		http.StatusInternalServerError,
	)
)
