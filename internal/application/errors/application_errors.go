package applicationerrors

import (
	"net/http"

	"approval-portal/internal/shared/apperror"
)

var (
	ErrUnknownModule = apperror.New(
		apperror.CodeNotFound,
		"unknown application module",
		http.StatusNotFound,
	)
	ErrApplicationNotFound = apperror.New(
		apperror.CodeNotFound,
		"application not found",
		http.StatusNotFound,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrDuplicatePeriod = apperror.New(
		apperror.CodeConflict,
		"Duplicate application for this period",
		http.StatusConflict,
	)
	ErrDuplicateApplnNo = apperror.New(
		apperror.CodeConflict,
		"An application with this number already exists",
		http.StatusConflict,
	)
	ErrNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"application can no longer be edited in its current status",
		http.StatusBadRequest,
	)
	ErrNotDraft = apperror.New(
		apperror.CodeInvalidState,
		"only a draft application can be sent for approval",
		http.StatusBadRequest,
	)
	ErrApplnNoRequired = apperror.New(
		apperror.CodeInvalidInput,
		"application number is required",
		http.StatusBadRequest,
	)
	ErrEmpIDRequired = apperror.New(
		apperror.CodeInvalidInput,
		"employee id is required",
		http.StatusBadRequest,
	)
)
