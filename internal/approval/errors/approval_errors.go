package approvalerrors

import (
	"net/http"

	"approval-portal/internal/shared/apperror"
)

var (
	ErrNotApprovalAuthority = apperror.New(
		apperror.CodeConflict,
		"You are not the correct approval authority",
		http.StatusConflict,
	)
	ErrStageNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval stage not found",
		http.StatusNotFound,
	)
	ErrAlreadyActioned = apperror.New(
		apperror.CodeConflict,
		"This application has already been actioned",
		http.StatusConflict,
	)
	ErrNoRouteForDirectorate = apperror.New(
		apperror.CodeInvalidState,
		"no approval route configured for this directorate",
		http.StatusBadRequest,
	)
	ErrRoleNoRequired = apperror.New(
		apperror.CodeInvalidInput,
		"roleNo is required",
		http.StatusBadRequest,
	)
	ErrApproverIDRequired = apperror.New(
		apperror.CodeInvalidInput,
		"approverId is required",
		http.StatusBadRequest,
	)
)
