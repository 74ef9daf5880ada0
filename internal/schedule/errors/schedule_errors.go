package scheduleerrors

import (
	"net/http"

	"jovenva-attendance/internal/shared/apperror"
)

var (
	ErrTaskNotFound = apperror.New(
		apperror.CodeNotFound,
		"Task not found",
		http.StatusNotFound,
	)
	ErrTaskForbidden = apperror.New(
		apperror.CodeForbidden,
		"Only the creator, the assignee or an admin can change this task",
		http.StatusForbidden,
	)
	ErrTaskDeleteForbidden = apperror.New(
		apperror.CodeForbidden,
		"Only the creator or an admin can delete this task",
		http.StatusForbidden,
	)
	ErrDateRequired = apperror.New(
		apperror.CodeInvalidInput,
		"date is required",
		http.StatusBadRequest,
	)
	ErrInvalidTaskID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid task ID",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)
)
