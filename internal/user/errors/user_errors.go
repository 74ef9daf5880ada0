package usererrors

import (
	"net/http"

	"jovenva-attendance/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrOwnRole = apperror.New(
		apperror.CodeForbidden,
		"You cannot change your own role",
		http.StatusForbidden,
	)
)
