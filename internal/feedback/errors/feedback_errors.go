package feedbackerrors

import (
	"net/http"

	"jovenva-attendance/internal/shared/apperror"
)

var (
	ErrMessageRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Message is required",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)
)
