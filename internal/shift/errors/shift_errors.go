package shifterrors

import (
	"net/http"

	"jovenva-attendance/internal/shared/apperror"
)

var (
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidTimeOfDay = apperror.New(
		apperror.CodeInvalidInput,
		"invalid time format, expected HH:MM or HH:MM:SS",
		http.StatusBadRequest,
	)
	ErrTimezoneUnavailable = apperror.New(
		apperror.CodeInternalError,
		"timezone data unavailable",
		http.StatusInternalServerError,
	)
)
