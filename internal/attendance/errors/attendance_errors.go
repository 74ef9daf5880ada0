package attendanceerrors

import (
	"net/http"

	"jovenva-attendance/internal/shared/apperror"
)

const (
	CodeNotCheckedIn      = "NOT_CHECKED_IN"
	CodeAlreadyCheckedOut = "ALREADY_CHECKED_OUT"
)

var (
	ErrCheckInWindowClosed = apperror.New(
		apperror.CodeInvalidState,
		"Check-in is only available from 8:00 PM to 11:59 AM",
		http.StatusConflict,
	)
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeConflict,
		"Already checked in for this shift",
		http.StatusConflict,
	)
	ErrNotCheckedIn = apperror.New(
		CodeNotCheckedIn,
		"No open check-in found for this shift",
		http.StatusBadRequest,
	)
	ErrAlreadyCheckedOut = apperror.New(
		CodeAlreadyCheckedOut,
		"Already checked out for this shift",
		http.StatusConflict,
	)
	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)
)
