package apperror

// AppError is a failure the HTTP layer can report as-is: a stable code for
// clients, a message safe to show a user and the status to answer with.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *AppError) Error() string {
	return e.Message
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}
