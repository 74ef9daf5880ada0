package apperror

import "net/http"

// ErrForbidden answers a caller whose role does not grant the route.
var ErrForbidden = New(
	CodeForbidden,
	"You do not have permission to access this resource",
	http.StatusForbidden,
)
