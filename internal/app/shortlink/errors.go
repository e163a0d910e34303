package shortlink

import "errors"

// Domain errors. Callers add detail with fmt.Errorf("%w: ...") and the HTTP
// layer maps them with errors.Is.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrDuplicateUser = errors.New("duplicate user")
	ErrInvalidToken  = errors.New("invalid token")

	// ErrIDTaken is returned by LinkStore.InsertLink when the id already
	// exists. Create retries on it and never returns it.
	ErrIDTaken = errors.New("id taken")

	ErrIDSpaceExhausted = errors.New("id space exhausted")
)

// outcome is the metrics label for an operation result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidToken):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateUser):
		return "duplicate_user"
	default:
		return "internal"
	}
}
