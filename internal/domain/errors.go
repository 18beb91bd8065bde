package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicate      = errors.New("already exists")
	ErrConflict       = errors.New("conflict")
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrSessionNotFound is returned when a conversation session id is unknown.
	ErrSessionNotFound = errors.New("conversation session not found")
	// ErrSessionExpired is returned when a conversation session sat idle past
	// the configured timeout. The session is discarded; the caller must start
	// a new one.
	ErrSessionExpired = errors.New("conversation session expired")
	// ErrModelUnavailable is returned when the language model could not be
	// reached after the retry. The session is left unchanged and resumable.
	ErrModelUnavailable = errors.New("language model unavailable")
	// ErrPersistenceFailed is returned when committing a confirmed draft
	// failed. The session stays in the confirming state so the user can retry.
	ErrPersistenceFailed = errors.New("event could not be persisted")
)

// PermissionError is returned when the lifecycle and permission authority
// denies an action. Terminal for the requested action only; it never destroys
// the session or the event.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "permission denied: " + e.Reason
}

// ErrForbidden wraps the authority's deny reason in an error.
func ErrForbidden(reason string) error {
	return &PermissionError{Reason: reason}
}

// IsForbidden reports whether err is a permission denial.
func IsForbidden(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
