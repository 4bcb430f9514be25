package service

import "errors"

// Sentinel errors shared by every service. Handlers map these onto HTTP
// statuses; services wrap them with context via fmt.Errorf("...: %w", ...).
var (
	// ErrUnauthenticated means the acting user id does not resolve to an
	// active user.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the user resolved but lacks the required grant.
	ErrForbidden = errors.New("permission denied")

	// ErrNotFound means the referenced entity does not exist or sits outside
	// the caller's company.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument means malformed input or a reference that fails a
	// scoping/validity check.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState means the operation is well-formed but illegal given
	// the entity's current state.
	ErrInvalidState = errors.New("invalid state")
)
