package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrActorRequired indicates a mutating request without a resolved actor.
	ErrActorRequired = errors.New("acting user required")
)
