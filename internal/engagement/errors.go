package engagement

import (
	"errors"
	"fmt"

	"github.com/streamhub/backend/internal/pipeline"
	"github.com/streamhub/backend/internal/repositories"
)

// Kind is the closed set of failure categories the engagement core can
// surface. The request layer matches on Kind, never on error types.
type Kind int

const (
	// KindInvalidInput covers malformed identifiers, disallowed sort
	// fields, and empty required text.
	KindInvalidInput Kind = iota + 1
	// KindNotFound means a referenced entity is absent.
	KindNotFound
	// KindUnauthorized means no viewer was resolved where one is required.
	KindUnauthorized
	// KindForbidden means the resolved viewer does not own the mutation target.
	KindForbidden
	// KindConflict is reserved for uniqueness violations not absorbed by
	// toggle atomicity.
	KindConflict
	// KindInternal is a store-level failure. Its detail stays server-side.
	KindInternal
)

// Error carries a failure category as data alongside a caller-safe message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a categorized failure.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// wrap categorizes a lower-layer failure while keeping its cause for logs.
// Repository sentinels and pipeline compile errors map onto the taxonomy;
// anything unrecognized is an internal store fault, never an empty result.
func wrap(msg string, err error) *Error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return &Error{Kind: KindNotFound, Msg: msg, Err: err}
	case errors.Is(err, repositories.ErrConflict):
		return &Error{Kind: KindConflict, Msg: msg, Err: err}
	case errors.Is(err, pipeline.ErrBadSortField), errors.Is(err, pipeline.ErrBadWindow):
		return &Error{Kind: KindInvalidInput, Msg: msg, Err: err}
	default:
		return &Error{Kind: KindInternal, Msg: msg, Err: err}
	}
}

// KindOf extracts the category from an error. Unrecognized non-nil errors
// are internal failures.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
