package pipeline

import "errors"

var (
	// ErrBadSortField indicates a requested sort field outside the view's
	// allow-list. Rejected at compile time, never silently substituted.
	ErrBadSortField = errors.New("sort field not allowed")
	// ErrBadWindow indicates a negative skip or non-positive limit.
	ErrBadWindow = errors.New("invalid window")
)
