package collection

import "errors"

var (
	// ErrEmptyKey is returned when an operation is given an empty collection key.
	ErrEmptyKey = errors.New("collection key cannot be empty")
	// ErrSourceUnavailable wraps failures of the document source. The previously
	// published snapshot stays in place when it is returned.
	ErrSourceUnavailable = errors.New("document source unavailable")
	// ErrClosed is returned by writers after Close.
	ErrClosed = errors.New("collection store closed")
)
