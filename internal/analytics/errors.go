package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks an unparseable or out-of-range request parameter.
	// It is returned before any store query is issued.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrStoreUnavailable wraps failures of the underlying store. Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

func invalidParam(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func storeFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
