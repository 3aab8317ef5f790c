package storage

import (
	"errors"
)

// Common store errors
var (
	ErrNotFound       = errors.New("student not found")
	ErrAlreadyLoaded  = errors.New("store already loaded")
	ErrLoadInProgress = errors.New("load already in progress")
	ErrMalformed      = errors.New("malformed snapshot")
	ErrClosed         = errors.New("store closed")
)

// IsNotFound returns true if the error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMalformed returns true if the source returned data that cannot be loaded
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
