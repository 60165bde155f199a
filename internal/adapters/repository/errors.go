package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for record store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrNoChange      = errors.New("no change")
	ErrConflict      = errors.New("concurrent update conflict")
	ErrInvalidKey    = errors.New("invalid record key")
	ErrClosed        = errors.New("store closed")
)

func wrapInvalid(what, value string) error {
	return fmt.Errorf("%w: %s %q", ErrInvalidKey, what, value)
}
