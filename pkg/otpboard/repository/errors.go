package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches nothing
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when required fields are missing or malformed
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when a uniqueness constraint rejects a write
	ErrConflict = errors.New("already exists")
	// ErrShortLinkExhausted is returned when no unused share token was found in time
	ErrShortLinkExhausted = errors.New("short link generation exhausted")
	// ErrStorage wraps failures of the underlying database
	ErrStorage = errors.New("storage error")
)

// storageError wraps err so callers can match both ErrStorage and the cause
func storageError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
