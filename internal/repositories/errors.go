package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint
// (join code, class membership, quiz submission). Storage backends translate
// their native duplicate-key signal into this.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is the backend-neutral not-found signal. The gorm backend keeps
// returning gorm.ErrRecordNotFound directly; IsNotFoundError accepts both.
var ErrNotFound = errors.New("record not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
