// Package repository holds the two store collaborators handed to handlers: an
// AdminRepository with unrestricted access and a ScopedRepository bound to one tenant.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
