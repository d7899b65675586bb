package service

import (
	"errors"

	"gorm.io/gorm"
)

// orNotFound swaps gorm's missing-row error for the given business error.
func orNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
