package persistence

import (
	"errors"

	"github.com/marketplace/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver-level errors onto domain errors.
// gorm.ErrDuplicatedKey is produced because TranslateError is enabled.
func translateError(err error, duplicate *shared.DomainError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey) && duplicate != nil:
		return duplicate
	}
	return err
}
