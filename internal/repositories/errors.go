package repositories

import (
	"errors"
	"fmt"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"gorm.io/gorm"
)

// translate maps gorm sentinel errors onto domain errors and adds context.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", msg, domain.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
