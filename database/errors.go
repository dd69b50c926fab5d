package database

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/audiodesk/errors"
)

// IsNotFoundError checks if the error is a GORM record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// FromDatabase converts a database error to an AppError for resource.
func FromDatabase(err error, resource, id string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if IsNotFoundError(err) {
		return apperrors.NotFound(resource, id).WithCause(err)
	}
	return apperrors.DatabaseError(err).WithDetail("resource", resource)
}
