package service

import (
	"errors"
	"fmt"

	"github.com/godilite/feedback-server/internal/aggregation"
	"github.com/godilite/feedback-server/internal/repository/models"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrStorageFailure = errors.New("storage failure")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// storageError classifies a repository error into the service sentinels.
func storageError(op string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("%w: %s: %v", ErrNotFound, op, err)
	case errors.Is(err, models.ErrDuplicate):
		return fmt.Errorf("%w: %s: %v", ErrConflict, op, err)
	case errors.Is(err, aggregation.ErrInvalidInterval):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrStorageFailure, op, err)
	}
}
