package reminder

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("reminder not found")
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyPaid is returned by MarkAsPaid on a reminder that is already paid.
	ErrAlreadyPaid = fmt.Errorf("%w: reminder is already paid", ErrValidation)

	// ErrDuplicateSource is returned by the store when a reminder for the
	// same (tenant, source) pair already exists.
	ErrDuplicateSource = errors.New("reminder already exists for source")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
