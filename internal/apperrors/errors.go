package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrRateUnavailable indicates that no exchange rate could be resolved, neither
// from an upstream provider nor from the cache. Callers may retry later or
// resubmit in the business's base currency.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// ErrSequenceConflict indicates that receipt number assignment exhausted its
// retry budget under concurrent writers. The operation is safe to retry.
var ErrSequenceConflict = errors.New("receipt sequence conflict")

// ErrStorageUnavailable indicates a persistence failure after validation
// passed. The operation is safe to retry, but retrying is not idempotent.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Validationf wraps ErrValidation with a caller-fixable detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
