package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrValidation matches every ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound matches every NotFoundError via errors.Is.
	ErrNotFound = errors.New("not found")
)

// ValidationError indicates an operation was given input the order cannot
// accept. The order is left unchanged.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError indicates a dish to remove is not on the order.
type NotFoundError struct {
	Dish string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dish %q is not on the order", e.Dish)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
