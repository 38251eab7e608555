package orders

import "errors"

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidState      = errors.New("order cannot be cancelled in its current state")
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNumberTaken is returned by the store when the generated order
	// number collides; the service retries with a fresh one.
	ErrNumberTaken = errors.New("order number already exists")
)
