package apperr

import "errors"

// Kinds of failure the storefront reports. Domain packages wrap these with
// fmt.Errorf("...: %w", kind) so callers can branch with errors.Is.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrOutOfStock           = errors.New("out of stock")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrStockShortfall       = errors.New("stock shortfall")
	ErrFormat               = errors.New("invalid format")
	ErrStorage              = errors.New("storage failure")
	ErrConfirmationRequired = errors.New("confirmation required")
)
