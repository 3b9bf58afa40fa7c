package order

import "errors"

var (
	ErrNotFound           = errors.New("order not found")
	ErrLineNotFound       = errors.New("order line not found")
	ErrInvalidBatch       = errors.New("batch must be between 1 and 5")
	ErrBatchNotContiguous = errors.New("batches used must be a contiguous prefix starting at 1")
	ErrBatchEmpty         = errors.New("every batch must have at least one line")
	ErrNotCurrentShipment = errors.New("all lines must belong to the current shipment to split")
	ErrAlreadyPacked      = errors.New("order is already packed")
	ErrNotReadyToPack     = errors.New("order is not ready to pack")
)
