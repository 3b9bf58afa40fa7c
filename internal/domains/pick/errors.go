package pick

import "errors"

var (
	ErrInsufficientRemaining = errors.New("pick demand exceeds remaining supply")
	ErrLineNotFound          = errors.New("order line not found")
	ErrAllocationExceeds     = errors.New("requested short quantity exceeds line's remaining demand")
	ErrRevertExceeds         = errors.New("revert quantity exceeds units picked")
	ErrEmptyAllocations      = errors.New("at least one allocation is required")
)
