package workorder

import "errors"

var (
	ErrWorkOrderNotFound     = errors.New("work order not found")
	ErrWorkOrderNumberExists = errors.New("work order number already exists")
	ErrInvalidTransition     = errors.New("invalid work order status transition")
	ErrAlreadyDiscarded      = errors.New("work order already discarded")
	ErrNotDiscarded          = errors.New("work order is not discarded")
)
