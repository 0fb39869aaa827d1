package events

import "errors"

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrUnknownField     = errors.New("unknown event field")
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
	ErrSoldExceedsTaken = errors.New("quantity sold exceeds quantity taken")
)
