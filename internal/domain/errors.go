package domain

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrHoldNotFound        = errors.New("hold not found")
	ErrEventNameRequired   = errors.New("event name required")
	ErrInvalidCapacity     = errors.New("invalid capacity")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidTTL          = errors.New("invalid ttl")
	ErrInvalidID           = errors.New("invalid id")
	ErrInsufficientSeats   = errors.New("insufficient seats")
	ErrLockTimeout         = errors.New("lock acquisition timed out")
	ErrHoldExpired         = errors.New("hold expired")
	ErrHoldNotActive       = errors.New("hold not active")
	ErrInvalidPaymentToken = errors.New("invalid payment token")
	ErrBookingExists       = errors.New("booking already exists")
)
