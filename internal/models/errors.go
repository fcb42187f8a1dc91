package models

import "errors"

// Common errors used throughout the application
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartExpired        = errors.New("cart has expired")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidTicketType  = errors.New("invalid ticket type")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInsufficientStock  = errors.New("insufficient ticket stock")
	ErrPromotionRejected  = errors.New("promotion code rejected")
	ErrUnauthorized       = errors.New("unauthorized access")
)
