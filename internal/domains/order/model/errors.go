package model

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrVersionMismatch = errors.New("version mismatch - concurrent modification detected")
	ErrOrderCancelled  = errors.New("order is cancelled")
)

// Error codes
const (
	ErrCodeOrderNotFound = "ORD001"
	ErrCodeInternal      = "ORD500"
)
