package store

import "errors"

var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotDeletable            = errors.New("reservation cannot be deleted yet")
	ErrCapacityExceeded        = errors.New("party exceeds capacity")
)
