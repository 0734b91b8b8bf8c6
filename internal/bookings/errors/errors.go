package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrLockOutsideTransaction = errors.New("booking lock requires an open transaction")

	ErrLockTargetNotFound = errors.New("ad space to lock not found")
)
