package errors

import "errors"

var (
	ErrNotFound = errors.New("ad space not found")

	ErrInvalidID = errors.New("invalid ad space ID format")
)
