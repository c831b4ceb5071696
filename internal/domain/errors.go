package domain

import "errors"

var (
	// ErrInvalidConfiguration indicates a component was configured with
	// values that cannot work (e.g. chunk overlap >= window size).
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidArgument indicates a caller-supplied argument was out of
	// range (e.g. top-k below 1).
	ErrInvalidArgument = errors.New("invalid argument")
)
