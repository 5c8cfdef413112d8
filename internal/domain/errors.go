package domain

import "errors"

// Sentinel errors shared across packages. Check with errors.Is.
var (
	ErrCardNotFound      = errors.New("card not found")
	ErrDeckNotFound      = errors.New("deck not found")
	ErrInvalidRating     = errors.New("invalid rating")
	ErrUnsupportedDriver = errors.New("unsupported storage driver")
)
