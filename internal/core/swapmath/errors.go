package swapmath

import "errors"

var (
	// ErrInvalidArgument is returned for zero amounts or reserves where a
	// positive value is required.
	ErrInvalidArgument = errors.New("swapmath: invalid argument")

	// ErrOverflow is returned when an intermediate exceeds 128 bits or a
	// result does not fit in 64 bits.
	ErrOverflow = errors.New("swapmath: arithmetic overflow")

	// ErrUnderflow is returned when a subtraction would go negative.
	ErrUnderflow = errors.New("swapmath: arithmetic underflow")

	// ErrDivideByZero is returned when a denominator is zero.
	ErrDivideByZero = errors.New("swapmath: division by zero")
)
