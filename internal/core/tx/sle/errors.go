package sle

import "errors"

var (
	// ErrInvalidLength is returned when a stored entry has the wrong size.
	ErrInvalidLength = errors.New("sle: invalid entry length")

	// ErrInvariant is returned when a pool's reserves and supply disagree.
	ErrInvariant = errors.New("sle: pool invariant violated")
)
