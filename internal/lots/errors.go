package lots

import "errors"

var (
	// ErrInvalidInput is returned when the quantities cannot describe a draw:
	// total is zero or too large, or target is not strictly between 0 and total.
	ErrInvalidInput = errors.New("lots: target quantity must be greater than 0 and less than total quantity")

	// ErrExhaustedCandidateSpace is returned when no free in-range tail could be
	// drawn within the attempt bound.
	ErrExhaustedCandidateSpace = errors.New("lots: exhausted candidate tail space")
)
