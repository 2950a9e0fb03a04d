package progression

import "errors"

var (
	// ErrOutOfRange is returned for a week outside the program's 1..totalWeeks range.
	ErrOutOfRange = errors.New("week out of range")

	// ErrInvalidPerformance is returned for malformed set data (negative reps or weight, bad set number).
	ErrInvalidPerformance = errors.New("invalid performance")

	// ErrInvalidState is returned when a progression state violates its invariants.
	ErrInvalidState = errors.New("invalid progression state")
)
