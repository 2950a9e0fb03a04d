package workout

import "errors"

var (
	// ErrNotFound is returned when a workout or exercise does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidDay is returned for a day outside 1..DaysPerWeek.
	ErrInvalidDay = errors.New("invalid day")

	// ErrAlreadyCompleted is returned when a day of the current week is completed twice.
	ErrAlreadyCompleted = errors.New("day already completed")

	// ErrNotActive is returned when completing a day on a finished program.
	ErrNotActive = errors.New("workout is not active")

	// ErrInvalidExercise is returned when an exercise definition is inconsistent.
	ErrInvalidExercise = errors.New("invalid exercise")
)
