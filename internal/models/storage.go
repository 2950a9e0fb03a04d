package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is a row of the workouts table.
type WorkoutRow struct {
	ID            uuid.UUID
	UserID        int
	Name          string
	Status        string
	CurrentWeek   int
	CurrentDay    int
	CompletedDays []int
	TotalWeeks    int
	DaysPerWeek   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ExerciseRow is a row of the exercises table. Progression holds the
// tagged JSON encoding of the exercise's progression state.
type ExerciseRow struct {
	ID              uuid.UUID
	WorkoutID       uuid.UUID
	Name            string
	Category        string
	Equipment       string
	AssignedDay     int
	OrderInDay      int
	ProgressionType string
	Progression     []byte
}

// ProgressionLogRow is one recorded progression change.
type ProgressionLogRow struct {
	ID              int64     `json:"id"`
	WorkoutID       uuid.UUID `json:"workout_id"`
	ExerciseID      uuid.UUID `json:"exercise_id"`
	ExerciseName    string    `json:"exercise_name"`
	Week            int       `json:"week"`
	Day             int       `json:"day"`
	ProgressionType string    `json:"progression_type"`
	Result          string    `json:"result"`
	Change          string    `json:"change"`
	CreatedAt       time.Time `json:"created_at"`
}

// ExerciseStatsRow aggregates the progression log of one exercise.
type ExerciseStatsRow struct {
	ExerciseID      uuid.UUID `json:"exercise_id"`
	ExerciseName    string    `json:"exercise_name"`
	ProgressionType string    `json:"progression_type"`
	Sessions        int64     `json:"sessions"`
	Successes       int64     `json:"successes"`
	Maintained      int64     `json:"maintained"`
	Failures        int64     `json:"failures"`
	LastWeek        int       `json:"last_week"`
}
