package ingest

import "github.com/claude/ironcycle/internal/workout"

// Result holds the outcome of an ingest operation.
type Result struct {
	ExercisesReceived int `json:"exercises_received"`
	ExercisesMatched  int `json:"exercises_matched"`
	SetsReceived      int `json:"sets_received"`

	Day *workout.CompleteDayResult `json:"day,omitempty"`

	Message string `json:"message,omitempty"`
}
