package storage

import (
	"encoding/json"
	"fmt"

	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/progression"
	"github.com/claude/ironcycle/internal/workout"
)

// toRows splits a workout aggregate into its table rows.
func toRows(w *workout.Workout) (models.WorkoutRow, []models.ExerciseRow, error) {
	completed := w.CompletedDays
	if completed == nil {
		completed = []int{}
	}
	row := models.WorkoutRow{
		ID:            w.ID,
		UserID:        w.UserID,
		Name:          w.Name,
		Status:        string(w.Status),
		CurrentWeek:   w.CurrentWeek,
		CurrentDay:    w.CurrentDay,
		CompletedDays: completed,
		TotalWeeks:    w.TotalWeeks,
		DaysPerWeek:   w.DaysPerWeek,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}

	exercises := make([]models.ExerciseRow, 0, len(w.Exercises))
	for _, ex := range w.Exercises {
		state, err := json.Marshal(ex.Progression)
		if err != nil {
			return models.WorkoutRow{}, nil, fmt.Errorf("encoding progression for %s: %w", ex.Name, err)
		}
		exercises = append(exercises, models.ExerciseRow{
			ID:              ex.ID,
			WorkoutID:       w.ID,
			Name:            ex.Name,
			Category:        string(ex.Category),
			Equipment:       ex.Equipment,
			AssignedDay:     ex.AssignedDay,
			OrderInDay:      ex.OrderInDay,
			ProgressionType: string(ex.Progression.Kind()),
			Progression:     state,
		})
	}
	return row, exercises, nil
}

// fromRows rebuilds a workout aggregate from its table rows.
func fromRows(row models.WorkoutRow, exercises []models.ExerciseRow) (*workout.Workout, error) {
	w := &workout.Workout{
		ID:            row.ID,
		UserID:        row.UserID,
		Name:          row.Name,
		Status:        workout.Status(row.Status),
		CurrentWeek:   row.CurrentWeek,
		CurrentDay:    row.CurrentDay,
		CompletedDays: row.CompletedDays,
		TotalWeeks:    row.TotalWeeks,
		DaysPerWeek:   row.DaysPerWeek,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		Exercises:     make([]workout.Exercise, 0, len(exercises)),
	}
	if w.CompletedDays == nil {
		w.CompletedDays = []int{}
	}
	for _, er := range exercises {
		var state progression.State
		if err := json.Unmarshal(er.Progression, &state); err != nil {
			return nil, fmt.Errorf("decoding progression for %s: %w", er.Name, err)
		}
		if string(state.Kind()) != er.ProgressionType {
			return nil, fmt.Errorf("%w: exercise %s stored as %s but state is %s",
				progression.ErrInvalidState, er.Name, er.ProgressionType, state.Kind())
		}
		if err := state.Validate(); err != nil {
			return nil, fmt.Errorf("exercise %s: %w", er.Name, err)
		}
		w.Exercises = append(w.Exercises, workout.Exercise{
			ID:          er.ID,
			Name:        er.Name,
			Category:    workout.Category(er.Category),
			Equipment:   er.Equipment,
			AssignedDay: er.AssignedDay,
			OrderInDay:  er.OrderInDay,
			Progression: state,
		})
	}
	return w, nil
}
