package sessionlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/claude/ironcycle/internal/ingest"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
)

// Tracker is the subset of the tracker service the provider drives.
type Tracker interface {
	GetWorkout(ctx context.Context, id uuid.UUID) (*workout.Workout, error)
	CompleteDay(ctx context.Context, id uuid.UUID, day int, performances []workout.Performance) (*workout.CompleteDayResult, error)
}

// Provider turns session logs into completed training days.
type Provider struct {
	tracker Tracker
	log     *slog.Logger
}

// NewProvider creates a new session-log ingest provider.
func NewProvider(t Tracker, log *slog.Logger) *Provider {
	return &Provider{tracker: t, log: log}
}

// Ingest parses a session log and completes day of the workout with it.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, workoutID uuid.UUID, day int) (*ingest.Result, error) {
	entries, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLog, err)
	}

	w, err := p.tracker.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	performances, err := Match(w, day, entries)
	if err != nil {
		return nil, err
	}

	result := &ingest.Result{ExercisesReceived: len(entries), ExercisesMatched: len(performances)}
	for _, e := range entries {
		result.SetsReceived += len(e.Sets)
	}

	dayResult, err := p.tracker.CompleteDay(ctx, workoutID, day, performances)
	if err != nil {
		return nil, err
	}
	result.Day = dayResult
	result.Message = fmt.Sprintf("completed day %d with %d exercises", day, dayResult.ExercisesCompleted)

	p.log.Info("session log ingested", "workout", workoutID, "day", day,
		"exercises", result.ExercisesMatched, "sets", result.SetsReceived)
	return result, nil
}

// Match resolves entry names against the exercises assigned to day,
// ignoring case and surrounding whitespace, and fills in missing set units
// from each exercise's progression state. Entries naming the same exercise
// are merged.
func Match(w *workout.Workout, day int, entries []Entry) ([]workout.Performance, error) {
	byName := make(map[string]*workout.Exercise)
	for i := range w.Exercises {
		ex := &w.Exercises[i]
		if ex.AssignedDay == day {
			byName[nameKey(ex.Name)] = ex
		}
	}

	var performances []workout.Performance
	index := make(map[uuid.UUID]int)
	var unknown []string

	for _, e := range entries {
		ex, ok := byName[nameKey(e.Name)]
		if !ok {
			unknown = append(unknown, fmt.Sprintf("%s (line %d)", e.Name, e.Line))
			continue
		}
		unit := ex.Progression.Unit()

		i, seen := index[ex.ID]
		if !seen {
			i = len(performances)
			index[ex.ID] = i
			performances = append(performances, workout.Performance{ExerciseID: ex.ID})
		}
		for _, set := range e.Sets {
			if set.Weight.Unit == "" {
				set.Weight.Unit = unit
			}
			set.SetNumber = len(performances[i].Sets) + 1
			performances[i].Sets = append(performances[i].Sets, set)
		}
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: no exercise on day %d named %s", workout.ErrNotFound, day, strings.Join(unknown, ", "))
	}
	return performances, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
