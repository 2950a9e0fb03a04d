package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/ironcycle/internal/metrics"
	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/progression"
	"github.com/claude/ironcycle/internal/storage"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
)

// ErrActiveWorkoutExists is returned when a user already has a workout that
// has not been completed.
var ErrActiveWorkoutExists = errors.New("active workout exists")

// DefaultHistoryLimit caps History when the caller passes no limit.
const DefaultHistoryLimit = 50

// Program holds the program-wide settings applied to new workouts.
type Program struct {
	TotalWeeks  int
	DaysPerWeek int
	Increment   float64
}

// Service runs the workout workflows against a store. Every mutation loads
// the workout, applies the change to the aggregate and saves it inside one
// transaction.
type Service struct {
	store   storage.Store
	table   *progression.Table
	program Program
	metrics *metrics.Manager
	log     *slog.Logger
}

// New creates a Service. A nil metrics manager disables instrumentation.
func New(store storage.Store, program Program, m *metrics.Manager, logger *slog.Logger) (*Service, error) {
	if program.TotalWeeks == 0 {
		program.TotalWeeks = progression.MaxWeeks
	}
	if program.DaysPerWeek == 0 {
		program.DaysPerWeek = workout.DefaultDaysPerWeek
	}
	if program.Increment <= 0 {
		program.Increment = progression.DefaultIncrement
	}
	table, err := progression.NewTable(program.TotalWeeks)
	if err != nil {
		return nil, fmt.Errorf("building week table: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, table: table, program: program, metrics: m, log: logger}, nil
}

// Table returns the week table used by this service.
func (s *Service) Table() *progression.Table {
	return s.table
}

// WeekParameters returns the prescription for one program week.
func (s *Service) WeekParameters(week int) (progression.WeekParams, error) {
	return s.table.Get(week)
}

// CreateWorkout validates spec and stores a new workout for userID. A user
// may only have one workout that is not completed.
func (s *Service) CreateWorkout(ctx context.Context, userID int, spec WorkoutSpec) (*workout.Workout, error) {
	exercises, err := spec.build(s.program.DaysPerWeek)
	if err != nil {
		return nil, err
	}
	w := workout.New(userID, spec.Name, s.program.TotalWeeks, s.program.DaysPerWeek, exercises)
	if err := w.Validate(); err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		existing, err := tx.GetActiveWorkout(ctx, userID)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrActiveWorkoutExists, existing.ID)
		}
		if !errors.Is(err, workout.ErrNotFound) {
			return err
		}
		return tx.SaveWorkout(ctx, w)
	})
	if errors.Is(err, storage.ErrConflict) {
		return nil, fmt.Errorf("%w: %w", ErrActiveWorkoutExists, err)
	}
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CounterWorkoutsCreated.Inc()
	}
	s.log.Info("workout created", "workout", w.ID, "user", userID, "exercises", len(w.Exercises))
	return w, nil
}

// GetWorkout loads a workout by id.
func (s *Service) GetWorkout(ctx context.Context, id uuid.UUID) (*workout.Workout, error) {
	var w *workout.Workout
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		w, err = tx.GetWorkout(ctx, id)
		return err
	})
	return w, err
}

// ActiveWorkout returns the user's workout that is not yet completed.
func (s *Service) ActiveWorkout(ctx context.Context, userID int) (*workout.Workout, error) {
	var w *workout.Workout
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		w, err = tx.GetActiveWorkout(ctx, userID)
		return err
	})
	return w, err
}

// CompleteDay records a training day, applies progression to each performed
// exercise and records the changes in the progression log.
func (s *Service) CompleteDay(ctx context.Context, id uuid.UUID, day int, performances []workout.Performance) (*workout.CompleteDayResult, error) {
	var result *workout.CompleteDayResult
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		w, err := tx.GetWorkout(ctx, id)
		if err != nil {
			return err
		}
		week := w.CurrentWeek
		result, err = w.CompleteDay(s.table, day, performances, s.program.Increment)
		if err != nil {
			return err
		}
		if err := tx.SaveWorkout(ctx, w); err != nil {
			return err
		}
		return tx.InsertProgressionLog(ctx, logRows(w.ID, week, day, result.ProgressionChanges))
	})
	if err != nil {
		return nil, err
	}

	s.recordDay(result)
	s.log.Info("day completed",
		"workout", id,
		"day", day,
		"exercises", result.ExercisesCompleted,
		"week_progressed", result.WeekProgressed,
		"week", result.NewCurrentWeek,
	)
	for _, c := range result.ProgressionChanges {
		s.log.Debug("progression applied", "exercise", c.ExerciseName, "type", c.ProgressionType, "result", c.Result, "change", c.Change)
	}
	return result, nil
}

// ProgressWeek advances the workout to its next week regardless of which days
// were completed.
func (s *Service) ProgressWeek(ctx context.Context, id uuid.UUID) (*workout.ProgressWeekResult, error) {
	var result *workout.ProgressWeekResult
	var alreadyDone bool
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		w, err := tx.GetWorkout(ctx, id)
		if err != nil {
			return err
		}
		alreadyDone = w.Status == workout.Completed
		result, err = w.ProgressWeek(s.table)
		if err != nil {
			return err
		}
		if alreadyDone {
			return nil
		}
		return tx.SaveWorkout(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	if !alreadyDone {
		s.recordWeek(result)
		s.log.Info("week progressed", "workout", id, "from", result.PreviousWeek, "to", result.NewWeek,
			"deload", result.IsDeloadWeek, "program_complete", result.IsProgramComplete)
	}
	return result, nil
}

// PlanDay returns the prescribed sets for a day of the workout's current week.
func (s *Service) PlanDay(ctx context.Context, id uuid.UUID, day int) (*workout.DayPlan, error) {
	w, err := s.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	return w.PlanDay(s.table, day, s.program.Increment)
}

// History returns the most recent progression changes for a workout, newest
// first. limit <= 0 means DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, id uuid.UUID, limit int) ([]models.ProgressionLogRow, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var rows []models.ProgressionLogRow
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetWorkout(ctx, id); err != nil {
			return err
		}
		var err error
		rows, err = tx.QueryProgressionLog(ctx, id, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.ProgressionLogRow{}
	}
	return rows, nil
}

// Stats summarizes the progression log of a workout per exercise.
func (s *Service) Stats(ctx context.Context, id uuid.UUID) ([]models.ExerciseStatsRow, error) {
	var rows []models.ExerciseStatsRow
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetWorkout(ctx, id); err != nil {
			return err
		}
		var err error
		rows, err = tx.ProgressionStats(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.ExerciseStatsRow{}
	}
	return rows, nil
}

func (s *Service) recordDay(result *workout.CompleteDayResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.CounterDaysCompleted.Inc()
	for _, c := range result.ProgressionChanges {
		s.metrics.CounterProgressionChanges.WithLabelValues(string(c.ProgressionType), string(c.Result)).Inc()
	}
	if result.WeekProgressed {
		s.metrics.CounterWeeksProgressed.Inc()
	}
	if result.ProgramComplete {
		s.metrics.CounterProgramsCompleted.Inc()
	}
}

func (s *Service) recordWeek(result *workout.ProgressWeekResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.CounterWeeksProgressed.Inc()
	if result.IsProgramComplete {
		s.metrics.CounterProgramsCompleted.Inc()
	}
}

func logRows(workoutID uuid.UUID, week, day int, changes []workout.ProgressionChange) []models.ProgressionLogRow {
	rows := make([]models.ProgressionLogRow, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, models.ProgressionLogRow{
			WorkoutID:       workoutID,
			ExerciseID:      c.ExerciseID,
			ExerciseName:    c.ExerciseName,
			Week:            week,
			Day:             day,
			ProgressionType: string(c.ProgressionType),
			Result:          string(c.Result),
			Change:          c.Change,
		})
	}
	return rows
}

// ResolveUser maps an authenticated login to its user ID, creating the user
// on first sight.
func (s *Service) ResolveUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		id, err = tx.GetOrCreateUser(ctx, login, displayName)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("resolving user %s: %w", login, err)
	}
	return id, nil
}
