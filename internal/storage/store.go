package storage

import (
	"context"
	"errors"

	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
)

// ErrConflict is returned when a save violates a uniqueness constraint, such
// as a second unfinished workout for one user.
var ErrConflict = errors.New("conflicting record")

// Tx is the unit of work handed out by WithTx. Both *DB (PostgreSQL) and
// *SQLite provide it; changes made through a Tx persist only if the
// enclosing WithTx callback returns nil.
type Tx interface {
	// GetWorkout loads a workout with its exercises, locking it for the
	// rest of the transaction. Missing workouts wrap workout.ErrNotFound.
	GetWorkout(ctx context.Context, id uuid.UUID) (*workout.Workout, error)
	// GetActiveWorkout returns the user's workout that is not completed.
	GetActiveWorkout(ctx context.Context, userID int) (*workout.Workout, error)
	// SaveWorkout upserts the workout row and all its exercises.
	SaveWorkout(ctx context.Context, w *workout.Workout) error
	InsertProgressionLog(ctx context.Context, rows []models.ProgressionLogRow) error
	QueryProgressionLog(ctx context.Context, workoutID uuid.UUID, limit int) ([]models.ProgressionLogRow, error)
	// ProgressionStats counts logged outcomes per exercise.
	ProgressionStats(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseStatsRow, error)
	// GetOrCreateUser maps a login to a stable user ID.
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// Store hands out transactions. Implemented by *DB and *SQLite.
type Store interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// Compile-time checks: both stores satisfy Store.
var (
	_ Store = (*DB)(nil)
	_ Store = (*SQLite)(nil)
)
