package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// pgTx implements Tx on a PostgreSQL transaction.
type pgTx struct {
	tx pgx.Tx
}

const workoutColumns = `id, user_id, name, status, current_week, current_day, completed_days,
	total_weeks, days_per_week, created_at, updated_at`

// GetWorkout loads a workout and locks its row until the transaction ends.
func (t *pgTx) GetWorkout(ctx context.Context, id uuid.UUID) (*workout.Workout, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1 FOR UPDATE`, id)
	w, err := scanWorkoutRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: workout %s", workout.ErrNotFound, id)
		}
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return t.loadExercises(ctx, w)
}

// GetActiveWorkout returns the user's most recent workout that is not completed.
func (t *pgTx) GetActiveWorkout(ctx context.Context, userID int) (*workout.Workout, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE user_id = $1 AND status <> 'completed'
		 ORDER BY created_at DESC LIMIT 1 FOR UPDATE`, userID)
	w, err := scanWorkoutRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active workout for user %d", workout.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("querying active workout: %w", err)
	}
	return t.loadExercises(ctx, w)
}

func (t *pgTx) loadExercises(ctx context.Context, w models.WorkoutRow) (*workout.Workout, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, workout_id, name, category, equipment, assigned_day, order_in_day, progression_type, progression
		 FROM exercises
		 WHERE workout_id = $1
		 ORDER BY assigned_day ASC, order_in_day ASC`, w.ID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.ExerciseRow
	for rows.Next() {
		var e models.ExerciseRow
		if err := rows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Category, &e.Equipment,
			&e.AssignedDay, &e.OrderInDay, &e.ProgressionType, &e.Progression); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fromRows(w, exercises)
}

// SaveWorkout upserts the workout and every exercise. Exercises are never deleted.
func (t *pgTx) SaveWorkout(ctx context.Context, w *workout.Workout) error {
	row, exercises, err := toRows(w)
	if err != nil {
		return err
	}

	_, err = t.tx.Exec(ctx,
		`INSERT INTO workouts (`+workoutColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			current_week = EXCLUDED.current_week,
			current_day = EXCLUDED.current_day,
			completed_days = EXCLUDED.completed_days,
			updated_at = EXCLUDED.updated_at`,
		row.ID, row.UserID, row.Name, row.Status, row.CurrentWeek, row.CurrentDay, row.CompletedDays,
		row.TotalWeeks, row.DaysPerWeek, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		}
		return fmt.Errorf("upserting workout: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range exercises {
		batch.Queue(
			`INSERT INTO exercises (id, workout_id, name, category, equipment, assigned_day, order_in_day, progression_type, progression)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			 ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				equipment = EXCLUDED.equipment,
				assigned_day = EXCLUDED.assigned_day,
				order_in_day = EXCLUDED.order_in_day,
				progression_type = EXCLUDED.progression_type,
				progression = EXCLUDED.progression`,
			e.ID, e.WorkoutID, e.Name, e.Category, e.Equipment, e.AssignedDay, e.OrderInDay, e.ProgressionType, e.Progression)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting exercises: %w", err)
	}
	return nil
}

func scanWorkoutRow(row pgx.Row) (models.WorkoutRow, error) {
	var w models.WorkoutRow
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Status, &w.CurrentWeek, &w.CurrentDay, &w.CompletedDays,
		&w.TotalWeeks, &w.DaysPerWeek, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}
