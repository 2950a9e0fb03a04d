package storage

import (
	"context"
	"fmt"

	"github.com/claude/ironcycle/internal/models"
	"github.com/google/uuid"
)

// statsQuery groups the progression log by exercise. The placeholder is
// rewritten per driver.
const statsQuery = `SELECT exercise_id, exercise_name, progression_type,
		COUNT(*),
		SUM(CASE WHEN result = 'success' THEN 1 ELSE 0 END),
		SUM(CASE WHEN result = 'maintained' THEN 1 ELSE 0 END),
		SUM(CASE WHEN result = 'failure' THEN 1 ELSE 0 END),
		MAX(week)
	 FROM progression_log
	 WHERE workout_id = %s
	 GROUP BY exercise_id, exercise_name, progression_type
	 ORDER BY exercise_name`

// rowScanner is satisfied by pgx.Rows and *sql.Rows.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanStats(rows rowScanner) ([]models.ExerciseStatsRow, error) {
	var result []models.ExerciseStatsRow
	for rows.Next() {
		var s models.ExerciseStatsRow
		if err := rows.Scan(&s.ExerciseID, &s.ExerciseName, &s.ProgressionType,
			&s.Sessions, &s.Successes, &s.Maintained, &s.Failures, &s.LastWeek); err != nil {
			return nil, fmt.Errorf("scanning exercise stats: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ProgressionStats returns per-exercise outcome counts for a workout.
func (t *pgTx) ProgressionStats(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseStatsRow, error) {
	rows, err := t.tx.Query(ctx, fmt.Sprintf(statsQuery, "$1"), workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()
	return scanStats(rows)
}

func (t *sqliteTx) ProgressionStats(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseStatsRow, error) {
	rows, err := t.tx.QueryContext(ctx, fmt.Sprintf(statsQuery, "?"), workoutID.String())
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()
	return scanStats(rows)
}
