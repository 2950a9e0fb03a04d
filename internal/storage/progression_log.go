package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/ironcycle/internal/models"
	"github.com/google/uuid"
)

// InsertProgressionLog batch-inserts progression changes.
func (t *pgTx) InsertProgressionLog(ctx context.Context, rows []models.ProgressionLogRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO progression_log (workout_id, exercise_id, exercise_name, week, day,
		progression_type, result, change) VALUES `
	args := make([]any, 0, len(rows)*8)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args, r.WorkoutID, r.ExerciseID, r.ExerciseName, r.Week, r.Day,
			r.ProgressionType, r.Result, r.Change)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := t.tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting progression log: %w", err)
	}
	return nil
}

// QueryProgressionLog returns the most recent changes for a workout, newest first.
func (t *pgTx) QueryProgressionLog(ctx context.Context, workoutID uuid.UUID, limit int) ([]models.ProgressionLogRow, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, workout_id, exercise_id, exercise_name, week, day, progression_type, result, change, created_at
		 FROM progression_log
		 WHERE workout_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		workoutID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying progression log: %w", err)
	}
	defer rows.Close()

	var result []models.ProgressionLogRow
	for rows.Next() {
		var r models.ProgressionLogRow
		if err := rows.Scan(&r.ID, &r.WorkoutID, &r.ExerciseID, &r.ExerciseName, &r.Week, &r.Day,
			&r.ProgressionType, &r.Result, &r.Change, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning progression log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
