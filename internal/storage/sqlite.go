package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	login        TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	last_seen    TEXT NOT NULL
);
INSERT OR IGNORE INTO users (id, login, display_name, created_at, last_seen)
	VALUES (1, 'local', 'Local Dev User', '1970-01-01T00:00:00Z', '1970-01-01T00:00:00Z');

CREATE TABLE IF NOT EXISTS workouts (
	id             TEXT PRIMARY KEY,
	user_id        INTEGER NOT NULL,
	name           TEXT NOT NULL,
	status         TEXT NOT NULL,
	current_week   INTEGER NOT NULL,
	current_day    INTEGER NOT NULL,
	completed_days TEXT NOT NULL DEFAULT '[]',
	total_weeks    INTEGER NOT NULL,
	days_per_week  INTEGER NOT NULL,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS workouts_user_status ON workouts (user_id, status);
CREATE UNIQUE INDEX IF NOT EXISTS workouts_one_active_per_user ON workouts (user_id) WHERE status <> 'completed';

CREATE TABLE IF NOT EXISTS exercises (
	id               TEXT PRIMARY KEY,
	workout_id       TEXT NOT NULL REFERENCES workouts (id),
	name             TEXT NOT NULL,
	category         TEXT NOT NULL,
	equipment        TEXT NOT NULL DEFAULT '',
	assigned_day     INTEGER NOT NULL,
	order_in_day     INTEGER NOT NULL,
	progression_type TEXT NOT NULL,
	progression      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS exercises_workout ON exercises (workout_id);

CREATE TABLE IF NOT EXISTS progression_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	workout_id       TEXT NOT NULL,
	exercise_id      TEXT NOT NULL,
	exercise_name    TEXT NOT NULL,
	week             INTEGER NOT NULL,
	day              INTEGER NOT NULL,
	progression_type TEXT NOT NULL,
	result           TEXT NOT NULL,
	change           TEXT NOT NULL,
	created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS progression_log_workout ON progression_log (workout_id, id);
`

// SQLite is the single-file store used by the CLI and in tests.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database at path and ensures the schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection serializes writers, which gives each workout a single owner per transaction.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func (s *SQLite) WithTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(&sqliteTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) GetWorkout(ctx context.Context, id uuid.UUID) (*workout.Workout, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id.String())
	w, err := scanSQLiteWorkout(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: workout %s", workout.ErrNotFound, id)
		}
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return t.loadExercises(ctx, w)
}

func (t *sqliteTx) GetActiveWorkout(ctx context.Context, userID int) (*workout.Workout, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE user_id = ? AND status <> 'completed'
		 ORDER BY created_at DESC LIMIT 1`, userID)
	w, err := scanSQLiteWorkout(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active workout for user %d", workout.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("querying active workout: %w", err)
	}
	return t.loadExercises(ctx, w)
}

func (t *sqliteTx) loadExercises(ctx context.Context, w models.WorkoutRow) (*workout.Workout, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, workout_id, name, category, equipment, assigned_day, order_in_day, progression_type, progression
		 FROM exercises
		 WHERE workout_id = ?
		 ORDER BY assigned_day ASC, order_in_day ASC`, w.ID.String())
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.ExerciseRow
	for rows.Next() {
		var e models.ExerciseRow
		var state string
		if err := rows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Category, &e.Equipment,
			&e.AssignedDay, &e.OrderInDay, &e.ProgressionType, &state); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		e.Progression = []byte(state)
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fromRows(w, exercises)
}

func (t *sqliteTx) SaveWorkout(ctx context.Context, w *workout.Workout) error {
	row, exercises, err := toRows(w)
	if err != nil {
		return err
	}
	completed, err := json.Marshal(row.CompletedDays)
	if err != nil {
		return fmt.Errorf("encoding completed days: %w", err)
	}

	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO workouts (`+workoutColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			current_week = excluded.current_week,
			current_day = excluded.current_day,
			completed_days = excluded.completed_days,
			updated_at = excluded.updated_at`,
		row.ID.String(), row.UserID, row.Name, row.Status, row.CurrentWeek, row.CurrentDay, string(completed),
		row.TotalWeeks, row.DaysPerWeek, formatTime(row.CreatedAt), formatTime(row.UpdatedAt))
	if err != nil {
		var se *sqlite.Error
		if errors.As(err, &se) && (se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT) {
			return fmt.Errorf("%w: %s", ErrConflict, se.Error())
		}
		return fmt.Errorf("upserting workout: %w", err)
	}

	for _, e := range exercises {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO exercises (id, workout_id, name, category, equipment, assigned_day, order_in_day, progression_type, progression)
			 VALUES (?,?,?,?,?,?,?,?,?)
			 ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				equipment = excluded.equipment,
				assigned_day = excluded.assigned_day,
				order_in_day = excluded.order_in_day,
				progression_type = excluded.progression_type,
				progression = excluded.progression`,
			e.ID.String(), e.WorkoutID.String(), e.Name, e.Category, e.Equipment, e.AssignedDay, e.OrderInDay,
			e.ProgressionType, string(e.Progression))
		if err != nil {
			return fmt.Errorf("upserting exercise %s: %w", e.Name, err)
		}
	}
	return nil
}

func (t *sqliteTx) InsertProgressionLog(ctx context.Context, rows []models.ProgressionLogRow) error {
	now := formatTime(timeNow())
	for _, r := range rows {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO progression_log (workout_id, exercise_id, exercise_name, week, day,
			 progression_type, result, change, created_at) VALUES (?,?,?,?,?,?,?,?,?)`,
			r.WorkoutID.String(), r.ExerciseID.String(), r.ExerciseName, r.Week, r.Day,
			r.ProgressionType, r.Result, r.Change, now)
		if err != nil {
			return fmt.Errorf("inserting progression log: %w", err)
		}
	}
	return nil
}

func (t *sqliteTx) QueryProgressionLog(ctx context.Context, workoutID uuid.UUID, limit int) ([]models.ProgressionLogRow, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, workout_id, exercise_id, exercise_name, week, day, progression_type, result, change, created_at
		 FROM progression_log
		 WHERE workout_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		workoutID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying progression log: %w", err)
	}
	defer rows.Close()

	var result []models.ProgressionLogRow
	for rows.Next() {
		var r models.ProgressionLogRow
		var created string
		if err := rows.Scan(&r.ID, &r.WorkoutID, &r.ExerciseID, &r.ExerciseName, &r.Week, &r.Day,
			&r.ProgressionType, &r.Result, &r.Change, &created); err != nil {
			return nil, fmt.Errorf("scanning progression log: %w", err)
		}
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func scanSQLiteWorkout(row *sql.Row) (models.WorkoutRow, error) {
	var w models.WorkoutRow
	var completed, created, updated string
	if err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Status, &w.CurrentWeek, &w.CurrentDay, &completed,
		&w.TotalWeeks, &w.DaysPerWeek, &created, &updated); err != nil {
		return w, err
	}
	if err := json.Unmarshal([]byte(completed), &w.CompletedDays); err != nil {
		return w, fmt.Errorf("decoding completed days: %w", err)
	}
	var err error
	if w.CreatedAt, err = parseTime(created); err != nil {
		return w, err
	}
	if w.UpdatedAt, err = parseTime(updated); err != nil {
		return w, err
	}
	return w, nil
}

var timeNow = time.Now

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
