package mcp

import (
	"context"

	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/progression"
	"github.com/claude/ironcycle/internal/tracker"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both Local (in-process
// tracker) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	WeekParameters(ctx context.Context, week int) (progression.WeekParams, error)
	ProgramTable(ctx context.Context) ([]progression.WeekParams, error)
	ActiveWorkout(ctx context.Context, userID int) (*workout.Workout, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*workout.Workout, error)
	PlanDay(ctx context.Context, id uuid.UUID, day int) (*workout.DayPlan, error)
	History(ctx context.Context, id uuid.UUID, limit int) ([]models.ProgressionLogRow, error)
	Stats(ctx context.Context, id uuid.UUID) ([]models.ExerciseStatsRow, error)
}

// serverScoped is implemented by data sources whose backend already hides
// workouts of other users.
type serverScoped interface {
	ownerScoped()
}

// Local serves MCP tools straight from a tracker service.
type Local struct {
	*tracker.Service
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = Local{}

func (l Local) WeekParameters(_ context.Context, week int) (progression.WeekParams, error) {
	return l.Service.WeekParameters(week)
}

func (l Local) ProgramTable(context.Context) ([]progression.WeekParams, error) {
	return l.Table().All(), nil
}
