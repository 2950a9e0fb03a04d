package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/progression"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// fakeSource is an in-memory DataSource keyed by user.
type fakeSource struct {
	table   *progression.Table
	active  map[int]*workout.Workout
	history []models.ProgressionLogRow

	lastLimit int
}

func newFakeSource() *fakeSource {
	w := workout.New(1, "test", 21, 4, []workout.Exercise{{
		ID: uuid.New(), Name: "Squat", Category: workout.MainLift, Equipment: "barbell",
		AssignedDay: 1, OrderInDay: 1,
		Progression: progression.NewState(&progression.Linear{TrainingMax: progression.Kg(100), UseAmrap: true, BaseSets: 5}),
	}})
	return &fakeSource{
		table:  progression.DefaultTable(),
		active: map[int]*workout.Workout{1: w},
		history: []models.ProgressionLogRow{
			{ID: 1, WorkoutID: w.ID, ExerciseName: "Squat", Week: 1, Day: 1, ProgressionType: "linear", Result: "success", Change: "TM increased 2%"},
		},
	}
}

func (f *fakeSource) WeekParameters(_ context.Context, week int) (progression.WeekParams, error) {
	return f.table.Get(week)
}

func (f *fakeSource) ProgramTable(context.Context) ([]progression.WeekParams, error) {
	return f.table.All(), nil
}

func (f *fakeSource) ActiveWorkout(_ context.Context, userID int) (*workout.Workout, error) {
	if w, ok := f.active[userID]; ok {
		return w, nil
	}
	return nil, workout.ErrNotFound
}

func (f *fakeSource) GetWorkout(_ context.Context, id uuid.UUID) (*workout.Workout, error) {
	for _, w := range f.active {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, workout.ErrNotFound
}

func (f *fakeSource) PlanDay(ctx context.Context, id uuid.UUID, day int) (*workout.DayPlan, error) {
	w, err := f.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	return w.PlanDay(f.table, day, progression.DefaultIncrement)
}

func (f *fakeSource) History(_ context.Context, _ uuid.UUID, limit int) ([]models.ProgressionLogRow, error) {
	f.lastLimit = limit
	return f.history, nil
}

func (f *fakeSource) Stats(_ context.Context, id uuid.UUID) ([]models.ExerciseStatsRow, error) {
	return []models.ExerciseStatsRow{{ExerciseName: "Squat", ProgressionType: "linear", Sessions: 1, Successes: 1, LastWeek: 1}}, nil
}

func newTestHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.Default()}
}

func callReq(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result content")
	}
	tc, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestGetWeekParameters verifies week 7 is reported as a deload week and
// out-of-range weeks come back as tool errors rather than protocol errors.
func TestGetWeekParameters(t *testing.T) {
	h := newTestHandlers(newFakeSource())

	res, err := h.getWeekParameters(context.Background(), callReq(map[string]any{"week": float64(7)}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected IsError: %s", resultText(t, res))
	}
	var p progression.WeekParams
	if err := json.Unmarshal([]byte(resultText(t, res)), &p); err != nil {
		t.Fatal(err)
	}
	if !p.IsDeload || p.Block != 1 {
		t.Errorf("week 7 = %+v, want block 1 deload", p)
	}

	res, err = h.getWeekParameters(context.Background(), callReq(map[string]any{"week": float64(22)}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected IsError for week 22")
	}

	res, _ = h.getWeekParameters(context.Background(), callReq(nil))
	if !res.IsError {
		t.Error("expected IsError for missing week")
	}
}

// TestGetProgramTable verifies all 21 weeks are returned.
func TestGetProgramTable(t *testing.T) {
	h := newTestHandlers(newFakeSource())

	res, err := h.getProgramTable(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Weeks []progression.WeekParams `json:"weeks"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Weeks) != 21 {
		t.Errorf("got %d weeks, want 21", len(body.Weeks))
	}
}

// TestGetWorkoutDefaultsToActive verifies the caller's active workout is used
// when no workout_id is given, and other users get a not-found tool error.
func TestGetWorkoutDefaultsToActive(t *testing.T) {
	ds := newFakeSource()
	h := newTestHandlers(ds)

	res, err := h.getWorkout(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected IsError: %s", resultText(t, res))
	}
	var w workout.Workout
	if err := json.Unmarshal([]byte(resultText(t, res)), &w); err != nil {
		t.Fatal(err)
	}
	if w.ID != ds.active[1].ID {
		t.Errorf("workout id = %s, want %s", w.ID, ds.active[1].ID)
	}
	if _, ok := w.Exercises[0].Progression.Strategy.(*progression.Linear); !ok {
		t.Errorf("progression = %T, want *Linear", w.Exercises[0].Progression.Strategy)
	}

	res, _ = h.getWorkout(WithUserID(context.Background(), 2), callReq(nil))
	if !res.IsError {
		t.Error("expected IsError for user without a workout")
	}

	res, _ = h.getWorkout(context.Background(), callReq(map[string]any{"workout_id": "nope"}))
	if !res.IsError {
		t.Error("expected IsError for malformed workout_id")
	}
}

// TestGetDayPlan verifies week 1 day 1 prescribes 5x10 at 70% with a final AMRAP set.
// TestWorkoutToolsHideOtherUsersWorkouts verifies that an explicit workout_id
// owned by another user is reported as not found by every workout tool.
func TestWorkoutToolsHideOtherUsersWorkouts(t *testing.T) {
	ds := newFakeSource()
	h := newTestHandlers(ds)
	ctx := WithUserID(context.Background(), 2)
	id := ds.active[1].ID.String()

	calls := map[string]func() (*mcp.CallToolResult, error){
		"get_workout": func() (*mcp.CallToolResult, error) {
			return h.getWorkout(ctx, callReq(map[string]any{"workout_id": id}))
		},
		"get_day_plan": func() (*mcp.CallToolResult, error) {
			return h.getDayPlan(ctx, callReq(map[string]any{"workout_id": id, "day": 1}))
		},
		"get_progression_history": func() (*mcp.CallToolResult, error) {
			return h.getProgressionHistory(ctx, callReq(map[string]any{"workout_id": id}))
		},
		"get_progression_stats": func() (*mcp.CallToolResult, error) {
			return h.getProgressionStats(ctx, callReq(map[string]any{"workout_id": id}))
		},
	}
	for name, call := range calls {
		res, err := call()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !res.IsError {
			t.Errorf("%s: expected IsError for another user's workout", name)
			continue
		}
		if text := resultText(t, res); !strings.Contains(text, "not found") {
			t.Errorf("%s: error = %q, want not found", name, text)
		}
	}

	res, err := h.getWorkout(WithUserID(context.Background(), 1), callReq(map[string]any{"workout_id": id}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Errorf("owner lookup failed: %s", resultText(t, res))
	}
}

func TestGetDayPlan(t *testing.T) {
	h := newTestHandlers(newFakeSource())

	res, err := h.getDayPlan(context.Background(), callReq(map[string]any{"day": float64(1)}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected IsError: %s", resultText(t, res))
	}
	var plan workout.DayPlan
	if err := json.Unmarshal([]byte(resultText(t, res)), &plan); err != nil {
		t.Fatal(err)
	}
	if len(plan.Exercises) != 1 || len(plan.Exercises[0].Sets) != 5 {
		t.Fatalf("plan = %+v, want one exercise with 5 sets", plan)
	}
	last := plan.Exercises[0].Sets[4]
	if last.Weight.Value != 70 || last.Reps != 10 || !last.Amrap {
		t.Errorf("last set = %+v, want 10 reps at 70 kg AMRAP", last)
	}

	res, _ = h.getDayPlan(context.Background(), callReq(map[string]any{"day": float64(9)}))
	if !res.IsError {
		t.Error("expected IsError for day 9")
	}
}

// TestGetProgressionHistory verifies the default limit is applied.
func TestGetProgressionHistory(t *testing.T) {
	ds := newFakeSource()
	h := newTestHandlers(ds)

	res, err := h.getProgressionHistory(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected IsError: %s", resultText(t, res))
	}
	if ds.lastLimit != defaultHistoryLimit {
		t.Errorf("limit = %d, want %d", ds.lastLimit, defaultHistoryLimit)
	}

	_, _ = h.getProgressionHistory(context.Background(), callReq(map[string]any{"limit": float64(5)}))
	if ds.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", ds.lastLimit)
	}
}

// TestGetProgressionStats verifies stats are returned for the active workout.
func TestGetProgressionStats(t *testing.T) {
	h := newTestHandlers(newFakeSource())

	res, err := h.getProgressionStats(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected IsError: %s", resultText(t, res))
	}
	if text := resultText(t, res); !strings.Contains(text, `"successes":1`) {
		t.Errorf("result missing success count: %s", text)
	}
}

// TestProgramTableResource verifies the resource returns JSON under its URI.
func TestProgramTableResource(t *testing.T) {
	h := newTestHandlers(newFakeSource())

	var req mcp.ReadResourceRequest
	req.Params.URI = "ironcycle://program_table"
	contents, err := h.programTable(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T", contents[0])
	}
	if text.URI != "ironcycle://program_table" || text.MIMEType != "application/json" {
		t.Errorf("uri=%q mime=%q", text.URI, text.MIMEType)
	}
}

// TestNewRegistersTools verifies the server builds without panicking.
func TestNewRegistersTools(t *testing.T) {
	if s := New(newFakeSource(), "test", slog.Default()); s == nil {
		t.Fatal("New returned nil")
	}
}
