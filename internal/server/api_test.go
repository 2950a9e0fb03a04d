package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/ironcycle/internal/ingest"
	"github.com/claude/ironcycle/internal/metrics"
	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/progression"
	"github.com/claude/ironcycle/internal/storage"
	"github.com/claude/ironcycle/internal/tracker"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "secret"

func newTestServer(t *testing.T) (*httptest.Server, *metrics.Manager) {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "ironcycle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, reg := metrics.NewTestManagerAndRegistry()
	svc, err := tracker.New(db, tracker.Program{}, m, log)
	require.NoError(t, err)

	ts := httptest.NewServer(New(svc, testAPIKey, log, WithMetrics(m, reg)))
	t.Cleanup(ts.Close)
	return ts, m
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if method == http.MethodPost {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func testSpec() tracker.WorkoutSpec {
	return tracker.WorkoutSpec{
		Name: "winter block",
		Unit: "kg",
		Exercises: []tracker.ExerciseSpec{
			{
				Name: "Squat", Category: "main_lift", Equipment: "barbell", Day: 1,
				Linear: &tracker.LinearSpec{TrainingMax: 100, UseAmrap: true},
			},
			{
				Name: "Leg Curl", Category: "accessory", Equipment: "machine", Day: 1,
				RepsPerSet: &tracker.RepsPerSetSpec{Weight: 40, Sets: 3, TargetSets: 4, RepRange: progression.RepRange{Min: 8, Target: 10, Max: 12}},
			},
			{
				Name: "Bench", Category: "main_lift", Equipment: "barbell", Day: 2,
				Linear: &tracker.LinearSpec{TrainingMax: 80, UseAmrap: true},
			},
		},
	}
}

func createTestWorkout(t *testing.T, ts *httptest.Server) *workout.Workout {
	t.Helper()
	var w workout.Workout
	status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/workouts", testSpec(), &w)
	require.Equal(t, http.StatusCreated, status)
	return &w
}

// TestAPIWeeks verifies the week table endpoints.
func TestAPIWeeks(t *testing.T) {
	ts, _ := newTestServer(t)

	var weeks []progression.WeekParams
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/v1/weeks", nil, &weeks))
	require.Len(t, weeks, 21)
	assert.InDelta(t, 0.70, weeks[0].Intensity, 1e-9)

	var week8 progression.WeekParams
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/v1/weeks/8", nil, &week8))
	assert.Equal(t, 2, week8.Block)
	assert.Equal(t, 1, week8.WeekInBlock)

	var apiErr map[string]string
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, ts.URL+"/api/v1/weeks/22", nil, &apiErr))
	assert.NotEmpty(t, apiErr["error"])

	var program programInfo
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/v1/program", nil, &program))
	assert.Equal(t, 21, program.TotalWeeks)
	assert.Equal(t, 3, program.Blocks)
	assert.Equal(t, []int{7, 14, 21}, program.DeloadWeeks)
}

// TestAPICreateWorkout verifies a workout can be created once per user and
// read back as the active workout.
func TestAPICreateWorkout(t *testing.T) {
	ts, m := newTestServer(t)
	w := createTestWorkout(t, ts)
	assert.Equal(t, workout.NotStarted, w.Status)
	assert.Equal(t, 1, w.UserID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterWorkoutsCreated))

	var active workout.Workout
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/v1/workouts/active", nil, &active))
	assert.Equal(t, w.ID, active.ID)

	var apiErr map[string]string
	assert.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, ts.URL+"/api/v1/workouts", testSpec(), &apiErr))
}

// TestAPICreateWorkoutInvalid verifies malformed and invalid specs are rejected.
func TestAPICreateWorkoutInvalid(t *testing.T) {
	ts, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, ts.URL+"/api/v1/workouts", "{not json", nil))

	spec := testSpec()
	spec.Exercises[0].Day = 9
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, ts.URL+"/api/v1/workouts", spec, nil))
}

// TestAPIRequiresKey verifies mutations need the API key and reads do not.
func TestAPIRequiresKey(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/workouts", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/v1/weeks")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestAPICompleteDay verifies a day completion applies progression, shows up
// in history and cannot be repeated.
func TestAPICompleteDay(t *testing.T) {
	ts, _ := newTestServer(t)
	w := createTestWorkout(t, ts)
	squat, curl := w.Exercises[0], w.Exercises[1]

	squatSets := make([]progression.SetResult, 5)
	for i := range squatSets {
		squatSets[i] = progression.SetResult{SetNumber: i + 1, Weight: progression.Kg(70), ActualReps: 10}
	}
	squatSets[4].ActualReps = 15
	squatSets[4].WasAmrap = true
	curlSets := []progression.SetResult{
		{SetNumber: 1, Weight: progression.Kg(40), ActualReps: 12},
		{SetNumber: 2, Weight: progression.Kg(40), ActualReps: 12},
		{SetNumber: 3, Weight: progression.Kg(40), ActualReps: 12},
	}
	body := completeDayRequest{Performances: []workout.Performance{
		{ExerciseID: squat.ID, Sets: squatSets},
		{ExerciseID: curl.ID, Sets: curlSets},
	}}

	url := ts.URL + "/api/v1/workouts/" + w.ID.String() + "/days/1/complete"
	var result workout.CompleteDayResult
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, url, body, &result))
	assert.Equal(t, 2, result.ExercisesCompleted)
	assert.False(t, result.WeekProgressed)
	require.Len(t, result.ProgressionChanges, 2)

	var history []models.ProgressionLogRow
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/v1/workouts/"+w.ID.String()+"/history?limit=1", nil, &history))
	assert.Len(t, history, 1)

	var stats []models.ExerciseStatsRow
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/v1/workouts/"+w.ID.String()+"/stats", nil, &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, "Leg Curl", stats[0].ExerciseName)
	assert.Equal(t, int64(1), stats[0].Successes)

	assert.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, url, body, nil))
}

// TestAPIImportSession verifies a plain-text session log completes a day.
func TestAPIImportSession(t *testing.T) {
	ts, _ := newTestServer(t)
	w := createTestWorkout(t, ts)

	log := "# week 1 day 1\n" +
		"Squat: 70 x 10, 70 x 10, 70 x 10, 70 x 10, 70 x 12+\n" +
		"leg curl: 40 x 10; 40 x 10; 40 x 9\n"
	url := ts.URL + "/api/v1/workouts/" + w.ID.String() + "/days/1/import"
	var result ingest.Result
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, url, log, &result))
	assert.Equal(t, 2, result.ExercisesReceived)
	assert.Equal(t, 2, result.ExercisesMatched)
	assert.Equal(t, 8, result.SetsReceived)
	require.NotNil(t, result.Day)
	assert.Equal(t, 1, result.Day.Day)

	var plan workout.DayPlan
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/v1/workouts/"+w.ID.String()+"/days/1/plan", nil, &plan))
	assert.True(t, plan.Completed)

	unknown := "Deadlift: 100 x 5\n"
	url = ts.URL + "/api/v1/workouts/" + w.ID.String() + "/days/2/import"
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, url, unknown, nil))

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, url, "Bench 80 x 5\n", nil))
}

// TestAPIProgressWeek verifies forced week progression through the API.
func TestAPIProgressWeek(t *testing.T) {
	ts, m := newTestServer(t)
	w := createTestWorkout(t, ts)

	var result workout.ProgressWeekResult
	url := ts.URL + "/api/v1/workouts/" + w.ID.String() + "/progress-week"
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, url, nil, &result))
	assert.Equal(t, 1, result.PreviousWeek)
	assert.Equal(t, 2, result.NewWeek)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterWeeksProgressed))
}

// TestAPIWorkoutNotFound verifies unknown and malformed workout IDs.
func TestAPIWorkoutNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, ts.URL+"/api/v1/workouts/not-a-uuid", nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, ts.URL+"/api/v1/workouts/00000000-0000-0000-0000-000000000001", nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, ts.URL+"/api/v1/workouts/active", nil, nil))
}

// TestAPIMetricsEndpoint verifies request metrics are exposed.
func TestAPIMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	doJSON(t, http.MethodGet, ts.URL+"/api/v1/weeks", nil, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ironcycle_test_request")
}

// TestStatusFor verifies domain errors map to HTTP statuses.
func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{workout.ErrNotFound, http.StatusNotFound},
		{workout.ErrAlreadyCompleted, http.StatusConflict},
		{workout.ErrNotActive, http.StatusConflict},
		{tracker.ErrActiveWorkoutExists, http.StatusConflict},
		{workout.ErrInvalidDay, http.StatusBadRequest},
		{progression.ErrInvalidPerformance, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
