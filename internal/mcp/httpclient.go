package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/progression"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the IronCycle REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ownerScoped marks HTTPClient as serverScoped: the REST API answers 404 for
// workouts of other users, and its user IDs are not the stdio caller's.
func (c *HTTPClient) ownerScoped() {}

// apiError is the error body written by the REST API.
type apiError struct {
	Error string `json:"error"`
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		msg := string(body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", workout.ErrNotFound, msg)
		}
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) WeekParameters(ctx context.Context, week int) (progression.WeekParams, error) {
	var p progression.WeekParams
	err := c.get(ctx, "/api/v1/weeks/"+strconv.Itoa(week), nil, &p)
	return p, err
}

func (c *HTTPClient) ProgramTable(ctx context.Context) ([]progression.WeekParams, error) {
	var weeks []progression.WeekParams
	err := c.get(ctx, "/api/v1/weeks", nil, &weeks)
	return weeks, err
}

// ActiveWorkout ignores userID: the server resolves the caller from its own
// identity middleware.
func (c *HTTPClient) ActiveWorkout(ctx context.Context, _ int) (*workout.Workout, error) {
	var w workout.Workout
	if err := c.get(ctx, "/api/v1/workouts/active", nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id uuid.UUID) (*workout.Workout, error) {
	var w workout.Workout
	if err := c.get(ctx, "/api/v1/workouts/"+id.String(), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *HTTPClient) PlanDay(ctx context.Context, id uuid.UUID, day int) (*workout.DayPlan, error) {
	var plan workout.DayPlan
	path := fmt.Sprintf("/api/v1/workouts/%s/days/%d/plan", id, day)
	if err := c.get(ctx, path, nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *HTTPClient) History(ctx context.Context, id uuid.UUID, limit int) ([]models.ProgressionLogRow, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var rows []models.ProgressionLogRow
	err := c.get(ctx, "/api/v1/workouts/"+id.String()+"/history", params, &rows)
	return rows, err
}

func (c *HTTPClient) Stats(ctx context.Context, id uuid.UUID) ([]models.ExerciseStatsRow, error) {
	var rows []models.ExerciseStatsRow
	err := c.get(ctx, "/api/v1/workouts/"+id.String()+"/stats", nil, &rows)
	return rows, err
}
