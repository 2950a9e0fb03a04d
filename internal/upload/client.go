// Package upload pushes locally written session logs to a remote IronCycle
// server.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/ironcycle/internal/ingest"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
)

// ErrRejected is returned when the server refuses a request. It is not
// retried.
var ErrRejected = errors.New("rejected by server")

// Client sends session logs to the IronCycle server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client

	// backoff returns the delay before retry attempt n (1-based).
	backoff func(n int) time.Duration
}

// NewClient creates a new HTTP client for the IronCycle server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: func(n int) time.Duration { return time.Duration(1<<uint(n-1)) * time.Second },
	}
}

// ActiveWorkout fetches the caller's active workout.
func (c *Client) ActiveWorkout(ctx context.Context) (*workout.Workout, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/v1/workouts/active", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching active workout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: no active workout on server", workout.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("active workout request failed (status %d): %s", resp.StatusCode, body)
	}

	var w workout.Workout
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, fmt.Errorf("decoding workout: %w", err)
	}
	return &w, nil
}

// PushSession POSTs a session log to the day's import endpoint.
// Transport errors and 5xx responses are retried up to 3 times with
// exponential backoff; 4xx responses fail immediately with ErrRejected.
func (c *Client) PushSession(ctx context.Context, workoutID uuid.UUID, day int, log []byte) (*ingest.Result, error) {
	url := fmt.Sprintf("%s/api/v1/workouts/%s/days/%d/import", c.serverURL, workoutID, day)

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(log))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var result ingest.Result
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding import result: %w", err)
			}
			return &result, nil
		case resp.StatusCode < http.StatusInternalServerError:
			return nil, fmt.Errorf("%w (status %d): %s", ErrRejected, resp.StatusCode, errorMessage(body))
		}
		lastErr = fmt.Errorf("import failed (status %d): %s", resp.StatusCode, errorMessage(body))
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
