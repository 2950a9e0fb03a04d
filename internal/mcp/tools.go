package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultHistoryLimit = 20

// resolveWorkoutID returns the explicit workout_id argument, or the caller's
// active workout when it is omitted. Workouts owned by another user are
// reported as not found.
func (h *handlers) resolveWorkoutID(ctx context.Context, req mcp.CallToolRequest) (uuid.UUID, error) {
	raw := req.GetString("workout_id", "")
	if raw == "" {
		w, err := h.ds.ActiveWorkout(ctx, UserIDFromContext(ctx))
		if err != nil {
			return uuid.Nil, err
		}
		return w.ID, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid workout_id: %w", err)
	}
	if _, remote := h.ds.(serverScoped); remote {
		return id, nil
	}
	w, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if w.UserID != UserIDFromContext(ctx) {
		return uuid.Nil, fmt.Errorf("%w: workout %s", workout.ErrNotFound, id)
	}
	return id, nil
}

func toolError(prefix string, err error) *mcp.CallToolResult {
	if errors.Is(err, workout.ErrNotFound) {
		return mcp.NewToolResultError("not found: " + err.Error())
	}
	return mcp.NewToolResultError(prefix + ": " + err.Error())
}

// --- Tool definitions ---

var toolGetWeekParameters = mcp.NewTool("get_week_parameters",
	mcp.WithDescription("Get the prescription for one program week: block, week in block, intensity as a fraction of training max, sets, target reps, and whether it is a deload week."),
	mcp.WithNumber("week", mcp.Required(), mcp.Description("Program week, 1-21")),
)

var toolGetProgramTable = mcp.NewTool("get_program_table",
	mcp.WithDescription("List the prescription for every week of the program."),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get a workout with its status, current week/day, completed days this week, and each exercise's progression state (training max, sets, weights)."),
	mcp.WithString("workout_id", mcp.Description("Workout UUID. Defaults to the caller's active workout.")),
)

var toolGetDayPlan = mcp.NewTool("get_day_plan",
	mcp.WithDescription("Get the planned sets (reps, weight, AMRAP flag) for each exercise on a training day of the workout's current week."),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Training day within the week, starting at 1")),
	mcp.WithString("workout_id", mcp.Description("Workout UUID. Defaults to the caller's active workout.")),
)

var toolGetProgressionHistory = mcp.NewTool("get_progression_history",
	mcp.WithDescription("List recent progression changes (training max adjustments, added sets, weight increases) newest first."),
	mcp.WithString("workout_id", mcp.Description("Workout UUID. Defaults to the caller's active workout.")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of entries. Defaults to 20.")),
)

var toolGetProgressionStats = mcp.NewTool("get_progression_stats",
	mcp.WithDescription("Count successes, maintained sessions and failures per exercise over the whole program so far."),
	mcp.WithString("workout_id", mcp.Description("Workout UUID. Defaults to the caller's active workout.")),
)

// --- Tool handlers ---

func (h *handlers) getWeekParameters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	week, err := req.RequireInt("week")
	if err != nil {
		return mcp.NewToolResultError("week parameter is required"), nil
	}

	params, err := h.ds.WeekParameters(ctx, week)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(params)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgramTable(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weeks, err := h.ds.ProgramTable(ctx)
	if err != nil {
		h.log.Error("mcp get_program_table", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"weeks": weeks})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := h.resolveWorkoutID(ctx, req)
	if err != nil {
		return toolError("workout lookup failed", err), nil
	}

	w, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return toolError("query failed", err), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDayPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := req.RequireInt("day")
	if err != nil {
		return mcp.NewToolResultError("day parameter is required"), nil
	}
	id, err := h.resolveWorkoutID(ctx, req)
	if err != nil {
		return toolError("workout lookup failed", err), nil
	}

	plan, err := h.ds.PlanDay(ctx, id, day)
	if err != nil {
		return toolError("planning failed", err), nil
	}

	result, err := mcp.NewToolResultJSON(plan)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgressionHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := h.resolveWorkoutID(ctx, req)
	if err != nil {
		return toolError("workout lookup failed", err), nil
	}
	limit := req.GetInt("limit", defaultHistoryLimit)

	rows, err := h.ds.History(ctx, id, limit)
	if err != nil {
		h.log.Error("mcp get_progression_history", "error", err)
		return toolError("query failed", err), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"workout_id": id,
		"changes":    rows,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgressionStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := h.resolveWorkoutID(ctx, req)
	if err != nil {
		return toolError("workout lookup failed", err), nil
	}

	stats, err := h.ds.Stats(ctx, id)
	if err != nil {
		h.log.Error("mcp get_progression_stats", "error", err)
		return toolError("query failed", err), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"workout_id": id,
		"exercises":  stats,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
