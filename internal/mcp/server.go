package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronCycle", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronCycle strength program server. Look up the 21-week periodization table, the current workout, planned sets for a training day, and the history of progression changes. Workouts are scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWeekParameters, Handler: h.getWeekParameters},
		server.ServerTool{Tool: toolGetProgramTable, Handler: h.getProgramTable},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetDayPlan, Handler: h.getDayPlan},
		server.ServerTool{Tool: toolGetProgressionHistory, Handler: h.getProgressionHistory},
		server.ServerTool{Tool: toolGetProgressionStats, Handler: h.getProgressionStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resProgramTable, Handler: h.programTable},
		server.ServerResource{Resource: resActiveWorkout, Handler: h.activeWorkout},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resProgramTable = mcp.NewResource(
	"ironcycle://program_table",
	"Program Table",
	mcp.WithResourceDescription("Intensity, sets, target reps and deload flag for every week of the program"),
	mcp.WithMIMEType("application/json"),
)

var resActiveWorkout = mcp.NewResource(
	"ironcycle://active_workout",
	"Active Workout",
	mcp.WithResourceDescription("The caller's current workout with week/day pointers and every exercise's progression state"),
	mcp.WithMIMEType("application/json"),
)
