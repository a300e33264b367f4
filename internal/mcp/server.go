package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/myplan/internal/myplan"
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

// Sessions hands out the plan session of a user. Satisfied by
// *myplan.Registry.
type Sessions interface {
	Get(ctx context.Context, userID int) (*myplan.Entry, error)
}

// New creates an MCP server with all tools and resources registered.
func New(sessions Sessions, workouts myplan.WorkoutGetter, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("MyPlan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("MyPlan weekly workout plan. Show the plan screen for a day, switch days, look up workouts and rate completed workouts. All data is scoped to the authenticated user."),
	)

	h := &handlers{sessions: sessions, workouts: workouts, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetMyPlan, Handler: h.getMyPlan},
		server.ServerTool{Tool: toolSelectDay, Handler: h.selectDay},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolRateWorkout, Handler: h.rateWorkout},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resToday, Handler: h.today},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	sessions Sessions
	workouts myplan.WorkoutGetter
	log      *slog.Logger
}

// --- Resource definitions ---

var resToday = mcp.NewResource(
	"myplan://today",
	"Today",
	mcp.WithResourceDescription("The current day of the plan with its workouts and rendered sections, independent of the selected day"),
	mcp.WithMIMEType("application/json"),
)
