package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/repnotes/internal/codec"
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
	s := server.NewMCPServer("repnotes", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("repnotes workout log. Decode free-form workout text into exercises, sets and progress, render models back to text, and query stored workouts. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, builder: codec.NewBuilder(), log: log}

	s.AddTools(
		server.ServerTool{Tool: toolDecodeWorkoutText, Handler: h.decodeWorkoutText},
		server.ServerTool{Tool: toolEncodeWorkout, Handler: h.encodeWorkout},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetWorkoutText, Handler: h.getWorkoutText},
		server.ServerTool{Tool: toolGetStats, Handler: h.getStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resGrammar, Handler: h.grammar},
	)
	s.AddResourceTemplate(resWorkoutText, h.workoutText)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds      DataSource
	builder *codec.Builder
	log     *slog.Logger
}

var resRecentWorkouts = mcp.NewResource(
	"repnotes://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workout summaries from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resGrammar = mcp.NewResource(
	"repnotes://grammar",
	"Workout Text Grammar",
	mcp.WithResourceDescription("How workout text is written: exercise headers, set lines, distances, durations and completion markers"),
	mcp.WithMIMEType("text/plain"),
)

var resWorkoutText = mcp.NewResourceTemplate(
	workoutURIBase+"{id}",
	"Workout Text",
	mcp.WithTemplateDescription("A stored workout rendered as workout text with completion markers"),
	mcp.WithTemplateMIMEType("text/plain"),
)
