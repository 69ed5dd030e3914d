package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/claude/repnotes/internal/codec"
	"github.com/claude/repnotes/internal/models"
	"github.com/claude/repnotes/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolDecodeWorkoutText = mcp.NewTool("decode_workout_text",
	mcp.WithDescription("Parse free-form workout text into structured exercises, flat sets and per-set completion progress. Read the repnotes://grammar resource for the text format."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Workout text, e.g. \"- Squat\\n3x5x100kg ++\"")),
	mcp.WithString("existing", mcp.Description("Optional JSON array of previously decoded exercises; ids and metadata are kept by position.")),
)

var toolEncodeWorkout = mcp.NewTool("encode_workout",
	mcp.WithDescription("Render structured exercises and progress back into canonical workout text."),
	mcp.WithString("workout", mcp.Required(), mcp.Description("JSON object {\"exercises\": [...], \"progress\": {exercise_id: [bool...]}} as returned by decode_workout_text.")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("List stored workouts in a date range with exercise counts and completed/total sets."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one stored workout with its exercises, sets and progress."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolGetWorkoutText = mcp.NewTool("get_workout_text",
	mcp.WithDescription("Get one stored workout rendered as canonical workout text, including completion markers."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolGetStats = mcp.NewTool("get_stats",
	mcp.WithDescription("Aggregate totals across stored workouts: workouts, exercises, sets, completed sets and the most frequent exercises."),
)

// --- Tool handlers ---

func (h *handlers) decodeWorkoutText(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	var existing []models.Exercise
	if raw := req.GetString("existing", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			return mcp.NewToolResultError("invalid existing JSON: " + err.Error()), nil
		}
	}

	decoded := h.builder.Decode(text, existing)
	if err := models.Validate(decoded.Exercises, decoded.Progress); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(decoded)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) encodeWorkout(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("workout")
	if err != nil {
		return mcp.NewToolResultError("workout parameter is required"), nil
	}
	var in codec.Result
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return mcp.NewToolResultError("invalid workout JSON: " + err.Error()), nil
	}
	return mcp.NewToolResultText(codec.Encode(in)), nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, errResult := h.loadWorkout(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, errResult := h.loadWorkout(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	return mcp.NewToolResultText(codec.Generate(w.Exercises, w.Progress)), nil
}

func (h *handlers) getStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) loadWorkout(ctx context.Context, req mcp.CallToolRequest) (*models.Workout, *mcp.CallToolResult) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return nil, mcp.NewToolResultError("id parameter is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, mcp.NewToolResultError("invalid workout id: " + err.Error())
	}
	w, err := h.ds.GetWorkout(ctx, id, UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, storage.ErrWorkoutNotFound) {
			return nil, mcp.NewToolResultError("workout not found")
		}
		h.log.Error("mcp get_workout", "id", idStr, "error", err)
		return nil, mcp.NewToolResultError("query failed: " + err.Error())
	}
	return w, nil
}
