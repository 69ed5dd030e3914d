package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repnotes/internal/codec"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	recentDays     = 14
	workoutURIBase = "repnotes://workouts/"
)

const grammarText = `Workout text, one item per line:

- Pull-ups            exercise header; a trailing "+" marks a volume-less exercise done
5x7 +++++             sets x reps; one "+" per completed set
4x5x40kg +++          sets x reps x weight (kg or lb)
10km +                distance (km, mi, m); "+" marks it done
1h30min +             duration (h, min); "+" marks it done
anything else         cue, kept as exercise instructions

Exercises are separated by blank lines. A "+" after the header of an exercise
with volume marks every set done.`

var errBadWorkoutURI = errors.New("workout resource URI must be " + workoutURIBase + "{id}")

func textContents(uri, mime, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: mime, Text: text},
	}
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	end := time.Now().AddDate(0, 0, 1)
	list, err := h.ds.ListWorkouts(ctx, UserIDFromContext(ctx), end.AddDate(0, 0, -recentDays-1), end)
	if err != nil {
		return nil, fmt.Errorf("listing recent workouts: %w", err)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return textContents(req.Params.URI, "application/json", string(data)), nil
}

func (h *handlers) grammar(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return textContents(req.Params.URI, "text/plain", grammarText), nil
}

// workoutText serves repnotes://workouts/{id} as the workout's canonical text.
func (h *handlers) workoutText(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	raw, ok := strings.CutPrefix(req.Params.URI, workoutURIBase)
	if !ok || raw == "" {
		return nil, errBadWorkoutURI
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadWorkoutURI, err)
	}
	w, err := h.ds.GetWorkout(ctx, id, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return textContents(req.Params.URI, "text/plain", codec.Generate(w.Exercises, w.Progress)), nil
}
