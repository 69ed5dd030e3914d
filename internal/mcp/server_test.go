package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/repnotes/internal/codec"
	"github.com/claude/repnotes/internal/models"
	"github.com/claude/repnotes/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

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

// TestDefaultTimeRange verifies time range defaults (last 30 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days := end.Sub(start).Hours() / 24; days < 29 || days > 31 {
		t.Errorf("default range = %.1f days, want ~30", days)
	}

	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2024 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if end.Day() != 31 {
		t.Errorf("end = %v, want 2024-01-31", end)
	}

	start, _, err = defaultTimeRange("2024-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	if _, _, err = defaultTimeRange("not-a-date", ""); err == nil {
		t.Error("expected error for invalid date")
	}
}

// fakeSource is an in-memory DataSource.
type fakeSource struct {
	workouts map[uuid.UUID]*models.Workout
	gotUser  int
}

func (f *fakeSource) ListWorkouts(_ context.Context, userID int, start, end time.Time) ([]models.WorkoutSummary, error) {
	f.gotUser = userID
	var out []models.WorkoutSummary
	for _, w := range f.workouts {
		if w.Date.Before(start) || w.Date.After(end) {
			continue
		}
		done, total := w.Progress.Counts(w.Exercises)
		out = append(out, models.WorkoutSummary{
			ID: w.ID, Name: w.Name, Date: w.Date,
			Exercises: len(w.Exercises), SetsDone: done, SetsTotal: total,
		})
	}
	return out, nil
}

func (f *fakeSource) GetWorkout(_ context.Context, id uuid.UUID, userID int) (*models.Workout, error) {
	f.gotUser = userID
	w, ok := f.workouts[id]
	if !ok || w.UserID != userID {
		return nil, storage.ErrWorkoutNotFound
	}
	return w, nil
}

func (f *fakeSource) GetDataStats(_ context.Context, userID int) (*storage.DataStats, error) {
	f.gotUser = userID
	return &storage.DataStats{TotalWorkouts: int64(len(f.workouts))}, nil
}

func newTestHandlers(t *testing.T) (*handlers, *fakeSource, uuid.UUID) {
	t.Helper()
	decoded := codec.Decode("- Squat\n3x5x100kg ++", nil)
	id := uuid.New()
	src := &fakeSource{workouts: map[uuid.UUID]*models.Workout{
		id: {
			ID: id, UserID: 7, Name: "Legs",
			Date:      time.Now().AddDate(0, 0, -1),
			Exercises: decoded.Exercises,
			Progress:  decoded.Progress,
		},
	}}
	h := &handlers{
		ds:      src,
		builder: codec.NewBuilder(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h, src, id
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil {
		t.Fatal("nil tool result")
	}
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatalf("tool result has no text content: %+v", res.Content)
	return ""
}

// TestDecodeWorkoutTextTool verifies decoding through the tool and the error
// result for a missing argument.
func TestDecodeWorkoutTextTool(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	res, err := h.decodeWorkoutText(context.Background(), callRequest(map[string]any{
		"text": "- Bench\n3x8x60kg +",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	var got codec.Result
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(got.Exercises) != 1 || len(got.Exercises[0].Sets) != 3 {
		t.Fatalf("exercises = %+v", got.Exercises)
	}
	if done, total := got.Progress.Counts(got.Exercises); done != 1 || total != 3 {
		t.Errorf("progress = %d/%d, want 1/3", done, total)
	}

	res, err = h.decodeWorkoutText(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("missing text: want error result")
	}

	res, _ = h.decodeWorkoutText(context.Background(), callRequest(map[string]any{
		"text": "- A\n3x5", "existing": "{not json",
	}))
	if !res.IsError {
		t.Error("bad existing JSON: want error result")
	}
}

// TestEncodeWorkoutTool verifies a decoded model renders back to the same text.
func TestEncodeWorkoutTool(t *testing.T) {
	h, _, _ := newTestHandlers(t)
	text := "- Squat\n3x5x100kg ++"

	data, err := json.Marshal(codec.Decode(text, nil))
	if err != nil {
		t.Fatal(err)
	}
	res, err := h.encodeWorkout(context.Background(), callRequest(map[string]any{"workout": string(data)}))
	if err != nil {
		t.Fatal(err)
	}
	if got := resultText(t, res); got != text {
		t.Errorf("encode_workout = %q, want %q", got, text)
	}
}

// TestWorkoutTools verifies the stored-workout tools are scoped to the
// context user.
func TestWorkoutTools(t *testing.T) {
	h, src, id := newTestHandlers(t)
	ctx := WithUserID(context.Background(), 7)

	res, err := h.getWorkouts(ctx, callRequest(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	var summaries []models.WorkoutSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].SetsDone != 2 || summaries[0].SetsTotal != 3 {
		t.Errorf("summaries = %+v", summaries)
	}
	if src.gotUser != 7 {
		t.Errorf("user = %d, want 7", src.gotUser)
	}

	res, _ = h.getWorkoutText(ctx, callRequest(map[string]any{"id": id.String()}))
	if got := resultText(t, res); got != "- Squat\n3x5x100kg ++" {
		t.Errorf("get_workout_text = %q", got)
	}

	res, _ = h.getWorkout(WithUserID(context.Background(), 8), callRequest(map[string]any{"id": id.String()}))
	if !res.IsError || !strings.Contains(resultText(t, res), "not found") {
		t.Errorf("other user's workout: want not found error, got %+v", res)
	}

	res, _ = h.getWorkout(ctx, callRequest(map[string]any{"id": "nope"}))
	if !res.IsError {
		t.Error("invalid id: want error result")
	}

	res, _ = h.getStats(ctx, callRequest(nil))
	var stats storage.DataStats
	if err := json.Unmarshal([]byte(resultText(t, res)), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalWorkouts != 1 {
		t.Errorf("TotalWorkouts = %d, want 1", stats.TotalWorkouts)
	}
}

// TestWorkoutTextResource verifies the workout resource template renders the
// stored workout and rejects URIs without a valid id.
func TestWorkoutTextResource(t *testing.T) {
	h, _, id := newTestHandlers(t)
	ctx := WithUserID(context.Background(), 7)

	var req mcp.ReadResourceRequest
	req.Params.URI = workoutURIBase + id.String()
	contents, err := h.workoutText(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.Text != "- Squat\n3x5x100kg ++" || tc.URI != req.Params.URI {
		t.Errorf("contents = %+v", contents)
	}

	for _, uri := range []string{workoutURIBase, workoutURIBase + "nope", "repnotes://grammar"} {
		req.Params.URI = uri
		if _, err := h.workoutText(ctx, req); err == nil {
			t.Errorf("%s: want error", uri)
		}
	}
}
