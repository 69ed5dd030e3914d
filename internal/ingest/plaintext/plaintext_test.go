package plaintext

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/repnotes/internal/models"
)

const sampleNotes = `Training log, spring block

# Upper A 2026-03-02
- Bench
3x5x80kg +++

- Pull-ups
3x8 ++

# Run <2026-03-03>
- Running
Easy pace
10km +

# Rest day 2026-03-04
`

type memStore struct {
	saved []*models.Workout
	err   error
}

func (m *memStore) SaveWorkout(_ context.Context, w *models.Workout) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, w)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestSplitBlocks verifies block boundaries, names, dates and bodies.
func TestSplitBlocks(t *testing.T) {
	blocks, err := Split(strings.NewReader(sampleNotes))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(blocks))
	}

	tests := []struct {
		name string
		date string
		line int
	}{
		{"Upper A", "2026-03-02", 3},
		{"Run", "2026-03-03", 10},
		{"Rest day", "2026-03-04", 15},
	}
	for i, tt := range tests {
		b := blocks[i]
		if b.Name != tt.name {
			t.Errorf("block %d Name = %q, want %q", i, b.Name, tt.name)
		}
		if got := b.Date.Format("2006-01-02"); got != tt.date {
			t.Errorf("block %d Date = %s, want %s", i, got, tt.date)
		}
		if b.Line != tt.line {
			t.Errorf("block %d Line = %d, want %d", i, b.Line, tt.line)
		}
	}

	if want := "- Bench\n3x5x80kg +++\n\n- Pull-ups\n3x8 ++"; blocks[0].Text != want {
		t.Errorf("block 0 Text = %q, want %q", blocks[0].Text, want)
	}
	if blocks[2].Text != "" {
		t.Errorf("block 2 Text = %q, want empty", blocks[2].Text)
	}
}

// TestSplitBadHeader verifies a header without a date names its line.
func TestSplitBadHeader(t *testing.T) {
	_, err := Split(strings.NewReader("# Legs 2026-03-01\n- Squat\n3x5\n# Legs again\n"))
	if err == nil {
		t.Fatal("expected error for header without date")
	}
	if !strings.Contains(err.Error(), "line 4") {
		t.Errorf("error = %q, want it to mention line 4", err)
	}
}

// TestIngestStoresWorkouts verifies decoded workouts and result counts.
func TestIngestStoresWorkouts(t *testing.T) {
	store := &memStore{}
	p := NewProvider(store, testLogger())
	p.now = func() time.Time { return time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC) }

	res, err := p.Ingest(context.Background(), strings.NewReader(sampleNotes), 7)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.WorkoutsReceived != 3 || res.WorkoutsInserted != 3 {
		t.Errorf("received/inserted = %d/%d, want 3/3", res.WorkoutsReceived, res.WorkoutsInserted)
	}
	if res.ExercisesReceived != 3 {
		t.Errorf("ExercisesReceived = %d, want 3", res.ExercisesReceived)
	}
	if res.SetsReceived != 7 || res.SetsCompleted != 6 {
		t.Errorf("sets done/total = %d/%d, want 6/7", res.SetsCompleted, res.SetsReceived)
	}

	w := store.saved[0]
	if w.UserID != 7 || w.Name != "Upper A" {
		t.Errorf("workout = %+v", w)
	}
	if err := models.Validate(w.Exercises, w.Progress); err != nil {
		t.Errorf("stored workout invalid: %v", err)
	}
	if w.Exercises[0].Sets[0].VolumeType != models.VolumeSetsRepsWeight {
		t.Errorf("bench volume type = %s", w.Exercises[0].Sets[0].VolumeType)
	}
}

// TestIngestStoreError verifies store failures abort the ingest.
func TestIngestStoreError(t *testing.T) {
	boom := errors.New("boom")
	p := NewProvider(&memStore{err: boom}, testLogger())
	_, err := p.Ingest(context.Background(), strings.NewReader(sampleNotes), 1)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

// TestWorkoutIDStable verifies re-imports map to the same workout.
func TestWorkoutIDStable(t *testing.T) {
	d := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	a := WorkoutID(1, "Upper A", d)
	if b := WorkoutID(1, "Upper A", d); a != b {
		t.Errorf("WorkoutID not stable: %s vs %s", a, b)
	}
	if c := WorkoutID(2, "Upper A", d); a == c {
		t.Error("different users share a workout ID")
	}
	if c := WorkoutID(1, "Upper A", d.AddDate(0, 0, 1)); a == c {
		t.Error("different dates share a workout ID")
	}
}
