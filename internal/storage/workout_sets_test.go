package storage

import (
	"testing"

	"github.com/claude/repnotes/internal/codec"
	"github.com/claude/repnotes/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// TestValuesClause verifies placeholder numbering across rows.
func TestValuesClause(t *testing.T) {
	tests := []struct {
		n, cols int
		want    string
	}{
		{1, 2, "($1,$2)"},
		{2, 3, "($1,$2,$3),($4,$5,$6)"},
		{0, 3, ""},
	}
	for _, tt := range tests {
		if got := valuesClause(tt.n, tt.cols); got != tt.want {
			t.Errorf("valuesClause(%d, %d) = %q, want %q", tt.n, tt.cols, got, tt.want)
		}
	}
}

// TestArgsMatchColumns verifies each row contributes exactly one arg per column.
func TestArgsMatchColumns(t *testing.T) {
	w := &models.Workout{ID: uuid.New(), UserID: 1, Name: "Push"}
	r := codec.Decode("- Bench\n3x5x80kg ++\n\n- Run\n5km +\n30min", nil)
	w.Exercises, w.Progress = r.Exercises, r.Progress

	_, exRows, setRows := models.SplitWorkout(w)
	if got, want := len(exerciseArgs(exRows)), len(exRows)*exerciseColumns; got != want {
		t.Errorf("exercise args = %d, want %d", got, want)
	}
	if got, want := len(setArgs(w.ID, setRows)), len(setRows)*setColumns; got != want {
		t.Errorf("set args = %d, want %d", got, want)
	}
}

// TestSplitJoinPreservesModel verifies table rows rebuild the same workout.
func TestSplitJoinPreservesModel(t *testing.T) {
	r := codec.Decode("- Squat\nkeep chest up\n3x5x100kg ++\n2x8\n\n- Plank +\n\n- Row\n2km +\n1h5min", nil)
	w := &models.Workout{ID: uuid.New(), UserID: 3, Name: "Legs", Exercises: r.Exercises, Progress: r.Progress}

	wr, exRows, setRows := models.SplitWorkout(w)
	got := models.JoinWorkout(wr, exRows, setRows)

	if diff := cmp.Diff(w.Exercises, got.Exercises); diff != "" {
		t.Errorf("exercises changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(w.Progress, got.Progress); diff != "" {
		t.Errorf("progress changed (-want +got):\n%s", diff)
	}
}
