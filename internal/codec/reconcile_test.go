package codec

import (
	"testing"

	"github.com/claude/repnotes/internal/models"
	"github.com/google/go-cmp/cmp"
)

func decodeFlags(t *testing.T, text string) [][]bool {
	t.Helper()
	r := seqBuilder().Decode(text, nil)
	out := make([][]bool, 0, len(r.Exercises))
	for _, ex := range r.Exercises {
		flags := r.Progress[ex.ID]
		if len(flags) != len(ex.Sets) {
			t.Fatalf("%s: progress len = %d, sets = %d", ex.Name, len(flags), len(ex.Sets))
		}
		out = append(out, flags)
	}
	return out
}

// TestReconcile covers completion counting, header overrides and measure
// markers.
func TestReconcile(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]bool
	}{
		{"count", "- Push ups\n3x10 ++", [][]bool{{true, true, false}}},
		{"exercise level override", "- Push ups +\n3x10", [][]bool{{true, true, true}}},
		{"exercise level beats counts", "- Push ups +\n3x10 +", [][]bool{{true, true, true}}},
		{"volume-less", "- Warm up +", [][]bool{{true}}},
		{"volume-less open", "- Warm up", [][]bool{{false}}},
		{"over-count absorbed", "- Dips\n2x5 +++++\n1x5", [][]bool{{true, true, false}}},
		{"distance", "- Running\n10km +", [][]bool{{true}}},
		{"per-entry measures", "- Run\n5km +\n3km\n20min\n10min +", [][]bool{{true, false, false, true}}},
		{"mixed", "- Run\n3x10 +\n10km +\n20min", [][]bool{{true, false, false, true, false}}},
		{
			"end to end",
			"- Pull-ups\n5x7 +++++\n4x5x40kg +++",
			[][]bool{{true, true, true, true, true, true, true, true, false}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, decodeFlags(t, tt.text)); diff != "" {
				t.Errorf("progress mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestReconcileLegacyMeasureFlags verifies the single-flag distance/duration
// form is honoured when no per-entry list is present.
func TestReconcileLegacyMeasureFlags(t *testing.T) {
	pw := models.ParsedWorkout{Exercises: []models.ParsedExercise{{
		Name:         "Ride",
		Distance:     "20km",
		DistanceDone: true,
		Time:         "1h",
	}}}
	exercises := seqBuilder().Build(pw, nil)
	got := Reconcile(pw, exercises)[exercises[0].ID]
	if diff := cmp.Diff([]bool{true, false}, got); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
}

// TestReconcileReplacesPriorState verifies progress comes only from the text:
// exercises without a parsed counterpart get all-false flags.
func TestReconcileReplacesPriorState(t *testing.T) {
	exercises := []models.Exercise{{
		ID:   "orphan",
		Sets: []models.Set{models.NewRepsSet(5, 60, "g"), models.NewRepsSet(5, 60, "g")},
	}}
	got := Reconcile(models.ParsedWorkout{}, exercises)
	if diff := cmp.Diff(models.Progress{"orphan": {false, false}}, got); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
}

// TestDecodeEndToEnd verifies the worked example: nine sets across two groups.
func TestDecodeEndToEnd(t *testing.T) {
	r := seqBuilder().Decode("- Pull-ups\n5x7 +++++\n4x5x40kg +++", nil)
	if len(r.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(r.Exercises))
	}
	sets := r.Exercises[0].Sets
	if len(sets) != 9 {
		t.Fatalf("sets = %d, want 9", len(sets))
	}
	for i, s := range sets[:5] {
		if s.Reps != 7 || s.VolumeType != models.VolumeSetsReps || s.GroupID != "g1" || s.Weight != nil {
			t.Errorf("set %d = %+v, want 7 reps sets-reps in g1", i, s)
		}
	}
	for i, s := range sets[5:] {
		if s.Reps != 5 || s.VolumeType != models.VolumeSetsRepsWeight || s.WeightValue() != 40 || s.WeightUnit != "kg" || s.GroupID != "g2" {
			t.Errorf("set %d = %+v, want 5 reps at 40kg in g2", i+5, s)
		}
	}
	if err := models.Validate(r.Exercises, r.Progress); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
