package codec

import (
	"testing"

	"github.com/claude/repnotes/internal/models"
	"github.com/google/go-cmp/cmp"
)

// TestNormalizeCollapsesBlankRuns verifies trimming and blank-run collapsing.
func TestNormalizeCollapsesBlankRuns(t *testing.T) {
	got := Normalize("  a \n\n\n b\r\n\n")
	want := []string{"a", "", "b", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

// TestParseSetLines covers plain, weighted and marked set lines.
func TestParseSetLines(t *testing.T) {
	tests := []struct {
		line string
		want models.ParsedSet
	}{
		{"3x10", models.ParsedSet{SetsPlanned: 3, Reps: 10}},
		{"3x10 ++", models.ParsedSet{SetsPlanned: 3, Reps: 10, SetsDone: 2}},
		{"3x10 + + ", models.ParsedSet{SetsPlanned: 3, Reps: 10, SetsDone: 2}},
		{"3x10+", models.ParsedSet{SetsPlanned: 3, Reps: 10, SetsDone: 1}},
		{"4x5x40kg +++", models.ParsedSet{SetsPlanned: 4, Reps: 5, Weight: "40kg", SetsDone: 3}},
		{"4 X 5 x 42,5KG", models.ParsedSet{SetsPlanned: 4, Reps: 5, Weight: "42.5kg"}},
		{"2x8x95lb +", models.ParsedSet{SetsPlanned: 2, Reps: 8, Weight: "95lb", SetsDone: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			pw := Parse("- Lift\n" + tt.line)
			if len(pw.Exercises) != 1 {
				t.Fatalf("exercises = %d, want 1", len(pw.Exercises))
			}
			ex := pw.Exercises[0]
			if len(ex.Sets) != 1 {
				t.Fatalf("sets = %d, want 1 (cues %q)", len(ex.Sets), ex.Cues)
			}
			if diff := cmp.Diff(tt.want, ex.Sets[0]); diff != "" {
				t.Errorf("set mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestParseHeaderMarker verifies how a trailing "+" on the header is read
// with and without parsed volume.
func TestParseHeaderMarker(t *testing.T) {
	pw := Parse("- Push ups +\n3x10\n\n- Warm up +\n- Stretch")
	if len(pw.Exercises) != 3 {
		t.Fatalf("exercises = %d, want 3", len(pw.Exercises))
	}

	push := pw.Exercises[0]
	if push.Name != "Push ups" {
		t.Errorf("name = %q, want %q", push.Name, "Push ups")
	}
	if !push.ExerciseLevelDone || push.Done {
		t.Errorf("push ups: exerciseLevelDone = %v, done = %v, want true, false", push.ExerciseLevelDone, push.Done)
	}

	warm := pw.Exercises[1]
	if warm.Name != "Warm up" {
		t.Errorf("name = %q, want %q", warm.Name, "Warm up")
	}
	if !warm.Done || warm.ExerciseLevelDone {
		t.Errorf("warm up: done = %v, exerciseLevelDone = %v, want true, false", warm.Done, warm.ExerciseLevelDone)
	}

	stretch := pw.Exercises[2]
	if stretch.Done || stretch.ExerciseLevelDone {
		t.Errorf("stretch should not be done")
	}
}

// TestParseDistanceAndDuration verifies measure lines, their markers and the
// legacy single-entry fields.
func TestParseDistanceAndDuration(t *testing.T) {
	pw := Parse("- Running\n10km +\n5.5 mi\n1h30m +\n45min\n2h")
	ex := pw.Exercises[0]

	wantDistances := []models.ParsedMeasure{{Value: "10km", Done: true}, {Value: "5.5mi"}}
	if diff := cmp.Diff(wantDistances, ex.Distances); diff != "" {
		t.Errorf("distances mismatch (-want +got):\n%s", diff)
	}
	wantDurations := []models.ParsedMeasure{{Value: "1h30m", Done: true}, {Value: "45m"}, {Value: "2h"}}
	if diff := cmp.Diff(wantDurations, ex.Durations); diff != "" {
		t.Errorf("durations mismatch (-want +got):\n%s", diff)
	}

	if ex.Distance != "5.5mi" || ex.DistanceDone {
		t.Errorf("legacy distance = %q/%v, want last line 5.5mi/false", ex.Distance, ex.DistanceDone)
	}
	if ex.Time != "2h" || ex.TimeDone {
		t.Errorf("legacy time = %q/%v, want last line 2h/false", ex.Time, ex.TimeDone)
	}
	if !ex.Done {
		t.Error("done = false, want true after a marked measure line")
	}
}

// TestParseMetresBeatMinutes verifies that "30m" is read as a distance
// because distance lines are matched before duration lines.
func TestParseMetresBeatMinutes(t *testing.T) {
	ex := Parse("- Sprint\n30m").Exercises[0]
	if ex.Distance != "30m" || ex.Time != "" {
		t.Errorf("distance = %q, time = %q, want 30m and empty", ex.Distance, ex.Time)
	}
	ex = Parse("- Plank\n30min").Exercises[0]
	if ex.Time != "30m" || ex.Distance != "" {
		t.Errorf("time = %q, distance = %q, want 30m and empty", ex.Time, ex.Distance)
	}
}

// TestParseCues verifies that unrecognised lines become newline-joined cues
// and that a marker-only line is a cue rather than a zero duration.
func TestParseCues(t *testing.T) {
	ex := Parse("- Bench\nKeep elbows tucked\n3x5\n\nSlow eccentric\n++").Exercises[0]
	if ex.Cues != "Keep elbows tucked\nSlow eccentric\n++" {
		t.Errorf("cues = %q", ex.Cues)
	}
	if ex.Time != "" || len(ex.Durations) != 0 {
		t.Errorf("marker-only line parsed as duration %q", ex.Time)
	}
}

// TestParseIgnoresPreamble verifies lines before the first header are dropped
// and a dash without whitespace is not a header.
func TestParseIgnoresPreamble(t *testing.T) {
	pw := Parse("Monday session\n3x10\n-Push\n-- Squat\n5x5")
	if len(pw.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(pw.Exercises))
	}
	if pw.Exercises[0].Name != "Squat" {
		t.Errorf("name = %q, want Squat", pw.Exercises[0].Name)
	}
	if len(pw.Exercises[0].Sets) != 1 {
		t.Errorf("sets = %d, want 1", len(pw.Exercises[0].Sets))
	}
}

// TestParseEmptyInput verifies the parser has no failure outcome.
func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "\n\n", "just some notes"} {
		if pw := Parse(in); len(pw.Exercises) != 0 {
			t.Errorf("Parse(%q) exercises = %d, want 0", in, len(pw.Exercises))
		}
	}
}

// TestParseSetCountBounds verifies a set count outside 1..MaxSetsPerLine, or
// a number that overflows, leaves the line as a cue.
func TestParseSetCountBounds(t *testing.T) {
	for _, line := range []string{
		"0x10",
		"101x5",
		"3000000x1",
		"99999999999999999999x1",
		"3x99999999999999999999",
	} {
		t.Run(line, func(t *testing.T) {
			ex := Parse("- X\n" + line).Exercises[0]
			if len(ex.Sets) != 0 {
				t.Errorf("sets = %+v, want none", ex.Sets)
			}
			if ex.Cues != line {
				t.Errorf("cues = %q, want %q", ex.Cues, line)
			}
			if ex.HasVolume() {
				t.Error("HasVolume() = true for a cue-only exercise")
			}
		})
	}

	ex := Parse("- X\n100x5 +").Exercises[0]
	if len(ex.Sets) != 1 || ex.Sets[0].SetsPlanned != models.MaxSetsPerLine {
		t.Errorf("sets = %+v, want one line of %d", ex.Sets, models.MaxSetsPerLine)
	}
}
