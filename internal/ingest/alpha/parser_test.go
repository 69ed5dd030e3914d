package alpha

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParseSessions verifies a two-session export: session headers, equipment
// with spaces, modifiers after the rep target and warmup lists.
func TestParseSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	s := sessions[0]
	if s.Name != "Legs · Day 2 · Week 4 · Push-Pull-Legs" || s.Duration != "1:02 hr" {
		t.Errorf("session = %q (%q)", s.Name, s.Duration)
	}
	if want := time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC); !s.Date.Equal(want) {
		t.Errorf("date = %v, want %v", s.Date, want)
	}

	want := []struct {
		name      string
		equipment string
		target    int
		warmups   int
		working   int
	}{
		{"Hack Squats", "Machine", 8, 2, 3},
		{"Sumo Squats", "Smith machine", 10, 1, 2},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 1, 3},
		{"Reverse Lunges", "Dumbbells", 10, 0, 3},
		{"Standing Calf Raises", "Machine", 12, 1, 3},
		{"Hanging Leg Raises", "Bodyweight", 12, 0, 3},
	}
	if len(s.Exercises) != len(want) {
		t.Fatalf("exercises = %d, want %d", len(s.Exercises), len(want))
	}
	for i, w := range want {
		ex := s.Exercises[i]
		if ex.Number != i+1 || ex.Name != w.name || ex.Equipment != w.equipment || ex.TargetReps != w.target {
			t.Errorf("exercise %d = #%d %q/%q/%d, want %q/%q/%d",
				i, ex.Number, ex.Name, ex.Equipment, ex.TargetReps, w.name, w.equipment, w.target)
		}
		if got := len(ex.Sets) - len(ex.Working()); got != w.warmups {
			t.Errorf("%s warmups = %d, want %d", w.name, got, w.warmups)
		}
		if got := len(ex.Working()); got != w.working {
			t.Errorf("%s working sets = %d, want %d", w.name, got, w.working)
		}
	}

	if sessions[1].Name != "Push · Day 1 · Week 4 · Push-Pull-Legs" {
		t.Errorf("second session = %q", sessions[1].Name)
	}
}

// TestParseWeight verifies comma decimals and bodyweight-plus loads.
func TestParseWeight(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		bw   bool
	}{
		{"102,5", 102.5, false},
		{"115", 115, false},
		{"+35", 35, true},
		{"+0", 0, true},
		{" +2,5 ", 2.5, true},
	}
	for _, tt := range tests {
		got, bw := parseWeight(tt.in)
		if got != tt.want || bw != tt.bw {
			t.Errorf("parseWeight(%q) = %v, %v; want %v, %v", tt.in, got, bw, tt.want, tt.bw)
		}
	}
}

// TestParseWarmups verifies warmups separated by <br>, including
// bodyweight-plus loads.
func TestParseWarmups(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · +0 kg · 7 reps<br>junk")
	want := []Set{
		{Number: 1, Weight: 37.5, Reps: 9, Warmup: true},
		{Number: 2, Weight: 0, Bodyweight: true, Reps: 7, Warmup: true},
	}
	if len(sets) != len(want) {
		t.Fatalf("warmups = %+v, want %+v", sets, want)
	}
	for i := range want {
		if sets[i] != want[i] {
			t.Errorf("warmup %d = %+v, want %+v", i, sets[i], want[i])
		}
	}
	if parseWarmups("") != nil {
		t.Error("parseWarmups(\"\") should be nil")
	}
}

// TestFractionalRIR verifies half-RIR values on set rows.
func TestFractionalRIR(t *testing.T) {
	csv := "\"Pull\";\"2026-02-20 18:10 h\";\"0:50 hr\"\n" +
		"\"1. Rows · Cable · 10 reps\"\n#;KG;REPS;RIR\n1;60;10;0,5\n"
	sessions, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if got := sessions[0].Exercises[0].Sets[0].RIR; got != 0.5 {
		t.Errorf("RIR = %v, want 0.5", got)
	}
	if got := sessions[0].Date.Hour(); got != 18 {
		t.Errorf("hour = %d, want 18", got)
	}
}

// TestEmptyInput verifies that empty input returns no sessions without error.
func TestEmptyInput(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

// TestParseMalformed verifies orphan set rows are rejected with their line.
func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("\"Legs\";\"2026-02-19 4:54 h\";\"1:02 hr\"\n1;115;8;1\n"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2", err)
	}
}

// TestWorkingSets verifies warmups are excluded from Working.
func TestWorkingSets(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	working := sessions[0].Exercises[0].Working()
	if len(working) != 3 {
		t.Fatalf("working sets = %d, want 3", len(working))
	}
	if working[0].Weight != 115 || working[0].Reps != 8 {
		t.Errorf("first working set = %+v", working[0])
	}
}
