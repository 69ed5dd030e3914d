package models

// ParsedWorkout is the intermediate result of parsing workout text.
// It is discarded once converted into Exercises and Progress.
type ParsedWorkout struct {
	Exercises []ParsedExercise
}

// ParsedExercise holds everything recognised under one "- name" header.
type ParsedExercise struct {
	Name string
	// Done marks a volume-less exercise whose header carried a trailing "+".
	// Distance and duration lines with a marker also set it.
	Done bool
	// ExerciseLevelDone marks every unit of parsed volume as complete.
	ExerciseLevelDone bool
	Sets              []ParsedSet

	// Distance and Time hold the last matching line (legacy single-entry form).
	Distance     string
	DistanceDone bool
	Time         string
	TimeDone     bool

	// Distances and Durations list every matching line in order with its own
	// completion flag. When empty the legacy fields above are used.
	Distances []ParsedMeasure
	Durations []ParsedMeasure

	Cues string
}

// MaxSetsPerLine bounds the set count of one set line or volume row.
// A set line asking for more is read as a cue.
const MaxSetsPerLine = 100

// ParsedSet is one "<sets> x <reps> [x <weight>]" line.
type ParsedSet struct {
	SetsPlanned int
	Reps        int
	Weight      string // value with unit, e.g. "40kg"; empty when absent
	SetsDone    int
}

// ParsedMeasure is one distance or duration line.
type ParsedMeasure struct {
	Value string // "10km", "1h30m"
	Done  bool
}

// HasVolume reports whether any measurable volume was parsed.
func (p ParsedExercise) HasVolume() bool {
	return len(p.Sets) > 0 || p.Distance != "" || p.Time != "" ||
		len(p.Distances) > 0 || len(p.Durations) > 0
}

// DistanceEntries returns the per-line distance entries, falling back to the
// legacy single-entry fields.
func (p ParsedExercise) DistanceEntries() []ParsedMeasure {
	if len(p.Distances) > 0 {
		return p.Distances
	}
	if p.Distance != "" {
		return []ParsedMeasure{{Value: p.Distance, Done: p.DistanceDone}}
	}
	return nil
}

// DurationEntries is the duration counterpart of DistanceEntries.
func (p ParsedExercise) DurationEntries() []ParsedMeasure {
	if len(p.Durations) > 0 {
		return p.Durations
	}
	if p.Time != "" {
		return []ParsedMeasure{{Value: p.Time, Done: p.TimeDone}}
	}
	return nil
}
