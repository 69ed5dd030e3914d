// Package codec converts between free-form workout text and the structured
// exercise/set model plus its per-set progress.
//
// Grammar, one item per line:
//
//	- Pull-ups            exercise header, a trailing "+" marks it done
//	5x7 +++++             sets x reps, one "+" per completed set
//	4x5x40kg +++          sets x reps x weight (kg or lb)
//	10km +                distance (km, mi, m)
//	1h30m +               duration (h, m or min)
//	anything else         cue, kept as exercise instructions
//
// Every function in this package is pure and safe for concurrent use.
package codec

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/repnotes/internal/models"
)

var (
	// headerRe matches: "- Bench press", "-- Warm up +"
	headerRe = regexp.MustCompile(`^-+\s+(.+)$`)

	// setLineRe matches: "3x10", "4 x 5 x 42.5kg ++", "5x7 + + +"
	setLineRe = regexp.MustCompile(`(?i)^(\d+)\s*x\s*(\d+)(?:\s*x\s*(\d+(?:[.,]\d+)?)\s*(kg|lb))?([+\s]*)$`)

	// distanceRe matches: "10km", "5.5 mi +", "400m"
	distanceRe = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)\s*(km|mi|m)([+\s]*)$`)

	// durationRe matches: "1h30m", "45min +", "2h"; both parts optional
	durationRe = regexp.MustCompile(`(?i)^(?:(\d+)\s*h)?\s*(?:(\d+)\s*(?:min|m))?([+\s]*)$`)
)

// Parse turns workout text into a ParsedWorkout. It never fails: lines that
// match no rule become cues of the current exercise, and lines before the
// first header are ignored.
func Parse(text string) models.ParsedWorkout {
	var out models.ParsedWorkout
	var current *models.ParsedExercise
	var cues []string

	flush := func() {
		if current == nil {
			return
		}
		current.Cues = strings.Join(cues, "\n")
		finalizeHeader(current)
		out.Exercises = append(out.Exercises, *current)
		current = nil
		cues = nil
	}

	for _, line := range Normalize(text) {
		if m := headerRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &models.ParsedExercise{Name: m[1]}
			continue
		}
		if current == nil || line == "" {
			continue
		}

		if m := setLineRe.FindStringSubmatch(line); m != nil {
			planned, reps, ok := setCounts(m[1], m[2])
			if !ok {
				cues = append(cues, line)
				continue
			}
			set := models.ParsedSet{
				SetsPlanned: planned,
				Reps:        reps,
				SetsDone:    countMarkers(m[5]),
			}
			if m[3] != "" {
				set.Weight = normalizeDecimal(m[3]) + strings.ToLower(m[4])
			}
			current.Sets = append(current.Sets, set)
			continue
		}

		if m := distanceRe.FindStringSubmatch(line); m != nil {
			value := normalizeDecimal(m[1]) + strings.ToLower(m[2])
			done := countMarkers(m[3]) > 0
			current.Distance = value
			current.DistanceDone = done
			current.Distances = append(current.Distances, models.ParsedMeasure{Value: value, Done: done})
			if done {
				current.Done = true
			}
			continue
		}

		if m := durationRe.FindStringSubmatch(line); m != nil && (m[1] != "" || m[2] != "") {
			value := compactDuration(m[1], m[2])
			done := countMarkers(m[3]) > 0
			current.Time = value
			current.TimeDone = done
			current.Durations = append(current.Durations, models.ParsedMeasure{Value: value, Done: done})
			if done {
				current.Done = true
			}
			continue
		}

		cues = append(cues, line)
	}
	flush()

	return out
}

// finalizeHeader strips a trailing completion marker from the raw header and
// records what it means for this exercise.
func finalizeHeader(ex *models.ParsedExercise) {
	if !strings.HasSuffix(ex.Name, "+") {
		ex.Name = strings.TrimSpace(ex.Name)
		return
	}
	ex.Name = strings.TrimSpace(strings.TrimRight(ex.Name, "+ \t"))
	if ex.HasVolume() {
		ex.ExerciseLevelDone = true
	} else {
		ex.Done = true
	}
}

// setCounts reads the sets and reps of a set line. The set count must be
// between 1 and models.MaxSetsPerLine and neither number may overflow.
func setCounts(sets, reps string) (planned, r int, ok bool) {
	planned, err := strconv.Atoi(sets)
	if err != nil || planned < 1 || planned > models.MaxSetsPerLine {
		return 0, 0, false
	}
	r, err = strconv.Atoi(reps)
	if err != nil {
		return 0, 0, false
	}
	return planned, r, true
}

// countMarkers counts "+" characters, ignoring interspersed whitespace.
func countMarkers(s string) int {
	return strings.Count(s, "+")
}

func normalizeDecimal(s string) string {
	s = strings.ReplaceAll(s, ",", ".")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return models.FormatNumber(f)
	}
	return s
}

// compactDuration joins hour and minute captures into "1h30m" form.
func compactDuration(hours, minutes string) string {
	var b strings.Builder
	if hours != "" {
		h, _ := strconv.Atoi(hours)
		b.WriteString(strconv.Itoa(h) + "h")
	}
	if minutes != "" {
		m, _ := strconv.Atoi(minutes)
		b.WriteString(strconv.Itoa(m) + "m")
	}
	return b.String()
}
