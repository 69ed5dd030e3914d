package codec

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/repnotes/internal/models"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	// DefaultRestTime is the rest in seconds assigned to parsed rep sets.
	DefaultRestTime = 90
	// DefaultCategory is used for exercises without a positional match.
	DefaultCategory = "strength"
)

var (
	weightRe  = regexp.MustCompile(`^(\d+(?:\.\d+)?)(kg|lb)$`)
	hoursRe   = regexp.MustCompile(`(\d+)h`)
	minutesRe = regexp.MustCompile(`(\d+)m`)
)

// Builder expands parsed exercises into the flat structured model.
type Builder struct {
	// NewGroupID returns a fresh id shared by the sets of one text line.
	NewGroupID func() string
	// NewExerciseID returns an id for exercises without a positional match.
	NewExerciseID func() string
}

// NewBuilder returns a Builder using UUIDs for groups and ULIDs for exercises.
func NewBuilder() *Builder {
	return &Builder{
		NewGroupID:    uuid.NewString,
		NewExerciseID: func() string { return ulid.Make().String() },
	}
}

// Build converts a parsed workout into exercises. Identity and metadata of
// existing[i] are kept for the i-th parsed exercise; existing is not modified.
func (b *Builder) Build(pw models.ParsedWorkout, existing []models.Exercise) []models.Exercise {
	exercises := make([]models.Exercise, 0, len(pw.Exercises))
	for i, p := range pw.Exercises {
		ex := models.Exercise{
			Name:         p.Name,
			Instructions: p.Cues,
		}
		if i < len(existing) {
			prev := existing[i]
			ex.ID = prev.ID
			ex.Category = prev.Category
			ex.MuscleGroups = append([]string{}, prev.MuscleGroups...)
			ex.Equipment = append([]string{}, prev.Equipment...)
		}
		if ex.ID == "" {
			ex.ID = b.NewExerciseID()
		}
		if ex.Category == "" {
			ex.Category = DefaultCategory
		}
		if ex.MuscleGroups == nil {
			ex.MuscleGroups = []string{}
		}
		if ex.Equipment == nil {
			ex.Equipment = []string{}
		}
		ex.Sets = b.expand(p)
		exercises = append(exercises, ex)
	}
	return exercises
}

// expand produces the flat set list of one parsed exercise: rep sets in line
// order, then distances, then durations.
func (b *Builder) expand(p models.ParsedExercise) []models.Set {
	var sets []models.Set
	for _, ps := range p.Sets {
		groupID := b.NewGroupID()
		weight, unit, weighted := parseWeight(ps.Weight)
		for range ps.SetsPlanned {
			if weighted {
				sets = append(sets, models.NewWeightedSet(ps.Reps, weight, unit, DefaultRestTime, groupID))
			} else {
				sets = append(sets, models.NewRepsSet(ps.Reps, DefaultRestTime, groupID))
			}
		}
	}
	for _, d := range p.DistanceEntries() {
		value, unit, ok := models.ParseDistance(d.Value)
		if !ok {
			continue
		}
		sets = append(sets, models.NewDistanceSet(value, unit, b.NewGroupID()))
	}
	for _, d := range p.DurationEntries() {
		sets = append(sets, models.NewDurationSet(DurationSeconds(d.Value), b.NewGroupID()))
	}
	if len(sets) == 0 {
		sets = append(sets, models.NewCompletionSet(b.NewGroupID()))
	}
	return sets
}

// DurationSeconds sums the hour and minute parts of a compact duration such
// as "1h30m".
func DurationSeconds(s string) int {
	total := 0
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 3600
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		total += mins * 60
	}
	return total
}

func parseWeight(s string) (float64, string, bool) {
	m := weightRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	return v, m[2], true
}
