package codec

import (
	"strconv"
	"strings"

	"github.com/claude/repnotes/internal/models"
)

// Generate renders exercises and their progress as canonical workout text.
// Parsing the result reproduces the same progress flags, and generating
// again from that parse yields byte-identical text.
func Generate(exercises []models.Exercise, progress models.Progress) string {
	blocks := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		blocks = append(blocks, generateExercise(ex, progress[ex.ID]))
	}
	return strings.TrimRight(strings.Join(blocks, "\n\n"), " \t\r\n")
}

// lineGroup collects the sets rendered by one line.
type lineGroup struct {
	key     string
	vt      models.VolumeType
	members []int
}

func generateExercise(ex models.Exercise, flags []bool) string {
	done := func(i int) bool { return i < len(flags) && flags[i] }
	onlyCompletion := ex.HasOnlyCompletionSets()

	var b strings.Builder
	b.WriteString("- " + ex.Name)
	if onlyCompletion {
		for i := range ex.Sets {
			if done(i) {
				b.WriteString(" +")
				break
			}
		}
	}
	if ex.Instructions != "" {
		b.WriteString("\n" + ex.Instructions)
	}
	if onlyCompletion {
		return b.String()
	}

	for _, g := range groupSets(ex.Sets) {
		if g.vt.SingleInstance() {
			for _, i := range g.members {
				b.WriteString("\n" + withMarkers(g.key, boolCount(done(i))))
			}
			continue
		}
		completed := 0
		for _, i := range g.members {
			if done(i) {
				completed++
			}
		}
		b.WriteString("\n" + withMarkers(strconv.Itoa(len(g.members))+"x"+g.key, completed))
	}
	return b.String()
}

// groupSets groups non-completion sets by canonical key within their text
// line (groupId), preserving first-seen order. Sets without a groupId group
// by key alone. A group never exceeds models.MaxSetsPerLine sets; the rest
// start a new line.
func groupSets(sets []models.Set) []*lineGroup {
	var groups []*lineGroup
	index := map[string]*lineGroup{}
	for i, s := range sets {
		if s.VolumeType == models.VolumeCompletion {
			continue
		}
		key := canonicalKey(s)
		id := string(s.VolumeType) + "|" + key
		if s.GroupID != "" {
			id = s.GroupID + "|" + id
		}
		g, ok := index[id]
		if !ok || len(g.members) == models.MaxSetsPerLine {
			g = &lineGroup{key: key, vt: s.VolumeType}
			index[id] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, i)
	}
	return groups
}

// canonicalKey mirrors the forms the parser produces for each volume type.
func canonicalKey(s models.Set) string {
	switch s.VolumeType {
	case models.VolumeDuration:
		return models.FormatDuration(s.DurationSeconds() / 60)
	case models.VolumeDistance:
		if v, unit, ok := s.DistanceValue(); ok {
			return models.FormatDistance(v, unit)
		}
		return s.Notes
	case models.VolumeSetsRepsWeight:
		unit := s.WeightUnit
		if unit == "" {
			unit = "kg"
		}
		return strconv.Itoa(s.Reps) + "x" + models.FormatWeight(s.WeightValue(), unit)
	default:
		return strconv.Itoa(s.Reps)
	}
}

func withMarkers(text string, n int) string {
	if n <= 0 {
		return text
	}
	return text + " " + strings.Repeat("+", n)
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}
