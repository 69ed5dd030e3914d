package codec

import "github.com/claude/repnotes/internal/models"

// Reconcile derives the progress flags of exercises[i] from pw.Exercises[i].
// The text is authoritative: the result replaces any earlier progress for
// these exercises rather than merging with it.
func Reconcile(pw models.ParsedWorkout, exercises []models.Exercise) models.Progress {
	progress := make(models.Progress, len(exercises))
	for i, ex := range exercises {
		flags := make([]bool, len(ex.Sets))
		progress[ex.ID] = flags
		if i >= len(pw.Exercises) {
			continue
		}
		p := pw.Exercises[i]

		if p.ExerciseLevelDone {
			for j := range flags {
				flags[j] = true
			}
			continue
		}

		// Rep sets occupy the leading slots in line order. Completion counts
		// above the planned count are absorbed.
		slot := 0
		for _, ps := range p.Sets {
			for j := 0; j < ps.SetsPlanned && slot < len(flags); j++ {
				flags[slot] = j < ps.SetsDone
				slot++
			}
		}

		markMeasures(flags, ex.Sets, models.VolumeDistance, p.DistanceEntries())
		markMeasures(flags, ex.Sets, models.VolumeDuration, p.DurationEntries())

		if !p.HasVolume() && p.Done {
			idx := 0
			for j, s := range ex.Sets {
				if s.VolumeType == models.VolumeCompletion {
					idx = j
					break
				}
			}
			if idx < len(flags) {
				flags[idx] = true
			}
		}
	}
	return progress
}

// markMeasures walks sets of type vt in order, consuming one entry per match.
func markMeasures(flags []bool, sets []models.Set, vt models.VolumeType, entries []models.ParsedMeasure) {
	next := 0
	for j, s := range sets {
		if s.VolumeType != vt {
			continue
		}
		if next >= len(entries) {
			return
		}
		flags[j] = entries[next].Done
		next++
	}
}
