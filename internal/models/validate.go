package models

import (
	"errors"
	"fmt"
)

// ErrInvalidModel is wrapped by every Validate failure.
var ErrInvalidModel = errors.New("invalid workout model")

// Validate checks the structural invariants a decoded or edited model must hold
// before it replaces previously committed state.
func Validate(exercises []Exercise, progress Progress) error {
	ids := make(map[string]bool, len(exercises))
	for i, ex := range exercises {
		if ex.ID == "" || ids[ex.ID] {
			return fmt.Errorf("%w: exercise %d (%q) has a missing or duplicate id", ErrInvalidModel, i, ex.Name)
		}
		ids[ex.ID] = true
		if len(ex.Sets) == 0 {
			return fmt.Errorf("%w: exercise %d (%q) has no sets", ErrInvalidModel, i, ex.Name)
		}
		if got := len(progress[ex.ID]); got != len(ex.Sets) {
			return fmt.Errorf("%w: exercise %q progress has %d entries, want %d",
				ErrInvalidModel, ex.Name, got, len(ex.Sets))
		}
		groups := map[string]Set{}
		for j, s := range ex.Sets {
			if err := validateSetFields(s); err != nil {
				return fmt.Errorf("%w: exercise %q set %d: %v", ErrInvalidModel, ex.Name, j, err)
			}
			if s.GroupID == "" {
				continue
			}
			first, seen := groups[s.GroupID]
			if !seen {
				groups[s.GroupID] = s
				continue
			}
			if !sameParameters(first, s) {
				return fmt.Errorf("%w: exercise %q set %d differs from group %s",
					ErrInvalidModel, ex.Name, j, s.GroupID)
			}
		}
	}
	return nil
}

func validateSetFields(s Set) error {
	if !s.VolumeType.Valid() {
		return fmt.Errorf("unknown volume type %q", s.VolumeType)
	}
	hasWeight := s.Weight != nil || s.WeightUnit != ""
	hasDuration := s.Duration != nil
	hasDistance := s.DistanceUnit != ""
	switch s.VolumeType {
	case VolumeSetsReps, VolumeCompletion:
		if hasWeight || hasDuration || hasDistance {
			return fmt.Errorf("%s set carries stale fields", s.VolumeType)
		}
	case VolumeSetsRepsWeight:
		if s.Weight == nil || hasDuration || hasDistance {
			return fmt.Errorf("sets-reps-weight set needs only a weight")
		}
	case VolumeDuration:
		if !hasDuration || hasWeight || hasDistance {
			return fmt.Errorf("duration set needs only a duration")
		}
	case VolumeDistance:
		if _, _, ok := s.DistanceValue(); !ok || hasWeight || hasDuration {
			return fmt.Errorf("distance set needs only a distance")
		}
	}
	return nil
}

// sameParameters compares the fields that define a row's volume.
func sameParameters(a, b Set) bool {
	return a.VolumeType == b.VolumeType &&
		a.Reps == b.Reps &&
		a.WeightValue() == b.WeightValue() &&
		a.WeightUnit == b.WeightUnit &&
		a.DurationSeconds() == b.DurationSeconds() &&
		a.Notes == b.Notes
}
