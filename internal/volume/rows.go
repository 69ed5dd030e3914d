// Package volume groups an exercise's flat sets into editable rows and
// applies row edits back onto the flat list.
//
// Rows are derived on every call and never stored. Each mutation returns the
// new exercise plus a Remap that carries the exercise's progress flags over to
// the new set positions.
package volume

import (
	"strconv"

	"github.com/claude/repnotes/internal/models"
)

// Row is one editable line of volume: the sets sharing a group id.
type Row struct {
	GroupID       string            `json:"group_id"`
	Type          models.VolumeType `json:"type"`
	TotalSets     int               `json:"total_sets"`
	Reps          int               `json:"reps"`
	Weight        *float64          `json:"weight,omitempty"`
	WeightUnit    string            `json:"weight_unit,omitempty"`
	Duration      *int              `json:"duration,omitempty"` // minutes
	Distance      *float64          `json:"distance,omitempty"`
	DistanceUnit  string            `json:"distance_unit,omitempty"`
	MemberIndices []int             `json:"member_indices"`
}

// Rows groups the non-completion sets of ex by group id. Sets without a group
// id form a row of their own. Rows are ordered by their first member.
func Rows(ex models.Exercise) []Row {
	var rows []Row
	index := map[string]int{}
	for i, s := range ex.Sets {
		if s.VolumeType == models.VolumeCompletion {
			continue
		}
		key := s.GroupID
		if key == "" {
			key = "legacy-" + strconv.Itoa(i)
		}
		if n, ok := index[key]; ok {
			rows[n].TotalSets++
			rows[n].MemberIndices = append(rows[n].MemberIndices, i)
			continue
		}
		index[key] = len(rows)
		rows = append(rows, newRow(s, i))
	}
	return rows
}

func newRow(s models.Set, i int) Row {
	r := Row{
		GroupID:       s.GroupID,
		Type:          s.VolumeType,
		TotalSets:     1,
		Reps:          s.Reps,
		MemberIndices: []int{i},
	}
	if s.Weight != nil {
		w := *s.Weight
		r.Weight = &w
		r.WeightUnit = s.WeightUnit
	}
	if s.Duration != nil {
		minutes := *s.Duration / 60
		r.Duration = &minutes
	}
	if v, unit, ok := s.DistanceValue(); ok && s.VolumeType == models.VolumeDistance {
		r.Distance = &v
		r.DistanceUnit = unit
	}
	return r
}

// Remap maps each new set position to the old position it came from, or -1
// for a newly created set.
type Remap []int

// Apply carries progress flags over to the new set positions. The result
// always has len(r) entries.
func (r Remap) Apply(old []bool) []bool {
	out := make([]bool, len(r))
	for i, from := range r {
		if from >= 0 && from < len(old) {
			out[i] = old[from]
		}
	}
	return out
}
