package volume

import (
	"errors"

	"github.com/claude/repnotes/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultSets            = 3
	DefaultReps            = 10
	DefaultRestTime        = 90
	DefaultWeightUnit      = "kg"
	DefaultDistance        = 10.0
	DefaultDistanceUnit    = "km"
	DefaultDurationMinutes = 15
)

// ErrRowNotFound is returned for a row index outside the exercise's rows.
var ErrRowNotFound = errors.New("volume row not found")

// Changes is a partial row update. Nil fields keep the row's value.
type Changes struct {
	Type         *models.VolumeType `json:"type,omitempty"`
	TotalSets    *int               `json:"total_sets,omitempty"`
	Reps         *int               `json:"reps,omitempty"`
	Weight       *float64           `json:"weight,omitempty"`
	WeightUnit   *string            `json:"weight_unit,omitempty"`
	Duration     *int               `json:"duration,omitempty"` // minutes
	Distance     *float64           `json:"distance,omitempty"`
	DistanceUnit *string            `json:"distance_unit,omitempty"`
}

// Edit is the outcome of a row mutation.
type Edit struct {
	Exercise models.Exercise
	Remap    Remap
}

// Editor applies row mutations. The input exercise is never modified.
type Editor struct {
	NewGroupID func() string
}

// NewEditor returns an Editor that tags new rows with UUIDs.
func NewEditor() *Editor {
	return &Editor{NewGroupID: uuid.NewString}
}

// Add appends a default row of three sets-reps sets. A synthetic completion
// placeholder is dropped once the exercise has real volume.
func (e *Editor) Add(ex models.Exercise) Edit {
	groupID := e.NewGroupID()
	placeholderOnly := ex.HasOnlyCompletionSets()

	out := ex
	out.Sets = nil
	var remap Remap
	if !placeholderOnly {
		out.Sets = append(out.Sets, ex.Sets...)
		for i := range ex.Sets {
			remap = append(remap, i)
		}
	}
	for range DefaultSets {
		out.Sets = append(out.Sets, models.NewRepsSet(DefaultReps, DefaultRestTime, groupID))
		remap = append(remap, -1)
	}
	return Edit{Exercise: out, Remap: remap}
}

// Remove deletes every set of the given row. If no set remains a completion
// placeholder is inserted so the exercise keeps a progress slot.
func (e *Editor) Remove(ex models.Exercise, rowIndex int) (Edit, error) {
	r, err := rowAt(ex, rowIndex)
	if err != nil {
		return Edit{}, err
	}
	members := memberSet(r)
	out, remap := rewrite(ex, func(i int, s models.Set) []entry {
		if members[i] {
			return nil
		}
		return keep(i, s)
	})
	if len(out.Sets) == 0 {
		out.Sets = []models.Set{models.NewCompletionSet(e.NewGroupID())}
		remap = Remap{-1}
	}
	return Edit{Exercise: out, Remap: remap}, nil
}

// Update applies changes to one row.
//
// Switching to distance or duration collapses the row into one freshly built
// set. Switching from distance or duration to a rep type expands it into
// DefaultSets fresh sets. Otherwise members are rebuilt in place, with sets
// appended after the last member or removed from its tail when TotalSets
// changes. TotalSets is clamped to [1, models.MaxSetsPerLine].
func (e *Editor) Update(ex models.Exercise, rowIndex int, ch Changes) (Edit, error) {
	r, err := rowAt(ex, rowIndex)
	if err != nil {
		return Edit{}, err
	}
	first := ex.Sets[r.MemberIndices[0]]
	newType := r.Type
	if ch.Type != nil && ch.Type.Valid() && *ch.Type != models.VolumeCompletion {
		newType = *ch.Type
	}
	p := resolve(r, first, newType, ch)
	members := memberSet(r)
	start := r.MemberIndices[0]

	switch {
	case newType.SingleInstance() && newType != r.Type:
		set := p.build(newType, e.NewGroupID())
		out, remap := rewrite(ex, func(i int, s models.Set) []entry {
			switch {
			case i == start:
				return []entry{{set: set, from: -1}}
			case members[i]:
				return nil
			}
			return keep(i, s)
		})
		return Edit{Exercise: out, Remap: remap}, nil

	case !newType.SingleInstance() && r.Type.SingleInstance():
		groupID := e.NewGroupID()
		out, remap := rewrite(ex, func(i int, s models.Set) []entry {
			switch {
			case i == start:
				fresh := make([]entry, 0, DefaultSets)
				for range DefaultSets {
					fresh = append(fresh, entry{set: p.build(newType, groupID), from: -1})
				}
				return fresh
			case members[i]:
				return nil
			}
			return keep(i, s)
		})
		return Edit{Exercise: out, Remap: remap}, nil
	}

	count := r.TotalSets
	if !newType.SingleInstance() && ch.TotalSets != nil {
		count = min(max(*ch.TotalSets, 1), models.MaxSetsPerLine)
	}
	groupID := first.GroupID
	if groupID == "" {
		groupID = e.NewGroupID()
	}
	position := map[int]int{}
	for k, i := range r.MemberIndices {
		position[i] = k
	}
	last := r.MemberIndices[len(r.MemberIndices)-1]

	out, remap := rewrite(ex, func(i int, s models.Set) []entry {
		k, ok := position[i]
		if !ok {
			return keep(i, s)
		}
		var entries []entry
		if k < count {
			entries = append(entries, entry{set: p.build(newType, groupID), from: i})
		}
		if i == last {
			for n := len(r.MemberIndices); n < count; n++ {
				entries = append(entries, entry{set: p.build(newType, groupID), from: -1})
			}
		}
		return entries
	})
	return Edit{Exercise: out, Remap: remap}, nil
}

func rowAt(ex models.Exercise, rowIndex int) (Row, error) {
	rows := Rows(ex)
	if rowIndex < 0 || rowIndex >= len(rows) {
		return Row{}, ErrRowNotFound
	}
	return rows[rowIndex], nil
}

func memberSet(r Row) map[int]bool {
	m := make(map[int]bool, len(r.MemberIndices))
	for _, i := range r.MemberIndices {
		m[i] = true
	}
	return m
}

type entry struct {
	set  models.Set
	from int
}

func keep(i int, s models.Set) []entry {
	return []entry{{set: s, from: i}}
}

// rewrite rebuilds the set list by replacing each old set with the entries
// returned for it.
func rewrite(ex models.Exercise, at func(i int, s models.Set) []entry) (models.Exercise, Remap) {
	out := ex
	out.Sets = make([]models.Set, 0, len(ex.Sets))
	remap := make(Remap, 0, len(ex.Sets))
	for i, s := range ex.Sets {
		for _, en := range at(i, s) {
			out.Sets = append(out.Sets, en.set)
			remap = append(remap, en.from)
		}
	}
	return out, remap
}

// params are the resolved values a rebuilt set is made from.
type params struct {
	reps         int
	rest         int
	weight       float64
	weightUnit   string
	durationMin  int
	distance     float64
	distanceUnit string
}

// resolve merges row values, changes and defaults. Row values only carry over
// when the row stays within the rep family or keeps its type.
func resolve(r Row, first models.Set, newType models.VolumeType, ch Changes) params {
	p := params{
		reps:         DefaultReps,
		rest:         DefaultRestTime,
		weightUnit:   DefaultWeightUnit,
		durationMin:  DefaultDurationMinutes,
		distance:     DefaultDistance,
		distanceUnit: DefaultDistanceUnit,
	}
	sameFamily := r.Type == newType || (!r.Type.SingleInstance() && !newType.SingleInstance())
	if sameFamily {
		if !r.Type.SingleInstance() {
			p.reps = r.Reps
			p.rest = first.RestTime
		}
		if r.Weight != nil {
			p.weight = *r.Weight
			if r.WeightUnit != "" {
				p.weightUnit = r.WeightUnit
			}
		}
		if r.Duration != nil {
			p.durationMin = *r.Duration
		}
		if r.Distance != nil {
			p.distance = *r.Distance
			p.distanceUnit = r.DistanceUnit
		}
	}

	if ch.Reps != nil && *ch.Reps >= 0 {
		p.reps = *ch.Reps
	}
	if ch.Weight != nil && *ch.Weight >= 0 {
		p.weight = *ch.Weight
	}
	if ch.WeightUnit != nil && validWeightUnit(*ch.WeightUnit) {
		p.weightUnit = *ch.WeightUnit
	}
	if ch.Duration != nil && *ch.Duration >= 0 {
		p.durationMin = *ch.Duration
	}
	if ch.Distance != nil && *ch.Distance >= 0 {
		p.distance = *ch.Distance
	}
	if ch.DistanceUnit != nil && validDistanceUnit(*ch.DistanceUnit) {
		p.distanceUnit = *ch.DistanceUnit
	}
	return p
}

// build constructs a set from scratch so no field of another type survives.
func (p params) build(vt models.VolumeType, groupID string) models.Set {
	switch vt {
	case models.VolumeSetsRepsWeight:
		return models.NewWeightedSet(p.reps, p.weight, p.weightUnit, p.rest, groupID)
	case models.VolumeDuration:
		return models.NewDurationSet(p.durationMin*60, groupID)
	case models.VolumeDistance:
		return models.NewDistanceSet(p.distance, p.distanceUnit, groupID)
	default:
		return models.NewRepsSet(p.reps, p.rest, groupID)
	}
}

func validWeightUnit(u string) bool {
	return u == "kg" || u == "lb"
}

func validDistanceUnit(u string) bool {
	return u == "km" || u == "mi" || u == "m"
}
