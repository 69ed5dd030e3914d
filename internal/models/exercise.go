package models

import (
	"fmt"
	"strconv"
	"strings"
)

// VolumeType identifies how a set's work is measured.
type VolumeType string

const (
	VolumeSetsReps       VolumeType = "sets-reps"
	VolumeSetsRepsWeight VolumeType = "sets-reps-weight"
	VolumeDuration       VolumeType = "duration"
	VolumeDistance       VolumeType = "distance"
	VolumeCompletion     VolumeType = "completion"
)

// Valid reports whether v is one of the known volume types.
func (v VolumeType) Valid() bool {
	switch v {
	case VolumeSetsReps, VolumeSetsRepsWeight, VolumeDuration, VolumeDistance, VolumeCompletion:
		return true
	}
	return false
}

// SingleInstance reports whether rows of this type always hold exactly one set.
func (v VolumeType) SingleInstance() bool {
	return v == VolumeDuration || v == VolumeDistance
}

// Exercise is one entry of a workout with its flat list of sets.
type Exercise struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	MuscleGroups []string `json:"muscle_groups"`
	Equipment    []string `json:"equipment"`
	Instructions string   `json:"instructions,omitempty"`
	Sets         []Set    `json:"sets"`
}

// HasOnlyCompletionSets reports whether the exercise carries no measurable volume.
func (e Exercise) HasOnlyCompletionSets() bool {
	for _, s := range e.Sets {
		if s.VolumeType != VolumeCompletion {
			return false
		}
	}
	return true
}

// Set is a single flat unit of work. Only the fields meaningful for its
// VolumeType are populated; use the New*Set constructors to build one.
type Set struct {
	Reps         int        `json:"reps"`
	Weight       *float64   `json:"weight,omitempty"`
	WeightUnit   string     `json:"weight_unit,omitempty"`
	Duration     *int       `json:"duration,omitempty"` // seconds
	DistanceUnit string     `json:"distance_unit,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	RestTime     int        `json:"rest_time"`
	VolumeType   VolumeType `json:"volume_type"`
	GroupID      string     `json:"group_id,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
}

// NewRepsSet builds a sets-reps set.
func NewRepsSet(reps, rest int, groupID string) Set {
	return Set{Reps: reps, RestTime: rest, VolumeType: VolumeSetsReps, GroupID: groupID}
}

// NewWeightedSet builds a sets-reps-weight set.
func NewWeightedSet(reps int, weight float64, unit string, rest int, groupID string) Set {
	if unit == "" {
		unit = "kg"
	}
	return Set{
		Reps:       reps,
		Weight:     &weight,
		WeightUnit: unit,
		RestTime:   rest,
		VolumeType: VolumeSetsRepsWeight,
		GroupID:    groupID,
	}
}

// NewDurationSet builds a duration set lasting seconds.
func NewDurationSet(seconds int, groupID string) Set {
	return Set{Reps: 1, Duration: &seconds, VolumeType: VolumeDuration, GroupID: groupID}
}

// NewDistanceSet builds a distance set. The raw distance string ("10km") is
// kept in Notes.
func NewDistanceSet(value float64, unit, groupID string) Set {
	return Set{
		Reps:         1,
		DistanceUnit: unit,
		Notes:        FormatDistance(value, unit),
		VolumeType:   VolumeDistance,
		GroupID:      groupID,
	}
}

// NewCompletionSet builds the synthetic set of an exercise without volume.
func NewCompletionSet(groupID string) Set {
	return Set{Reps: 1, RestTime: 0, VolumeType: VolumeCompletion, GroupID: groupID}
}

// WeightValue returns the set weight or 0.
func (s Set) WeightValue() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight
}

// DurationSeconds returns the set duration or 0.
func (s Set) DurationSeconds() int {
	if s.Duration == nil {
		return 0
	}
	return *s.Duration
}

// DistanceValue parses the distance stored in Notes, e.g. "10km" -> (10, "km").
func (s Set) DistanceValue() (float64, string, bool) {
	return ParseDistance(s.Notes)
}

var distanceUnits = []string{"km", "mi", "m"}

// ParseDistance splits a compact distance string into value and unit.
func ParseDistance(raw string) (float64, string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, unit := range distanceUnits {
		if !strings.HasSuffix(raw, unit) {
			continue
		}
		num := strings.TrimSpace(strings.TrimSuffix(raw, unit))
		v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", "."), 64)
		if err != nil {
			return 0, "", false
		}
		return v, unit, true
	}
	return 0, "", false
}

// FormatDistance renders the compact form used in text and Notes.
func FormatDistance(value float64, unit string) string {
	return FormatNumber(value) + unit
}

// FormatWeight renders a weight with its unit, e.g. "42.5kg".
func FormatWeight(value float64, unit string) string {
	return FormatNumber(value) + unit
}

// FormatNumber prints a float without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDuration renders whole minutes as the compact text form, e.g. "1h30min".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0min"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dmin", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dmin", h, m)
	}
}
