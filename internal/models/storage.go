package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is a row ready for insertion into the workouts table.
type WorkoutRow struct {
	ID        uuid.UUID
	UserID    int
	Name      string
	Date      time.Time
	Text      string
	UpdatedAt time.Time
}

// ExerciseRow is a row for the workout_exercises table.
type ExerciseRow struct {
	ID           string
	WorkoutID    uuid.UUID
	Position     int
	Name         string
	Category     string
	MuscleGroups []string
	Equipment    []string
	Instructions string
}

// SetRow is a row for the workout_sets table. Completed carries the
// progress flag of the set at Position.
type SetRow struct {
	ExerciseID   string
	Position     int
	VolumeType   string
	GroupID      string
	Reps         int
	Weight       *float64
	WeightUnit   string
	DurationSec  *int
	DistanceUnit string
	Notes        string
	RestTime     int
	Completed    bool
}

// SplitWorkout flattens a workout into table rows.
func SplitWorkout(w *Workout) (WorkoutRow, []ExerciseRow, []SetRow) {
	wr := WorkoutRow{
		ID:        w.ID,
		UserID:    w.UserID,
		Name:      w.Name,
		Date:      w.Date,
		Text:      w.Text,
		UpdatedAt: w.UpdatedAt,
	}
	exRows := make([]ExerciseRow, 0, len(w.Exercises))
	var setRows []SetRow
	for i, ex := range w.Exercises {
		exRows = append(exRows, ExerciseRow{
			ID:           ex.ID,
			WorkoutID:    w.ID,
			Position:     i,
			Name:         ex.Name,
			Category:     ex.Category,
			MuscleGroups: ex.MuscleGroups,
			Equipment:    ex.Equipment,
			Instructions: ex.Instructions,
		})
		for j, s := range ex.Sets {
			setRows = append(setRows, SetRow{
				ExerciseID:   ex.ID,
				Position:     j,
				VolumeType:   string(s.VolumeType),
				GroupID:      s.GroupID,
				Reps:         s.Reps,
				Weight:       s.Weight,
				WeightUnit:   s.WeightUnit,
				DurationSec:  s.Duration,
				DistanceUnit: s.DistanceUnit,
				Notes:        s.Notes,
				RestTime:     s.RestTime,
				Completed:    w.Progress.Done(ex.ID, j),
			})
		}
	}
	return wr, exRows, setRows
}

// JoinWorkout rebuilds a workout from table rows. Exercise and set rows must
// be ordered by position.
func JoinWorkout(wr WorkoutRow, exRows []ExerciseRow, setRows []SetRow) *Workout {
	w := &Workout{
		ID:        wr.ID,
		UserID:    wr.UserID,
		Name:      wr.Name,
		Date:      wr.Date,
		Text:      wr.Text,
		UpdatedAt: wr.UpdatedAt,
		Exercises: make([]Exercise, 0, len(exRows)),
		Progress:  Progress{},
	}
	byExercise := map[string][]SetRow{}
	for _, r := range setRows {
		byExercise[r.ExerciseID] = append(byExercise[r.ExerciseID], r)
	}
	for _, er := range exRows {
		ex := Exercise{
			ID:           er.ID,
			Name:         er.Name,
			Category:     er.Category,
			MuscleGroups: er.MuscleGroups,
			Equipment:    er.Equipment,
			Instructions: er.Instructions,
		}
		flags := make([]bool, 0, len(byExercise[er.ID]))
		for _, r := range byExercise[er.ID] {
			ex.Sets = append(ex.Sets, Set{
				Reps:         r.Reps,
				Weight:       r.Weight,
				WeightUnit:   r.WeightUnit,
				Duration:     r.DurationSec,
				DistanceUnit: r.DistanceUnit,
				Notes:        r.Notes,
				RestTime:     r.RestTime,
				VolumeType:   VolumeType(r.VolumeType),
				GroupID:      r.GroupID,
			})
			flags = append(flags, r.Completed)
		}
		w.Exercises = append(w.Exercises, ex)
		w.Progress[ex.ID] = flags
	}
	return w
}
