package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/repnotes/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	exerciseColumns = 8
	setColumns      = 13
)

// valuesClause returns "($1,...,$cols),(...)" for n rows.
func valuesClause(n, cols int) string {
	rows := make([]string, 0, n)
	for i := range n {
		ph := make([]string, cols)
		for j := range cols {
			ph[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		rows = append(rows, "("+strings.Join(ph, ",")+")")
	}
	return strings.Join(rows, ",")
}

func exerciseArgs(rows []models.ExerciseRow) []any {
	args := make([]any, 0, len(rows)*exerciseColumns)
	for _, r := range rows {
		args = append(args, r.WorkoutID, r.ID, r.Position, r.Name, r.Category,
			nonNil(r.MuscleGroups), nonNil(r.Equipment), r.Instructions)
	}
	return args
}

func setArgs(workoutID uuid.UUID, rows []models.SetRow) []any {
	args := make([]any, 0, len(rows)*setColumns)
	for _, r := range rows {
		args = append(args, workoutID, r.ExerciseID, r.Position, r.VolumeType, r.GroupID,
			r.Reps, r.Weight, r.WeightUnit, r.DurationSec, r.DistanceUnit, r.Notes,
			r.RestTime, r.Completed)
	}
	return args
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// insertExercises batch-inserts exercise rows.
func insertExercises(ctx context.Context, tx pgx.Tx, rows []models.ExerciseRow) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO workout_exercises (workout_id, id, position, name, category,
		muscle_groups, equipment, instructions) VALUES ` + valuesClause(len(rows), exerciseColumns)
	if _, err := tx.Exec(ctx, query, exerciseArgs(rows)...); err != nil {
		return fmt.Errorf("inserting exercises: %w", err)
	}
	return nil
}

// insertSets batch-inserts set rows, chunked to stay under the parameter limit.
func insertSets(ctx context.Context, tx pgx.Tx, workoutID uuid.UUID, rows []models.SetRow) error {
	const chunk = 1000
	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))
		batch := rows[start:end]
		query := `INSERT INTO workout_sets (workout_id, exercise_id, position, volume_type, group_id,
			reps, weight, weight_unit, duration_sec, distance_unit, notes, rest_time, completed) VALUES ` +
			valuesClause(len(batch), setColumns)
		if _, err := tx.Exec(ctx, query, setArgs(workoutID, batch)...); err != nil {
			return fmt.Errorf("inserting sets: %w", err)
		}
	}
	return nil
}

// querySets returns a workout's sets ordered by exercise position, then set position.
func (db *DB) querySets(ctx context.Context, workoutID uuid.UUID) ([]models.SetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.exercise_id, s.position, s.volume_type, s.group_id, s.reps, s.weight,
		 s.weight_unit, s.duration_sec, s.distance_unit, s.notes, s.rest_time, s.completed
		 FROM workout_sets s
		 JOIN workout_exercises e ON e.workout_id = s.workout_id AND e.id = s.exercise_id
		 WHERE s.workout_id = $1
		 ORDER BY e.position ASC, s.position ASC`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var result []models.SetRow
	for rows.Next() {
		var r models.SetRow
		if err := rows.Scan(&r.ExerciseID, &r.Position, &r.VolumeType, &r.GroupID, &r.Reps,
			&r.Weight, &r.WeightUnit, &r.DurationSec, &r.DistanceUnit, &r.Notes,
			&r.RestTime, &r.Completed); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
