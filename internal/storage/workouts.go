package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/repnotes/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveWorkout inserts or replaces a workout. Exercises and sets are rewritten
// in one transaction so a reader never sees a partial model.
func (db *DB) SaveWorkout(ctx context.Context, w *models.Workout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = time.Now().UTC()
	}
	wr, exRows, setRows := models.SplitWorkout(w)

	return db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`INSERT INTO workouts (id, user_id, name, date, text, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6)
			 ON CONFLICT (id) DO UPDATE
				SET name = EXCLUDED.name, date = EXCLUDED.date,
				    text = EXCLUDED.text, updated_at = EXCLUDED.updated_at
				WHERE workouts.user_id = EXCLUDED.user_id`,
			wr.ID, wr.UserID, wr.Name, wr.Date, wr.Text, wr.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upserting workout: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrWorkoutNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM workout_exercises WHERE workout_id = $1`, wr.ID); err != nil {
			return fmt.Errorf("clearing exercises: %w", err)
		}
		if err := insertExercises(ctx, tx, exRows); err != nil {
			return err
		}
		return insertSets(ctx, tx, wr.ID, setRows)
	})
}

// GetWorkout loads a workout with its exercises, sets and progress.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.Workout, error) {
	var wr models.WorkoutRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, date, text, updated_at
		 FROM workouts WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&wr.ID, &wr.UserID, &wr.Name, &wr.Date, &wr.Text, &wr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, position, name, category, muscle_groups, equipment, instructions
		 FROM workout_exercises WHERE workout_id = $1 ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	var exRows []models.ExerciseRow
	for rows.Next() {
		er := models.ExerciseRow{WorkoutID: id}
		if err := rows.Scan(&er.ID, &er.Position, &er.Name, &er.Category,
			&er.MuscleGroups, &er.Equipment, &er.Instructions); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		exRows = append(exRows, er)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading exercises: %w", err)
	}

	setRows, err := db.querySets(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.JoinWorkout(wr, exRows, setRows), nil
}

// ListWorkouts returns summaries of a user's workouts dated in [start, end).
func (db *DB) ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT w.id, w.name, w.date,
		   (SELECT COUNT(*) FROM workout_exercises e WHERE e.workout_id = w.id),
		   (SELECT COUNT(*) FILTER (WHERE s.completed) FROM workout_sets s WHERE s.workout_id = w.id),
		   (SELECT COUNT(*) FROM workout_sets s WHERE s.workout_id = w.id)
		 FROM workouts w
		 WHERE w.user_id = $1 AND w.date >= $2 AND w.date < $3
		 ORDER BY w.date DESC, w.name ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	result := []models.WorkoutSummary{}
	for rows.Next() {
		var s models.WorkoutSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Date, &s.Exercises, &s.SetsDone, &s.SetsTotal); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// DeleteWorkout removes a workout and, by cascade, its exercises and sets.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}
