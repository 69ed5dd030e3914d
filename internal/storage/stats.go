package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored workouts.
type DataStats struct {
	TotalWorkouts  int64          `json:"total_workouts"`
	TotalExercises int64          `json:"total_exercises"`
	TotalSets      int64          `json:"total_sets"`
	CompletedSets  int64          `json:"completed_sets"`
	EarliestDate   *time.Time     `json:"earliest_date"`
	LatestDate     *time.Time     `json:"latest_date"`
	TopExercises   []ExerciseStat `json:"top_exercises"`
}

// ExerciseStat summarises one exercise name across workouts.
type ExerciseStat struct {
	Name          string `json:"name"`
	Workouts      int64  `json:"workouts"`
	TotalSets     int64  `json:"total_sets"`
	CompletedSets int64  `json:"completed_sets"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{TopExercises: []ExerciseStat{}}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(date), MAX(date) FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.EarliestDate, &stats.LatestDate)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_exercises e
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE w.user_id = $1`, userID,
	).Scan(&stats.TotalExercises)
	if err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE s.completed) FROM workout_sets s
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE w.user_id = $1`, userID,
	).Scan(&stats.TotalSets, &stats.CompletedSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT e.name, COUNT(DISTINCT e.workout_id), COUNT(s.position),
		   COUNT(s.position) FILTER (WHERE s.completed)
		 FROM workout_exercises e
		 JOIN workouts w ON w.id = e.workout_id
		 LEFT JOIN workout_sets s ON s.workout_id = e.workout_id AND s.exercise_id = e.id
		 WHERE w.user_id = $1
		 GROUP BY e.name
		 ORDER BY COUNT(DISTINCT e.workout_id) DESC, e.name ASC
		 LIMIT 20`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Name, &s.Workouts, &s.TotalSets, &s.CompletedSets); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
