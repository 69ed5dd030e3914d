package models

import (
	"time"

	"github.com/google/uuid"
)

// Workout is a dated, stored set of exercises together with their progress
// and the text they were decoded from.
type Workout struct {
	ID        uuid.UUID  `json:"id"`
	UserID    int        `json:"user_id"`
	Name      string     `json:"name"`
	Date      time.Time  `json:"date"`
	Text      string     `json:"text"`
	Exercises []Exercise `json:"exercises"`
	Progress  Progress   `json:"progress"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// WorkoutSummary is a listing row without exercises.
type WorkoutSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Exercises int       `json:"exercises"`
	SetsDone  int       `json:"sets_done"`
	SetsTotal int       `json:"sets_total"`
}
