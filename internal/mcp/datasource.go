package mcp

import (
	"context"
	"time"

	"github.com/claude/repnotes/internal/models"
	"github.com/claude/repnotes/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSummary, error)
	GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.Workout, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
