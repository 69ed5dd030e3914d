// Package plaintext imports notes documents holding several dated workouts
// written in the workout text format.
package plaintext

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/repnotes/internal/codec"
	"github.com/claude/repnotes/internal/ingest"
	"github.com/claude/repnotes/internal/models"
	"github.com/google/uuid"
)

// workoutNamespace seeds deterministic workout IDs so re-importing a
// document replaces its workouts instead of duplicating them.
var workoutNamespace = uuid.MustParse("5b0f8c1e-2f7a-4f43-9d7e-3c1a4e6b9a21")

// WorkoutID returns the stable ID of the workout a user logged under name on date.
func WorkoutID(userID int, name string, date time.Time) uuid.UUID {
	key := fmt.Sprintf("%d|%s|%s", userID, date.Format("2006-01-02"), name)
	return uuid.NewSHA1(workoutNamespace, []byte(key))
}

// WorkoutStore persists decoded workouts.
type WorkoutStore interface {
	SaveWorkout(ctx context.Context, w *models.Workout) error
}

// Provider decodes notes documents and stores their workouts.
type Provider struct {
	store   WorkoutStore
	builder *codec.Builder
	log     *slog.Logger
	now     func() time.Time
}

// NewProvider creates a new plain text ingest provider.
func NewProvider(store WorkoutStore, log *slog.Logger) *Provider {
	return &Provider{store: store, builder: codec.NewBuilder(), log: log, now: time.Now}
}

// Ingest splits a notes document into blocks, decodes each block and stores
// the valid ones. A block that decodes to an invalid model is rejected and
// reported in the result; a store failure aborts the ingest.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	blocks, err := Split(r)
	if err != nil {
		return nil, fmt.Errorf("splitting notes: %w", err)
	}

	result := &ingest.Result{WorkoutsReceived: len(blocks)}
	for _, w := range p.Decode(blocks, userID, result) {
		if err := p.store.SaveWorkout(ctx, w); err != nil {
			return nil, fmt.Errorf("saving workout %q (%s): %w", w.Name, w.Date.Format("2006-01-02"), err)
		}
		result.WorkoutsInserted++
	}
	return result, nil
}

// Decode converts blocks into workouts without storing them. Counts and
// rejections are recorded in result.
func (p *Provider) Decode(blocks []Block, userID int, result *ingest.Result) []*models.Workout {
	workouts := make([]*models.Workout, 0, len(blocks))
	for _, b := range blocks {
		decoded := p.builder.Decode(b.Text, nil)
		if err := models.Validate(decoded.Exercises, decoded.Progress); err != nil {
			p.log.Warn("rejecting workout block", "name", b.Name, "line", b.Line, "error", err)
			result.WorkoutsRejected++
			result.RejectedNames = append(result.RejectedNames, b.Name)
			continue
		}

		done, total := decoded.Progress.Counts(decoded.Exercises)
		result.ExercisesReceived += len(decoded.Exercises)
		result.SetsReceived += total
		result.SetsCompleted += done

		workouts = append(workouts, &models.Workout{
			ID:        WorkoutID(userID, b.Name, b.Date),
			UserID:    userID,
			Name:      b.Name,
			Date:      b.Date,
			Text:      b.Text,
			Exercises: decoded.Exercises,
			Progress:  decoded.Progress,
			UpdatedAt: p.now().UTC(),
		})
	}
	return workouts
}
