package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/repnotes/internal/codec"
	"github.com/claude/repnotes/internal/ingest"
	"github.com/claude/repnotes/internal/ingest/plaintext"
	"github.com/claude/repnotes/internal/models"
)

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	store   plaintext.WorkoutStore
	builder *codec.Builder
	log     *slog.Logger
	now     func() time.Time
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(store plaintext.WorkoutStore, log *slog.Logger) *Provider {
	return &Provider{store: store, builder: codec.NewBuilder(), log: log, now: time.Now}
}

// Ingest parses an export and stores one workout per session. Workouts share
// IDs with notes imports, so a session re-exported on the same day under the
// same name replaces the earlier import.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{WorkoutsReceived: len(sessions)}
	for _, s := range sessions {
		w, err := p.Workout(s, userID)
		if err != nil {
			p.log.Warn("rejecting alpha session", "name", s.Name, "date", s.Date.Format("2006-01-02"), "error", err)
			result.WorkoutsRejected++
			result.RejectedNames = append(result.RejectedNames, s.Name)
			continue
		}

		done, total := w.Progress.Counts(w.Exercises)
		result.ExercisesReceived += len(w.Exercises)
		result.SetsReceived += total
		result.SetsCompleted += done

		if err := p.store.SaveWorkout(ctx, w); err != nil {
			return nil, fmt.Errorf("saving session %q (%s): %w", s.Name, s.Date.Format("2006-01-02"), err)
		}
		result.WorkoutsInserted++
	}
	return result, nil
}

// Workout converts a session into a validated workout.
func (p *Provider) Workout(s Session, userID int) (*models.Workout, error) {
	text := Text(s)
	decoded := p.builder.Decode(text, nil)
	if len(decoded.Exercises) == 0 {
		return nil, fmt.Errorf("session has no working sets")
	}

	// Exercises without working sets were dropped from the text.
	var withSets []Exercise
	for _, ex := range s.Exercises {
		if len(ex.Working()) > 0 {
			withSets = append(withSets, ex)
		}
	}
	for i := range decoded.Exercises {
		if i < len(withSets) && withSets[i].Equipment != "" {
			decoded.Exercises[i].Equipment = []string{withSets[i].Equipment}
		}
	}

	if err := models.Validate(decoded.Exercises, decoded.Progress); err != nil {
		return nil, err
	}

	day := time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC)
	return &models.Workout{
		ID:        plaintext.WorkoutID(userID, s.Name, day),
		UserID:    userID,
		Name:      s.Name,
		Date:      day,
		Text:      text,
		Exercises: decoded.Exercises,
		Progress:  decoded.Progress,
		UpdatedAt: p.now().UTC(),
	}, nil
}
