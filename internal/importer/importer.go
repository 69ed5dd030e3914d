// Package importer loads a directory of workout notes into the store.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/repnotes/internal/ingest"
	"github.com/claude/repnotes/internal/ingest/plaintext"
	"github.com/claude/repnotes/internal/models"
	"github.com/claude/repnotes/internal/notes"
	"golang.org/x/sync/errgroup"
)

// Stats tracks import progress.
type Stats struct {
	FilesTotal     int
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	ingest.Result
}

// Options configure an Importer.
type Options struct {
	UserID     int
	Workers    int
	Extensions []string
	DryRun     bool
	// Force imports files the state already records; they are re-recorded.
	Force bool
}

// Importer decodes notes files in parallel and stores their workouts.
type Importer struct {
	store    plaintext.WorkoutStore
	provider *plaintext.Provider
	state    *notes.StateDB
	log      *slog.Logger
	opts     Options
}

// New creates a new Importer. state may be nil to import every file.
func New(store plaintext.WorkoutStore, state *notes.StateDB, log *slog.Logger, opts Options) *Importer {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Importer{
		store:    store,
		provider: plaintext.NewProvider(store, log),
		state:    state,
		log:      log,
		opts:     opts,
	}
}

// decoded is the per-file outcome of the parallel phase.
type decoded struct {
	file     notes.File
	skipped  bool
	err      error
	workouts []*models.Workout
	result   ingest.Result
}

// Import processes every notes file under dir. Files are decoded
// concurrently; workouts are stored sequentially in file order.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	stats := &Stats{}
	files, err := notes.Find(dir, imp.opts.Extensions)
	if err != nil {
		return stats, err
	}
	stats.FilesTotal = len(files)

	out := make([]decoded, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.opts.Workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = imp.decodeFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("decoding files: %w", err)
	}

	for _, d := range out {
		switch {
		case d.skipped:
			stats.FilesSkipped++
			continue
		case d.err != nil:
			imp.log.Warn("skipping file", "file", d.file.RelPath, "error", d.err)
			stats.FilesErrored++
			continue
		}

		if !imp.opts.DryRun {
			for _, w := range d.workouts {
				if err := imp.store.SaveWorkout(ctx, w); err != nil {
					return stats, fmt.Errorf("saving %q from %s: %w", w.Name, d.file.RelPath, err)
				}
				d.result.WorkoutsInserted++
			}
			if imp.state != nil {
				if err := imp.state.MarkProcessed(d.file, len(d.workouts)); err != nil {
					return stats, err
				}
			}
		}

		stats.FilesProcessed++
		stats.Result.Add(d.result)
		imp.log.Info("imported file", "file", d.file.RelPath, "workouts", len(d.workouts), "dry_run", imp.opts.DryRun)
	}
	return stats, nil
}

func (imp *Importer) decodeFile(f notes.File) decoded {
	d := decoded{file: f}
	if imp.state != nil && !imp.opts.Force {
		done, err := imp.state.IsProcessed(f)
		if err != nil {
			d.err = err
			return d
		}
		if done {
			d.skipped = true
			return d
		}
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		d.err = fmt.Errorf("reading: %w", err)
		return d
	}
	blocks, err := plaintext.Split(bytes.NewReader(data))
	if err != nil {
		d.err = err
		return d
	}
	d.result.WorkoutsReceived = len(blocks)
	d.workouts = imp.provider.Decode(blocks, imp.opts.UserID, &d.result)
	return d
}
