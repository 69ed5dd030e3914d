// Package upload pushes local workout notes files to a repnotes server.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/repnotes/internal/ingest"
	"github.com/claude/repnotes/internal/ingest/plaintext"
	"github.com/claude/repnotes/internal/notes"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	ingest.Result
}

// Uploader walks a notes directory and sends new or changed files.
type Uploader struct {
	client *Client
	state  *notes.StateDB
	root   string
	exts   []string
	dryRun bool
	log    *slog.Logger
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *notes.StateDB, root string, exts []string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		root:   root,
		exts:   exts,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload. Files are validated locally first so a document
// with a malformed block header is reported without a round trip.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	files, err := notes.Find(u.root, u.exts)
	if err != nil {
		return stats, err
	}
	stats.FilesTotal = len(files)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		done, err := u.state.IsProcessed(f)
		if err != nil {
			return stats, err
		}
		if done {
			stats.FilesSkipped++
			continue
		}

		data, err := os.ReadFile(f.Path)
		if err != nil {
			u.log.Warn("read failed", "file", f.RelPath, "error", err)
			stats.FilesErrored++
			continue
		}
		blocks, err := plaintext.Split(bytes.NewReader(data))
		if err != nil {
			u.log.Warn("invalid notes file", "file", f.RelPath, "error", err)
			stats.FilesErrored++
			continue
		}

		if u.dryRun {
			u.log.Info("would upload", "file", f.RelPath, "workouts", len(blocks))
			stats.WorkoutsReceived += len(blocks)
			stats.FilesUploaded++
			continue
		}

		result, err := u.client.SendNotes(ctx, f.RelPath, data)
		if err != nil {
			return stats, fmt.Errorf("uploading %s: %w", f.RelPath, err)
		}
		if err := u.state.MarkProcessed(f, result.WorkoutsInserted); err != nil {
			return stats, err
		}
		stats.Result.Add(*result)
		stats.FilesUploaded++
		u.log.Info("uploaded", "file", f.RelPath, "workouts", result.WorkoutsInserted)
	}
	return stats, nil
}
