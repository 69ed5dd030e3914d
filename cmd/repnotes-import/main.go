// Command repnotes-import loads a directory of workout notes into the database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/claude/repnotes/internal/config"
	"github.com/claude/repnotes/internal/importer"
	"github.com/claude/repnotes/internal/notes"
	"github.com/claude/repnotes/internal/storage"
)

type options struct {
	configPath string
	notesPath  string
	login      string
	dryRun     bool
	force      bool
}

var errUsage = errors.New("usage")

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	flag.StringVar(&opts.notesPath, "path", "", "directory of workout notes (required)")
	flag.StringVar(&opts.login, "user", "", "import as this login instead of the local user")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "decode and count without writing")
	flag.BoolVar(&opts.force, "force", false, "re-import files already recorded as imported")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch err := run(ctx, opts, log); {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, "Usage: repnotes-import -path DIR [-config config.yaml] [-user login] [-dry-run] [-force]")
		flag.PrintDefaults()
		os.Exit(2)
	case err != nil:
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, log *slog.Logger) error {
	if opts.notesPath == "" {
		return errUsage
	}
	if info, err := os.Stat(opts.notesPath); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", opts.notesPath)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dsn := cfg.Database.DSN()
	schema, err := storage.RunMigrations(dsn, "migrations")
	if err != nil {
		return err
	}
	log.Info("schema ready", "version", schema.Version)

	db, err := storage.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer db.Close()

	userID := storage.LocalUserID
	if opts.login != "" {
		if userID, err = db.GetOrCreateUser(ctx, opts.login, opts.login); err != nil {
			return err
		}
	}

	state, err := notes.OpenStateDB(cfg.Import.StateDir, "import.db")
	if err != nil {
		return err
	}
	defer state.Close()

	if opts.dryRun {
		log.Info("dry run, nothing will be written")
	}
	imp := importer.New(db, state, log, importer.Options{
		UserID:     userID,
		Workers:    cfg.Import.Workers,
		Extensions: cfg.Import.Extensions,
		DryRun:     opts.dryRun,
		Force:      opts.force,
	})
	stats, err := imp.Import(ctx, opts.notesPath)
	report(log, stats)
	return err
}

func report(log *slog.Logger, stats *importer.Stats) {
	if stats == nil {
		return
	}
	log.Info("import finished",
		"files", stats.FilesTotal,
		"processed", stats.FilesProcessed,
		"skipped", stats.FilesSkipped,
		"errored", stats.FilesErrored,
		"workouts", stats.WorkoutsReceived,
		"inserted", stats.WorkoutsInserted,
		"rejected", stats.WorkoutsRejected,
		"sets", stats.SetsReceived,
		"sets_done", stats.SetsCompleted,
	)
	for _, name := range stats.RejectedNames {
		log.Warn("workout rejected", "name", name)
	}
}
