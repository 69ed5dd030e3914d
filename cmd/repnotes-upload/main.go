// Command repnotes-upload sends changed workout notes to a repnotes server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/claude/repnotes/internal/notes"
	"github.com/claude/repnotes/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var errUsage = errors.New("usage")

type options struct {
	server string
	key    string
	dir    string
	exts   string
	dryRun bool
}

func main() {
	var opts options
	flag.StringVar(&opts.server, "server", "", "server URL, e.g. https://repnotes.tail1234.ts.net")
	flag.StringVar(&opts.key, "key", os.Getenv("REPNOTES_AUTH_API_KEY"), "API key for the ingest endpoint")
	flag.StringVar(&opts.dir, "path", "", "directory of workout notes")
	flag.StringVar(&opts.exts, "ext", strings.Join(notes.DefaultExtensions, ","), "comma separated note file extensions")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "decode files locally without sending them")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repnotes-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := run(ctx, opts, log)
	if stats != nil {
		summarize(os.Stdout, stats)
	}
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, "Usage: repnotes-upload -path DIR -server URL [-key KEY] [-dry-run]")
		flag.PrintDefaults()
		os.Exit(2)
	case err != nil:
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, log *slog.Logger) (*upload.Stats, error) {
	if opts.dir == "" || (opts.server == "" && !opts.dryRun) {
		return nil, errUsage
	}
	if info, err := os.Stat(opts.dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", opts.dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("locating home directory: %w", err)
	}
	state, err := notes.OpenStateDB(filepath.Join(home, ".repnotes"), "upload.db")
	if err != nil {
		return nil, err
	}
	defer state.Close()

	var client *upload.Client
	if opts.dryRun {
		log.Info("dry run, files are decoded but not sent")
	} else {
		client = upload.NewClient(strings.TrimRight(opts.server, "/"), opts.key)
	}

	return upload.New(client, state, opts.dir, splitExtensions(opts.exts), opts.dryRun, log).Run(ctx)
}

func splitExtensions(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func summarize(w io.Writer, stats *upload.Stats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "files\t%d\n", stats.FilesTotal)
	fmt.Fprintf(tw, "uploaded\t%d\n", stats.FilesUploaded)
	fmt.Fprintf(tw, "unchanged\t%d\n", stats.FilesSkipped)
	fmt.Fprintf(tw, "errored\t%d\n", stats.FilesErrored)
	fmt.Fprintf(tw, "workouts stored\t%d of %d\n", stats.WorkoutsInserted, stats.WorkoutsReceived)
	fmt.Fprintf(tw, "sets\t%d (%d done)\n", stats.SetsReceived, stats.SetsCompleted)
	for _, name := range stats.RejectedNames {
		fmt.Fprintf(tw, "rejected\t%s\n", name)
	}
	tw.Flush()
}
