package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/repnotes/internal/codec"
	"github.com/claude/repnotes/internal/editor"
)

// watch treats path as an editor buffer: every change on disk is fed to a
// session and each committed parse is reported. With rewrite set, text that
// is not canonical is regenerated and written back; the session ignores the
// change event that write causes.
func watch(ctx context.Context, path string, debounce, poll time.Duration, rewrite bool, log *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	sess := editor.New(editor.State{}, editor.Options{Debounce: debounce, Logger: log})
	defer sess.Close()

	commits := make(chan editor.State, 16)
	sess.OnChange(func(st editor.State) {
		select {
		case commits <- st:
		default:
			log.Warn("dropping workout update", "version", st.Version)
		}
	})

	last := string(data)
	sess.TextChanged(trimFinalNewline(last))
	sess.Flush()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case st := <-commits:
			done, total := st.Progress.Counts(st.Exercises)
			log.Info("workout updated", "path", path, "version", st.Version,
				"exercises", len(st.Exercises), "sets_done", done, "sets_total", total)
			if !rewrite || codec.Generate(st.Exercises, st.Progress) == st.Text {
				continue
			}
			text := sess.Regenerate()
			if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
				return fmt.Errorf("writing file: %w", err)
			}

		case <-ticker.C:
			data, err := os.ReadFile(path)
			if err != nil {
				log.Warn("reading watched file", "path", path, "error", err)
				continue
			}
			if text := string(data); text != last {
				last = text
				sess.TextChanged(trimFinalNewline(text))
			}
		}
	}
}

func trimFinalNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}
