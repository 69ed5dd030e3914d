package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/claude/repnotes/internal/editor"
	"github.com/claude/repnotes/internal/format"
)

func main() {
	write := flag.Bool("w", false, "write result to the source file instead of stdout")
	diff := flag.Bool("d", false, "display diffs instead of rewriting files")
	list := flag.Bool("l", false, "list files whose formatting differs")
	watchFile := flag.Bool("watch", false, "keep re-parsing one file as it is edited; with -w, write canonical text back")
	debounce := flag.Duration("debounce", editor.DefaultDebounce, "delay after the last edit before a watched file is parsed")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: repnotes-fmt [-w | -d | -l] [file ...]\n       repnotes-fmt -watch [-w] [-debounce 400ms] file\n\nWith no files, formats stdin to stdout.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *watchFile {
		if flag.NArg() != 1 {
			flag.Usage()
			os.Exit(2)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := watch(ctx, flag.Arg(0), *debounce, 250*time.Millisecond, *write, log); err != nil {
			log.Error("watch failed", "path", flag.Arg(0), "error", err)
			os.Exit(2)
		}
		return
	}

	if flag.NArg() == 0 {
		if *write {
			log.Error("cannot use -w with standard input")
			os.Exit(2)
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Error("reading stdin", "error", err)
			os.Exit(2)
		}
		emit("<stdin>", string(data), *diff, *list)
		return
	}

	exit := 0
	for _, path := range flag.Args() {
		if err := processFile(path, *write, *diff, *list); err != nil {
			log.Error("format failed", "path", path, "error", err)
			exit = 2
		}
	}
	os.Exit(exit)
}

func processFile(path string, write, diff, list bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	text := string(data)

	if !write {
		emit(path, text, diff, list)
		return nil
	}
	if !format.Changed(text) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if err := os.WriteFile(path, []byte(format.Format(text)), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	if list {
		fmt.Println(path)
	}
	return nil
}

func emit(name, text string, diff, list bool) {
	switch {
	case list:
		if format.Changed(text) {
			fmt.Println(name)
		}
	case diff:
		fmt.Print(format.Diff(name, text))
	default:
		fmt.Print(format.Format(text))
	}
}
