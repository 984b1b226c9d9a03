package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"
)

// watch evaluates file once and again after every write to it, until ctx
// is canceled or the process is interrupted. Evaluation errors are
// reported and watching continues.
func watch(ctx context.Context, cmd *cli.Command, file string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", file, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()
	// Editors often replace files by rename, so watch the directory.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", file, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	e := newEngine(cmd)
	stderr := cmd.Root().ErrWriter
	once := func() {
		data, err := os.ReadFile(abs)
		if err == nil {
			err = evaluate(ctx, cmd, e, string(data))
		}
		if err != nil {
			printError(stderr, err)
		}
		fmt.Fprintln(stderr, color.New(color.Faint).Sprintf("[watching %s]", file))
	}

	once()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			once()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", file, err)
		}
	}
}
