package main

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/stylesync/internal/app"
	"github.com/dshills/stylesync/internal/session"
	"github.com/dshills/stylesync/internal/transform"
	"github.com/dshills/stylesync/internal/watcher"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [DIR] [FILE...]",
		Short: "Follow style file changes and report files that would change",
		Long: `Watch DIR (default: the workspace) for style file and settings changes.
After each change the given files are checked and the ones a save would
change are reported. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.Options{DebounceDelay: debounce}
			if len(args) > 0 {
				opts.WorkspacePath = args[0]
				opts.Files = args[1:]
			}

			a, logger, err := g.openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Close() }()
			defer func() { _ = a.Close() }()

			ctx := cmd.Context()
			if err := a.Start(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ws := a.Workspace()
			report := func() {
				for _, doc := range ws.Documents().All() {
					res, err := ws.Preview(ctx, doc.Path(), transform.SaveManual)
					if err != nil {
						printError(out, "%v", err)
						continue
					}
					if res.Changed() {
						printChange(out, "%s would change (%d edits)", doc.Path(), res.Edits())
					}
				}
			}

			// Registered after the session, so the cache is fresh when it runs.
			ws.OnDidSave(func(doc session.Document) {
				if filepath.Base(doc.Path()) == g.configName {
					printInfo(out, "style changed: %s", doc.Path())
					report()
				}
			})
			ws.OnDidChangeConfiguration(func() {
				printInfo(out, "settings reloaded")
				report()
			})

			printInfo(out, "watching %s", a.Root())
			report()

			err = a.Watch(ctx)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounceDelay, "delay before reacting to a change")
	return cmd
}
