package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/stylesync/internal/app"
	"github.com/dshills/stylesync/internal/transform"
)

// errChangesNeeded is returned by fix --check when a file would change.
var errChangesNeeded = errors.New("files need style fixes")

func newFixCmd(g *globalOptions) *cobra.Command {
	var check, dryRun bool

	cmd := &cobra.Command{
		Use:   "fix FILE...",
		Short: "Run the save-time style fixes on files",
		Long: `Open each file, run the pre-save transformations an editor would run
and write the result. With --check nothing is written and the command fails
if any file would change. With --dry-run the edits are listed instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, logger, err := g.openApp(cmd, app.Options{Files: args})
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
			preview := check || dryRun
			changed, failed := 0, 0

			for _, doc := range ws.Documents().All() {
				var res app.SaveResult
				if preview {
					res, err = ws.Preview(ctx, doc.Path(), transform.SaveManual)
				} else {
					res, err = ws.Save(ctx, doc.Path(), transform.SaveManual)
				}
				if err != nil {
					failed++
					printError(out, "%v", err)
					continue
				}
				for _, e := range res.Errors() {
					printWarning(out, "%s: %v", doc.Path(), e)
				}
				if !res.Changed() {
					printSuccess(out, "%s", doc.Path())
					continue
				}

				changed++
				if preview {
					printChange(out, "%s would change (%d edits)", doc.Path(), res.Edits())
				} else {
					printChange(out, "%s fixed (%d edits)", doc.Path(), res.Edits())
				}
				if dryRun {
					printTraces(out, res)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, ws.Documents().Count())
			}
			if check && changed > 0 {
				return errChangesNeeded
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "fail if any file would change, write nothing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the edits, write nothing")
	return cmd
}

func printTraces(w io.Writer, res app.SaveResult) {
	for _, b := range res.Batches {
		for _, trace := range b.Traces() {
			_, _ = io.WriteString(w, "    "+trace+"\n")
		}
	}
}
