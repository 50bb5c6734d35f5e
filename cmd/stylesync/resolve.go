package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/stylesync/internal/app"
	"github.com/dshills/stylesync/internal/options"
)

// resolveReport is the JSON form of app.Description.
type resolveReport struct {
	Path                       string            `json:"path"`
	Properties                 map[string]string `json:"properties"`
	TabSize                    *int              `json:"tabSize,omitempty"`
	InsertSpaces               *bool             `json:"insertSpaces,omitempty"`
	DisplayStyle               map[string]string `json:"displayStyle"`
	HostTrimTrailingWhitespace bool              `json:"hostTrimTrailingWhitespace"`
	HostInsertFinalNewline     bool              `json:"hostInsertFinalNewline"`
}

func newResolveReport(d app.Description) resolveReport {
	return resolveReport{
		Path:                       d.Path,
		Properties:                 d.Properties.Raw(),
		TabSize:                    d.Options.TabSize,
		InsertSpaces:               d.Options.InsertSpaces,
		DisplayStyle:               options.ToStyle(d.Options),
		HostTrimTrailingWhitespace: d.Policy.TrimTrailingWhitespace,
		HostInsertFinalNewline:     d.Policy.InsertFinalNewline,
	}
}

func newResolveCmd(g *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve FILE...",
		Short: "Print the resolved style and display options for files",
		Long: `Print the style properties that apply to each file and the display
options an editor would use for it. The files do not need to exist.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, logger, err := g.openApp(cmd, app.Options{})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Close() }()
			defer func() { _ = a.Close() }()

			reports := make([]resolveReport, 0, len(args))
			descriptions := make([]app.Description, 0, len(args))
			for _, f := range args {
				d, err := a.Describe(cmd.Context(), f)
				if err != nil {
					return err
				}
				descriptions = append(descriptions, d)
				reports = append(reports, newResolveReport(d))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			for _, d := range descriptions {
				printDescription(out, d)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printDescription(w io.Writer, d app.Description) {
	_, _ = titleColor.Fprintln(w, d.Path)
	keys := d.Properties.Keys()
	if len(keys) == 0 {
		printInfo(w, "no style applies")
	}
	raw := d.Properties.Raw()
	for _, k := range keys {
		_, _ = io.WriteString(w, "  "+k+" = "+raw[k]+"\n")
	}
	printInfo(w, "display: %s", options.Summary(d.Options))
}
