package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/stylesync/internal/app"
	"github.com/dshills/stylesync/internal/config"
	"github.com/dshills/stylesync/internal/style"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	settings   string
	workspace  string
	configName string
	logLevel   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "stylesync",
		Short: "Apply .editorconfig styles the way an editor does on save",
		Long: `stylesync resolves cascading .editorconfig styles for files, merges them
with host settings and runs the save-time fixes an editor would run:
line endings, trailing whitespace and the final newline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				color.NoColor = true
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.settings, "settings", "", "host settings file (.toml, .yaml)")
	flags.StringVarP(&g.workspace, "workspace", "w", "", "workspace directory (default: current directory)")
	flags.StringVar(&g.configName, "config-name", style.DefaultConfigName, "style file name")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error (default: from settings)")
	flags.BoolVar(&g.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newResolveCmd(g),
		newFixCmd(g),
		newWatchCmd(g),
	)
	return cmd
}

// openApp creates the application for a command. The caller closes both
// the application and the logger.
func (g *globalOptions) openApp(cmd *cobra.Command, opts app.Options) (*app.Application, *app.Logger, error) {
	if opts.WorkspacePath == "" {
		opts.WorkspacePath = g.workspace
	}
	opts.SettingsPath = g.settings
	opts.ConfigName = g.configName

	logger, err := g.newLogger(cmd, opts.WorkspacePath)
	if err != nil {
		return nil, nil, err
	}
	opts.Logger = logger

	a, err := app.New(opts)
	if err != nil {
		_ = logger.Close()
		return nil, nil, err
	}
	return a, logger, nil
}

// newLogger builds the logger from the settings file's logging section.
// --log-level wins over the file.
func (g *globalOptions) newLogger(cmd *cobra.Command, workspace string) (*app.Logger, error) {
	store, err := config.Load(g.settings, config.WithRoot(workspace))
	if err != nil {
		return nil, err
	}
	logging := store.Settings(workspace).Logging

	level := logging.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	return app.NewLogger(app.LoggerConfig{
		Level:  level,
		Format: logging.Format,
		File:   logging.File,
		Output: cmd.ErrOrStderr(),
	})
}
