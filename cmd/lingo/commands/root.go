// Package commands implements the CLI commands for lingo.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/lingo/internal/app"
	"go.trai.ch/lingo/internal/build"
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/zerr"
)

var errInvalidLogFormat = zerr.New("invalid log format, expected 'pretty' or 'json'")

// CLI represents the command line interface for lingo.
type CLI struct {
	app      Application
	settings domain.Settings
	rootCmd  *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, names []string, opts app.BuildOptions) error
	Run(ctx context.Context, names []string, opts app.RunOptions) error
	Clean(ctx context.Context, names []string) error
	Init(ctx context.Context, opts app.InitOptions) error
	SetLogFormat(format string)
}

// New creates a new CLI instance with the given app. Flag defaults come from settings.
func New(a Application, settings domain.Settings) *CLI {
	rootCmd := &cobra.Command{
		Use:           "lingo",
		Short:         "A package manager and build tool for Lingua Franca",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	logFormat := settings.LogFormat
	if logFormat == "" {
		logFormat = "pretty"
	}
	rootCmd.PersistentFlags().String("log-format", logFormat, "Log format: pretty or json")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("log-format")
		switch strings.ToLower(format) {
		case "pretty", "json":
			a.SetLogFormat(strings.ToLower(format))
			return nil
		default:
			return zerr.With(zerr.Wrap(errInvalidLogFormat, format), "log_format", format)
		}
	}

	c := &CLI{
		app:      a,
		settings: settings,
		rootCmd:  rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newInitCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
