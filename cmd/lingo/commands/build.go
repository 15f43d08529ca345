package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/lingo/internal/app"
	"go.trai.ch/lingo/internal/core/domain"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [apps...]",
		Short: "Generate and compile apps",
		Long:  "Generate and compile the named apps, or every app of the manifest when none is named.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Build(cmd.Context(), args, buildOptions(cmd))
		},
	}
	c.addBuildFlags(cmd)
	return cmd
}

// addBuildFlags registers the flags shared by build and run.
func (c *CLI) addBuildFlags(cmd *cobra.Command) {
	threads := c.settings.Threads
	if threads < 1 {
		threads = domain.DefaultSettings().Threads
	}
	profile := c.settings.Profile
	if profile == "" {
		profile = domain.ProfileDebug.String()
	}

	cmd.Flags().BoolP("no-compile", "c", false, "Only generate code, do not invoke the build system")
	cmd.Flags().IntP("threads", "j", threads, "Maximum number of concurrent code generator processes")
	cmd.Flags().BoolP("keep-going", "k", c.settings.KeepGoing, "Continue with other apps after a failure")
	cmd.Flags().String("profile", profile, "Build profile: debug or release")
	cmd.Flags().BoolP("release", "r", false, "Shorthand for --profile=release")
	cmd.Flags().String("lfc", c.settings.LFCPath, "Path to the lfc code generator (default: looked up on PATH)")
}

func buildOptions(cmd *cobra.Command) app.BuildOptions {
	noCompile, _ := cmd.Flags().GetBool("no-compile")
	threads, _ := cmd.Flags().GetInt("threads")
	keepGoing, _ := cmd.Flags().GetBool("keep-going")
	profile, _ := cmd.Flags().GetString("profile")
	release, _ := cmd.Flags().GetBool("release")
	lfc, _ := cmd.Flags().GetString("lfc")

	if release {
		profile = domain.ProfileRelease.String()
	}

	return app.BuildOptions{
		NoCompile: noCompile,
		Threads:   threads,
		KeepGoing: keepGoing,
		Profile:   profile,
		LFCPath:   lfc,
	}
}
