package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/lingo/internal/adapters/detector"
	"go.trai.ch/lingo/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [apps...] [-- args...]",
		Short: "Build apps and execute them",
		Long: "Build the named apps, or every app of the manifest when none is named, " +
			"then execute each built binary. Arguments after -- are passed to every binary.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, passthrough := args, []string(nil)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				names, passthrough = args[:dash], args[dash:]
			}

			pty, _ := cmd.Flags().GetString("pty")
			interactive := detector.ResolvePTY(detector.ParsePTYMode(pty), detector.IsInteractive())

			return c.app.Run(cmd.Context(), names, app.RunOptions{
				BuildOptions: buildOptions(cmd),
				Args:         passthrough,
				Interactive:  interactive,
			})
		},
	}
	c.addBuildFlags(cmd)
	cmd.Flags().String("pty", "auto", "Attach apps to a pseudo-terminal: auto, always, or never")
	return cmd
}
