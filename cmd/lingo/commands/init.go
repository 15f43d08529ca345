package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/lingo/internal/app"
)

func (c *CLI) newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new project in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			template, _ := cmd.Flags().GetString("template")

			return c.app.Init(cmd.Context(), app.InitOptions{
				Name:     name,
				Template: template,
			})
		},
	}
	cmd.Flags().String("name", "", "Package and app name (default: the directory name)")
	cmd.Flags().StringP("template", "t", "", "Git repository to clone as the project template")
	return cmd
}
