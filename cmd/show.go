// File: cmd/show.go
package cmd

import (
	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "show code|reasoning",
		Short:     "Print the current code or the full reasoning trace",
		ValidArgs: []string{"code", "reasoning"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			artifact, err := app.Session().Artifacts.Load()
			if err != nil {
				return app.fail(err)
			}
			switch args[0] {
			case "code":
				app.reporter.Code(artifact.Code)
			case "reasoning":
				if artifact.Reasoning == "" {
					app.reporter.Info("The current code was imported; it has no reasoning trace.")
					return nil
				}
				app.reporter.Reasoning(artifact.Reasoning, true)
			}
			return nil
		},
	}
}
