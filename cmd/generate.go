// File: cmd/generate.go
package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/vizgen-cli/internal/pipeline"
)

func newGenerateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <description...>",
		Short: "Generate a pygame program for a description",
		Example: `  vizgen generate "a ball bouncing inside a rotating hexagon"
  vizgen > generate a sorting algorithm visualizer with bars`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" {
				return app.fail(pipeline.ErrEmptyQuery)
			}
			if err := app.ensureKeys(); err != nil {
				return app.fail(err)
			}
			app.reporter.Info("Generating code. The reasoning model can take a few minutes.")

			outcome, err := app.components.Controller.GenerateCode(cmd.Context(), app.Session(), query)
			if err != nil {
				return app.fail(err)
			}
			app.reporter.GenerationSummary(outcome)
			return nil
		},
	}
}
