// File: cmd/visualize.go
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/store"
)

func newVisualizeCmd(app *App) *cobra.Command {
	var codeFile string

	visualizeCmd := &cobra.Command{
		Use:   "visualize",
		Short: "Run the generated code in the browser",
		Long: `Opens the online pygame playground, puts the current code into its editor,
presses run and keeps the window open while the program plays. With
--code-file the file replaces the current code first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess := app.Session()
			controller := app.components.Controller

			if codeFile != "" {
				path, err := homedir.Expand(codeFile)
				if err != nil {
					return app.fail(fmt.Errorf("failed to expand code file path: %w", err))
				}
				code, err := os.ReadFile(path)
				if err != nil {
					return app.fail(fmt.Errorf("failed to read code file: %w", err))
				}
				_, diag, err := controller.ImportCode(ctx, sess, string(code), path)
				if diag != nil {
					app.reporter.Warning("Possible syntax error at " + diag.String())
				}
				if err != nil {
					return app.fail(err)
				}
				app.reporter.Info("Loaded code from " + path)
			}

			if !sess.Artifacts.Has() {
				return app.fail(store.ErrNoArtifact)
			}
			app.reporter.Info("Opening the browser.")
			outcome, err := controller.GenerateVisualization(ctx, sess)
			if err != nil {
				return app.fail(err)
			}
			app.reporter.Success(fmt.Sprintf("Visualization finished (%s) in %s.",
				joinTasks(outcome.Completed), outcome.Duration.Round(100*time.Millisecond)))
			return nil
		},
	}
	visualizeCmd.Flags().StringVar(&codeFile, "code-file", "", "run this Python file instead of the generated code")
	return visualizeCmd
}

func joinTasks(kinds []schemas.TaskKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
