// File: cmd/session_cmds.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/vizgen-cli/internal/observability"
	"github.com/xkilldash9x/vizgen-cli/internal/reporting"
)

func newKeysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Enter the API keys for the reasoning and extraction services",
		Long: `Prompts for both service keys with masked input. Leave a prompt blank to keep
the current key. Keys are held in memory for this session only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.promptKeys(false); err != nil {
				return app.fail(err)
			}
			if err := app.Session().Credentials.Get().Validate(); err != nil {
				return app.fail(err)
			}
			app.reporter.Success("Keys stored for this session.")
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which keys are set and whether code has been generated",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			sess := app.Session()
			creds := sess.Credentials.Get()
			status := reporting.Status{
				SessionID:       sess.ID(),
				ReasoningKey:    observability.MaskSecret(creds.ReasoningKey),
				ExtractionKey:   observability.MaskSecret(creds.ExtractionKey),
				ReasoningModel:  string(app.cfg.LLM.Reasoning.Provider) + "/" + app.cfg.LLM.Reasoning.Model,
				ExtractionModel: string(app.cfg.LLM.Extraction.Provider) + "/" + app.cfg.LLM.Extraction.Model,
			}
			if artifact, err := sess.Artifacts.Load(); err == nil {
				status.HasArtifact = true
				status.Generation = sess.Artifacts.Generation()
				status.ArtifactQuery = artifact.Query
			}
			app.reporter.Status(status)
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the API keys and the generated code",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.Session().Reset()
			app.reporter.Success("Session cleared.")
		},
	}
}
