// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

const (
	configName = "vizgen"
	envPrefix  = "VIZGEN"
)

// NewRootCommand builds a fresh command tree bound to app. The shell creates
// one per input line so flag values never leak between lines.
func NewRootCommand(app *App) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "vizgen",
		Short: "Generate pygame visualizations from a description and run them in the browser.",
		Long: `vizgen asks a reasoning model to design a pygame program for your description,
isolates the code with an extraction model and runs it on an online Python
playground. Run without arguments to start an interactive session.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsSetup(cmd) {
				return nil
			}
			if err := app.setup(cfgFile); err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			return nil
		},
	}
	rootCmd.SetOut(app.out)
	rootCmd.SetErr(app.out)
	rootCmd.SetIn(app.in)
	rootCmd.SetVersionTemplate(`{{printf "vizgen version %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./vizgen.yaml or ~/.vizgen/vizgen.yaml)")

	rootCmd.AddCommand(
		newKeysCmd(app),
		newGenerateCmd(app),
		newVisualizeCmd(app),
		newShowCmd(app),
		newStatusCmd(app),
		newClearCmd(app),
		newConfigCmd(app),
		newLogsCmd(app),
		newVersionCmd(),
	)
	return rootCmd
}

// skipsSetup reports whether cmd runs without configuration.
func skipsSetup(cmd *cobra.Command) bool {
	return cmd.Name() == "version" || cmd.Name() == "help"
}

// Execute runs one command line against app. Errors not already shown by the
// command are printed as an error banner.
func Execute(ctx context.Context, app *App, args []string) error {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var reported *reportedError
	if !errors.As(err, &reported) {
		app.reporter.Error(err.Error())
	}
	return err
}

// loadConfig reads defaults, the config file and VIZGEN_* environment
// variables, in increasing precedence. API keys have no key in any of them.
func loadConfig(cfgFile string) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+configName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return config.NewConfigFromViper(v)
}
