// File: cmd/diag_cmds.go
package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Prints the configuration after defaults, the config file and VIZGEN_*
environment variables have been merged. The output is a valid config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(app.cfg); err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			return enc.Close()
		},
	}
}

func newLogsCmd(app *App) *cobra.Command {
	var (
		lines  int
		follow bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the end of the log file",
		Long: `Prints the last lines of logger.log_file. With --follow, keeps printing new
lines until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.cfg.Logger.LogFile
			if path == "" {
				return app.fail(errors.New("no log file configured (set logger.log_file)"))
			}
			out := cmd.OutOrStdout()
			if err := printLastLines(out, path, lines); err != nil {
				return app.fail(err)
			}
			if !follow {
				return nil
			}

			t, err := tail.TailFile(path, tail.Config{
				Follow:    true,
				ReOpen:    true,
				MustExist: true,
				Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
				Logger:    tail.DiscardingLogger,
			})
			if err != nil {
				return app.fail(fmt.Errorf("failed to follow log file: %w", err))
			}
			defer func() {
				_ = t.Stop()
				t.Cleanup()
			}()

			ctx := cmd.Context()
			for {
				select {
				case <-ctx.Done():
					return nil
				case line, ok := <-t.Lines:
					if !ok {
						return nil
					}
					if line.Err != nil {
						app.logger.Warn("Error reading from log file", zap.Error(line.Err))
						continue
					}
					fmt.Fprintln(out, line.Text)
				}
			}
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing new lines")
	return cmd
}

// printLastLines writes the final n lines of the file at path.
func printLastLines(out io.Writer, path string, n int) error {
	if n <= 0 {
		return nil
	}
	t, err := tail.TailFile(path, tail.Config{MustExist: true, Logger: tail.DiscardingLogger})
	if err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	defer t.Cleanup()

	ring := make([]string, 0, n)
	for line := range t.Lines {
		if line.Err != nil {
			return fmt.Errorf("failed to read log file: %w", line.Err)
		}
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line.Text)
	}
	for _, text := range ring {
		fmt.Fprintln(out, text)
	}
	return nil
}
