// File: cmd/shell.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

const shellPrompt = "vizgen > "

const banner = `
  vizgen %s
  describe it, generate it, watch it run.

  keys                 enter the two service keys
  generate <text>      design a pygame program
  visualize            run it in the browser
  show code|reasoning  print the current code or trace
  status | clear | help | exit

`

// Shell runs the interactive session until EOF, exit or quit. Each line gets
// its own command tree and its own interrupt scope: Ctrl+C aborts the running
// command and returns to the prompt.
func Shell(ctx context.Context, app *App) error {
	fmt.Fprintf(app.out, banner, Version)

	for {
		fmt.Fprint(app.out, shellPrompt)
		line, err := app.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(app.out)
				break
			}
			return fmt.Errorf("error reading from stdin: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		args, err := splitArgs(line)
		if err != nil {
			app.reporter.Warning(err.Error())
			continue
		}
		runLine(ctx, app, args)

		if ctx.Err() != nil {
			break
		}
	}

	fmt.Fprintln(app.out, "Session ended. Keys and code were discarded.")
	return nil
}

// runLine executes one command, converting a panic into an error banner so the
// session survives.
func runLine(ctx context.Context, app *App, args []string) {
	lineCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			app.reporter.Error(fmt.Sprintf("command panicked: %v", r))
		}
	}()
	// Errors are already on screen.
	_ = Execute(lineCtx, app, args)
}

// splitArgs splits a shell line on whitespace, keeping single or double quoted
// runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inWord  bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}
