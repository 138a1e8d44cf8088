// File: cmd/vizgen/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/xkilldash9x/vizgen-cli/cmd"
	"github.com/xkilldash9x/vizgen-cli/internal/observability"
)

const panicLogFile = "panic.log"

// Function variables for mocking in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
)

func main() {
	defer handlePanic()
	osExit(run(os.Args[1:]))
}

// run executes one command when args are given and the interactive shell
// otherwise. It returns the process exit code.
func run(args []string) int {
	app := cmd.NewApp(os.Stdin, os.Stdout)
	defer app.Close()

	if len(args) > 0 {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// A one-shot session has no earlier `keys` line to rely on.
		app.PromptForKeys = true
		if err := cmd.Execute(ctx, app, args); err != nil {
			if errors.Is(err, context.Canceled) {
				return 0
			}
			return 1
		}
		return 0
	}

	if err := cmd.Shell(context.Background(), app); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// handlePanic writes the stack of an unrecovered panic to panic.log and exits
// non-zero.
func handlePanic() {
	if r := recover(); r != nil {
		observability.Sync()

		panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
		if err := osWriteFile(panicLogFile, []byte(panicMessage), 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
			fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
			osExit(2)
			return
		}

		fmt.Fprintf(os.Stderr, "\nvizgen crashed. Details logged to %s\n", panicLogFile)
		osExit(2)
	}
}
