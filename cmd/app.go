// File: cmd/app.go
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
	"github.com/xkilldash9x/vizgen-cli/internal/observability"
	"github.com/xkilldash9x/vizgen-cli/internal/reporting"
	"github.com/xkilldash9x/vizgen-cli/internal/service"
	"github.com/xkilldash9x/vizgen-cli/internal/session"
)

// SecretReader reads one line of input without echoing it.
type SecretReader func(prompt string) (string, error)

// App is the state that outlives a single command: the loaded configuration,
// the wired components and the Session. In the interactive shell one App
// serves every line; in one-shot mode it lives for the process.
type App struct {
	in       io.Reader
	lines    *bufio.Reader
	out      io.Writer
	reporter *reporting.Reporter

	// ReadSecret prompts for an API key. Defaults to masked terminal input.
	ReadSecret SecretReader
	// PromptForKeys makes generate ask for missing keys instead of failing.
	PromptForKeys bool
	// ComponentOptions is passed to service.NewComponents.
	ComponentOptions service.Options

	mu         sync.Mutex
	cfg        *config.Config
	logger     *zap.Logger
	components *service.Components
	session    *session.Session
}

// NewApp creates an App bound to the given streams. Nothing is loaded until
// the first command runs.
func NewApp(in io.Reader, out io.Writer) *App {
	a := &App{
		in:       in,
		lines:    bufio.NewReader(in),
		out:      out,
		reporter: reporting.New(out),
	}
	a.ReadSecret = a.readSecretFromInput
	return a
}

// Reporter returns the output renderer.
func (a *App) Reporter() *reporting.Reporter { return a.reporter }

// setup loads configuration and wires the pipeline once. Later calls are no-ops,
// so the Session survives across shell lines.
func (a *App) setup(cfgFile string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		return nil
	}

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	observability.InitializeLogger(cfg.Logger)
	logger := observability.GetLogger()

	opts := a.ComponentOptions
	if opts.Progress == nil {
		opts.Progress = func(index int, task schemas.AutomationTask) {
			a.reporter.TaskStarted(index, task)
		}
	}
	components, err := service.NewComponents(cfg, logger, opts)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.components = components
	a.session = session.New(logger)
	logger.Debug("Session started.", zap.String("version", Version))
	return nil
}

// Session returns the live session, or nil before the first command.
func (a *App) Session() *session.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Close ends the Session and releases the components. Credentials and the
// artifact are cleared.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		a.session.Close()
	}
	if a.components != nil {
		a.components.Shutdown()
	}
	observability.Sync()
}

// promptKeys asks for each key. Blank input keeps the current value.
func (a *App) promptKeys(onlyMissing bool) error {
	creds := a.session.Credentials
	current := creds.Get()

	if !onlyMissing || strings.TrimSpace(current.ReasoningKey) == "" {
		key, err := a.ReadSecret(fmt.Sprintf("Reasoning service key (%s): ", a.cfg.LLM.Reasoning.Provider))
		if err != nil {
			return fmt.Errorf("failed to read reasoning key: %w", err)
		}
		if strings.TrimSpace(key) != "" {
			creds.SetReasoningKey(key)
			a.logger.Info("API key stored.", observability.Secret("reasoning_key", key))
		}
	}
	if !onlyMissing || strings.TrimSpace(current.ExtractionKey) == "" {
		key, err := a.ReadSecret(fmt.Sprintf("Extraction service key (%s): ", a.cfg.LLM.Extraction.Provider))
		if err != nil {
			return fmt.Errorf("failed to read extraction key: %w", err)
		}
		if strings.TrimSpace(key) != "" {
			creds.SetExtractionKey(key)
			a.logger.Info("API key stored.", observability.Secret("extraction_key", key))
		}
	}
	return nil
}

// ensureKeys prompts for missing keys when PromptForKeys is set.
func (a *App) ensureKeys() error {
	if !a.PromptForKeys {
		return nil
	}
	if a.session.Credentials.Get().Validate() == nil {
		return nil
	}
	return a.promptKeys(true)
}

// readSecretFromInput uses masked terminal input when the input is a tty and
// falls back to reading a plain line otherwise.
func (a *App) readSecretFromInput(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return a.ReadLine()
}

// ReadLine reads the next line of input without its terminator. A final line
// without a newline is returned before io.EOF.
func (a *App) ReadLine() (string, error) {
	line, err := a.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// reportedError marks an error whose banner has already been printed.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// fail prints err as a banner and marks it reported.
func (a *App) fail(err error) error {
	if err == nil {
		return nil
	}
	a.reporter.Failure(err)
	return &reportedError{err: err}
}
