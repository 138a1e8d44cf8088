// internal/automation/runner.go
package automation

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
)

const defaultCloseTimeout = 10 * time.Second

// ErrPanic marks a task failure caused by a recovered panic.
var ErrPanic = errors.New("automation panicked")

// TaskError reports which task failed and which ones finished before it.
type TaskError struct {
	Task      schemas.TaskKind
	Completed []schemas.TaskKind
	Err       error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("automation task %q failed after %d completed task(s): %v", e.Task, len(e.Completed), e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Report summarizes a successful run.
type Report struct {
	Completed []schemas.TaskKind
	Duration  time.Duration
}

// ProgressFunc is called before each task starts.
type ProgressFunc func(index int, task schemas.AutomationTask)

// Runner executes the task list against one browser context per run.
type Runner struct {
	browser      schemas.Browser
	clipboard    schemas.Clipboard
	tasks        []schemas.AutomationTask
	closeTimeout time.Duration
	progress     ProgressFunc
	logger       *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithClipboard sets the clipboard used by copy actions.
func WithClipboard(c schemas.Clipboard) Option {
	return func(r *Runner) { r.clipboard = c }
}

// WithCloseTimeout bounds the release of the browser context.
func WithCloseTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.closeTimeout = d
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

// NewRunner creates a runner for tasks.
func NewRunner(browser schemas.Browser, tasks []schemas.AutomationTask, logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		browser:      browser,
		tasks:        tasks,
		closeTimeout: defaultCloseTimeout,
		logger:       logger.Named("automation"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tasks returns the configured task list.
func (r *Runner) Tasks() []schemas.AutomationTask {
	return r.tasks
}

// Run opens a fresh browser context and executes every task in order with
// code as the program text. The first failure aborts the remaining tasks.
// The context is closed on every exit path, panics included.
func (r *Runner) Run(ctx context.Context, code string) (report *Report, err error) {
	start := time.Now()
	completed := make([]schemas.TaskKind, 0, len(r.tasks))
	current := schemas.TaskNavigate
	if len(r.tasks) > 0 {
		current = r.tasks[0].Kind
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Recovered from panic during automation",
				zap.String("task", string(current)),
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())))
			report = nil
			err = &TaskError{Task: current, Completed: completed, Err: fmt.Errorf("%w: %v", ErrPanic, rec)}
		}
	}()

	bctx, err := r.browser.NewContext(ctx)
	if err != nil {
		return nil, &TaskError{Task: current, Completed: completed, Err: fmt.Errorf("failed to open browser context: %w", err)}
	}
	defer r.release(bctx)

	for i, task := range r.tasks {
		current = task.Kind
		if r.progress != nil {
			r.progress(i, task)
		}
		r.logger.Info("Starting automation task", zap.String("task", string(task.Kind)), zap.String("intent", task.Intent))

		if err := r.runTask(ctx, bctx, task, code); err != nil {
			r.logger.Warn("Automation task failed",
				zap.String("task", string(task.Kind)),
				zap.Int("completed", len(completed)),
				zap.Error(err))
			return nil, &TaskError{Task: task.Kind, Completed: completed, Err: err}
		}
		completed = append(completed, task.Kind)
	}

	report = &Report{Completed: completed, Duration: time.Since(start)}
	r.logger.Info("Automation run complete", zap.Duration("duration", report.Duration))
	return report, nil
}

func (r *Runner) runTask(ctx context.Context, bctx schemas.BrowserContext, task schemas.AutomationTask, code string) error {
	taskCtx := ctx
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	for _, action := range task.Actions {
		if err := taskCtx.Err(); err != nil {
			return err
		}
		if err := r.runAction(taskCtx, bctx, action, code); err != nil {
			if errors.Is(taskCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return fmt.Errorf("timed out after %s during %s: %w", task.Timeout, action.Type, err)
			}
			return fmt.Errorf("%s: %w", action.Type, err)
		}
	}
	return nil
}

func (r *Runner) runAction(ctx context.Context, bctx schemas.BrowserContext, action schemas.Action, code string) error {
	switch action.Type {
	case schemas.ActionNavigate:
		return bctx.Navigate(ctx, action.URL)
	case schemas.ActionWaitVisible:
		return bctx.WaitVisible(ctx, action.Selector)
	case schemas.ActionSetEditorText:
		return bctx.SetEditorText(ctx, action.Selector, code)
	case schemas.ActionCopyArtifact:
		if r.clipboard == nil {
			return fmt.Errorf("no clipboard available")
		}
		return r.clipboard.WriteAll(code)
	case schemas.ActionClick:
		return bctx.Click(ctx, action.Selector)
	case schemas.ActionSleep:
		return bctx.Sleep(ctx, action.Duration)
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

// release closes the context on a fresh deadline so a cancelled run still cleans up.
func (r *Runner) release(bctx schemas.BrowserContext) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Recovered from panic while closing browser context", zap.Any("panic", rec))
		}
	}()
	closeCtx, cancel := context.WithTimeout(context.Background(), r.closeTimeout)
	defer cancel()
	if err := bctx.Close(closeCtx); err != nil {
		r.logger.Warn("Failed to close browser context", zap.Error(err))
		return
	}
	r.logger.Debug("Browser context closed")
}
