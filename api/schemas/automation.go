package schemas

import (
	"context"
	"time"
)

// TaskKind identifies one of the four automation tasks of a visualization run.
type TaskKind string

const (
	TaskNavigate TaskKind = "navigate"
	TaskInject   TaskKind = "inject"
	TaskExecute  TaskKind = "execute"
	TaskObserve  TaskKind = "observe"
)

// ActionType is a single deterministic browser primitive.
type ActionType string

const (
	ActionNavigate      ActionType = "navigate"
	ActionWaitVisible   ActionType = "wait_visible"
	ActionSetEditorText ActionType = "set_editor_text"
	ActionCopyArtifact  ActionType = "copy_artifact"
	ActionClick         ActionType = "click"
	ActionSleep         ActionType = "sleep"
)

// Action represents a single selector-based browser automation step.
type Action struct {
	Type     ActionType    `json:"action"`
	URL      string        `json:"url,omitempty"`
	Selector string        `json:"selector,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// AutomationTask is one discrete step of the visualization sequence.
type AutomationTask struct {
	Kind TaskKind `json:"kind"`
	// Intent is the human-readable description shown in progress output.
	Intent string `json:"intent"`
	// Timeout bounds the whole task. Zero means bounded only by the parent context.
	Timeout time.Duration `json:"timeout,omitempty"`
	Actions []Action      `json:"actions"`
}

// BrowserContext is an exclusively owned, isolated browser context (one tab and
// its profile). Every method blocks until the primitive completes.
type BrowserContext interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	// SetEditorText replaces the content of the code editing surface matched by selector.
	SetEditorText(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	Sleep(ctx context.Context, d time.Duration) error
	// Close releases the context. It must be safe to call more than once.
	Close(ctx context.Context) error
}

// Browser creates browser contexts.
type Browser interface {
	NewContext(ctx context.Context) (BrowserContext, error)
}

// Clipboard places text on the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}
