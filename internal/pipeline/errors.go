// internal/pipeline/errors.go
package pipeline

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/store"
)

var (
	// ErrEmptyQuery is returned when generation is triggered without a description.
	ErrEmptyQuery = errors.New("please enter a description of the visualization")
	// ErrOperationInProgress is returned when a trigger arrives while another
	// operation of the same controller is still running.
	ErrOperationInProgress = errors.New("another operation is still running")
	// ErrSessionClosed is returned for operations on a torn down session.
	ErrSessionClosed = errors.New("session is closed")
	// ErrEmptyCode is returned when an imported program is blank.
	ErrEmptyCode = errors.New("code is empty")
)

// ManualRunHint is appended to automation failures.
const ManualRunHint = "You can still copy the code above and run it manually."

// Stage names the upstream service call that failed.
type Stage string

const (
	StageReasoning  Stage = "reasoning"
	StageExtraction Stage = "extraction"
)

// UpstreamError is a failure of one of the two language model calls.
type UpstreamError struct {
	Stage Stage
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// AutomationError is a failure of the browser run. The generated code is unaffected.
type AutomationError struct {
	Task      schemas.TaskKind
	Completed []schemas.TaskKind
	Err       error
}

func (e *AutomationError) Error() string {
	if e.Task == "" {
		return fmt.Sprintf("visualization failed: %v", e.Err)
	}
	return fmt.Sprintf("visualization failed during %s: %v", e.Task, e.Err)
}

func (e *AutomationError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown in the error banner.
func (e *AutomationError) UserMessage() string {
	return e.Error() + ". " + ManualRunHint
}

// Severity classifies an error for display.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "none"
	}
}

// SeverityOf reports whether err is a sequencing warning or a failure.
// Missing credentials are failures.
func SeverityOf(err error) Severity {
	switch {
	case err == nil:
		return SeverityNone
	case errors.Is(err, ErrEmptyQuery),
		errors.Is(err, ErrEmptyCode),
		errors.Is(err, ErrOperationInProgress),
		errors.Is(err, store.ErrNoArtifact):
		return SeverityWarning
	default:
		return SeverityError
	}
}
