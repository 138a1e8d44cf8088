// internal/automation/tasks.go
package automation

import (
	"fmt"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

// TaskOrder is the fixed order of a visualization run.
var TaskOrder = []schemas.TaskKind{
	schemas.TaskNavigate,
	schemas.TaskInject,
	schemas.TaskExecute,
	schemas.TaskObserve,
}

// BuildTaskSpec turns the automation settings into the ordered task list.
func BuildTaskSpec(cfg config.AutomationConfig) ([]schemas.AutomationTask, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid automation config: %w", err)
	}

	navigate := schemas.AutomationTask{
		Kind:    schemas.TaskNavigate,
		Intent:  fmt.Sprintf("Open %s and wait for the code editor", cfg.TargetURL),
		Timeout: cfg.NavigationTimeout,
		Actions: []schemas.Action{
			{Type: schemas.ActionNavigate, URL: cfg.TargetURL},
			{Type: schemas.ActionWaitVisible, Selector: cfg.EditorSelector},
		},
	}

	var inject schemas.AutomationTask
	switch cfg.InjectMode {
	case config.InjectWait:
		// The dwell itself bounds the task.
		inject = schemas.AutomationTask{
			Kind:   schemas.TaskInject,
			Intent: fmt.Sprintf("Code copied to clipboard; paste it into the editor within %s", cfg.InjectTimeout),
			Actions: []schemas.Action{
				{Type: schemas.ActionCopyArtifact},
				{Type: schemas.ActionSleep, Duration: cfg.InjectTimeout},
			},
		}
	default:
		inject = schemas.AutomationTask{
			Kind:    schemas.TaskInject,
			Intent:  "Replace the editor contents with the generated code",
			Timeout: cfg.InjectTimeout,
			Actions: []schemas.Action{
				{Type: schemas.ActionWaitVisible, Selector: cfg.EditorSelector},
				{Type: schemas.ActionSetEditorText, Selector: cfg.EditorSelector},
			},
		}
	}

	execute := schemas.AutomationTask{
		Kind:    schemas.TaskExecute,
		Intent:  "Press the run control",
		Timeout: cfg.ExecuteTimeout,
		Actions: []schemas.Action{
			{Type: schemas.ActionWaitVisible, Selector: cfg.RunSelector},
			{Type: schemas.ActionClick, Selector: cfg.RunSelector},
		},
	}

	observe := schemas.AutomationTask{
		Kind:   schemas.TaskObserve,
		Intent: fmt.Sprintf("Let the program run for %s", cfg.ObserveDwell),
		Actions: []schemas.Action{
			{Type: schemas.ActionSleep, Duration: cfg.ObserveDwell},
		},
	}

	return []schemas.AutomationTask{navigate, inject, execute, observe}, nil
}
