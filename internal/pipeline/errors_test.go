package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/session"
	"github.com/xkilldash9x/vizgen-cli/internal/store"
)

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil", nil, SeverityNone},
		{"empty query", ErrEmptyQuery, SeverityWarning},
		{"wrapped credentials", fmt.Errorf("%w: provide the reasoning service key(s)", session.ErrMissingCredentials), SeverityError},
		{"bare credentials", session.Credentials{}.Validate(), SeverityError},
		{"no artifact", store.ErrNoArtifact, SeverityWarning},
		{"busy", ErrOperationInProgress, SeverityWarning},
		{"upstream", &UpstreamError{Stage: StageExtraction, Err: errors.New("boom")}, SeverityError},
		{"automation", &AutomationError{Task: schemas.TaskExecute, Err: errors.New("boom")}, SeverityError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SeverityOf(tc.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	up := &UpstreamError{Stage: StageReasoning, Err: errors.New("status 429")}
	assert.Equal(t, "reasoning service failed: status 429", up.Error())

	auto := &AutomationError{Task: schemas.TaskInject, Err: errors.New("editor not found")}
	assert.Equal(t, "visualization failed during inject: editor not found. "+ManualRunHint, auto.UserMessage())

	bare := &AutomationError{Err: errors.New("boom")}
	assert.Equal(t, "visualization failed: boom", bare.Error())

	assert.Equal(t, "warning", SeverityWarning.String())
}
