// File: cmd/shell_test.go
package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/vizgen-cli/internal/mocks"
	"github.com/xkilldash9x/vizgen-cli/internal/service"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "status", want: []string{"status"}},
		{line: "generate  a   spinning cube", want: []string{"generate", "a", "spinning", "cube"}},
		{line: `generate "a spinning cube"`, want: []string{"generate", "a spinning cube"}},
		{line: `visualize --code-file '~/my games/snake.py'`, want: []string{"visualize", "--code-file", "~/my games/snake.py"}},
		{line: `generate ""`, want: []string{"generate", ""}},
		{line: `generate "unterminated`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			got, err := splitArgs(tc.line)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func newShellApp(t *testing.T, script string) (*App, *bytes.Buffer) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VIZGEN_LOGGER_LEVEL", "fatal")

	out := new(bytes.Buffer)
	app := NewApp(strings.NewReader(script), out)
	app.ComponentOptions = service.Options{Browser: new(mocks.MockBrowser), Clipboard: new(mocks.MockClipboard)}
	t.Cleanup(app.Close)
	return app, out
}

func TestShell_RunsLinesUntilExit(t *testing.T) {
	app, out := newShellApp(t, "status\n\nshow code\nexit\nstatus\n")

	require.NoError(t, Shell(context.Background(), app))

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "== Session "), "lines after exit must not run")
	assert.Contains(t, text, "[warning] no code has been generated yet")
	assert.Contains(t, text, "Session ended.")
}

func TestShell_KeysReadFromSameInput(t *testing.T) {
	app, out := newShellApp(t, "keys\nsk-reasoning-0001\nsk-extraction-0002\nstatus\n")

	require.NoError(t, Shell(context.Background(), app))

	text := out.String()
	assert.Contains(t, text, "[success] Keys stored for this session.")
	assert.Contains(t, text, "sk-…0002")
	assert.NotContains(t, text, "sk-extraction-0002")
}

func TestShell_BadInputKeepsSessionAlive(t *testing.T) {
	app, out := newShellApp(t, "teleport\ngenerate \"oops\nstatus\nquit\n")

	require.NoError(t, Shell(context.Background(), app))

	text := out.String()
	assert.Contains(t, text, `[error] unknown command "teleport"`)
	assert.Contains(t, text, "[warning] unterminated \" quote")
	assert.Contains(t, text, "== Session ")
}
