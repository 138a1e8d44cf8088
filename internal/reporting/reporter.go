// internal/reporting/reporter.go
package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/automation"
	"github.com/xkilldash9x/vizgen-cli/internal/llmclient"
	"github.com/xkilldash9x/vizgen-cli/internal/pipeline"
)

// Kind selects the banner style.
type Kind int

const (
	KindSuccess Kind = iota
	KindInfo
	KindWarning
	KindError
)

func (k Kind) label() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

func (k Kind) icon() string {
	switch k {
	case KindSuccess:
		return "✓"
	case KindWarning:
		return "!"
	case KindError:
		return "✗"
	default:
		return "i"
	}
}

// DefaultReasoningPreview is the number of trace lines shown while collapsed.
const DefaultReasoningPreview = 6

const (
	successColor = "#10B981"
	infoColor    = "#3B82F6"
	warningColor = "#F59E0B"
	errorColor   = "#EF4444"
	dimColor     = "#6B7280"
	accentColor  = "#7C3AED"
)

type styles struct {
	banner map[Kind]lipgloss.Style
	title  lipgloss.Style
	code   lipgloss.Style
	dim    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	banner := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
	}
	return styles{
		banner: map[Kind]lipgloss.Style{
			KindSuccess: banner(successColor),
			KindInfo:    banner(infoColor),
			KindWarning: banner(warningColor),
			KindError:   banner(errorColor),
		},
		title: r.NewStyle().Foreground(lipgloss.Color(accentColor)).Bold(true),
		code: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(dimColor)).
			Padding(0, 1),
		dim: r.NewStyle().Foreground(lipgloss.Color(dimColor)),
	}
}

// Reporter renders pipeline results for a terminal.
type Reporter struct {
	w                io.Writer
	color            bool
	styles           styles
	reasoningPreview int
}

// New creates a reporter that styles its output only when w is a terminal
// and NO_COLOR is unset.
func New(w io.Writer) *Reporter {
	return newReporter(w, colorEnabled(w))
}

// NewPlain creates a reporter that never emits escape sequences.
func NewPlain(w io.Writer) *Reporter {
	return newReporter(w, false)
}

func newReporter(w io.Writer, color bool) *Reporter {
	return &Reporter{
		w:                w,
		color:            color,
		styles:           newStyles(lipgloss.NewRenderer(w)),
		reasoningPreview: DefaultReasoningPreview,
	}
}

func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Banner prints a one line status message.
func (r *Reporter) Banner(kind Kind, msg string) {
	if !r.color {
		fmt.Fprintf(r.w, "[%s] %s\n", kind.label(), msg)
		return
	}
	fmt.Fprintln(r.w, r.styles.banner[kind].Render(kind.icon()+" "+msg))
}

func (r *Reporter) Success(msg string) { r.Banner(KindSuccess, msg) }
func (r *Reporter) Info(msg string)    { r.Banner(KindInfo, msg) }
func (r *Reporter) Warning(msg string) { r.Banner(KindWarning, msg) }
func (r *Reporter) Error(msg string)   { r.Banner(KindError, msg) }

const (
	authHint  = "Check the key with the keys command."
	quotaHint = "The provider is rate limiting this key or its balance is exhausted."
)

// Failure prints err with the banner its severity calls for. Provider auth
// and quota rejections get a hint on what to do next.
func (r *Reporter) Failure(err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	var autoErr *pipeline.AutomationError
	if errors.As(err, &autoErr) {
		msg = autoErr.UserMessage()
	}
	switch {
	case llmclient.IsAuthError(err):
		msg += ". " + authHint
	case llmclient.IsQuotaError(err):
		msg += ". " + quotaHint
	}
	if pipeline.SeverityOf(err) == pipeline.SeverityWarning {
		r.Warning(msg)
		return
	}
	r.Error(msg)
}

// Code prints the program in full.
func (r *Reporter) Code(code string) {
	r.section("Generated code")
	code = strings.TrimRight(code, "\n")
	if !r.color {
		fmt.Fprintln(r.w, code)
		return
	}
	fmt.Fprintln(r.w, r.styles.code.Render(code))
}

// Reasoning prints the trace. Collapsed output shows only the first lines.
func (r *Reporter) Reasoning(reasoning string, expanded bool) {
	r.section("Reasoning")
	lines := strings.Split(strings.TrimRight(reasoning, "\n"), "\n")
	if expanded || len(lines) <= r.reasoningPreview {
		fmt.Fprintln(r.w, strings.Join(lines, "\n"))
		return
	}
	fmt.Fprintln(r.w, strings.Join(lines[:r.reasoningPreview], "\n"))
	r.dim(fmt.Sprintf("... %d more lines (use 'show reasoning' to expand)", len(lines)-r.reasoningPreview))
}

// GenerationSummary prints the result of a code generation.
func (r *Reporter) GenerationSummary(outcome *pipeline.GenerationOutcome) {
	r.Reasoning(outcome.Artifact.Reasoning, false)
	r.Code(outcome.Artifact.Code)
	if outcome.FromCompletion {
		r.Warning("The reasoning model returned no separate trace; its answer was used instead.")
	}
	if outcome.Diagnostic != nil {
		r.Warning("Possible syntax error at " + outcome.Diagnostic.String())
	}
	r.Success(fmt.Sprintf("Code generated in %s. Run 'visualize' to see it in the browser.",
		outcome.Duration.Round(100*time.Millisecond)))
}

// TaskStarted prints automation progress.
func (r *Reporter) TaskStarted(index int, task schemas.AutomationTask) {
	r.Info(fmt.Sprintf("[%d/%d] %s: %s", index+1, len(automation.TaskOrder), task.Kind, task.Intent))
}

// Status describes the session for the status command.
type Status struct {
	SessionID       string
	ReasoningKey    string
	ExtractionKey   string
	HasArtifact     bool
	Generation      int
	ArtifactQuery   string
	ReasoningModel  string
	ExtractionModel string
}

func (r *Reporter) Status(s Status) {
	r.section("Session " + s.SessionID)
	rows := [][2]string{
		{"reasoning key", s.ReasoningKey},
		{"extraction key", s.ExtractionKey},
		{"reasoning model", s.ReasoningModel},
		{"extraction model", s.ExtractionModel},
	}
	if s.HasArtifact {
		rows = append(rows, [2]string{"artifact", fmt.Sprintf("generation %d for %q", s.Generation, s.ArtifactQuery)})
	} else {
		rows = append(rows, [2]string{"artifact", "none"})
	}
	for _, row := range rows {
		fmt.Fprintf(r.w, "  %-17s %s\n", row[0]+":", row[1])
	}
}

func (r *Reporter) section(title string) {
	if !r.color {
		fmt.Fprintf(r.w, "== %s ==\n", title)
		return
	}
	fmt.Fprintln(r.w, r.styles.title.Render(title))
}

func (r *Reporter) dim(msg string) {
	if !r.color {
		fmt.Fprintln(r.w, msg)
		return
	}
	fmt.Fprintln(r.w, r.styles.dim.Render(msg))
}
