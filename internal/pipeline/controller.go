// internal/pipeline/controller.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/automation"
	"github.com/xkilldash9x/vizgen-cli/internal/codegen"
	"github.com/xkilldash9x/vizgen-cli/internal/session"
	"github.com/xkilldash9x/vizgen-cli/internal/store"
	"github.com/xkilldash9x/vizgen-cli/internal/validation"
)

// Reasoner produces the reasoning trace for a query.
type Reasoner interface {
	Generate(ctx context.Context, systemPrompt, query, apiKey string) (codegen.ReasoningResult, error)
}

// Extractor isolates code from a reasoning trace.
type Extractor interface {
	Extract(ctx context.Context, reasoning, apiKey string) (string, error)
}

// CodeValidator checks extracted code before it is stored.
type CodeValidator interface {
	Check(ctx context.Context, code string) (*validation.Diagnostic, error)
}

// Automator runs code in the browser.
type Automator interface {
	Run(ctx context.Context, code string) (*automation.Report, error)
}

// Dependencies wires a Controller. Validator may be nil.
type Dependencies struct {
	Reasoner     Reasoner
	Extractor    Extractor
	Validator    CodeValidator
	Automator    Automator
	SystemPrompt string
}

// GenerationOutcome is the result of a successful GenerateCode.
type GenerationOutcome struct {
	Artifact       store.Artifact
	Diagnostic     *validation.Diagnostic
	ReasoningModel string
	ReasoningUsage schemas.TokenUsage
	// FromCompletion is set when the provider had no separate reasoning field.
	FromCompletion bool
	Duration       time.Duration
}

// VisualizationOutcome is the result of a successful GenerateVisualization.
type VisualizationOutcome struct {
	Artifact  store.Artifact
	Completed []schemas.TaskKind
	Duration  time.Duration
}

// Controller sequences the two user-triggered operations. Only one operation
// runs at a time.
type Controller struct {
	reasoner     Reasoner
	extractor    Extractor
	validator    CodeValidator
	automator    Automator
	systemPrompt string
	sem          *semaphore.Weighted
	logger       *zap.Logger
}

// NewController checks the dependencies and returns a ready controller.
func NewController(deps Dependencies, logger *zap.Logger) (*Controller, error) {
	if deps.Reasoner == nil || deps.Extractor == nil || deps.Automator == nil {
		return nil, errors.New("reasoner, extractor and automator are required")
	}
	if strings.TrimSpace(deps.SystemPrompt) == "" {
		return nil, errors.New("system prompt is required")
	}
	return &Controller{
		reasoner:     deps.Reasoner,
		extractor:    deps.Extractor,
		validator:    deps.Validator,
		automator:    deps.Automator,
		systemPrompt: deps.SystemPrompt,
		sem:          semaphore.NewWeighted(1),
		logger:       logger.Named("pipeline"),
	}, nil
}

func (c *Controller) acquire() error {
	if !c.sem.TryAcquire(1) {
		return ErrOperationInProgress
	}
	return nil
}

func (c *Controller) release() {
	c.sem.Release(1)
}

// GenerateCode turns query into a stored program. Input and credentials are
// checked before any outbound call; the artifact is only replaced on success.
func (c *Controller) GenerateCode(ctx context.Context, sess *session.Session, query string) (*GenerationOutcome, error) {
	if sess.Closed() {
		return nil, ErrSessionClosed
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	creds := sess.Credentials.Get()
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()

	logger := sess.Logger().Named("generate")
	start := time.Now()
	logger.Info("Generating code", zap.Int("query_chars", len(query)))

	reasoning, err := c.reasoner.Generate(ctx, c.systemPrompt, query, creds.ReasoningKey)
	if err != nil {
		logger.Error("Reasoning stage failed", zap.Error(err))
		return nil, &UpstreamError{Stage: StageReasoning, Err: err}
	}

	code, err := c.extractor.Extract(ctx, reasoning.Reasoning, creds.ExtractionKey)
	if err != nil {
		logger.Error("Extraction stage failed", zap.Error(err))
		return nil, &UpstreamError{Stage: StageExtraction, Err: err}
	}

	var diag *validation.Diagnostic
	if c.validator != nil {
		diag, err = c.validator.Check(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("generated code rejected: %w", err)
		}
	}

	artifact := sess.Artifacts.Save(store.Artifact{
		Code:      code,
		Query:     query,
		Reasoning: reasoning.Reasoning,
	})

	outcome := &GenerationOutcome{
		Artifact:       artifact,
		Diagnostic:     diag,
		ReasoningModel: reasoning.Model,
		ReasoningUsage: reasoning.Usage,
		FromCompletion: reasoning.FromCompletion,
		Duration:       time.Since(start),
	}
	logger.Info("Code generated",
		zap.Stringer("artifact_id", artifact.ID),
		zap.Int("code_bytes", len(code)),
		zap.Int("reasoning_bytes", len(reasoning.Reasoning)),
		zap.Bool("syntax_warning", diag != nil),
		zap.Duration("duration", outcome.Duration))
	return outcome, nil
}

// GenerateVisualization runs the stored program in the browser. A failure
// leaves the artifact untouched.
func (c *Controller) GenerateVisualization(ctx context.Context, sess *session.Session) (*VisualizationOutcome, error) {
	if sess.Closed() {
		return nil, ErrSessionClosed
	}
	artifact, err := sess.Artifacts.Load()
	if err != nil {
		return nil, err
	}

	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()

	logger := sess.Logger().Named("visualize")
	logger.Info("Starting visualization", zap.Stringer("artifact_id", artifact.ID))

	report, err := c.automator.Run(ctx, artifact.Code)
	if err != nil {
		autoErr := &AutomationError{Err: err}
		var taskErr *automation.TaskError
		if errors.As(err, &taskErr) {
			autoErr.Task = taskErr.Task
			autoErr.Completed = taskErr.Completed
			autoErr.Err = taskErr.Err
		}
		logger.Error("Visualization failed",
			zap.String("task", string(autoErr.Task)),
			zap.Int("completed", len(autoErr.Completed)),
			zap.Error(autoErr.Err))
		return nil, autoErr
	}

	logger.Info("Visualization complete", zap.Duration("duration", report.Duration))
	return &VisualizationOutcome{
		Artifact:  artifact,
		Completed: report.Completed,
		Duration:  report.Duration,
	}, nil
}

// ImportCode stores user supplied code as the session artifact so it can be
// visualized without a generation step.
func (c *Controller) ImportCode(ctx context.Context, sess *session.Session, code, origin string) (store.Artifact, *validation.Diagnostic, error) {
	if sess.Closed() {
		return store.Artifact{}, nil, ErrSessionClosed
	}
	if strings.TrimSpace(code) == "" {
		return store.Artifact{}, nil, ErrEmptyCode
	}
	if err := c.acquire(); err != nil {
		return store.Artifact{}, nil, err
	}
	defer c.release()

	var diag *validation.Diagnostic
	if c.validator != nil {
		var err error
		if diag, err = c.validator.Check(ctx, code); err != nil {
			return store.Artifact{}, diag, fmt.Errorf("imported code rejected: %w", err)
		}
	}
	artifact := sess.Artifacts.Save(store.Artifact{Code: code, Query: origin})
	sess.Logger().Info("Code imported", zap.String("origin", origin), zap.Stringer("artifact_id", artifact.ID))
	return artifact, diag, nil
}
