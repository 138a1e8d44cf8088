// internal/codegen/reasoner.go
package codegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

// ErrNoReasoningTrace is returned when the reasoning provider answered without
// a separate reasoning field and falling back to the completion is disabled.
var ErrNoReasoningTrace = errors.New("provider returned no reasoning trace")

// ReasoningResult is what the reasoning stage hands to extraction.
type ReasoningResult struct {
	// Reasoning is the trace that carries the embedded code.
	Reasoning string
	// Completion is the directly returned answer. It is usually a token or two
	// because the completion cap is kept tiny.
	Completion string
	Model      string
	Usage      schemas.TokenUsage
	// FromCompletion is set when Reasoning was filled from the completion field.
	FromCompletion bool
}

// Reasoner drives the reasoning model.
type Reasoner struct {
	client schemas.LLMClient
	cfg    config.LLMModelConfig
	logger *zap.Logger
}

// NewReasoner wraps client with the reasoning role settings.
func NewReasoner(client schemas.LLMClient, cfg config.LLMModelConfig, logger *zap.Logger) *Reasoner {
	return &Reasoner{
		client: client,
		cfg:    cfg,
		logger: logger.Named("reasoner"),
	}
}

// Generate sends one request and returns the reasoning trace. The completion
// cap from configuration is applied to the direct answer only.
func (r *Reasoner) Generate(ctx context.Context, systemPrompt, query, apiKey string) (ReasoningResult, error) {
	req := schemas.GenerationRequest{
		SystemPrompt:  systemPrompt,
		UserPrompt:    query,
		APIKey:        apiKey,
		CompletionCap: r.cfg.MaxTokens,
	}

	r.logger.Debug("Requesting reasoning trace",
		zap.String("model", r.cfg.Model),
		zap.Int("completion_cap", req.CompletionCap),
		zap.Int("query_chars", len(query)))

	res, err := r.client.Generate(ctx, req)
	if err != nil {
		return ReasoningResult{}, fmt.Errorf("reasoning request failed: %w", err)
	}

	out := ReasoningResult{
		Reasoning:  res.Reasoning,
		Completion: res.Completion,
		Model:      res.Model,
		Usage:      res.Usage,
	}

	if strings.TrimSpace(out.Reasoning) == "" {
		if !r.cfg.FallbackToContent || strings.TrimSpace(out.Completion) == "" {
			return ReasoningResult{}, fmt.Errorf("%s: %w", res.Model, ErrNoReasoningTrace)
		}
		r.logger.Warn("No reasoning field in response, using completion instead", zap.String("model", res.Model))
		out.Reasoning = out.Completion
		out.FromCompletion = true
	}
	return out, nil
}
