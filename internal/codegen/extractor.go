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

// ErrEmptyExtraction means the extraction model answered with nothing.
var ErrEmptyExtraction = errors.New("extraction returned no code")

// Extractor isolates program text from a reasoning trace.
type Extractor struct {
	client schemas.LLMClient
	cfg    config.LLMModelConfig
	prefix string
	logger *zap.Logger
}

func NewExtractor(client schemas.LLMClient, cfg config.LLMModelConfig, prefix string, logger *zap.Logger) *Extractor {
	return &Extractor{
		client: client,
		cfg:    cfg,
		prefix: prefix,
		logger: logger.Named("extractor"),
	}
}

// BuildPrompt joins the instruction prefix and the trace.
func (e *Extractor) BuildPrompt(reasoning string) string {
	return e.prefix + "\n" + reasoning
}

// Extract returns the completion of the extraction model verbatim.
// Fences and surrounding prose are not stripped.
func (e *Extractor) Extract(ctx context.Context, reasoning, apiKey string) (string, error) {
	req := schemas.GenerationRequest{
		UserPrompt:    e.BuildPrompt(reasoning),
		APIKey:        apiKey,
		CompletionCap: e.cfg.MaxTokens,
	}

	res, err := e.client.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	if strings.TrimSpace(res.Completion) == "" {
		return "", fmt.Errorf("%s: %w", res.Model, ErrEmptyExtraction)
	}

	e.logger.Debug("Extracted code", zap.String("model", res.Model), zap.Int("code_chars", len(res.Completion)))
	return res.Completion, nil
}
