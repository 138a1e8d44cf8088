// internal/llmclient/gemini_client.go
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

// GeminiClient implements schemas.LLMClient on top of the genai SDK. When a
// thinking budget is configured, thought parts are returned as the reasoning
// trace and the remaining parts as the completion.
type GeminiClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	config     config.LLMModelConfig
}

// NewGeminiClient initializes the client. The API key is supplied per request.
func NewGeminiClient(cfg config.LLMModelConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model name is required")
	}
	return &GeminiClient{
		httpClient: newHTTPClient(cfg, logger),
		limiter:    newLimiter(cfg.RequestsPerMinute),
		config:     cfg,
		logger:     logger.Named("llm_client.gemini"),
	}, nil
}

// Generate performs one generateContent call. There is no retry.
func (c *GeminiClient) Generate(ctx context.Context, req schemas.GenerationRequest) (*schemas.GenerationResult, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     req.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.config.Endpoint != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.config.Endpoint}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	startTime := time.Now()
	resp, err := client.Models.GenerateContent(ctx, c.config.Model, genai.Text(req.UserPrompt), c.buildGenerateConfig(req))
	duration := time.Since(startTime)
	if err != nil {
		return nil, c.translateError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates: %w", ErrEmptyResponse)
	}
	candidate := resp.Candidates[0]

	var reasoning, completion strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		if part.Thought {
			reasoning.WriteString(part.Text)
		} else {
			completion.WriteString(part.Text)
		}
	}

	result := &schemas.GenerationResult{
		Reasoning:    reasoning.String(),
		Completion:   completion.String(),
		Model:        c.config.Model,
		FinishReason: string(candidate.FinishReason),
	}
	if resp.ModelVersion != "" {
		result.Model = resp.ModelVersion
	}
	if usage := resp.UsageMetadata; usage != nil {
		result.Usage = schemas.TokenUsage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			ReasoningTokens:  int(usage.ThoughtsTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}

	c.logger.Info("LLM generation complete",
		zap.String("model", result.Model),
		zap.Duration("duration", duration),
		zap.String("finish_reason", result.FinishReason),
		zap.Int("prompt_tokens", result.Usage.PromptTokens),
		zap.Int("completion_tokens", result.Usage.CompletionTokens),
		zap.Int("reasoning_tokens", result.Usage.ReasoningTokens),
	)
	return result, nil
}

func (c *GeminiClient) buildGenerateConfig(req schemas.GenerationRequest) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if c.config.Temperature > 0 {
		temp := c.config.Temperature
		gc.Temperature = &temp
	}

	completionCap := req.CompletionCap
	if completionCap == 0 {
		completionCap = c.config.MaxTokens
	}

	if c.config.ThinkingBudget > 0 {
		budget := int32(c.config.ThinkingBudget)
		gc.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true, ThinkingBudget: &budget}
		// Thought tokens count against the output limit, so the cap applies on top of the budget.
		if completionCap > 0 {
			gc.MaxOutputTokens = budget + int32(completionCap)
		}
	} else if completionCap > 0 {
		gc.MaxOutputTokens = int32(completionCap)
	}
	return gc
}

func (c *GeminiClient) translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		c.logger.Error("Provider returned error status",
			zap.Int("status", apiErr.Code),
			zap.String("type", apiErr.Status),
			zap.String("message", apiErr.Message),
		)
		return &APIError{Provider: string(config.ProviderGemini), StatusCode: apiErr.Code, Type: apiErr.Status, Message: apiErr.Message}
	}
	return fmt.Errorf("gemini request failed: %w", err)
}

// Close drops idle keep-alive connections.
func (c *GeminiClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
