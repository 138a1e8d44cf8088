// internal/llmclient/openai_client.go
package llmclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
// DeepSeek's reasoner uses the same wire format and adds reasoning_content
// to the message, which is surfaced as GenerationResult.Reasoning.
type OpenAIClient struct {
	provider   config.LLMProvider
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	config     config.LLMModelConfig
}

// -- Chat Completions Request/Response Structures --

type chatMessage struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float32      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens            int `json:"prompt_tokens"`
		CompletionTokens        int `json:"completion_tokens"`
		TotalTokens             int `json:"total_tokens"`
		CompletionTokensDetails struct {
			ReasoningTokens int `json:"reasoning_tokens"`
		} `json:"completion_tokens_details"`
	} `json:"usage"`
}

type chatErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIClient initializes a client for the deepseek or openai provider.
func NewOpenAIClient(cfg config.LLMModelConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Provider != config.ProviderDeepSeek && cfg.Provider != config.ProviderOpenAI {
		return nil, fmt.Errorf("provider %q is not OpenAI-compatible", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s model name is required", cfg.Provider)
	}

	base := cfg.Endpoint
	if base == "" {
		switch cfg.Provider {
		case config.ProviderDeepSeek:
			base = "https://api.deepseek.com"
		default:
			base = "https://api.openai.com/v1"
		}
	}

	return &OpenAIClient{
		provider:   cfg.Provider,
		endpoint:   strings.TrimRight(base, "/") + "/chat/completions",
		config:     cfg,
		httpClient: newHTTPClient(cfg, logger),
		limiter:    newLimiter(cfg.RequestsPerMinute),
		logger:     logger.Named("llm_client." + string(cfg.Provider)),
	}, nil
}

// Generate performs one chat completion call. There is no retry.
func (c *OpenAIClient) Generate(ctx context.Context, req schemas.GenerationRequest) (*schemas.GenerationResult, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, fmt.Errorf("%s API key is required", c.provider)
	}

	body, err := json.Marshal(c.buildRequestPayload(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleAPIError(resp.StatusCode, respBody)
	}

	var payload chatResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response payload: %w", err)
	}
	if len(payload.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices: %w", c.provider, ErrEmptyResponse)
	}

	choice := payload.Choices[0]
	result := &schemas.GenerationResult{
		Reasoning:    choice.Message.ReasoningContent,
		Completion:   choice.Message.Content,
		Model:        payload.Model,
		FinishReason: choice.FinishReason,
		Usage: schemas.TokenUsage{
			PromptTokens:     payload.Usage.PromptTokens,
			CompletionTokens: payload.Usage.CompletionTokens,
			ReasoningTokens:  payload.Usage.CompletionTokensDetails.ReasoningTokens,
			TotalTokens:      payload.Usage.TotalTokens,
		},
	}
	if result.Model == "" {
		result.Model = c.config.Model
	}

	c.logger.Info("LLM generation complete",
		zap.String("model", result.Model),
		zap.Duration("duration", duration),
		zap.String("finish_reason", result.FinishReason),
		zap.Int("prompt_tokens", result.Usage.PromptTokens),
		zap.Int("completion_tokens", result.Usage.CompletionTokens),
		zap.Int("reasoning_tokens", result.Usage.ReasoningTokens),
		zap.Int("reasoning_chars", len(result.Reasoning)),
	)
	return result, nil
}

func (c *OpenAIClient) buildRequestPayload(req schemas.GenerationRequest) chatRequest {
	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	payload := chatRequest{
		Model:     c.config.Model,
		Messages:  messages,
		MaxTokens: req.CompletionCap,
	}
	if payload.MaxTokens == 0 {
		payload.MaxTokens = c.config.MaxTokens
	}
	if c.config.Temperature > 0 {
		temp := c.config.Temperature
		payload.Temperature = &temp
	}
	return payload
}

func (c *OpenAIClient) handleAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{Provider: string(c.provider), StatusCode: statusCode}

	var parsed chatErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		apiErr.Type = parsed.Error.Type
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	c.logger.Error("Provider returned error status",
		zap.Int("status", statusCode),
		zap.String("type", apiErr.Type),
		zap.String("message", apiErr.Message),
	)
	return apiErr
}

// Close drops idle keep-alive connections.
func (c *OpenAIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
