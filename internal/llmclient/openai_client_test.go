package llmclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

// setupOpenAIClient rigs up a client pointed at a mock HTTP server.
func setupOpenAIClient(t *testing.T, cfg config.LLMModelConfig, handler http.HandlerFunc) (*OpenAIClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.Endpoint = server.URL
	logger, _ := setupTestLogger(t)
	client, err := NewOpenAIClient(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, server
}

// -- Initialization --

func TestNewOpenAIClient_DefaultEndpoints(t *testing.T) {
	logger, _ := setupTestLogger(t)

	ds, err := NewOpenAIClient(config.LLMModelConfig{Provider: config.ProviderDeepSeek, Model: "deepseek-reasoner"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "https://api.deepseek.com/chat/completions", ds.endpoint)

	oa, err := NewOpenAIClient(config.LLMModelConfig{Provider: config.ProviderOpenAI, Model: "gpt-4o", Endpoint: "https://proxy.local/v1/"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.local/v1/chat/completions", oa.endpoint)
}

func TestNewOpenAIClient_Rejects(t *testing.T) {
	logger, _ := setupTestLogger(t)

	_, err := NewOpenAIClient(config.LLMModelConfig{Provider: config.ProviderGemini, Model: "x"}, logger)
	assert.ErrorContains(t, err, "not OpenAI-compatible")

	_, err = NewOpenAIClient(config.LLMModelConfig{Provider: config.ProviderOpenAI}, logger)
	assert.ErrorContains(t, err, "model name is required")
}

// -- Request Payload --

func TestOpenAIClient_BuildRequestPayload(t *testing.T) {
	logger, _ := setupTestLogger(t)
	cfg := getDeepSeekConfig("http://unused")
	cfg.MaxTokens = 1
	client, err := NewOpenAIClient(cfg, logger)
	require.NoError(t, err)

	payload := client.buildRequestPayload(createReasoningRequest())
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "system", payload.Messages[0].Role)
	assert.Equal(t, "You are a Pygame expert.", payload.Messages[0].Content)
	assert.Equal(t, "user", payload.Messages[1].Role)
	assert.Equal(t, "bouncing ball simulation", payload.Messages[1].Content)
	assert.Equal(t, 1, payload.MaxTokens)
	assert.Equal(t, "deepseek-reasoner", payload.Model)
	assert.Nil(t, payload.Temperature)
	assert.False(t, payload.Stream)

	// Without a system prompt only the user message is sent, and the config cap applies.
	cfg.MaxTokens = 4096
	cfg.Temperature = 0.2
	client, err = NewOpenAIClient(cfg, logger)
	require.NoError(t, err)
	payload = client.buildRequestPayload(schemas.GenerationRequest{UserPrompt: "extract"})
	require.Len(t, payload.Messages, 1)
	assert.Equal(t, 4096, payload.MaxTokens)
	require.NotNil(t, payload.Temperature)
	assert.InDelta(t, 0.2, *payload.Temperature, 1e-6)
}

// -- Generate --

func TestOpenAIClient_Generate_ReturnsReasoningSeparately(t *testing.T) {
	client, _ := setupOpenAIClient(t, getDeepSeekConfig(""), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test-reasoning", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req chatRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, 1, req.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "deepseek-reasoner",
			"choices": [{
				"message": {
					"role": "assistant",
					"content": "A",
					"reasoning_content": "Let me think.\n` + "```python\\nimport pygame\\n```" + `"
				},
				"finish_reason": "length"
			}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 301, "total_tokens": 321,
				"completion_tokens_details": {"reasoning_tokens": 300}}
		}`))
	})

	res, err := client.Generate(context.Background(), createReasoningRequest())
	require.NoError(t, err)
	assert.Equal(t, "A", res.Completion)
	assert.Contains(t, res.Reasoning, "import pygame")
	assert.Equal(t, "length", res.FinishReason)
	assert.Equal(t, 300, res.Usage.ReasoningTokens)
	assert.Equal(t, 321, res.Usage.TotalTokens)
	assert.Equal(t, "deepseek-reasoner", res.Model)
}

func TestOpenAIClient_Generate_MissingKeyMakesNoCall(t *testing.T) {
	var calls int32
	client, _ := setupOpenAIClient(t, getDeepSeekConfig(""), func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	req := createReasoningRequest()
	req.APIKey = " "
	_, err := client.Generate(context.Background(), req)
	assert.ErrorContains(t, err, "API key is required")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestOpenAIClient_Generate_AuthErrorNoRetry(t *testing.T) {
	var calls int32
	client, _ := setupOpenAIClient(t, getDeepSeekConfig(""), func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Authentication Fails (no such user)","type":"authentication_error"}}`))
	})

	_, err := client.Generate(context.Background(), createReasoningRequest())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "authentication_error", apiErr.Type)
	assert.Contains(t, err.Error(), "Authentication Fails")
	assert.True(t, IsAuthError(err))
	assert.False(t, IsQuotaError(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retry on failure")
}

func TestOpenAIClient_Generate_TransientErrorNoRetry(t *testing.T) {
	var calls int32
	client, _ := setupOpenAIClient(t, getDeepSeekConfig(""), func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	})

	_, err := client.Generate(context.Background(), createReasoningRequest())
	require.Error(t, err)
	assert.True(t, IsQuotaError(err))
	assert.Contains(t, err.Error(), "slow down")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAIClient_Generate_MalformedResponses(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"not json", "<html>oops</html>", "failed to decode response payload"},
		{"no choices", `{"choices": []}`, "returned no choices"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := setupOpenAIClient(t, getDeepSeekConfig(""), func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.Generate(context.Background(), createReasoningRequest())
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestOpenAIClient_Generate_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	client, _ := setupOpenAIClient(t, getDeepSeekConfig(""), func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, createReasoningRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpenAIClient_Generate_RateLimited(t *testing.T) {
	cfg := getDeepSeekConfig("")
	cfg.RequestsPerMinute = 1
	client, _ := setupOpenAIClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"x","reasoning_content":"y"}}]}`))
	})

	_, err := client.Generate(context.Background(), createReasoningRequest())
	require.NoError(t, err)

	// The second call must wait a full minute for a token; a short deadline aborts it.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Generate(ctx, createReasoningRequest())
	assert.ErrorContains(t, err, "rate limiter wait aborted")
}

func TestOpenAIClient_LogsNoSecrets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"x","reasoning_content":"y"}}]}`))
	}))
	t.Cleanup(server.Close)

	logger, logs := setupTestLogger(t)
	client, err := NewOpenAIClient(getDeepSeekConfig(server.URL), logger)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), createReasoningRequest())
	require.NoError(t, err)

	for _, entry := range logs.All() {
		for _, f := range entry.Context {
			assert.NotEqual(t, "sk-test-reasoning", f.String)
		}
	}
	assert.Equal(t, 1, logs.FilterMessage("LLM generation complete").FilterField(zap.String("model", "deepseek-reasoner")).Len())
}
