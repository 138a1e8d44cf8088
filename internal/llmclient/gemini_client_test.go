package llmclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

func getGeminiConfig(endpoint string) config.LLMModelConfig {
	return config.LLMModelConfig{
		Provider:       config.ProviderGemini,
		Model:          "gemini-2.5-pro",
		Endpoint:       endpoint,
		APITimeout:     5 * time.Second,
		ThinkingBudget: 2048,
	}
}

func setupGeminiClient(t *testing.T, cfg config.LLMModelConfig, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.Endpoint = server.URL
	logger, _ := setupTestLogger(t)
	client, err := NewGeminiClient(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewGeminiClient_RequiresModel(t *testing.T) {
	logger, _ := setupTestLogger(t)
	_, err := NewGeminiClient(config.LLMModelConfig{Provider: config.ProviderGemini}, logger)
	assert.ErrorContains(t, err, "model name is required")
}

func TestGeminiClient_BuildGenerateConfig(t *testing.T) {
	logger, _ := setupTestLogger(t)

	t.Run("thinking budget stacks on the completion cap", func(t *testing.T) {
		client, err := NewGeminiClient(getGeminiConfig(""), logger)
		require.NoError(t, err)

		gc := client.buildGenerateConfig(createReasoningRequest())
		require.NotNil(t, gc.ThinkingConfig)
		assert.True(t, gc.ThinkingConfig.IncludeThoughts)
		require.NotNil(t, gc.ThinkingConfig.ThinkingBudget)
		assert.Equal(t, int32(2048), *gc.ThinkingConfig.ThinkingBudget)
		assert.Equal(t, int32(2049), gc.MaxOutputTokens)
		require.NotNil(t, gc.SystemInstruction)
		require.Len(t, gc.SystemInstruction.Parts, 1)
		assert.Equal(t, "You are a Pygame expert.", gc.SystemInstruction.Parts[0].Text)
	})

	t.Run("no thinking budget", func(t *testing.T) {
		cfg := getGeminiConfig("")
		cfg.ThinkingBudget = 0
		cfg.MaxTokens = 4096
		client, err := NewGeminiClient(cfg, logger)
		require.NoError(t, err)

		gc := client.buildGenerateConfig(schemas.GenerationRequest{UserPrompt: "extract"})
		assert.Nil(t, gc.ThinkingConfig)
		assert.Nil(t, gc.SystemInstruction)
		assert.Equal(t, int32(4096), gc.MaxOutputTokens)
	})
}

func TestGeminiClient_Generate_SplitsThoughtParts(t *testing.T) {
	client := setupGeminiClient(t, getGeminiConfig(""), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-pro:generateContent"), r.URL.Path)
		assert.Equal(t, "sk-test-reasoning", r.Header.Get("x-goog-api-key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "bouncing ball simulation")
		assert.Contains(t, string(body), `"includeThoughts":true`)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [
					{"text": "Plan the loop. ", "thought": true},
					{"text": "` + "```python\\nimport pygame\\n```" + `", "thought": true},
					{"text": "A"}
				]},
				"finishReason": "MAX_TOKENS"
			}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 1, "thoughtsTokenCount": 250, "totalTokenCount": 263},
			"modelVersion": "gemini-2.5-pro-001"
		}`))
	})

	res, err := client.Generate(context.Background(), createReasoningRequest())
	require.NoError(t, err)
	assert.Equal(t, "Plan the loop. ```python\nimport pygame\n```", res.Reasoning)
	assert.Equal(t, "A", res.Completion)
	assert.Equal(t, "MAX_TOKENS", res.FinishReason)
	assert.Equal(t, "gemini-2.5-pro-001", res.Model)
	assert.Equal(t, 250, res.Usage.ReasoningTokens)
	assert.Equal(t, 263, res.Usage.TotalTokens)
}

func TestGeminiClient_Generate_APIError(t *testing.T) {
	var calls int32
	client := setupGeminiClient(t, getGeminiConfig(""), func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	})

	_, err := client.Generate(context.Background(), createReasoningRequest())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "gemini", apiErr.Provider)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "PERMISSION_DENIED", apiErr.Type)
	assert.True(t, IsAuthError(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGeminiClient_Generate_NoCandidates(t *testing.T) {
	client := setupGeminiClient(t, getGeminiConfig(""), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, err := client.Generate(context.Background(), createReasoningRequest())
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiClient_Generate_MissingKey(t *testing.T) {
	logger, _ := setupTestLogger(t)
	client, err := NewGeminiClient(getGeminiConfig("http://127.0.0.1:1"), logger)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), schemas.GenerationRequest{UserPrompt: "x"})
	assert.ErrorContains(t, err, "API key is required")
}
