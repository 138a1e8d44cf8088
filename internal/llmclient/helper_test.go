package llmclient

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

// setupTestLogger is a helper to create a zap logger for testing with an observer.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func getDeepSeekConfig(endpoint string) config.LLMModelConfig {
	return config.LLMModelConfig{
		Provider:   config.ProviderDeepSeek,
		Model:      "deepseek-reasoner",
		Endpoint:   endpoint,
		APITimeout: 5 * time.Second,
		MaxTokens:  1,
	}
}

func createReasoningRequest() schemas.GenerationRequest {
	return schemas.GenerationRequest{
		SystemPrompt:  "You are a Pygame expert.",
		UserPrompt:    "bouncing ball simulation",
		APIKey:        "sk-test-reasoning",
		CompletionCap: 1,
	}
}
