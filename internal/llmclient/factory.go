package llmclient

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

// NewClient is a factory function that creates an LLMClient based on the model configuration.
func NewClient(cfg config.LLMModelConfig, logger *zap.Logger) (schemas.LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderDeepSeek, config.ProviderOpenAI:
		return NewOpenAIClient(cfg, logger)
	case config.ProviderGemini:
		return NewGeminiClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: '%s'. Supported: [%s, %s, %s]",
			cfg.Provider, config.ProviderDeepSeek, config.ProviderOpenAI, config.ProviderGemini)
	}
}

// NewRouterFromConfig builds both role clients and wires them into a Router.
func NewRouterFromConfig(cfg config.LLMConfig, logger *zap.Logger) (*Router, error) {
	reasoning, err := NewClient(cfg.Reasoning, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reasoning client: %w", err)
	}
	extraction, err := NewClient(cfg.Extraction, logger)
	if err != nil {
		_ = reasoning.Close()
		return nil, fmt.Errorf("failed to create extraction client: %w", err)
	}
	return NewRouter(logger, reasoning, extraction)
}
