// File: internal/config/config_test.go
package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "vizgen", cfg.Logger.ServiceName)
	assert.Equal(t, ProviderDeepSeek, cfg.LLM.Reasoning.Provider)
	assert.Equal(t, "deepseek-reasoner", cfg.LLM.Reasoning.Model)
	assert.Equal(t, 1, cfg.LLM.Reasoning.MaxTokens, "reasoning completion must be capped at a trivial size")
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Extraction.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Extraction.Model)
	assert.Empty(t, cfg.LLM.Reasoning.Endpoint, "the provider picks its own endpoint")
	assert.Empty(t, cfg.LLM.Extraction.Endpoint)
	assert.Equal(t, ValidationWarn, cfg.Validation.Mode)
	assert.Equal(t, "https://trinket.io/features/pygame", cfg.Automation.TargetURL)
	assert.Equal(t, InjectInsert, cfg.Automation.InjectMode)
	assert.Equal(t, 10*time.Second, cfg.Automation.InjectTimeout)
	assert.Equal(t, 10*time.Second, cfg.Automation.ObserveDwell)
	assert.False(t, cfg.Browser.Headless)
	assert.True(t, strings.HasPrefix(cfg.Prompts.ExtractionPrefix, "Extract ONLY the Python code"))

	assert.NoError(t, cfg.Validate(), "defaults must always validate")
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "Unsupported reasoning provider",
			mutate:  func(c *Config) { c.LLM.Reasoning.Provider = "ollama" },
			wantErr: "llm.reasoning.provider: unsupported provider",
		},
		{
			name:    "OpenAI cannot be the reasoning provider",
			mutate:  func(c *Config) { c.LLM.Reasoning.Provider = ProviderOpenAI },
			wantErr: "does not expose a reasoning trace",
		},
		{
			name:    "Missing extraction model",
			mutate:  func(c *Config) { c.LLM.Extraction.Model = "" },
			wantErr: "llm.extraction.model is required",
		},
		{
			name:    "Negative max tokens",
			mutate:  func(c *Config) { c.LLM.Reasoning.MaxTokens = -1 },
			wantErr: "llm.reasoning.max_tokens must not be negative",
		},
		{
			name:    "Empty system prompt",
			mutate:  func(c *Config) { c.Prompts.System = "   " },
			wantErr: "prompts.system must not be empty",
		},
		{
			name:    "Unknown validation mode",
			mutate:  func(c *Config) { c.Validation.Mode = "pedantic" },
			wantErr: "validation.mode must be one of",
		},
		{
			name:    "Unknown inject mode",
			mutate:  func(c *Config) { c.Automation.InjectMode = "paste" },
			wantErr: "automation.inject_mode must be",
		},
		{
			name:    "Zero inject timeout",
			mutate:  func(c *Config) { c.Automation.InjectTimeout = 0 },
			wantErr: "automation.inject_timeout must be a positive duration",
		},
		{
			name:    "Missing run selector",
			mutate:  func(c *Config) { c.Automation.RunSelector = "" },
			wantErr: "automation.editor_selector and automation.run_selector are required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
llm:
  reasoning:
    provider: gemini
    model: gemini-2.5-flash
    thinking_budget: 2048
automation:
  observe_dwell: 3s
  inject_mode: wait
validation:
  mode: strict
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, ProviderGemini, cfg.LLM.Reasoning.Provider)
		assert.Equal(t, 2048, cfg.LLM.Reasoning.ThinkingBudget)
		assert.Equal(t, 3*time.Second, cfg.Automation.ObserveDwell)
		assert.Equal(t, InjectWait, cfg.Automation.InjectMode)
		assert.Equal(t, ValidationStrict, cfg.Validation.Mode)
		// Defaults survive alongside file values.
		assert.Equal(t, "gpt-4o", cfg.LLM.Extraction.Model)
	})

	t.Run("Provider switch does not inherit an endpoint", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("llm.reasoning.provider", "gemini")
		v.Set("llm.reasoning.model", "gemini-2.5-flash")
		v.Set("llm.extraction.provider", "deepseek")
		v.Set("llm.extraction.model", "deepseek-chat")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Empty(t, cfg.LLM.Reasoning.Endpoint)
		assert.Empty(t, cfg.LLM.Extraction.Endpoint)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("automation.inject_mode", "teleport")

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("Environment Variable Override", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetEnvPrefix("VIZGEN")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		t.Setenv("VIZGEN_AUTOMATION_TARGET_URL", "http://localhost:8080/editor")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/editor", cfg.Automation.TargetURL)
	})
}
