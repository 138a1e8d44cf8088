package codegen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
	"github.com/xkilldash9x/vizgen-cli/internal/mocks"
)

const trace = "First I set up the window.\n```python\nimport pygame\npygame.init()\n```\nThat should work."

func reasoningConfig() config.LLMModelConfig {
	return config.LLMModelConfig{Provider: config.ProviderDeepSeek, Model: "deepseek-reasoner", MaxTokens: 1}
}

func TestReasoner_Generate(t *testing.T) {
	client := new(mocks.MockLLMClient)
	client.On("Generate", mock.Anything, mock.MatchedBy(func(req schemas.GenerationRequest) bool {
		return req.SystemPrompt == "sys" &&
			req.UserPrompt == "bouncing ball" &&
			req.APIKey == "sk-r" &&
			req.CompletionCap == 1
	})).Return(&schemas.GenerationResult{
		Reasoning:  trace,
		Completion: "A",
		Model:      "deepseek-reasoner",
		Usage:      schemas.TokenUsage{ReasoningTokens: 42},
	}, nil).Once()

	r := NewReasoner(client, reasoningConfig(), zaptest.NewLogger(t))
	res, err := r.Generate(context.Background(), "sys", "bouncing ball", "sk-r")
	require.NoError(t, err)
	assert.Equal(t, trace, res.Reasoning)
	assert.Equal(t, "A", res.Completion)
	assert.Equal(t, 42, res.Usage.ReasoningTokens)
	assert.False(t, res.FromCompletion)
	client.AssertExpectations(t)
}

func TestReasoner_Generate_NoTrace(t *testing.T) {
	client := new(mocks.MockLLMClient)
	client.On("Generate", mock.Anything, mock.Anything).
		Return(&schemas.GenerationResult{Completion: "import pygame", Model: "gpt-4o"}, nil)

	r := NewReasoner(client, reasoningConfig(), zaptest.NewLogger(t))
	_, err := r.Generate(context.Background(), "sys", "q", "k")
	assert.ErrorIs(t, err, ErrNoReasoningTrace)
}

func TestReasoner_Generate_FallbackToCompletion(t *testing.T) {
	client := new(mocks.MockLLMClient)
	client.On("Generate", mock.Anything, mock.Anything).
		Return(&schemas.GenerationResult{Completion: trace, Model: "plain-model"}, nil).Once()

	cfg := reasoningConfig()
	cfg.FallbackToContent = true
	r := NewReasoner(client, cfg, zaptest.NewLogger(t))

	res, err := r.Generate(context.Background(), "sys", "q", "k")
	require.NoError(t, err)
	assert.Equal(t, trace, res.Reasoning)
	assert.True(t, res.FromCompletion)

	// An empty completion is still an error with the fallback enabled.
	client.On("Generate", mock.Anything, mock.Anything).
		Return(&schemas.GenerationResult{Model: "plain-model"}, nil).Once()
	_, err = r.Generate(context.Background(), "sys", "q", "k")
	assert.ErrorIs(t, err, ErrNoReasoningTrace)
}

func TestReasoner_Generate_UpstreamFailure(t *testing.T) {
	upstream := errors.New("status 401")
	client := new(mocks.MockLLMClient)
	client.On("Generate", mock.Anything, mock.Anything).Return(nil, upstream).Once()

	r := NewReasoner(client, reasoningConfig(), zaptest.NewLogger(t))
	_, err := r.Generate(context.Background(), "sys", "q", "k")
	assert.ErrorIs(t, err, upstream)
	client.AssertNumberOfCalls(t, "Generate", 1)
}
