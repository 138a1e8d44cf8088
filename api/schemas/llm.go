package schemas

import "context"

// ModelRole names the job a model performs in the generation pipeline.
type ModelRole string

const (
	// RoleReasoning produces a long-form reasoning trace with embedded code.
	RoleReasoning ModelRole = "reasoning"
	// RoleExtraction isolates the code from a reasoning trace.
	RoleExtraction ModelRole = "extraction"
)

// GenerationRequest encapsulates a single request to a text-generation service.
type GenerationRequest struct {
	SystemPrompt string `json:"system_prompt,omitempty"`
	UserPrompt   string `json:"user_prompt"`
	// APIKey is the bearer credential for this call. It is supplied by the
	// session at call time and is never serialized.
	APIKey string `json:"-"`
	// CompletionCap limits the primary completion field. Zero means provider default.
	CompletionCap int `json:"completion_cap,omitempty"`
}

// TokenUsage reports the token accounting returned by the provider.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	ReasoningTokens  int `json:"reasoning_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationResult is the raw provider output. Reasoning and Completion are
// distinct fields: reasoning-capable providers return their intermediate trace
// in Reasoning, the final answer in Completion.
type GenerationResult struct {
	Reasoning    string     `json:"reasoning"`
	Completion   string     `json:"completion"`
	Model        string     `json:"model"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        TokenUsage `json:"usage"`
}

// LLMClient defines a standard interface for interacting with a text-generation
// service, abstracting the specifics of the underlying provider.
type LLMClient interface {
	// Generate performs exactly one outbound call. Implementations never retry.
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
	// Close releases any resources held by the client.
	Close() error
}
