// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
// API keys are deliberately absent: they are collected interactively per session
// and never read from files, flags or the environment.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Prompts    PromptsConfig    `mapstructure:"prompts" yaml:"prompts"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`
	Browser    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	Automation AutomationConfig `mapstructure:"automation" yaml:"automation"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// LLMProvider defines the supported LLM providers.
type LLMProvider string

const (
	ProviderDeepSeek LLMProvider = "deepseek"
	ProviderOpenAI   LLMProvider = "openai"
	ProviderGemini   LLMProvider = "gemini"
)

// LLMConfig configures the two model roles used by the pipeline.
type LLMConfig struct {
	Reasoning  LLMModelConfig `mapstructure:"reasoning" yaml:"reasoning"`
	Extraction LLMModelConfig `mapstructure:"extraction" yaml:"extraction"`
}

// LLMModelConfig defines the configuration for a single LLM role.
type LLMModelConfig struct {
	Provider LLMProvider `mapstructure:"provider" yaml:"provider"`
	Model    string      `mapstructure:"model" yaml:"model"`
	Endpoint string      `mapstructure:"endpoint" yaml:"endpoint"`
	// APITimeout of zero leaves the call bounded only by the transport.
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	// MaxTokens caps the directly returned completion. For the reasoning role
	// this is kept trivially small because the payload of interest is the trace.
	MaxTokens         int  `mapstructure:"max_tokens" yaml:"max_tokens"`
	ThinkingBudget    int  `mapstructure:"thinking_budget" yaml:"thinking_budget"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	FallbackToContent bool `mapstructure:"fallback_to_completion" yaml:"fallback_to_completion"`
}

// PromptsConfig holds the prompt templates.
type PromptsConfig struct {
	System           string `mapstructure:"system" yaml:"system"`
	ExtractionPrefix string `mapstructure:"extraction_prefix" yaml:"extraction_prefix"`
}

// ValidationMode selects how extracted code is checked before it is stored.
type ValidationMode string

const (
	ValidationOff    ValidationMode = "off"
	ValidationWarn   ValidationMode = "warn"
	ValidationStrict ValidationMode = "strict"
)

// ValidationConfig configures the optional syntax check of generated code.
type ValidationConfig struct {
	Mode ValidationMode `mapstructure:"mode" yaml:"mode"`
}

// BrowserConfig holds settings for the automated browser.
type BrowserConfig struct {
	Headless        bool          `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath        string        `mapstructure:"exec_path" yaml:"exec_path"`
	Args            []string      `mapstructure:"args" yaml:"args"`
	WindowWidth     int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight    int           `mapstructure:"window_height" yaml:"window_height"`
	Debug           bool          `mapstructure:"debug" yaml:"debug"`
	CloseTimeout    time.Duration `mapstructure:"close_timeout" yaml:"close_timeout"`
}

// InjectMode selects how the inject task places code into the editor.
type InjectMode string

const (
	// InjectInsert actively replaces the editor content.
	InjectInsert InjectMode = "insert"
	// InjectWait copies the code to the clipboard and waits for a manual paste.
	InjectWait InjectMode = "wait"
)

// AutomationConfig describes the target page and the timings of each task.
type AutomationConfig struct {
	TargetURL         string        `mapstructure:"target_url" yaml:"target_url"`
	EditorSelector    string        `mapstructure:"editor_selector" yaml:"editor_selector"`
	RunSelector       string        `mapstructure:"run_selector" yaml:"run_selector"`
	InjectMode        InjectMode    `mapstructure:"inject_mode" yaml:"inject_mode"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	InjectTimeout     time.Duration `mapstructure:"inject_timeout" yaml:"inject_timeout"`
	ExecuteTimeout    time.Duration `mapstructure:"execute_timeout" yaml:"execute_timeout"`
	ObserveDwell      time.Duration `mapstructure:"observe_dwell" yaml:"observe_dwell"`
}

const defaultSystemPrompt = `You are a Pygame and Python Expert that specializes in making games and visualisation through pygame and python programming.
During your reasoning and thinking, include clear, concise, and well-formatted Python code in your reasoning.
Always include explanations for the code you provide.`

const defaultExtractionPrefix = `Extract ONLY the Python code from the following content which is reasoning of a particular query to make a pygame script.
Return nothing but the raw code without any explanations, or markdown backticks:`

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "vizgen")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- LLM: reasoning role --
	v.SetDefault("llm.reasoning.provider", string(ProviderDeepSeek))
	v.SetDefault("llm.reasoning.model", "deepseek-reasoner")
	// An empty endpoint selects the configured provider's public API.
	v.SetDefault("llm.reasoning.endpoint", "")
	v.SetDefault("llm.reasoning.api_timeout", "0s")
	v.SetDefault("llm.reasoning.max_tokens", 1)
	v.SetDefault("llm.reasoning.thinking_budget", 8192)
	v.SetDefault("llm.reasoning.requests_per_minute", 0)
	v.SetDefault("llm.reasoning.fallback_to_completion", false)

	// -- LLM: extraction role --
	v.SetDefault("llm.extraction.provider", string(ProviderOpenAI))
	v.SetDefault("llm.extraction.model", "gpt-4o")
	v.SetDefault("llm.extraction.endpoint", "")
	v.SetDefault("llm.extraction.api_timeout", "0s")
	v.SetDefault("llm.extraction.max_tokens", 0)
	v.SetDefault("llm.extraction.requests_per_minute", 0)

	// -- Prompts --
	v.SetDefault("prompts.system", defaultSystemPrompt)
	v.SetDefault("prompts.extraction_prefix", defaultExtractionPrefix)

	// -- Validation --
	v.SetDefault("validation.mode", string(ValidationWarn))

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.window_width", 1366)
	v.SetDefault("browser.window_height", 900)
	v.SetDefault("browser.debug", false)
	v.SetDefault("browser.close_timeout", "10s")

	// -- Automation --
	v.SetDefault("automation.target_url", "https://trinket.io/features/pygame")
	v.SetDefault("automation.editor_selector", ".ace_editor, .CodeMirror, .cm-editor, textarea")
	v.SetDefault("automation.run_selector", ".run-it, button[title='Run'], .trinket-run-button")
	v.SetDefault("automation.inject_mode", string(InjectInsert))
	v.SetDefault("automation.navigation_timeout", "60s")
	v.SetDefault("automation.inject_timeout", "10s")
	v.SetDefault("automation.execute_timeout", "15s")
	v.SetDefault("automation.observe_dwell", "10s")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.LLM.Reasoning.validate("llm.reasoning"); err != nil {
		return err
	}
	if err := c.LLM.Extraction.validate("llm.extraction"); err != nil {
		return err
	}
	if c.LLM.Reasoning.Provider == ProviderOpenAI {
		return fmt.Errorf("llm.reasoning.provider: %q does not expose a reasoning trace, use %q or %q",
			ProviderOpenAI, ProviderDeepSeek, ProviderGemini)
	}
	if strings.TrimSpace(c.Prompts.System) == "" {
		return fmt.Errorf("prompts.system must not be empty")
	}
	if strings.TrimSpace(c.Prompts.ExtractionPrefix) == "" {
		return fmt.Errorf("prompts.extraction_prefix must not be empty")
	}
	switch c.Validation.Mode {
	case ValidationOff, ValidationWarn, ValidationStrict:
	default:
		return fmt.Errorf("validation.mode must be one of off, warn, strict (got %q)", c.Validation.Mode)
	}
	return c.Automation.Validate()
}

func (m LLMModelConfig) validate(prefix string) error {
	switch m.Provider {
	case ProviderDeepSeek, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%s.provider: unsupported provider %q", prefix, m.Provider)
	}
	if m.Model == "" {
		return fmt.Errorf("%s.model is required", prefix)
	}
	if m.MaxTokens < 0 {
		return fmt.Errorf("%s.max_tokens must not be negative", prefix)
	}
	if m.RequestsPerMinute < 0 {
		return fmt.Errorf("%s.requests_per_minute must not be negative", prefix)
	}
	return nil
}

// Validate checks the AutomationConfig settings.
func (a *AutomationConfig) Validate() error {
	if a.TargetURL == "" {
		return fmt.Errorf("automation.target_url is required")
	}
	if a.EditorSelector == "" || a.RunSelector == "" {
		return fmt.Errorf("automation.editor_selector and automation.run_selector are required")
	}
	switch a.InjectMode {
	case InjectInsert, InjectWait:
	default:
		return fmt.Errorf("automation.inject_mode must be %q or %q (got %q)", InjectInsert, InjectWait, a.InjectMode)
	}
	if a.InjectTimeout <= 0 {
		return fmt.Errorf("automation.inject_timeout must be a positive duration")
	}
	if a.ObserveDwell < 0 {
		return fmt.Errorf("automation.observe_dwell must not be negative")
	}
	return nil
}
