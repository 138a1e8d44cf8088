// File: internal/service/factory.go
package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/automation"
	"github.com/xkilldash9x/vizgen-cli/internal/browser"
	"github.com/xkilldash9x/vizgen-cli/internal/codegen"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
	"github.com/xkilldash9x/vizgen-cli/internal/llmclient"
	"github.com/xkilldash9x/vizgen-cli/internal/pipeline"
	"github.com/xkilldash9x/vizgen-cli/internal/validation"
)

// Options overrides pieces of the production wiring.
type Options struct {
	// Browser replaces the chromedp manager.
	Browser schemas.Browser
	// Clipboard replaces the system clipboard.
	Clipboard schemas.Clipboard
	// Progress receives automation task starts.
	Progress automation.ProgressFunc
}

// NewComponents builds the pipeline from configuration. Nothing is started:
// the browser launches on the first visualization.
func NewComponents(cfg *config.Config, logger *zap.Logger, opts Options) (*Components, error) {
	components := &Components{}

	var initializationErr error
	defer func() {
		if initializationErr != nil {
			logger.Warn("Initialization failed, shutting down partially created components.", zap.Error(initializationErr))
			components.Shutdown()
		}
	}()

	// 1. LLM clients
	router, err := llmclient.NewRouterFromConfig(cfg.LLM, logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to initialize LLM clients: %w", err)
		return nil, initializationErr
	}
	components.Router = router

	reasoningClient, err := router.Client(schemas.RoleReasoning)
	if err != nil {
		initializationErr = err
		return nil, initializationErr
	}
	extractionClient, err := router.Client(schemas.RoleExtraction)
	if err != nil {
		initializationErr = err
		return nil, initializationErr
	}
	logger.Debug("LLM clients initialized.",
		zap.String("reasoning", string(cfg.LLM.Reasoning.Provider)),
		zap.String("extraction", string(cfg.LLM.Extraction.Provider)))

	// 2. Browser
	b := opts.Browser
	if b == nil {
		components.BrowserManager = browser.NewManager(cfg.Browser, logger)
		b = components.BrowserManager
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = automation.SystemClipboard{}
	}

	// 3. Automation runner
	tasks, err := automation.BuildTaskSpec(cfg.Automation)
	if err != nil {
		initializationErr = err
		return nil, initializationErr
	}
	runnerOpts := []automation.Option{
		automation.WithClipboard(clip),
		automation.WithCloseTimeout(cfg.Browser.CloseTimeout),
	}
	if opts.Progress != nil {
		runnerOpts = append(runnerOpts, automation.WithProgress(opts.Progress))
	}
	runner := automation.NewRunner(b, tasks, logger, runnerOpts...)

	// 4. Controller
	controller, err := pipeline.NewController(pipeline.Dependencies{
		Reasoner:     codegen.NewReasoner(reasoningClient, cfg.LLM.Reasoning, logger),
		Extractor:    codegen.NewExtractor(extractionClient, cfg.LLM.Extraction, cfg.Prompts.ExtractionPrefix, logger),
		Validator:    validation.NewValidator(cfg.Validation.Mode, logger),
		Automator:    runner,
		SystemPrompt: cfg.Prompts.System,
	}, logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to create pipeline controller: %w", err)
		return nil, initializationErr
	}
	components.Controller = controller
	logger.Debug("Pipeline controller initialized.")

	return components, nil
}
