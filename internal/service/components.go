// File: internal/service/components.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/internal/browser"
	"github.com/xkilldash9x/vizgen-cli/internal/llmclient"
	"github.com/xkilldash9x/vizgen-cli/internal/observability"
	"github.com/xkilldash9x/vizgen-cli/internal/pipeline"
)

const browserDrainTimeout = 30 * time.Second

// Components holds everything a session needs to run the pipeline and
// centralizes its lifecycle.
type Components struct {
	Router         *llmclient.Router
	BrowserManager *browser.Manager
	Controller     *pipeline.Controller
}

// Shutdown releases the components in reverse order of creation.
func (c *Components) Shutdown() {
	logger := observability.GetLogger()
	logger.Debug("Beginning components shutdown sequence.")

	// Browsers opened by a run are closed by the run; wait for stragglers.
	if c.BrowserManager != nil {
		ctx, cancel := context.WithTimeout(context.Background(), browserDrainTimeout)
		defer cancel()
		if err := c.BrowserManager.Wait(ctx); err != nil {
			logger.Warn("Error during browser manager shutdown.", zap.Error(err))
		} else {
			logger.Debug("Browser manager drained.")
		}
	}

	if c.Router != nil {
		if err := c.Router.Close(); err != nil {
			logger.Warn("Error closing LLM clients.", zap.Error(err))
		} else {
			logger.Debug("LLM clients closed.")
		}
	}
	logger.Debug("Components shutdown sequence complete.")
}
