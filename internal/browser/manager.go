// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

// Manager launches a dedicated browser process for every context it hands out.
type Manager struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	// wg tracks open contexts for a graceful shutdown.
	wg sync.WaitGroup
}

var _ schemas.Browser = (*Manager)(nil)

// NewManager creates a manager. No browser is started until NewContext.
func NewManager(cfg config.BrowserConfig, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger.Named("browser_manager"),
	}
}

// NewContext starts a browser process and opens its first tab. The returned
// context owns the process; closing it shuts the browser down.
func (m *Manager) NewContext(ctx context.Context) (schemas.BrowserContext, error) {
	m.logger.Info("Launching browser", zap.Bool("headless", m.cfg.Headless))

	// The process outlives cancellation of ctx so that Close can shut it down gracefully.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), AllocatorOptions(m.cfg)...)

	sugar := m.logger.Sugar()
	ctxOpts := []chromedp.ContextOption{
		chromedp.WithLogf(sugar.Debugf),
		// chromedp reports unknown CDP events as errors; they are noise here.
		chromedp.WithErrorf(sugar.Debugf),
	}
	if m.cfg.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(sugar.Debugf))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)
	listenPageEvents(tabCtx, m.logger)

	// The first Run allocates the browser and must not carry a deadline.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("browser failed to start: %w", err)
	}
	if err := ctx.Err(); err != nil {
		tabCancel()
		allocCancel()
		return nil, err
	}

	m.wg.Add(1)
	c := newContext(tabCtx, func() {
		tabCancel()
		allocCancel()
		m.wg.Done()
	}, m.cfg.CloseTimeout, m.logger)
	m.logger.Debug("Browser ready")
	return c, nil
}

// Wait blocks until every context handed out has been closed or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("browser contexts still open: %w", ctx.Err())
	}
}

// AllocatorOptions converts the browser settings into chromedp allocator options.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range allocatorFlags(cfg) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}
	return opts
}

// allocatorFlags returns the command line flags layered over the chromedp defaults.
// A false value removes a default flag.
func allocatorFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		"headless": cfg.Headless,
		// The user watches the run, so the automation banner stays hidden.
		"enable-automation":        false,
		"disable-blink-features":   "AutomationControlled",
		"autoplay-policy":          "no-user-gesture-required",
		"disable-gpu":              cfg.Headless,
		"hide-scrollbars":          cfg.Headless,
		"mute-audio":               cfg.Headless,
		"disable-popup-blocking":   true,
		"disable-extensions":       true,
		"disable-dev-shm-usage":    true,
		"no-first-run":             true,
		"no-default-browser-check": true,
	}
	if cfg.IgnoreTLSErrors {
		flags["ignore-certificate-errors"] = true
		flags["allow-insecure-localhost"] = true
	}
	if runtime.GOOS == "linux" {
		flags["no-sandbox"] = true
		flags["disable-setuid-sandbox"] = true
	}

	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if name == "" {
			continue
		}
		if len(parts) == 2 {
			flags[name] = parts[1]
		} else {
			flags[name] = true
		}
	}
	return flags
}
