// internal/browser/context.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
)

const defaultCloseTimeout = 10 * time.Second

// ErrBrowserClosed is returned when the browser went away underneath an action,
// usually because the user closed the window.
var ErrBrowserClosed = errors.New("browser was closed")

// Context is one browser process with a single tab.
type Context struct {
	ctx          context.Context
	release      func()
	closeTimeout time.Duration
	logger       *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ schemas.BrowserContext = (*Context)(nil)

func newContext(tabCtx context.Context, release func(), closeTimeout time.Duration, logger *zap.Logger) *Context {
	if closeTimeout <= 0 {
		closeTimeout = defaultCloseTimeout
	}
	return &Context{
		ctx:          tabCtx,
		release:      release,
		closeTimeout: closeTimeout,
		logger:       logger.Named("browser_context"),
	}
}

func (c *Context) Navigate(ctx context.Context, url string) error {
	c.logger.Info("Navigating", zap.String("url", url))
	if err := c.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func (c *Context) WaitVisible(ctx context.Context, selector string) error {
	c.logger.Debug("Waiting for element", zap.String("selector", selector))
	if err := c.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("element %q never became visible: %w", selector, err)
	}
	return nil
}

// SetEditorText replaces the editor content through the editor's own API so
// that the page sees a regular edit.
func (c *Context) SetEditorText(ctx context.Context, selector, text string) error {
	script, err := editorScript(selector, text)
	if err != nil {
		return err
	}

	var kind string
	if err := c.run(ctx, chromedp.Evaluate(script, &kind)); err != nil {
		return fmt.Errorf("failed to set editor text: %w", err)
	}

	switch kind {
	case editorMissing:
		return fmt.Errorf("no element matches %q", selector)
	case editorUnsupported, "":
		return fmt.Errorf("element matching %q is not a supported editor", selector)
	}
	c.logger.Info("Editor content replaced", zap.String("editor", kind), zap.Int("chars", len(text)))
	return nil
}

func (c *Context) Click(ctx context.Context, selector string) error {
	c.logger.Debug("Clicking", zap.String("selector", selector))
	err := c.run(ctx,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return fmt.Errorf("click on %q failed: %w", selector, err)
	}
	return nil
}

// Sleep waits for d while watching both ctx and the browser.
func (c *Context) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return ErrBrowserClosed
	}
}

// Close shuts the browser down gracefully, bounded by ctx and the configured
// close timeout. Subsequent calls return the first result.
func (c *Context) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		timeout := c.closeTimeout
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining < timeout {
				timeout = remaining
			}
		}
		cancelCtx, cancel := context.WithTimeout(c.ctx, timeout)
		defer cancel()

		if err := chromedp.Cancel(cancelCtx); err != nil && !errors.Is(err, context.Canceled) {
			c.closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		c.release()
		c.logger.Info("Browser closed")
	})
	return c.closeErr
}

// run executes actions on the tab, bounded by ctx.
func (c *Context) run(ctx context.Context, actions ...chromedp.Action) error {
	if c.ctx.Err() != nil {
		return ErrBrowserClosed
	}
	runCtx, cancel := combineContext(c.ctx, ctx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%v: %w", err, ctx.Err())
	}
	if c.ctx.Err() != nil {
		return ErrBrowserClosed
	}
	return err
}

// combineContext derives from primary, which carries the CDP target, and is
// additionally cancelled when op is done.
func combineContext(primary, op context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)
	stop := context.AfterFunc(op, cancel)
	return combined, func() {
		stop()
		cancel()
	}
}
