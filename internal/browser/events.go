// internal/browser/events.go
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// listenPageEvents mirrors the page console into the log and accepts
// JavaScript dialogs, which would otherwise stall the page until a human
// answers them.
func listenPageEvents(ctx context.Context, logger *zap.Logger) {
	pageLogger := logger.Named("page")
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			pageLogger.Debug("Console message", zap.String("type", e.Type.String()), zap.String("text", consoleText(e)))
		case *runtime.EventExceptionThrown:
			pageLogger.Debug("Uncaught exception", zap.String("text", exceptionText(e)))
		case *page.EventJavascriptDialogOpening:
			pageLogger.Info("Accepting page dialog", zap.String("type", e.Type.String()), zap.String("message", e.Message))
			// The listener runs on the event loop, so the reply has to be sent elsewhere.
			go func() {
				if err := chromedp.Run(ctx, page.HandleJavaScriptDialog(true)); err != nil && ctx.Err() == nil {
					pageLogger.Warn("Failed to accept page dialog", zap.Error(err))
				}
			}()
		}
	})
}

// consoleText joins the console call arguments the way devtools prints them.
func consoleText(e *runtime.EventConsoleAPICalled) string {
	parts := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		var val interface{}
		switch {
		case len(arg.Value) > 0 && json.Unmarshal([]byte(arg.Value), &val) == nil:
			parts = append(parts, fmt.Sprintf("%v", val))
		case arg.Description != "":
			parts = append(parts, arg.Description)
		default:
			parts = append(parts, fmt.Sprintf("[%s]", arg.Type))
		}
	}
	return strings.Join(parts, " ")
}

// exceptionText prefers the exception description, which carries the stack.
func exceptionText(e *runtime.EventExceptionThrown) string {
	if e.ExceptionDetails == nil {
		return ""
	}
	if ex := e.ExceptionDetails.Exception; ex != nil && ex.Description != "" {
		return ex.Description
	}
	return e.ExceptionDetails.Text
}
