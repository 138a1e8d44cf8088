// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
)

// -- LLM Client Mock --

// MockLLMClient mocks the schemas.LLMClient interface.
type MockLLMClient struct {
	mock.Mock
}

// Generate provides a mock function for LLM calls.
func (m *MockLLMClient) Generate(ctx context.Context, req schemas.GenerationRequest) (*schemas.GenerationResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*schemas.GenerationResult)
	return res, args.Error(1)
}

func (m *MockLLMClient) Close() error {
	return m.Called().Error(0)
}

// -- Browser Mocks --

// MockBrowser mocks the schemas.Browser interface.
type MockBrowser struct {
	mock.Mock
}

func (m *MockBrowser) NewContext(ctx context.Context) (schemas.BrowserContext, error) {
	args := m.Called(ctx)
	bc, _ := args.Get(0).(schemas.BrowserContext)
	return bc, args.Error(1)
}

// MockBrowserContext mocks the schemas.BrowserContext interface. It also
// records the order of primitive calls so tests can assert on sequencing.
type MockBrowserContext struct {
	mock.Mock

	mu    sync.Mutex
	calls []string
}

func (m *MockBrowserContext) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

// CallOrder returns the recorded primitive names in call order.
func (m *MockBrowserContext) CallOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockBrowserContext) Navigate(ctx context.Context, url string) error {
	m.record("navigate")
	return m.Called(ctx, url).Error(0)
}

func (m *MockBrowserContext) WaitVisible(ctx context.Context, selector string) error {
	m.record("wait_visible")
	return m.Called(ctx, selector).Error(0)
}

func (m *MockBrowserContext) SetEditorText(ctx context.Context, selector, text string) error {
	m.record("set_editor_text")
	return m.Called(ctx, selector, text).Error(0)
}

func (m *MockBrowserContext) Click(ctx context.Context, selector string) error {
	m.record("click")
	return m.Called(ctx, selector).Error(0)
}

func (m *MockBrowserContext) Sleep(ctx context.Context, d time.Duration) error {
	m.record("sleep")
	return m.Called(ctx, d).Error(0)
}

func (m *MockBrowserContext) Close(ctx context.Context) error {
	m.record("close")
	return m.Called(ctx).Error(0)
}

// -- Clipboard Mock --

type MockClipboard struct {
	mock.Mock
}

func (m *MockClipboard) WriteAll(text string) error {
	return m.Called(text).Error(0)
}
