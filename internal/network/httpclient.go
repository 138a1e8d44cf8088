// File: internal/network/httpclient.go
package network

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/xkilldash9x/vizgen-cli/internal/observability"
)

// Defaults for the transport used by the model provider clients.
const (
	DefaultDialTimeout         = 10 * time.Second
	DefaultKeepAliveInterval   = 30 * time.Second
	DefaultTLSHandshakeTimeout = 10 * time.Second
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultMaxIdleConnsPerHost = 4

	requiredMinTLSVersion = tls.VersionTLS12
)

// ClientConfig holds the configuration for the HTTP client and transport layers.
type ClientConfig struct {
	// RequestTimeout bounds a whole call including reading the body. Zero
	// means no limit.
	RequestTimeout time.Duration

	DialTimeout         time.Duration
	KeepAlive           time.Duration
	TLSHandshakeTimeout time.Duration
	IdleConnTimeout     time.Duration
	MaxIdleConnsPerHost int

	// TLSConfig is cloned and hardened before use.
	TLSConfig  *tls.Config
	ForceHTTP2 bool

	Logger *zap.Logger
}

// NewDefaultClientConfig returns the configuration used for provider APIs.
func NewDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		DialTimeout:         DefaultDialTimeout,
		KeepAlive:           DefaultKeepAliveInterval,
		TLSHandshakeTimeout: DefaultTLSHandshakeTimeout,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		ForceHTTP2:          true,
		Logger:              observability.GetLogger().Named("httpclient"),
	}
}

// NewHTTPTransport creates an http.Transport from config. Proxies come from
// the standard HTTP_PROXY/HTTPS_PROXY/NO_PROXY variables. There is no response
// header timeout: a reasoning model sends its headers only once the whole
// trace has been produced.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := &net.Dialer{
		Timeout:   config.DialTimeout,
		KeepAlive: config.KeepAlive,
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSClientConfig:     configureTLS(config),
		TLSHandshakeTimeout: config.TLSHandshakeTimeout,
		IdleConnTimeout:     config.IdleConnTimeout,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		ForceAttemptHTTP2:   config.ForceHTTP2,
	}

	if config.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	}
	return transport
}

// NewClient creates an http.Client on a transport built from config. Responses
// are negotiated as brotli or gzip and decoded transparently.
func NewClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	return &http.Client{
		Transport: NewCompressionMiddleware(NewHTTPTransport(config)),
		Timeout:   config.RequestTimeout,
	}
}

// configureTLS clones the supplied TLS config, or starts from an empty one, and
// enforces TLS 1.2 as the floor.
func configureTLS(config *ClientConfig) *tls.Config {
	var tlsConfig *tls.Config
	if config.TLSConfig != nil {
		tlsConfig = config.TLSConfig.Clone()
	} else {
		tlsConfig = &tls.Config{}
	}
	if tlsConfig.MinVersion < requiredMinTLSVersion {
		tlsConfig.MinVersion = requiredMinTLSVersion
	}
	if tlsConfig.ClientSessionCache == nil {
		tlsConfig.ClientSessionCache = tls.NewLRUClientSessionCache(64)
	}
	return tlsConfig
}
