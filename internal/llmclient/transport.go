package llmclient

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/internal/config"
	"github.com/xkilldash9x/vizgen-cli/internal/network"
)

// newHTTPClient builds the provider transport. A zero api_timeout leaves the
// call bounded only by the caller's context.
func newHTTPClient(cfg config.LLMModelConfig, logger *zap.Logger) *http.Client {
	netCfg := network.NewDefaultClientConfig()
	netCfg.RequestTimeout = cfg.APITimeout
	netCfg.Logger = logger.Named("httpclient")
	return network.NewClient(netCfg)
}
