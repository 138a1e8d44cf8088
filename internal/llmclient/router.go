package llmclient

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/api/schemas"
)

// Router holds one client per pipeline role.
type Router struct {
	logger  *zap.Logger
	clients map[schemas.ModelRole]schemas.LLMClient
}

// NewRouter creates a new router with the specified clients for each role.
func NewRouter(logger *zap.Logger, reasoning, extraction schemas.LLMClient) (*Router, error) {
	if reasoning == nil || extraction == nil {
		return nil, fmt.Errorf("both reasoning and extraction clients must be provided")
	}
	return &Router{
		logger: logger.Named("llm_router"),
		clients: map[schemas.ModelRole]schemas.LLMClient{
			schemas.RoleReasoning:  reasoning,
			schemas.RoleExtraction: extraction,
		},
	}, nil
}

// Client returns the client configured for role.
func (r *Router) Client(role schemas.ModelRole) (schemas.LLMClient, error) {
	client, ok := r.clients[role]
	if !ok {
		return nil, fmt.Errorf("no LLM client configured for role: %s", role)
	}
	r.logger.Debug("Routing LLM request", zap.String("role", string(role)))
	return client, nil
}

// Close closes every underlying client.
func (r *Router) Close() error {
	var errs []error
	for role, client := range r.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s client: %w", role, err))
		}
	}
	return errors.Join(errs...)
}
