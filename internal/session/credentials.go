package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/vizgen-cli/internal/observability"
)

// ErrMissingCredentials is returned when a network operation is attempted
// before both service keys have been provided.
var ErrMissingCredentials = errors.New("missing API credentials")

// Credentials is the pair of opaque service keys for one session.
type Credentials struct {
	ReasoningKey  string
	ExtractionKey string
}

// Validate checks that both keys are present. The returned error wraps
// ErrMissingCredentials and names every missing key.
func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ReasoningKey) == "" {
		missing = append(missing, "reasoning")
	}
	if strings.TrimSpace(c.ExtractionKey) == "" {
		missing = append(missing, "extraction")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: provide the %s service key(s)", ErrMissingCredentials, strings.Join(missing, " and "))
}

// String never reveals the keys.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{reasoning: %s, extraction: %s}",
		observability.MaskSecret(c.ReasoningKey), observability.MaskSecret(c.ExtractionKey))
}

// MarshalLogObject lets zap.Object log credentials in masked form.
func (c Credentials) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("reasoning", observability.MaskSecret(c.ReasoningKey))
	enc.AddString("extraction", observability.MaskSecret(c.ExtractionKey))
	return nil
}

// CredentialStore holds the session's keys in memory only.
type CredentialStore struct {
	mu    sync.RWMutex
	creds Credentials
}

// SetReasoningKey replaces the reasoning-service key.
func (s *CredentialStore) SetReasoningKey(key string) {
	s.mu.Lock()
	s.creds.ReasoningKey = strings.TrimSpace(key)
	s.mu.Unlock()
}

// SetExtractionKey replaces the extraction-service key.
func (s *CredentialStore) SetExtractionKey(key string) {
	s.mu.Lock()
	s.creds.ExtractionKey = strings.TrimSpace(key)
	s.mu.Unlock()
}

// Get returns a snapshot of the current keys.
func (s *CredentialStore) Get() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Clear forgets both keys.
func (s *CredentialStore) Clear() {
	s.mu.Lock()
	s.creds = Credentials{}
	s.mu.Unlock()
}
