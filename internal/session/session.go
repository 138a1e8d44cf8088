// Package session owns the per-session state of the pipeline: the service
// credentials and the single generated artifact. Nothing in it is persisted;
// everything dies with Close.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/internal/store"
)

// Session is the explicit owning context passed to every pipeline operation.
type Session struct {
	id        string
	createdAt time.Time
	logger    *zap.Logger

	Credentials *CredentialStore
	Artifacts   *store.ArtifactStore

	closeOnce sync.Once
	closed    bool
	mu        sync.RWMutex
}

// New creates a fresh session with empty credentials and no artifact.
func New(logger *zap.Logger) *Session {
	id := uuid.New().String()
	logger = logger.Named("session").With(zap.String("session_id", id))
	logger.Debug("Session created.")
	return &Session{
		id:          id,
		createdAt:   time.Now(),
		logger:      logger,
		Credentials: &CredentialStore{},
		Artifacts:   store.New(logger),
	}
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string { return s.id }

// CreatedAt returns the session start time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Logger returns the session-scoped logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// Reset clears credentials and the artifact while keeping the session open.
func (s *Session) Reset() {
	s.Credentials.Clear()
	s.Artifacts.Clear()
	s.logger.Info("Session state cleared.")
}

// Close tears the session down. It is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Reset()
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.logger.Debug("Session closed.", zap.Duration("lifetime", time.Since(s.createdAt)))
	})
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
