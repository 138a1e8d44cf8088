package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoArtifact is returned by Load when nothing has been generated in this session yet.
var ErrNoArtifact = errors.New("no code has been generated yet, generate code first")

// Artifact is the single extracted program awaiting execution, together with
// the inputs that produced it.
type Artifact struct {
	ID        uuid.UUID
	Code      string
	Query     string
	Reasoning string
	CreatedAt time.Time
}

// ArtifactStore holds at most one artifact. It never touches disk.
type ArtifactStore struct {
	mu         sync.RWMutex
	current    *Artifact
	generation int
	log        *zap.Logger
}

// New creates an empty artifact store.
func New(logger *zap.Logger) *ArtifactStore {
	return &ArtifactStore{log: logger.Named("artifact_store")}
}

// Save overwrites the current artifact unconditionally. A zero ID or
// CreatedAt is filled in.
func (s *ArtifactStore) Save(a Artifact) Artifact {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	s.mu.Lock()
	replaced := s.current != nil
	s.current = &a
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.log.Debug("Artifact saved.",
		zap.Stringer("artifact_id", a.ID),
		zap.Int("generation", gen),
		zap.Bool("replaced", replaced),
		zap.Int("code_bytes", len(a.Code)),
	)
	return a
}

// Load returns a copy of the current artifact, or ErrNoArtifact.
func (s *ArtifactStore) Load() (Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Artifact{}, ErrNoArtifact
	}
	return *s.current, nil
}

// Has reports whether an artifact is present.
func (s *ArtifactStore) Has() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Generation counts successful saves over the store's lifetime.
func (s *ArtifactStore) Generation() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Clear drops the current artifact.
func (s *ArtifactStore) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
