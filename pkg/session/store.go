// Package session maintains the registry of in-flight workflow executions.
// The store owns the canonical in-memory copy of every session and its
// durable mirror; all mutation routes through Update.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/speckit/speckit/pkg/models"
	"github.com/speckit/speckit/pkg/persistence"
)

// Store is the durable registry of workflow sessions. Safe for concurrent
// use: the map is guarded by an RWMutex and Acquire hands out a per-session
// mutex for read-modify-persist sequences.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	repository persistence.SessionRepository
	logger     *slog.Logger
}

// NewStore creates a store backed by the given repository and loads every
// well-formed persisted record, so sessions survive process restarts.
func NewStore(ctx context.Context, repository persistence.SessionRepository, logger *slog.Logger) (*Store, error) {
	store := &Store{
		sessions:   make(map[string]*models.Session),
		locks:      make(map[string]*sync.Mutex),
		repository: repository,
		logger:     logger,
	}

	loaded, err := repository.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted sessions: %w", err)
	}

	for _, session := range loaded {
		store.sessions[session.SessionID] = session
	}

	if len(loaded) > 0 {
		logger.InfoContext(ctx, "Recovered persisted sessions", "count", len(loaded))
	}

	return store, nil
}

func generateSessionID() string {
	return "wf-" + uuid.New().String()
}

// Create allocates a fresh active session at step index 0 and persists it
// immediately.
func (s *Store) Create(ctx context.Context, workflowName, contextID, firstStepID string) (*models.Session, error) {
	now := time.Now().UTC()

	session := &models.Session{
		SchemaVersion:    models.SessionSchemaVersion,
		SessionID:        generateSessionID(),
		WorkflowName:     workflowName,
		ContextID:        contextID,
		CurrentStepIndex: 0,
		CurrentStepID:    firstStepID,
		Status:           models.SessionStatusActive,
		Data:             make(map[string]any),
		History:          make([]models.HistoryEntry, 0),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repository.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.SessionID] = session
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Created session",
		"session_id", session.SessionID,
		"workflow", workflowName,
		"context_id", contextID)

	return session.Clone(), nil
}

// Get returns a copy of the session, or nil when absent.
func (s *Store) Get(sessionID string) *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}

	return session.Clone()
}

// GetActiveSession returns a copy of the most-recently-updated active
// session, or nil when none is active. Equal timestamps tie-break on the
// lexicographically greater session id so repeated calls are deterministic.
func (s *Store) GetActiveSession() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Session

	for _, session := range s.sessions {
		if session.Status != models.SessionStatusActive {
			continue
		}

		if latest == nil ||
			session.UpdatedAt.After(latest.UpdatedAt) ||
			(session.UpdatedAt.Equal(latest.UpdatedAt) && session.SessionID > latest.SessionID) {
			latest = session
		}
	}

	if latest == nil {
		return nil
	}

	return latest.Clone()
}

// Update stamps UpdatedAt, writes the durable mirror and then replaces the
// in-memory record. A failed write leaves the canonical copy untouched so
// the session is never treated as durably advanced.
func (s *Store) Update(ctx context.Context, session *models.Session) error {
	record := session.Clone()
	record.UpdatedAt = time.Now().UTC()

	if err := s.repository.SaveSession(ctx, record); err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions[record.SessionID] = record
	s.mu.Unlock()

	session.UpdatedAt = record.UpdatedAt

	return nil
}

// Delete removes the in-memory and durable copies. Deleting an unknown
// session is a no-op.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.repository.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.lockMu.Lock()
	delete(s.locks, sessionID)
	s.lockMu.Unlock()

	s.logger.InfoContext(ctx, "Deleted session", "session_id", sessionID)

	return nil
}

// List returns copies of every known session.
func (s *Store) List() []*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.Clone())
	}

	return out
}

// Acquire locks the named session's mutual-exclusion region and returns the
// release function. Advancement of one session is strictly sequential;
// different sessions proceed independently.
func (s *Store) Acquire(sessionID string) func() {
	s.lockMu.Lock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}

	s.lockMu.Unlock()

	lock.Lock()

	return lock.Unlock
}
