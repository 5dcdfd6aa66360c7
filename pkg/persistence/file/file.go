// Package file provides file-based persistence for workflow sessions. Each
// session is one self-contained JSON document named by its session id,
// stored under a process-scoped directory outside any project tree.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/speckit/speckit/pkg/models"
	"github.com/speckit/speckit/pkg/persistence"
)

// SessionRepository implements persistence.SessionRepository on the file system.
type SessionRepository struct {
	root string
}

// DefaultRoot returns the default session directory: a named area under the
// OS temp dir, so records survive process restarts without polluting
// version-controlled project state.
func DefaultRoot() string {
	return filepath.Join(os.TempDir(), "speckit-sessions")
}

// NewSessionRepository creates a repository rooted at the given directory,
// creating it when absent.
func NewSessionRepository(root string) (*SessionRepository, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	if err := os.MkdirAll(cleanRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory %s: %w", cleanRoot, err)
	}

	return &SessionRepository{root: cleanRoot}, nil
}

func (r *SessionRepository) sessionPath(id string) string {
	return filepath.Join(r.root, id+".json")
}

// Sessions loads every well-formed session record. Unreadable or malformed
// records, and records carrying an unknown schema version, are skipped so a
// single bad file cannot fail the whole store at startup.
func (r *SessionRepository) Sessions(_ context.Context) ([]*models.Session, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*models.Session{}, nil
		}

		return nil, fmt.Errorf("failed to read session directory %s: %w", r.root, err)
	}

	sessions := make([]*models.Session, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(r.root, entry.Name()))
		if err != nil {
			continue
		}

		var session models.Session
		if err := json.Unmarshal(data, &session); err != nil {
			continue
		}

		if session.SessionID == "" || session.SchemaVersion != models.SessionSchemaVersion {
			continue
		}

		sessions = append(sessions, &session)
	}

	return sessions, nil
}

// SessionByID loads one session record, or nil when absent.
func (r *SessionRepository) SessionByID(_ context.Context, id string) (*models.Session, error) {
	data, err := os.ReadFile(r.sessionPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, persistence.NewSessionError("SessionByID", id, err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, persistence.NewSessionError("SessionByID", id, err)
	}

	return &session, nil
}

// SaveSession writes the full session document. Write errors propagate; they
// are never swallowed.
func (r *SessionRepository) SaveSession(_ context.Context, session *models.Session) error {
	session.SchemaVersion = models.SessionSchemaVersion

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return persistence.NewSessionError("SaveSession", session.SessionID, err)
	}

	if err := os.WriteFile(r.sessionPath(session.SessionID), data, 0o644); err != nil {
		return persistence.NewSessionError("SaveSession", session.SessionID, err)
	}

	return nil
}

// DeleteSession removes the record. Deleting an absent session is a no-op.
func (r *SessionRepository) DeleteSession(_ context.Context, id string) error {
	err := os.Remove(r.sessionPath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return persistence.NewSessionError("DeleteSession", id, err)
	}

	return nil
}

// HealthCheck verifies the session directory exists.
func (r *SessionRepository) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(r.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (r *SessionRepository) Close(_ context.Context) error {
	return nil
}
