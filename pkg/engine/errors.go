package engine

import (
	"errors"
	"fmt"

	"github.com/speckit/speckit/pkg/models"
)

// ErrEmptyWorkflow indicates a resolved definition has no steps. The schema
// prevents this; the engine re-checks defensively.
var ErrEmptyWorkflow = errors.New("workflow has no steps defined")

// SessionNotActiveError indicates an advance was attempted on a terminal or
// paused session. The session is left untouched; the caller must start a new
// workflow run.
type SessionNotActiveError struct {
	SessionID string
	Status    models.SessionStatus
}

func (e *SessionNotActiveError) Error() string {
	return fmt.Sprintf("session %q is %s, cannot continue; start a new workflow", e.SessionID, e.Status)
}

// IsSessionNotActive checks if an error indicates advancement of a
// non-active session.
func IsSessionNotActive(err error) bool {
	var target *SessionNotActiveError

	return errors.As(err, &target)
}
