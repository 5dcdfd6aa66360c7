// Package persistence provides the data storage abstraction for workflow sessions.
package persistence

import (
	"context"

	"github.com/speckit/speckit/pkg/models"
)

// SessionRepository is the durable mirror of the session store. One
// self-contained record per session; implementations must make SaveSession
// failures visible since a session whose last mutation failed to persist
// must not be treated as durably advanced.
type SessionRepository interface {
	Sessions(ctx context.Context) ([]*models.Session, error)
	SessionByID(ctx context.Context, id string) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
