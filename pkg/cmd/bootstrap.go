// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/speckit/speckit/pkg/engine"
	"github.com/speckit/speckit/pkg/persistence"
	"github.com/speckit/speckit/pkg/persistence/file"
	"github.com/speckit/speckit/pkg/personas"
	"github.com/speckit/speckit/pkg/session"
	"github.com/speckit/speckit/pkg/workflow"
)

// NewSessionRepository builds the durable session repository from a storage
// URL. Only file storage is supported today; an empty URL selects the
// per-user temp directory.
func NewSessionRepository(storageURL string) (persistence.SessionRepository, error) {
	if storageURL == "" {
		storageURL = file.DefaultRoot()
	}

	return file.NewSessionRepository(strings.Replace(storageURL, "file://", "", 1))
}

// NewEngine wires a complete engine for the given project root: resolver,
// persona registry and a session store hydrated from the repository.
func NewEngine(
	ctx context.Context,
	logger *slog.Logger,
	projectRoot string,
	repository persistence.SessionRepository,
	opts ...engine.Option,
) (*engine.Engine, *session.Store, error) {
	store, err := session.NewStore(ctx, repository, logger)
	if err != nil {
		return nil, nil, err
	}

	eng := engine.NewEngine(
		workflow.NewResolver(projectRoot),
		store,
		personas.NewRegistry(projectRoot),
		logger,
		opts...,
	)

	return eng, store, nil
}
