// Package main provides the Speckit REST API server binary.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/speckit/speckit/pkg/cmd"
	"github.com/speckit/speckit/pkg/engine"
	"github.com/speckit/speckit/pkg/log"
)

const defaultPort = 8421

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "speckit-api",
		Usage:                 "Manage specification workflow sessions over HTTP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "project-root",
				Usage:   "Project directory searched for workflow and persona overrides",
				Value:   ".",
				Sources: cli.EnvVars("SPECKIT_PROJECT_ROOT"),
			},
			&cli.StringFlag{
				Name:    "session-dir",
				Usage:   "Directory holding persisted session records",
				Sources: cli.EnvVars("SPECKIT_SESSION_DIR"),
			},
			&cli.BoolFlag{
				Name:    "pin-definitions",
				Usage:   "Snapshot workflow definitions at start so edits cannot change in-flight runs",
				Sources: cli.EnvVars("SPECKIT_PIN_DEFINITIONS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Speckit API")

			repository, err := cmd.NewSessionRepository(command.String("session-dir"))
			if err != nil {
				return err
			}

			defer func() {
				if err := repository.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close session repository", "error", err)
				}
			}()

			var opts []engine.Option
			if command.Bool("pin-definitions") {
				opts = append(opts, engine.WithPinnedDefinitions())
			}

			eng, store, err := cmd.NewEngine(ctx, logger, command.String("project-root"), repository, opts...)
			if err != nil {
				return err
			}

			api := NewAPI(logger, eng, store, repository)

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("API exited with error", "error", err)
		os.Exit(1)
	}
}
