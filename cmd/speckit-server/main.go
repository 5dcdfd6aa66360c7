// Package main provides the Speckit MCP server binary.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/speckit/speckit/pkg/cmd"
	"github.com/speckit/speckit/pkg/engine"
	"github.com/speckit/speckit/pkg/log"
	"github.com/speckit/speckit/pkg/mcp"
)

func main() {
	logger := log.WithModule("mcp-server")

	command := &cli.Command{
		Name:                  "speckit-server",
		Usage:                 "Guide coding agents through specification workflows over MCP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Usage:   "MCP transport (stdio or sse)",
				Value:   "stdio",
				Sources: cli.EnvVars("SPECKIT_TRANSPORT"),
			},
			&cli.StringFlag{
				Name:    "listen",
				Usage:   "Listen address for the sse transport",
				Value:   ":8420",
				Sources: cli.EnvVars("SPECKIT_LISTEN"),
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

			logger.InfoContext(ctx, "Initializing Speckit MCP server")

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

			eng, _, err := cmd.NewEngine(ctx, logger, command.String("project-root"), repository, opts...)
			if err != nil {
				return err
			}

			server := mcp.NewServer(eng, logger)

			if command.String("transport") == "sse" {
				listen := command.String("listen")
				logger.InfoContext(ctx, "Serving MCP over SSE", "listen", listen)

				return server.SSEServer("/mcp").Start(listen)
			}

			logger.InfoContext(ctx, "Serving MCP over stdio")

			return server.ServeStdio()
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
