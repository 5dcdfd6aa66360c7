package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/speckit/speckit/pkg/cmd"
	"github.com/speckit/speckit/pkg/log"
)

func NewSessionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "sessions",
		Aliases: []string{"s"},
		Usage:   "List persisted workflow sessions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "session-dir",
				Usage:   "Directory holding persisted session records",
				Sources: cli.EnvVars("SPECKIT_SESSION_DIR"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("cli")

			repository, err := cmd.NewSessionRepository(command.String("session-dir"))
			if err != nil {
				return err
			}

			defer func() {
				if err := repository.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close session repository", "error", err)
				}
			}()

			sessions, err := repository.Sessions(ctx)
			if err != nil {
				return fmt.Errorf("failed to load sessions: %w", err)
			}

			if len(sessions) == 0 {
				fmt.Println("No persisted sessions.")

				return nil
			}

			fmt.Printf("%-40s %-18s %-12s %-10s %s\n", "SESSION", "WORKFLOW", "CONTEXT", "STATUS", "STEP")

			for _, sess := range sessions {
				fmt.Printf("%-40s %-18s %-12s %-10s %d (%s)\n",
					sess.SessionID, sess.WorkflowName, sess.ContextID,
					sess.Status, sess.CurrentStepIndex, sess.CurrentStepID)
			}

			return nil
		},
	}
}
