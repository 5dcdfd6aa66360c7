// Package main provides the speckit command-line tool for inspecting and
// validating workflow definitions.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/speckit/speckit/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "speckit",
		Usage:                 "Inspect and validate specification workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			NewListCommand(),
			NewValidateCommand(),
			NewSessionsCommand(),
		},
	}

	log.Setup("info")

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
