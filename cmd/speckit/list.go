package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/speckit/speckit/pkg/personas"
	"github.com/speckit/speckit/pkg/workflow"
)

func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List workflows and personas visible from the project",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "project-root",
				Usage:   "Project directory searched for workflow and persona overrides",
				Value:   ".",
				Sources: cli.EnvVars("SPECKIT_PROJECT_ROOT"),
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			root := command.String("project-root")

			fmt.Println("Workflows:")

			for _, summary := range workflow.NewResolver(root).ListAll() {
				fmt.Printf("  %-20s %-8s %2d steps  %s\n",
					summary.Name, summary.Source, summary.StepCount, summary.DisplayName)
			}

			fmt.Println("\nPersonas:")

			for _, persona := range personas.NewRegistry(root).List() {
				fmt.Printf("  %-20s %s\n", persona.Name, persona.DisplayName)
			}

			return nil
		},
	}
}
