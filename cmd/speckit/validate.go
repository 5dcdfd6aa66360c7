package main

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/speckit/speckit/pkg/workflow"
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate every discoverable workflow definition",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "project-root",
				Usage:   "Project directory searched for workflow and persona overrides",
				Value:   ".",
				Sources: cli.EnvVars("SPECKIT_PROJECT_ROOT"),
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			resolver := workflow.NewResolver(command.String("project-root"))
			summaries := resolver.ListAll()

			fmt.Println("Workflow Validation Results:")
			fmt.Println("============================")

			valid := 0
			invalid := 0

			for _, summary := range summaries {
				fmt.Printf("\nWorkflow: %s (%s)\n", summary.Name, summary.Source)

				def, err := resolver.Resolve(summary.Name)
				if err != nil {
					var validationErr *workflow.ValidationError
					if errors.As(err, &validationErr) {
						for _, issue := range validationErr.Issues {
							fmt.Printf("    ❌ INVALID: %s: %s\n", issue.Path, issue.Reason)
						}
					} else {
						fmt.Printf("    ❌ INVALID: %v\n", err)
					}

					invalid++

					continue
				}

				if _, err := resolver.ResolveTemplate(def.Template); err != nil {
					fmt.Printf("    ❌ INVALID: template %q: %v\n", def.Template, err)

					invalid++

					continue
				}

				fmt.Printf("    ✅ VALID (%d steps, template %q)\n", len(def.Steps), def.Template)
				valid++
			}

			fmt.Printf("\nValidation Summary:\n")
			fmt.Printf("  Total workflows: %d\n", valid+invalid)
			fmt.Printf("  Valid: %d\n", valid)
			fmt.Printf("  Invalid: %d\n", invalid)

			if invalid > 0 {
				return fmt.Errorf("found %d invalid workflows", invalid)
			}

			fmt.Println("All workflows are valid! ✅")

			return nil
		},
	}
}
