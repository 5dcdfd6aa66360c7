package mcp

import (
	"fmt"
	"strings"

	"github.com/speckit/speckit/pkg/models"
)

// formatStepResult renders a step result as the markdown payload handed back
// to the calling agent: the step message first, then the action block it must
// carry out.
func formatStepResult(result *models.StepResult) string {
	var b strings.Builder

	b.WriteString(result.Message)

	switch result.NextAction.Type {
	case models.NextActionWorkflowComplete:
		// The completion summary is the whole message.

	case models.NextActionUserConfirmation:
		fmt.Fprintf(&b, "\n\n---\n\n%s", result.NextAction.ConfirmationPrompt)

		if result.NextAction.Instruction != "" {
			fmt.Fprintf(&b, "\n\n%s", result.NextAction.Instruction)
		}

	case models.NextActionError:
		fmt.Fprintf(&b, "\n\n⚠️ %s", result.NextAction.Description)

	default:
		if result.NextAction.Instruction != "" {
			fmt.Fprintf(&b, "\n\n---\n\n%s", result.NextAction.Instruction)
		}
	}

	if result.NextAction.Type != models.NextActionWorkflowComplete && result.NextAction.Type != models.NextActionError {
		fmt.Fprintf(&b, "\n\n_Session: %s_", result.SessionID)
	}

	return b.String()
}

func formatStatusReport(report *models.SessionStatusReport) string {
	if report.Session == nil {
		return report.Summary
	}

	var b strings.Builder

	b.WriteString("# Workflow status\n\n")
	b.WriteString(report.Summary)

	if len(report.Session.History) > 0 {
		b.WriteString("\n\n## Completed steps\n")

		for i, entry := range report.Session.History {
			marker := "✅"
			if entry.Status == models.HistoryFailed {
				marker = "❌"
			}

			fmt.Fprintf(&b, "%d. %s %s\n", i+1, marker, entry.StepName)
		}
	}

	if report.Session.PendingAction != nil {
		fmt.Fprintf(&b, "\n## Pending action\n%s", report.Session.PendingAction.Description)
	}

	return b.String()
}

func formatWorkflowList(summaries []models.WorkflowSummary) string {
	if len(summaries) == 0 {
		return "No workflows available."
	}

	var b strings.Builder

	b.WriteString("# Available workflows\n")

	for _, summary := range summaries {
		fmt.Fprintf(&b, "\n## %s\n", summary.Name)
		fmt.Fprintf(&b, "- **Display name:** %s\n", summary.DisplayName)
		fmt.Fprintf(&b, "- **Source:** %s\n", summary.Source)
		fmt.Fprintf(&b, "- **Steps:** %d\n", summary.StepCount)

		if summary.Description != "" {
			fmt.Fprintf(&b, "- **Description:** %s\n", summary.Description)
		}
	}

	b.WriteString("\nUse start_workflow with one of the names above.")

	return b.String()
}
