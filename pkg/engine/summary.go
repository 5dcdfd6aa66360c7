package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/speckit/speckit/pkg/models"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// completionMessage renders the final summary: elapsed time, completed step
// count and which data slots the run populated.
func completionMessage(sess *models.Session, def *models.WorkflowDefinition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Workflow %q completed\n\n", def.DisplayName)
	fmt.Fprintf(&b, "- **Context:** %s\n", sess.ContextID)
	fmt.Fprintf(&b, "- **Steps completed:** %d/%d\n", len(sess.History), len(def.Steps))
	fmt.Fprintf(&b, "- **Duration:** %s\n", humanDuration(sess.UpdatedAt.Sub(sess.CreatedAt)))

	artifacts := populatedSlots(sess.Data)
	if len(artifacts) > 0 {
		b.WriteString("\n## Generated artifacts\n")

		for _, artifact := range artifacts {
			fmt.Fprintf(&b, "- %s\n", artifact)
		}
	}

	fmt.Fprintf(&b, "\nSession: %s", sess.SessionID)

	return b.String()
}

func populatedSlots(data map[string]any) []string {
	slots := make([]string, 0, 4)

	if _, ok := data[slotSpecification]; ok {
		slots = append(slots, "Functional specification")
	}

	if _, ok := data[slotTechnicalPlan]; ok {
		slots = append(slots, "Technical plan")
	}

	if validations, ok := data[slotValidations].(map[string]any); ok && len(validations) > 0 {
		keys := make([]string, 0, len(validations))
		for key := range validations {
			keys = append(keys, key)
		}

		slots = append(slots, "Validations: "+strings.Join(keys, ", "))
	}

	return slots
}

// statusSummary renders the read-only progress report for a session.
func statusSummary(sess *models.Session, def *models.WorkflowDefinition) string {
	currentStep := "Complete"
	if sess.CurrentStepIndex < len(def.Steps) {
		currentStep = def.Steps[sess.CurrentStepIndex].Name
	}

	var b strings.Builder

	fmt.Fprintf(&b, "**Session:** %s\n", sess.SessionID)
	fmt.Fprintf(&b, "**Workflow:** %s\n", def.DisplayName)
	fmt.Fprintf(&b, "**Context:** %s\n", sess.ContextID)
	fmt.Fprintf(&b, "**Status:** %s\n", sess.Status)
	fmt.Fprintf(&b, "**Progress:** %d/%d\n", min(sess.CurrentStepIndex+1, len(def.Steps)), len(def.Steps))
	fmt.Fprintf(&b, "**Current step:** %s", currentStep)

	return b.String()
}

func humanDuration(d time.Duration) string {
	minutes := int(d.Minutes())

	switch {
	case minutes < 1:
		return "< 1 minute"
	case minutes < 60:
		if minutes == 1 {
			return "1 minute"
		}

		return fmt.Sprintf("%d minutes", minutes)
	default:
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
}
