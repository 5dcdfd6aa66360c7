package engine

import (
	"fmt"
	"strings"

	"github.com/speckit/speckit/pkg/models"
)

const (
	templatePreviewLimit = 1500
	artifactPreviewLimit = 2000
)

// generateStepAction maps a step's action kind to the concrete instruction
// payload the external executor must carry out before calling back. It is a
// pure function of the session, the definition and the step index; it never
// mutates the session.
func (e *Engine) generateStepAction(
	sess *models.Session,
	def *models.WorkflowDefinition,
	stepIndex int,
) (*models.StepResult, error) {
	if stepIndex < 0 || stepIndex >= len(def.Steps) {
		return nil, fmt.Errorf("step index %d out of bounds for workflow %q", stepIndex, def.Name)
	}

	step := &def.Steps[stepIndex]
	progress := fmt.Sprintf("[%d/%d]", stepIndex+1, len(def.Steps))
	current := models.CurrentStep{Index: stepIndex, ID: step.ID, Name: step.Name}

	switch step.Action {
	case models.ActionFetchExternal:
		return &models.StepResult{
			Success:     true,
			SessionID:   sess.SessionID,
			CurrentStep: current,
			Message:     fmt.Sprintf("## %s %s\n\n%s\n\nFetching external data for %q.", progress, step.Name, step.Description, sess.ContextID),
			NextAction: models.NextAction{
				Type:             models.NextActionCallTool,
				Description:      fmt.Sprintf("Fetch work item %s from the external tracker", sess.ContextID),
				RequiresApproval: true,
				Instruction:      fetchInstruction(sess, step),
			},
		}, nil

	case models.ActionGenerateContent, models.ActionInvokePersona:
		persona := e.personas.GetOrDefault(def.PersonaFor(step))

		template, err := e.resolver.ResolveTemplate(def.Template)
		if err != nil {
			return nil, err
		}

		return &models.StepResult{
			Success:     true,
			SessionID:   sess.SessionID,
			CurrentStep: current,
			Message:     fmt.Sprintf("## %s %s\n\n%s\n\n**Persona:** %s", progress, step.Name, step.Description, persona.DisplayName),
			NextAction: models.NextAction{
				Type:             models.NextActionCallTool,
				Description:      fmt.Sprintf("Generate content with %s", persona.DisplayName),
				RequiresApproval: true,
				Instruction:      generateInstruction(sess, step, persona, template),
			},
		}, nil

	case models.ActionReview:
		reviewerName := step.Persona
		if reviewerName == "" {
			reviewerName = "governance-reviewer"
		}

		persona := e.personas.GetOrDefault(reviewerName)

		return &models.StepResult{
			Success:     true,
			SessionID:   sess.SessionID,
			CurrentStep: current,
			Message:     fmt.Sprintf("## %s %s\n\n%s\n\n**Persona:** %s", progress, step.Name, step.Description, persona.DisplayName),
			NextAction: models.NextAction{
				Type:             models.NextActionCallTool,
				Description:      fmt.Sprintf("Review with %s", persona.DisplayName),
				RequiresApproval: true,
				Instruction:      reviewInstruction(sess, step, persona),
			},
		}, nil

	case models.ActionCreateFile:
		outputPath := fmt.Sprintf("specs/%s-spec.md", sess.ContextID)

		return &models.StepResult{
			Success:     true,
			SessionID:   sess.SessionID,
			CurrentStep: current,
			Message:     fmt.Sprintf("## %s %s\n\n%s", progress, step.Name, step.Description),
			NextAction: models.NextAction{
				Type:             models.NextActionUserConfirmation,
				Description:      "Create the output specification file",
				RequiresApproval: true,
				ConfirmationPrompt: fmt.Sprintf(
					"Create the specification file?\n\n**File:** `%s`\n\nAnswer \"yes\" to create it, or \"modify\" to adjust the content first.",
					outputPath),
				Instruction: createFileInstruction(sess, outputPath),
			},
		}, nil

	default:
		// Unreachable through the resolver, which rejects unknown kinds at
		// load time. Answer with the uniform error shape instead of an
		// exception so the caller can surface it without crashing the run.
		return &models.StepResult{
			Success:     false,
			SessionID:   sess.SessionID,
			CurrentStep: current,
			Message:     fmt.Sprintf("Unknown action: %s", step.Action),
			NextAction: models.NextAction{
				Type:        models.NextActionError,
				Description: fmt.Sprintf("Unsupported action kind: %s", step.Action),
			},
		}, nil
	}
}

func fetchInstruction(sess *models.Session, step *models.WorkflowStep) string {
	source := step.Inputs["source"]
	if source == "" {
		source = "work item tracker"
	}

	return strings.TrimSpace(fmt.Sprintf(`
**INSTRUCTION FOR THE EXECUTOR:**

Perform this action, then call back with the result:

1. Fetch item %q from the %s.
2. Call execute_step with:
   - sessionId: %q
   - previousOutput: the raw item payload
`, sess.ContextID, source, sess.SessionID))
}

func generateInstruction(sess *models.Session, step *models.WorkflowStep, persona *models.Persona, template string) string {
	workItem := "[Data unavailable - fetch the work item first]"
	if data, ok := sess.Data[slotWorkItem]; ok {
		workItem = stringifyOutput(data)
	}

	return strings.TrimSpace(fmt.Sprintf(`
**INSTRUCTION FOR THE EXECUTOR:**

You are now **%s**.

---
## Behavioral brief
%s
---

## Task: %s
%s

## Work item data
`+"```json\n%s\n```"+`

## Template
`+"```markdown\n%s\n```"+`

## Steps
1. Generate the content following the template.
2. Fill the sections with the work item data; mark uncertain sections with [TO FILL].
3. Call execute_step with:
   - sessionId: %q
   - previousOutput: the generated markdown
`, persona.DisplayName, persona.Brief, step.Name, step.Description, workItem, truncate(template, templatePreviewLimit), sess.SessionID))
}

func reviewInstruction(sess *models.Session, step *models.WorkflowStep, persona *models.Persona) string {
	content := "[No content available to review]"

	if spec, ok := sess.Data[slotSpecification].(string); ok {
		content = spec
	} else if plan, ok := sess.Data[slotTechnicalPlan].(string); ok {
		content = plan
	}

	return strings.TrimSpace(fmt.Sprintf(`
**INSTRUCTION FOR THE EXECUTOR:**

You are now **%s**.

---
## Behavioral brief
%s
---

## Task: %s
%s

## Content to review
`+"```markdown\n%s\n```"+`

## Steps
1. Analyze the content against the validation criteria.
2. List conforming points and problems to correct.
3. Give a verdict: APPROVED / NEEDS_WORK / REJECTED.
4. Call execute_step with:
   - sessionId: %q
   - previousOutput: {"status": "<VERDICT>", "issues": [...], "recommendations": [...]}
`, persona.DisplayName, persona.Brief, step.Name, step.Description, truncate(content, artifactPreviewLimit), sess.SessionID))
}

func createFileInstruction(sess *models.Session, outputPath string) string {
	return strings.TrimSpace(fmt.Sprintf(`
**INSTRUCTION FOR THE EXECUTOR:**

Ask the user to confirm creating the file. If confirmed, write the generated
specification content to %q, then call execute_step with:
- sessionId: %q
- previousOutput: {"fileCreated": true, "path": %q}
`, outputPath, sess.SessionID, outputPath))
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	return text[:limit] + "\n[...truncated...]"
}
