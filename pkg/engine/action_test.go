package engine

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speckit/speckit/pkg/models"
	"github.com/speckit/speckit/pkg/persistence/file"
	"github.com/speckit/speckit/pkg/personas"
	"github.com/speckit/speckit/pkg/session"
	"github.com/speckit/speckit/pkg/workflow"
)

func actionTestEngine(t *testing.T) *Engine {
	t.Helper()

	repo, err := file.NewSessionRepository(t.TempDir())
	require.NoError(t, err)

	store, err := session.NewStore(context.Background(), repo, slog.Default())
	require.NoError(t, err)

	root := t.TempDir()

	return NewEngine(workflow.NewResolver(root), store, personas.NewRegistry(root), slog.Default())
}

func actionTestSession() *models.Session {
	return &models.Session{
		SessionID:    "wf-test",
		WorkflowName: "feature-standard",
		ContextID:    "TICKET-9",
		Status:       models.SessionStatusActive,
		Data:         map[string]any{},
	}
}

func actionTestDefinition(steps ...models.WorkflowStep) *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		Name:           "feature-standard",
		DisplayName:    "Standard Feature Specification",
		Template:       "functional-spec",
		DefaultPersona: "spec-writer",
		Steps:          steps,
	}
}

func TestGenerateStepAction_FetchExternal(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:     "fetch-work-item",
		Name:   "Fetch work item",
		Action: models.ActionFetchExternal,
		Inputs: map[string]string{"source": "Azure DevOps board"},
	})

	result, err := eng.generateStepAction(actionTestSession(), def, 0)
	require.NoError(t, err)

	assert.Equal(t, models.NextActionCallTool, result.NextAction.Type)
	assert.Contains(t, result.NextAction.Instruction, "Azure DevOps board")
	assert.Contains(t, result.NextAction.Instruction, "TICKET-9")
	assert.Contains(t, result.NextAction.Instruction, "wf-test")
}

func TestGenerateStepAction_FetchExternal_DefaultSource(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:     "fetch-work-item",
		Name:   "Fetch work item",
		Action: models.ActionFetchExternal,
	})

	result, err := eng.generateStepAction(actionTestSession(), def, 0)
	require.NoError(t, err)
	assert.Contains(t, result.NextAction.Instruction, "work item tracker")
}

func TestGenerateStepAction_GenerateContent_EmbedsWorkItemAndTemplate(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:     "generate-spec",
		Name:   "Draft functional specification",
		Action: models.ActionGenerateContent,
	})

	sess := actionTestSession()
	sess.Data[slotWorkItem] = map[string]any{"id": 9, "title": "Add export"}

	result, err := eng.generateStepAction(sess, def, 0)
	require.NoError(t, err)

	assert.Contains(t, result.NextAction.Instruction, "Add export")
	assert.Contains(t, result.NextAction.Instruction, "# Functional Specification")
	assert.Contains(t, result.Message, "Specification Writer")
}

func TestGenerateStepAction_GenerateContent_NoWorkItemYet(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:     "generate-spec",
		Name:   "Draft functional specification",
		Action: models.ActionGenerateContent,
	})

	result, err := eng.generateStepAction(actionTestSession(), def, 0)
	require.NoError(t, err)
	assert.Contains(t, result.NextAction.Instruction, "[Data unavailable")
}

func TestGenerateStepAction_GenerateContent_MissingTemplate(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:     "generate-spec",
		Name:   "Draft functional specification",
		Action: models.ActionGenerateContent,
	})
	def.Template = "no-such-template"

	_, err := eng.generateStepAction(actionTestSession(), def, 0)
	require.Error(t, err)
	assert.True(t, workflow.IsNotFound(err))
}

func TestGenerateStepAction_InvokePersona_UsesStepPersona(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:      "draft-plan",
		Name:    "Draft technical plan",
		Action:  models.ActionInvokePersona,
		Persona: "planner",
	})

	result, err := eng.generateStepAction(actionTestSession(), def, 0)
	require.NoError(t, err)
	assert.Contains(t, result.Message, "Planning Specialist")
}

func TestGenerateStepAction_Review_PrefersSpecificationOverPlan(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:     "review-security",
		Name:   "Security review",
		Action: models.ActionReview,
	})

	sess := actionTestSession()
	sess.Data[slotSpecification] = "the spec text"
	sess.Data[slotTechnicalPlan] = "the plan text"

	result, err := eng.generateStepAction(sess, def, 0)
	require.NoError(t, err)
	assert.Contains(t, result.NextAction.Instruction, "the spec text")
	assert.NotContains(t, result.NextAction.Instruction, "the plan text")
	assert.Contains(t, result.NextAction.Instruction, "APPROVED / NEEDS_WORK / REJECTED")
}

func TestGenerateStepAction_Review_NothingToReview(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:     "review-security",
		Name:   "Security review",
		Action: models.ActionReview,
	})

	result, err := eng.generateStepAction(actionTestSession(), def, 0)
	require.NoError(t, err)
	assert.Contains(t, result.NextAction.Instruction, "[No content available to review]")
}

func TestGenerateStepAction_CreateFile(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:     "write-file",
		Name:   "Write specification file",
		Action: models.ActionCreateFile,
	})

	result, err := eng.generateStepAction(actionTestSession(), def, 0)
	require.NoError(t, err)

	assert.Equal(t, models.NextActionUserConfirmation, result.NextAction.Type)
	assert.Contains(t, result.NextAction.ConfirmationPrompt, "specs/TICKET-9-spec.md")
}

func TestGenerateStepAction_UnknownKindIsNonThrowing(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:     "mystery",
		Name:   "Mystery",
		Action: models.ActionKind("teleport"),
	})

	result, err := eng.generateStepAction(actionTestSession(), def, 0)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, models.NextActionError, result.NextAction.Type)
	assert.Contains(t, result.Message, "teleport")
}

func TestGenerateStepAction_IndexOutOfBounds(t *testing.T) {
	eng := actionTestEngine(t)
	def := actionTestDefinition(models.WorkflowStep{
		ID:     "only",
		Name:   "Only",
		Action: models.ActionGenerateContent,
	})

	_, err := eng.generateStepAction(actionTestSession(), def, 5)
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := truncate("abcdefghij", 4)
	assert.Contains(t, long, "abcd")
	assert.Contains(t, long, "truncated")
}
