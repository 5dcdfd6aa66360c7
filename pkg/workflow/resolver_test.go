package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speckit/speckit/pkg/models"
)

func writeWorkflowFile(t *testing.T, dir, name, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolver_Resolve_PackagedDefault(t *testing.T) {
	resolver := NewResolver(t.TempDir())

	def, err := resolver.Resolve("feature-standard")
	require.NoError(t, err)

	assert.Equal(t, "feature-standard", def.Name)
	assert.Equal(t, "functional-spec", def.Template)
	assert.Len(t, def.Steps, 6)
	assert.Equal(t, models.ActionFetchExternal, def.Steps[0].Action)
}

func TestResolver_Resolve_LocalOverrideWins(t *testing.T) {
	root := t.TempDir()
	override := `
name: feature-standard
displayName: Overridden
description: Local override of the packaged workflow
template: functional-spec
steps:
  - id: single
    name: Single step
    action: generate_content
    description: Only step
`
	writeWorkflowFile(t, filepath.Join(root, ".speckit", "workflows"), "feature-standard.yaml", override)

	resolver := NewResolver(root)

	def, err := resolver.Resolve("feature-standard")
	require.NoError(t, err)
	assert.Equal(t, "Overridden", def.DisplayName)
	assert.Len(t, def.Steps, 1)
}

func TestResolver_Resolve_ProjectDirBeforePackage(t *testing.T) {
	root := t.TempDir()
	project := `
name: quick-fix
displayName: Project Quick Fix
description: Project-root variant
template: quick-fix
steps:
  - id: single
    name: Single step
    action: create_file
    description: Only step
`
	writeWorkflowFile(t, filepath.Join(root, "workflows"), "quick-fix.yml", project)

	resolver := NewResolver(root)

	def, err := resolver.Resolve("quick-fix")
	require.NoError(t, err)
	assert.Equal(t, "Project Quick Fix", def.DisplayName)
}

func TestResolver_Resolve_NotFoundListsAvailable(t *testing.T) {
	resolver := NewResolver(t.TempDir())

	_, err := resolver.Resolve("no-such-workflow")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Available, "feature-standard")
	assert.Contains(t, notFound.Available, "quick-fix")
	assert.Contains(t, err.Error(), "feature-standard")
}

func TestResolver_Resolve_UnknownActionRejectedAtLoad(t *testing.T) {
	root := t.TempDir()
	bad := `
name: broken
displayName: Broken
description: Step one has an unknown action
template: functional-spec
steps:
  - id: fine-step
    name: Fine
    action: generate_content
    description: ok
  - id: bad-step
    name: Bad
    action: no_such_action
    description: not ok
`
	writeWorkflowFile(t, filepath.Join(root, "workflows"), "broken.yaml", bad)

	resolver := NewResolver(root)

	_, err := resolver.Resolve("broken")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Issues, 1)
	assert.Equal(t, "steps[1].action", validationErr.Issues[0].Path)
	assert.Contains(t, validationErr.Issues[0].Reason, "bad-step")
	assert.Contains(t, validationErr.Issues[0].Reason, "no_such_action")
}

func TestResolver_Resolve_DanglingNextRejectedAtLoad(t *testing.T) {
	root := t.TempDir()
	bad := `
name: dangling
displayName: Dangling
description: Next references a missing step
template: functional-spec
steps:
  - id: first
    name: First
    action: generate_content
    description: ok
    next: does-not-exist
`
	writeWorkflowFile(t, filepath.Join(root, "workflows"), "dangling.yaml", bad)

	resolver := NewResolver(root)

	_, err := resolver.Resolve("dangling")
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Issues, 1)
	assert.Equal(t, "steps[0].next", validationErr.Issues[0].Path)
	assert.Contains(t, validationErr.Issues[0].Reason, "does-not-exist")
}

func TestResolver_Resolve_DuplicateStepIDsRejected(t *testing.T) {
	root := t.TempDir()
	bad := `
name: duplicated
displayName: Duplicated
description: Two steps share an id
template: functional-spec
steps:
  - id: twin
    name: First twin
    action: generate_content
    description: ok
  - id: twin
    name: Second twin
    action: review
    description: ok
`
	writeWorkflowFile(t, filepath.Join(root, "workflows"), "duplicated.yaml", bad)

	resolver := NewResolver(root)

	_, err := resolver.Resolve("duplicated")
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "steps[1].id", validationErr.Issues[0].Path)
}

func TestResolver_Resolve_MissingFieldsRejected(t *testing.T) {
	root := t.TempDir()
	writeWorkflowFile(t, filepath.Join(root, "workflows"), "empty.yaml", "name: empty-workflow\n")

	resolver := NewResolver(root)

	_, err := resolver.Resolve("empty")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestResolver_ResolveTemplate(t *testing.T) {
	resolver := NewResolver(t.TempDir())

	content, err := resolver.ResolveTemplate("functional-spec")
	require.NoError(t, err)
	assert.Contains(t, content, "# Functional Specification")

	// Extension is optional in the reference.
	withExt, err := resolver.ResolveTemplate("functional-spec.md")
	require.NoError(t, err)
	assert.Equal(t, content, withExt)
}

func TestResolver_ResolveTemplate_LocalOverrideWins(t *testing.T) {
	root := t.TempDir()
	writeWorkflowFile(t, filepath.Join(root, ".speckit", "templates"), "functional-spec.md", "# Local Template\n")

	resolver := NewResolver(root)

	content, err := resolver.ResolveTemplate("functional-spec")
	require.NoError(t, err)
	assert.Equal(t, "# Local Template\n", content)
}

func TestResolver_ResolveTemplate_NotFound(t *testing.T) {
	resolver := NewResolver(t.TempDir())

	_, err := resolver.ResolveTemplate("no-such-template")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestResolver_ListAll_DedupesBySearchOrder(t *testing.T) {
	root := t.TempDir()
	override := `
name: feature-standard
displayName: Overridden
description: shadows packaged default
template: functional-spec
steps:
  - id: single
    name: Single step
    action: generate_content
    description: Only step
`
	writeWorkflowFile(t, filepath.Join(root, ".speckit", "workflows"), "feature-standard.yaml", override)

	resolver := NewResolver(root)
	summaries := resolver.ListAll()

	byName := make(map[string]models.WorkflowSummary)
	for _, summary := range summaries {
		_, dup := byName[summary.Name]
		require.False(t, dup, "duplicate listing for %s", summary.Name)
		byName[summary.Name] = summary
	}

	require.Contains(t, byName, "feature-standard")
	assert.Equal(t, models.SourceLocal, byName["feature-standard"].Source)
	assert.Equal(t, "Overridden", byName["feature-standard"].DisplayName)

	require.Contains(t, byName, "quick-fix")
	assert.Equal(t, models.SourcePackage, byName["quick-fix"].Source)
}
