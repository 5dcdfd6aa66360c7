// Package models defines the core domain models for guided specification workflows.
package models

// ActionKind is the enumerated category of a workflow step. It decides which
// instruction the action generator emits for the step.
type ActionKind string

const (
	ActionFetchExternal   ActionKind = "fetch_external"
	ActionGenerateContent ActionKind = "generate_content"
	ActionReview          ActionKind = "review"
	ActionCreateFile      ActionKind = "create_file"
	ActionInvokePersona   ActionKind = "invoke_persona"
)

// KnownActionKinds lists every action kind the engine understands.
// Used for validation diagnostics.
func KnownActionKinds() []ActionKind {
	return []ActionKind{
		ActionFetchExternal,
		ActionGenerateContent,
		ActionReview,
		ActionCreateFile,
		ActionInvokePersona,
	}
}

// IsValid reports whether the action kind is part of the closed enum.
func (a ActionKind) IsValid() bool {
	switch a {
	case ActionFetchExternal, ActionGenerateContent, ActionReview, ActionCreateFile, ActionInvokePersona:
		return true
	}

	return false
}

// WorkflowStep is one unit of work in a workflow definition.
type WorkflowStep struct {
	ID          string            `json:"id"          yaml:"id"          validate:"required"`
	Name        string            `json:"name"        yaml:"name"        validate:"required"`
	Action      ActionKind        `json:"action"      yaml:"action"      validate:"required"`
	Description string            `json:"description" yaml:"description" validate:"required"`
	Persona     string            `json:"persona,omitempty" yaml:"persona,omitempty"`
	Inputs      map[string]string `json:"inputs,omitempty"  yaml:"inputs,omitempty"`
	Outputs     []string          `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Next        string            `json:"next,omitempty"    yaml:"next,omitempty"`
}

// WorkflowMetadata carries optional authoring information.
type WorkflowMetadata struct {
	Version string   `json:"version,omitempty" yaml:"version,omitempty"`
	Author  string   `json:"author,omitempty"  yaml:"author,omitempty"`
	Created string   `json:"created,omitempty" yaml:"created,omitempty"`
	Tags    []string `json:"tags,omitempty"    yaml:"tags,omitempty"`
}

// WorkflowDefinition is a named, ordered sequence of steps describing a
// multi-stage authoring process. Definitions are declarative documents loaded
// by name; they never embed executable behavior.
type WorkflowDefinition struct {
	Name           string            `json:"name"            yaml:"name"            validate:"required,min=3"`
	DisplayName    string            `json:"display_name"    yaml:"displayName"     validate:"required"`
	Description    string            `json:"description"     yaml:"description"     validate:"required"`
	Metadata       *WorkflowMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Template       string            `json:"template"        yaml:"template"        validate:"required"`
	DefaultPersona string            `json:"default_persona" yaml:"defaultPersona"`
	Steps          []WorkflowStep    `json:"steps"           yaml:"steps"           validate:"required,min=1,dive"`
}

// StepByID returns the step with the given id, or nil.
func (w *WorkflowDefinition) StepByID(id string) *WorkflowStep {
	for i := range w.Steps {
		if w.Steps[i].ID == id {
			return &w.Steps[i]
		}
	}

	return nil
}

// PersonaFor returns the persona name for a step, falling back to the
// workflow default when the step has no override.
func (w *WorkflowDefinition) PersonaFor(step *WorkflowStep) string {
	if step.Persona != "" {
		return step.Persona
	}

	return w.DefaultPersona
}

// WorkflowSource identifies which search tier a definition was resolved from.
type WorkflowSource string

const (
	SourceLocal   WorkflowSource = "local"   // project-local override directory
	SourceProject WorkflowSource = "project" // project-root convenience directory
	SourcePackage WorkflowSource = "package" // packaged defaults
)

// WorkflowSummary is the listing entry returned for discovery surfaces.
type WorkflowSummary struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description"`
	Template    string         `json:"template"`
	StepCount   int            `json:"step_count"`
	Source      WorkflowSource `json:"source"`
}
