package models

import "time"

// SessionSchemaVersion is stamped on every persisted session record. Loaders
// skip records carrying a version they do not understand instead of failing
// the whole store at startup.
const SessionSchemaVersion = 1

// SessionStatus represents the lifecycle state of a workflow session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusPaused    SessionStatus = "paused"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// HistoryStatus is the recorded outcome of a single executed step.
type HistoryStatus string

const (
	HistoryCompleted HistoryStatus = "completed"
	HistorySkipped   HistoryStatus = "skipped"
	HistoryFailed    HistoryStatus = "failed"
)

// HistoryEntry is one append-only record of an executed step.
type HistoryEntry struct {
	StepID    string        `json:"step_id"`
	StepName  string        `json:"step_name"`
	Status    HistoryStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Output    string        `json:"output,omitempty"`
}

// PendingAction describes the instruction currently outstanding for the
// external executor, recorded so status surfaces can replay it.
type PendingAction struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Instruction string `json:"instruction,omitempty"`
}

// Session is one in-progress (or terminal) execution of a workflow. The
// session store owns the canonical copy; callers mutate only through the
// store's update path.
type Session struct {
	SchemaVersion    int            `json:"schema_version"`
	SessionID        string         `json:"session_id"    validate:"required"`
	WorkflowName     string         `json:"workflow_name" validate:"required"`
	ContextID        string         `json:"context_id"    validate:"required"`
	CurrentStepIndex int            `json:"current_step_index"`
	CurrentStepID    string         `json:"current_step_id"`
	Status           SessionStatus  `json:"status"        validate:"required"`
	Data             map[string]any `json:"data"`
	History          []HistoryEntry `json:"history"`
	PendingAction    *PendingAction `json:"pending_action,omitempty"`

	// PinnedDefinition holds a snapshot of the workflow definition taken at
	// start time when definition pinning is enabled. Nil means the engine
	// re-resolves the definition by name on every advance.
	PinnedDefinition *WorkflowDefinition `json:"pinned_definition,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers cannot mutate the store's canonical
// record behind its back.
func (s *Session) Clone() *Session {
	out := *s

	if s.Data != nil {
		out.Data = make(map[string]any, len(s.Data))
		for k, v := range s.Data {
			out.Data[k] = v
		}
	}

	if s.History != nil {
		out.History = make([]HistoryEntry, len(s.History))
		copy(out.History, s.History)
	}

	if s.PendingAction != nil {
		pa := *s.PendingAction
		out.PendingAction = &pa
	}

	if s.PinnedDefinition != nil {
		def := *s.PinnedDefinition
		def.Steps = make([]WorkflowStep, len(s.PinnedDefinition.Steps))
		copy(def.Steps, s.PinnedDefinition.Steps)
		out.PinnedDefinition = &def
	}

	return &out
}

// IsActive reports whether the session can still be advanced.
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}
