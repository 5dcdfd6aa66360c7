package models

// NextActionType categorizes the instruction handed back to the executor.
type NextActionType string

const (
	NextActionCallTool         NextActionType = "call_tool"
	NextActionUserConfirmation NextActionType = "user_confirmation"
	NextActionWorkflowComplete NextActionType = "workflow_complete"
	NextActionError            NextActionType = "error"
)

// NextAction is the machine-readable descriptor of what the external executor
// must do before calling back.
type NextAction struct {
	Type               NextActionType `json:"type"`
	Description        string         `json:"description"`
	RequiresApproval   bool           `json:"requires_approval"`
	Instruction        string         `json:"instruction,omitempty"`
	ConfirmationPrompt string         `json:"confirmation_prompt,omitempty"`
}

// CurrentStep identifies the step a StepResult refers to.
type CurrentStep struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

// StepResult is the uniform response of every engine transition: which step
// is active, a human-readable progress message, and the next action contract.
type StepResult struct {
	Success     bool        `json:"success"`
	SessionID   string      `json:"session_id"`
	CurrentStep CurrentStep `json:"current_step"`
	Message     string      `json:"message"`
	NextAction  NextAction  `json:"next_action"`
}

// SessionStatusReport pairs a session snapshot with a rendered summary.
// Session is nil when no session matches the query.
type SessionStatusReport struct {
	Session *Session `json:"session,omitempty"`
	Summary string   `json:"summary"`
}
