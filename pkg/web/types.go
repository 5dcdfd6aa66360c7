// Package web provides HTTP request and response types for the session API.
package web

// StartSessionRequest represents the request body for starting a workflow run.
type StartSessionRequest struct {
	Workflow  string `json:"workflow"   validate:"required,min=1"`
	ContextID string `json:"context_id" validate:"required,min=1"`
}

// AdvanceSessionRequest represents the request body for advancing a session.
// PreviousOutput carries whatever the executor produced for the step that
// just finished; it may be a string, an object or absent.
type AdvanceSessionRequest struct {
	PreviousOutput any `json:"previous_output"`
}

// FailSessionRequest represents the request body for marking a session failed.
type FailSessionRequest struct {
	Reason string `json:"reason" validate:"required,min=1"`
}
