// Package engine implements the workflow state machine: it decides which
// step a session is on and what instruction the external executor receives
// next. It never performs a step's action itself.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/speckit/speckit/pkg/models"
	"github.com/speckit/speckit/pkg/persistence"
	"github.com/speckit/speckit/pkg/personas"
	"github.com/speckit/speckit/pkg/session"
	"github.com/speckit/speckit/pkg/workflow"
)

// Option configures an Engine.
type Option func(*Engine)

// WithPinnedDefinitions makes Start snapshot the resolved definition into
// the session, so later edits to the workflow file cannot change the meaning
// of an in-flight run. The default re-resolves on every advance.
func WithPinnedDefinitions() Option {
	return func(e *Engine) {
		e.pinDefinitions = true
	}
}

// Engine drives workflow sessions through their step sequence.
type Engine struct {
	resolver       *workflow.Resolver
	store          *session.Store
	personas       *personas.Registry
	logger         *slog.Logger
	pinDefinitions bool
}

// NewEngine wires the engine to its collaborators. The store handle is
// shared with whatever invocation surface hosts the engine; there is no
// ambient global state.
func NewEngine(
	resolver *workflow.Resolver,
	store *session.Store,
	registry *personas.Registry,
	logger *slog.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		resolver: resolver,
		store:    store,
		personas: registry,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start resolves the named workflow, creates a session seeded with the first
// step, and returns the instruction for step 0.
func (e *Engine) Start(ctx context.Context, workflowName, contextID string) (*models.StepResult, error) {
	def, err := e.resolver.Resolve(workflowName)
	if err != nil {
		return nil, err
	}

	if len(def.Steps) == 0 {
		return nil, fmt.Errorf("workflow %q: %w", workflowName, ErrEmptyWorkflow)
	}

	sess, err := e.store.Create(ctx, workflowName, contextID, def.Steps[0].ID)
	if err != nil {
		return nil, err
	}

	if e.pinDefinitions {
		sess.PinnedDefinition = def
	}

	result, err := e.generateStepAction(sess, def, 0)
	if err != nil {
		return nil, err
	}

	sess.PendingAction = pendingFromResult(result)
	if err := e.store.Update(ctx, sess); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Started workflow",
		"workflow", workflowName,
		"session_id", sess.SessionID,
		"context_id", contextID,
		"steps", len(def.Steps))

	return result, nil
}

// Advance records the previous step's output, moves the session forward and
// returns the next instruction or a completion summary. Advancement of one
// session is strictly sequential; a per-session lock guards the whole
// read-modify-persist sequence.
func (e *Engine) Advance(ctx context.Context, sessionID string, previousOutput any) (*models.StepResult, error) {
	release := e.store.Acquire(sessionID)
	defer release()

	sess := e.store.Get(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("session %q: %w; start a new workflow first", sessionID, persistence.ErrSessionNotFound)
	}

	if !sess.IsActive() {
		return nil, &SessionNotActiveError{SessionID: sessionID, Status: sess.Status}
	}

	def, err := e.definitionFor(sess)
	if err != nil {
		return nil, err
	}

	if sess.CurrentStepIndex >= len(def.Steps) {
		return nil, fmt.Errorf("session %q: step index %d out of bounds for workflow %q (%d steps)",
			sessionID, sess.CurrentStepIndex, sess.WorkflowName, len(def.Steps))
	}

	currentStep := def.Steps[sess.CurrentStepIndex]

	if previousOutput != nil {
		classifyOutput(currentStep.ID, previousOutput, sess.Data)
	}

	sess.History = append(sess.History, models.HistoryEntry{
		StepID:    currentStep.ID,
		StepName:  currentStep.Name,
		Status:    models.HistoryCompleted,
		Timestamp: nowUTC(),
		Output:    stringifyOutput(previousOutput),
	})

	sess.CurrentStepIndex++

	if sess.CurrentStepIndex >= len(def.Steps) {
		sess.Status = models.SessionStatusCompleted
		sess.PendingAction = nil

		if err := e.store.Update(ctx, sess); err != nil {
			return nil, err
		}

		e.logger.InfoContext(ctx, "Workflow completed",
			"session_id", sess.SessionID,
			"workflow", sess.WorkflowName,
			"steps_completed", len(sess.History))

		return &models.StepResult{
			Success:   true,
			SessionID: sess.SessionID,
			CurrentStep: models.CurrentStep{
				Index: sess.CurrentStepIndex - 1,
				ID:    currentStep.ID,
				Name:  currentStep.Name,
			},
			Message: completionMessage(sess, def),
			NextAction: models.NextAction{
				Type:        models.NextActionWorkflowComplete,
				Description: "Workflow completed successfully",
			},
		}, nil
	}

	nextStep := def.Steps[sess.CurrentStepIndex]
	sess.CurrentStepID = nextStep.ID

	result, err := e.generateStepAction(sess, def, sess.CurrentStepIndex)
	if err != nil {
		return nil, err
	}

	sess.PendingAction = pendingFromResult(result)
	if err := e.store.Update(ctx, sess); err != nil {
		return nil, err
	}

	return result, nil
}

// Status reports on a session without mutating it. An empty sessionID means
// the most-recently-updated active session; when none exists the report says
// so instead of failing.
func (e *Engine) Status(_ context.Context, sessionID string) (*models.SessionStatusReport, error) {
	var sess *models.Session
	if sessionID != "" {
		sess = e.store.Get(sessionID)
		if sess == nil {
			return nil, fmt.Errorf("session %q: %w", sessionID, persistence.ErrSessionNotFound)
		}
	} else {
		sess = e.store.GetActiveSession()
	}

	if sess == nil {
		return &models.SessionStatusReport{
			Summary: "No active session. Use start_workflow to begin one.",
		}, nil
	}

	def, err := e.definitionFor(sess)
	if err != nil {
		// The session still exists even if its definition no longer loads;
		// report what is known.
		return &models.SessionStatusReport{
			Session: sess,
			Summary: fmt.Sprintf("Session %s (workflow %q, status %s); definition unavailable: %v",
				sess.SessionID, sess.WorkflowName, sess.Status, err),
		}, nil
	}

	return &models.SessionStatusReport{
		Session: sess,
		Summary: statusSummary(sess, def),
	}, nil
}

// Abort deletes a session. An empty sessionID targets the active session.
// Returns the id of the session that was removed, or "" when there was
// nothing to abort.
func (e *Engine) Abort(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		active := e.store.GetActiveSession()
		if active == nil {
			return "", nil
		}

		sessionID = active.SessionID
	}

	if err := e.store.Delete(ctx, sessionID); err != nil {
		return "", err
	}

	return sessionID, nil
}

// Fail transitions an active session to failed. This is the only path into
// the failed status; nothing fails a session implicitly.
func (e *Engine) Fail(ctx context.Context, sessionID, reason string) error {
	release := e.store.Acquire(sessionID)
	defer release()

	sess := e.store.Get(sessionID)
	if sess == nil {
		return fmt.Errorf("session %q: %w", sessionID, persistence.ErrSessionNotFound)
	}

	if !sess.IsActive() {
		return &SessionNotActiveError{SessionID: sessionID, Status: sess.Status}
	}

	sess.Status = models.SessionStatusFailed
	sess.PendingAction = nil
	sess.History = append(sess.History, models.HistoryEntry{
		StepID:    sess.CurrentStepID,
		StepName:  sess.CurrentStepID,
		Status:    models.HistoryFailed,
		Timestamp: nowUTC(),
		Output:    reason,
	})

	if err := e.store.Update(ctx, sess); err != nil {
		return err
	}

	e.logger.WarnContext(ctx, "Workflow failed",
		"session_id", sessionID,
		"workflow", sess.WorkflowName,
		"reason", reason)

	return nil
}

// ListWorkflows exposes the resolver's discovery listing.
func (e *Engine) ListWorkflows() []models.WorkflowSummary {
	return e.resolver.ListAll()
}

// definitionFor returns the pinned snapshot when present, otherwise
// re-resolves the definition by name so workflow file edits take effect on
// the next call.
func (e *Engine) definitionFor(sess *models.Session) (*models.WorkflowDefinition, error) {
	if sess.PinnedDefinition != nil {
		return sess.PinnedDefinition, nil
	}

	return e.resolver.Resolve(sess.WorkflowName)
}

func pendingFromResult(result *models.StepResult) *models.PendingAction {
	return &models.PendingAction{
		Type:        string(result.NextAction.Type),
		Description: result.NextAction.Description,
		Instruction: result.NextAction.Instruction,
	}
}
