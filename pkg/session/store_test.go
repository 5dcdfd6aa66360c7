package session

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speckit/speckit/pkg/models"
	"github.com/speckit/speckit/pkg/persistence/file"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	root := t.TempDir()

	repo, err := file.NewSessionRepository(root)
	require.NoError(t, err)

	store, err := NewStore(context.Background(), repo, slog.Default())
	require.NoError(t, err)

	return store, root
}

func TestStore_Create_InitialState(t *testing.T) {
	store, _ := newTestStore(t)

	session, err := store.Create(context.Background(), "feature-standard", "TICKET-42", "fetch-work-item")
	require.NoError(t, err)

	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, models.SessionStatusActive, session.Status)
	assert.Equal(t, 0, session.CurrentStepIndex)
	assert.Equal(t, "fetch-work-item", session.CurrentStepID)
	assert.Empty(t, session.History)
	assert.Empty(t, session.Data)
	assert.Equal(t, models.SessionSchemaVersion, session.SchemaVersion)
}

func TestStore_Get_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	created, err := store.Create(ctx, "feature-standard", "TICKET-42", "fetch-work-item")
	require.NoError(t, err)

	got := store.Get(created.SessionID)
	require.NotNil(t, got)

	// Mutating the returned copy must not touch the canonical record.
	got.Data["specification"] = "rogue write"
	again := store.Get(created.SessionID)
	assert.NotContains(t, again.Data, "specification")
}

func TestStore_Get_AbsentReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Nil(t, store.Get("wf-nope"))
}

func TestStore_GetActiveSession_MostRecentWins(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	first, err := store.Create(ctx, "feature-standard", "TICKET-1", "fetch-work-item")
	require.NoError(t, err)

	second, err := store.Create(ctx, "quick-fix", "TICKET-2", "fetch-work-item")
	require.NoError(t, err)

	// Touch the first session so it becomes the most recently updated.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.Update(ctx, first))

	active := store.GetActiveSession()
	require.NotNil(t, active)
	assert.Equal(t, first.SessionID, active.SessionID)

	// Idempotent lookup: repeated calls with no mutation agree.
	again := store.GetActiveSession()
	require.NotNil(t, again)
	assert.Equal(t, active.SessionID, again.SessionID)

	// A terminal session is never returned.
	first.Status = models.SessionStatusCompleted
	require.NoError(t, store.Update(ctx, first))

	active = store.GetActiveSession()
	require.NotNil(t, active)
	assert.Equal(t, second.SessionID, active.SessionID)
}

func TestStore_GetActiveSession_NoneActive(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	session, err := store.Create(ctx, "feature-standard", "TICKET-1", "fetch-work-item")
	require.NoError(t, err)

	session.Status = models.SessionStatusFailed
	require.NoError(t, store.Update(ctx, session))

	assert.Nil(t, store.GetActiveSession())
}

func TestStore_Update_StampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	session, err := store.Create(ctx, "feature-standard", "TICKET-42", "fetch-work-item")
	require.NoError(t, err)

	before := session.UpdatedAt
	time.Sleep(5 * time.Millisecond)

	session.CurrentStepIndex = 1
	require.NoError(t, store.Update(ctx, session))

	stored := store.Get(session.SessionID)
	assert.Equal(t, 1, stored.CurrentStepIndex)
	assert.True(t, stored.UpdatedAt.After(before))
}

func TestStore_Delete_RemovesEverywhere(t *testing.T) {
	ctx := context.Background()
	store, root := newTestStore(t)

	session, err := store.Create(ctx, "feature-standard", "TICKET-42", "fetch-work-item")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, session.SessionID))

	assert.Nil(t, store.Get(session.SessionID))
	assert.Nil(t, store.GetActiveSession())

	// The durable mirror is gone too: a restarted store sees nothing.
	repo, err := file.NewSessionRepository(root)
	require.NoError(t, err)

	restarted, err := NewStore(ctx, repo, slog.Default())
	require.NoError(t, err)
	assert.Nil(t, restarted.Get(session.SessionID))
}

func TestStore_Delete_AbsentIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.Delete(context.Background(), "wf-missing"))
}

func TestStore_RoundTripAcrossRestart(t *testing.T) {
	ctx := context.Background()
	store, root := newTestStore(t)

	session, err := store.Create(ctx, "feature-standard", "TICKET-42", "fetch-work-item")
	require.NoError(t, err)

	session.Data["specification"] = "draft"
	session.History = append(session.History, models.HistoryEntry{
		StepID:    "fetch-work-item",
		StepName:  "Fetch work item",
		Status:    models.HistoryCompleted,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, store.Update(ctx, session))

	repo, err := file.NewSessionRepository(root)
	require.NoError(t, err)

	restarted, err := NewStore(ctx, repo, slog.Default())
	require.NoError(t, err)

	loaded := restarted.Get(session.SessionID)
	require.NotNil(t, loaded)
	assert.Equal(t, session.WorkflowName, loaded.WorkflowName)
	assert.Equal(t, session.ContextID, loaded.ContextID)
	assert.Equal(t, "draft", loaded.Data["specification"])
	require.Len(t, loaded.History, 1)
	assert.Equal(t, "fetch-work-item", loaded.History[0].StepID)
}

func TestStore_Acquire_SerializesPerSession(t *testing.T) {
	store, _ := newTestStore(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		counter int
		maxSeen int
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			release := store.Acquire("wf-contended")
			defer release()

			mu.Lock()
			counter++
			if counter > maxSeen {
				maxSeen = counter
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxSeen, "at most one holder of a session lock at a time")
}
