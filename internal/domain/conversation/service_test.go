package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/executor"
	"github.com/ledeberg/tiller/internal/domain/preview"
	"github.com/ledeberg/tiller/internal/domain/task"
	"github.com/ledeberg/tiller/internal/repository"
	"github.com/ledeberg/tiller/internal/repository/mocks"
)

// fakeActionRepo gives the tests real compare-and-set semantics, which the
// concurrency test depends on.
type fakeActionRepo struct {
	mu   sync.Mutex
	recs map[string]*repository.PendingActionRecord
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{recs: make(map[string]*repository.PendingActionRecord)}
}

func (f *fakeActionRepo) Create(_ context.Context, rec *repository.PendingActionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.recs[rec.ID] = &cp
	return nil
}

func (f *fakeActionRepo) Get(_ context.Context, id string) (*repository.PendingActionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeActionRepo) TransitionStatus(_ context.Context, id string, from, to repository.ActionStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if rec.Status != from {
		return false, nil
	}
	rec.Status = to
	return true, nil
}

func (f *fakeActionRepo) status(id string) repository.ActionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recs[id].Status
}

type serviceFixture struct {
	svc        *Service
	actions    *fakeActionRepo
	snapReader *mocks.SnapshotReader
	tasks      *mocks.TaskRepository
	objectives *mocks.ObjectiveRepository
	now        time.Time
	clock      *time.Time
}

func newServiceFixture(t *testing.T, snap *repository.Snapshot) *serviceFixture {
	t.Helper()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) // Monday, week 2026-W10
	clock := now

	snapReader := new(mocks.SnapshotReader)
	snapReader.On("ReadSnapshot", mock.Anything).Return(snap, nil)

	actions := newFakeActionRepo()
	tasks := new(mocks.TaskRepository)
	objectives := new(mocks.ObjectiveRepository)
	exec := executor.New(tasks, objectives, new(mocks.InboxRepository), new(mocks.CalendarRepository), new(mocks.SettingsRepository), nil)

	f := &serviceFixture{
		actions:    actions,
		snapReader: snapReader,
		tasks:      tasks,
		objectives: objectives,
		now:        now,
		clock:      &clock,
	}
	f.svc = NewService(snapReader, actions, exec, nil, nil, nil, func() time.Time { return *f.clock }, 0)
	return f
}

func emptySnapshot() *repository.Snapshot {
	return &repository.Snapshot{Capacity: config.DefaultCapacity()}
}

func TestHandleMessage_SlotFlowThroughConfirmation(t *testing.T) {
	f := newServiceFixture(t, emptySnapshot())
	f.objectives.On("Create", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	r, err := f.svc.HandleMessage(ctx, "s1", "new objective learn spanish")
	require.NoError(t, err)
	require.Equal(t, StateCollecting, r.State)
	require.Contains(t, r.Response, "Which period")

	// a bad answer re-asks the same question
	r, err = f.svc.HandleMessage(ctx, "s1", "whenever")
	require.NoError(t, err)
	require.Equal(t, StateCollecting, r.State)
	require.Contains(t, r.Response, "didn't catch")

	r, err = f.svc.HandleMessage(ctx, "s1", "primer semestre 2026")
	require.NoError(t, err)
	require.Equal(t, StateAwaiting, r.State)
	require.True(t, r.RequiresConfirmation)
	require.NotEmpty(t, r.ActionID)
	require.NotNil(t, r.ExpiresAt)
	require.Equal(t, f.now.Add(DefaultTTL), *r.ExpiresAt)
	actionID := r.ActionID

	r, err = f.svc.HandleMessage(ctx, "s1", "yes")
	require.NoError(t, err)
	require.Contains(t, r.Response, "Done")
	require.Equal(t, StateIdle, r.State)
	require.Equal(t, repository.ActionConfirmed, f.actions.status(actionID))
	f.objectives.AssertNumberOfCalls(t, "Create", 1)
}

func TestConfirmAction_SecondConfirmIsAlreadyResolved(t *testing.T) {
	f := newServiceFixture(t, emptySnapshot())
	f.tasks.On("Create", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	r, err := f.svc.HandleMessage(ctx, "s1", "add task write report")
	require.NoError(t, err)
	require.True(t, r.RequiresConfirmation)

	cr, err := f.svc.ConfirmAction(ctx, r.ActionID, true)
	require.NoError(t, err)
	require.Equal(t, OutcomeExecuted, cr.Outcome)

	cr, err = f.svc.ConfirmAction(ctx, r.ActionID, true)
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyResolved, cr.Outcome)
	f.tasks.AssertNumberOfCalls(t, "Create", 1)
}

func TestConfirmAction_Cancel(t *testing.T) {
	f := newServiceFixture(t, emptySnapshot())
	ctx := context.Background()

	r, err := f.svc.HandleMessage(ctx, "s1", "add task write report")
	require.NoError(t, err)

	cr, err := f.svc.ConfirmAction(ctx, r.ActionID, false)
	require.NoError(t, err)
	require.Equal(t, OutcomeCancelled, cr.Outcome)
	require.Equal(t, repository.ActionCancelled, f.actions.status(r.ActionID))
	f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirmAction_ExpiredAfterTTL(t *testing.T) {
	f := newServiceFixture(t, emptySnapshot())
	ctx := context.Background()

	r, err := f.svc.HandleMessage(ctx, "s1", "add task write report")
	require.NoError(t, err)

	*f.clock = f.now.Add(DefaultTTL + time.Minute)

	cr, err := f.svc.ConfirmAction(ctx, r.ActionID, true)
	require.NoError(t, err)
	require.Equal(t, OutcomeExpired, cr.Outcome)
	require.Equal(t, repository.ActionExpired, f.actions.status(r.ActionID))
	f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleMessage_LazyExpiryOnNextMessage(t *testing.T) {
	f := newServiceFixture(t, emptySnapshot())
	ctx := context.Background()

	r, err := f.svc.HandleMessage(ctx, "s1", "add task write report")
	require.NoError(t, err)
	actionID := r.ActionID

	*f.clock = f.now.Add(DefaultTTL + time.Minute)

	r, err = f.svc.HandleMessage(ctx, "s1", "add task another thing")
	require.NoError(t, err)
	require.Contains(t, r.Response, "expired")
	require.True(t, r.RequiresConfirmation, "the new request should still produce a pending action")
	require.Equal(t, repository.ActionExpired, f.actions.status(actionID))
}

func TestConfirmAction_GuardrailVeto(t *testing.T) {
	// 1800 committed minutes against 1680 usable: already overloaded
	snap := emptySnapshot()
	snap.ReadAt = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	snap.Tasks = []task.Task{{
		ID: "t1", Title: "Existing load", Kind: task.KindSimple,
		Status: task.StatusActive, EstimatedMinutes: 1800, CommittedWeek: "2026-W10",
	}}
	f := newServiceFixture(t, snap)
	ctx := context.Background()

	r, err := f.svc.HandleMessage(ctx, "s1", "add task big push 100 min this week")
	require.NoError(t, err)
	require.True(t, r.RequiresConfirmation)

	cr, err := f.svc.ConfirmAction(ctx, r.ActionID, true)
	require.NoError(t, err)
	require.Equal(t, OutcomeVetoed, cr.Outcome)
	require.Contains(t, cr.Response, "over capacity")
	require.Equal(t, repository.ActionCancelled, f.actions.status(r.ActionID))
	f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirmAction_ConcurrentConfirmsExecuteOnce(t *testing.T) {
	f := newServiceFixture(t, emptySnapshot())
	ctx := context.Background()

	var created atomic.Int32
	f.tasks.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		created.Add(1)
	}).Return(nil)

	p := preview.Preview{
		ID:      "act-race",
		Summary: "Create task \"Race\"",
		Payload: preview.Payload{CreateTasks: []task.Task{{ID: "t9", Title: "Race"}}},
	}
	previewJSON, err := json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, f.actions.Create(ctx, &repository.PendingActionRecord{
		ID: "act-race", SessionID: "s1", Status: repository.ActionPending,
		PreviewJSON: previewJSON, CreatedAt: f.now, ExpiresAt: f.now.Add(time.Hour),
	}))

	const n = 8
	outcomes := make([]Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cr, err := f.svc.ConfirmAction(ctx, "act-race", true)
			require.NoError(t, err)
			outcomes[i] = cr.Outcome
		}(i)
	}
	wg.Wait()

	executed := 0
	for _, o := range outcomes {
		if o == OutcomeExecuted {
			executed++
		}
	}
	require.Equal(t, 1, executed)
	require.Equal(t, int32(1), created.Load())
}

func TestHandleMessage_NothingPending(t *testing.T) {
	f := newServiceFixture(t, emptySnapshot())
	ctx := context.Background()

	r, err := f.svc.HandleMessage(ctx, "s1", "yes")
	require.NoError(t, err)
	require.Contains(t, r.Response, "nothing waiting")

	r, err = f.svc.HandleMessage(ctx, "s1", "how is the weather")
	require.NoError(t, err)
	require.False(t, r.RequiresConfirmation)
	require.Contains(t, r.Response, "What would you like to do")
}

func TestConfirmAction_UnknownID(t *testing.T) {
	f := newServiceFixture(t, emptySnapshot())
	_, err := f.svc.ConfirmAction(context.Background(), "nope", true)
	require.ErrorIs(t, err, ErrActionNotFound)
}
