package reputation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/investbadge/internal/models"
)

func waitTask(t *testing.T, task *Task) (models.ScoreUpdate, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	select {
	case <-task.Done():
	case <-ctx.Done():
		t.Fatal("task did not finish")
	}
	return task.Wait(ctx)
}

func TestRefresher_SettlesPerturbedScore(t *testing.T) {
	events := &eventRecorder{}
	r := NewRefresher(instantOracle{}, WithRand(fixedRand(5)), WithClock(fixedClock), WithEvents(events))
	defer r.Close()

	subject := newFakeSubject("s1", "p1", models.DefaultAllocation())
	task, err := r.Refresh(subject)
	require.NoError(t, err)

	update, err := waitTask(t, task)
	require.NoError(t, err)

	want := models.ScoreUpdate{Score: 95, Type: models.InvestorTypeBalanced, UpdatedAt: testNow}
	if diff := cmp.Diff(want, update); diff != "" {
		t.Errorf("update mismatch (-want +got):\n%s", diff)
	}

	p := subject.current()
	assert.Equal(t, 95, p.Score)
	assert.Equal(t, models.InvestorTypeBalanced, p.Type)
	assert.Equal(t, testNow, p.LastUpdated)
	assert.Equal(t, models.RefreshStatusSettled, task.Status())
	assert.Equal(t, []string{models.RefreshEventStarted, models.RefreshEventSettled}, events.types())

	_, inflight := r.InFlight("p1")
	assert.False(t, inflight)
}

func TestRefresher_NegativeOffset(t *testing.T) {
	r := NewRefresher(instantOracle{}, WithRand(fixedRand(0)))
	defer r.Close()

	subject := newFakeSubject("s1", "p1", models.PortfolioAllocation{})
	task, err := r.Refresh(subject)
	require.NoError(t, err)
	update, err := waitTask(t, task)
	require.NoError(t, err)
	assert.Equal(t, 65, update.Score)
	assert.Equal(t, models.InvestorTypeRiskAverse, update.Type, "type is never perturbed")
}

func TestRefresher_CoalescesSecondRequest(t *testing.T) {
	oracle := newGateOracle()
	events := &eventRecorder{}
	r := NewRefresher(oracle, WithRand(fixedRand(5)), WithEvents(events))
	defer r.Close()

	subject := newFakeSubject("s1", "p1", models.DefaultAllocation())
	first, err := r.Refresh(subject)
	require.NoError(t, err)
	assert.Equal(t, models.RefreshStatusUpdating, first.Status())

	second, err := r.Refresh(subject)
	require.NoError(t, err)
	assert.Same(t, first, second)

	close(oracle.release)
	_, err = waitTask(t, first)
	require.NoError(t, err)

	assert.Equal(t, int32(1), oracle.calls.Load())
	assert.Equal(t, 1, subject.settled)
	assert.Equal(t, []string{
		models.RefreshEventStarted,
		models.RefreshEventCoalesced,
		models.RefreshEventSettled,
	}, events.types())
}

func TestRefresher_JoinedSessionsAllSettle(t *testing.T) {
	oracle := newGateOracle()
	r := NewRefresher(oracle, WithRand(fixedRand(5)))
	defer r.Close()

	a := newFakeSubject("s1", "shared", models.DefaultAllocation())
	b := newFakeSubject("s2", "shared", models.DefaultAllocation())

	ta, err := r.Refresh(a)
	require.NoError(t, err)
	tb, err := r.Refresh(b)
	require.NoError(t, err)
	assert.Same(t, ta, tb)

	close(oracle.release)
	_, err = waitTask(t, ta)
	require.NoError(t, err)

	assert.Equal(t, 95, a.current().Score)
	assert.Equal(t, 95, b.current().Score)
}

func TestRefresher_RateLimitsNewRefreshes(t *testing.T) {
	oracle := newGateOracle()
	r := NewRefresher(oracle, WithRateLimit(1, 1))
	defer r.Close()

	first := newFakeSubject("s1", "p1", models.DefaultAllocation())
	task, err := r.Refresh(first)
	require.NoError(t, err)

	_, err = r.Refresh(newFakeSubject("s2", "p2", models.DefaultAllocation()))
	assert.ErrorIs(t, err, ErrRateLimited)

	joined, err := r.Refresh(first)
	require.NoError(t, err, "joining an in-flight refresh is not rate limited")
	assert.Same(t, task, joined)

	close(oracle.release)
	_, err = waitTask(t, task)
	require.NoError(t, err)
}

func TestRefresher_FailureLeavesProfileUnchanged(t *testing.T) {
	events := &eventRecorder{}
	r := NewRefresher(instantOracle{err: errChainDown}, WithEvents(events))
	defer r.Close()

	subject := newFakeSubject("s1", "p1", models.DefaultAllocation())
	before := subject.current()

	task, err := r.Refresh(subject)
	require.NoError(t, err)

	_, err = waitTask(t, task)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.ErrorIs(t, err, errChainDown)

	assert.Equal(t, before, subject.current())
	assert.Equal(t, models.RefreshStatusFailed, task.Status())
	info := task.Info()
	assert.Equal(t, models.RefreshStatusFailed, info.Status)
	assert.Zero(t, info.Score)
	assert.Contains(t, info.Error, "chain unavailable")
	assert.Equal(t, []string{models.RefreshEventStarted, models.RefreshEventFailed}, events.types())

	_, inflight := r.InFlight("p1")
	assert.False(t, inflight, "a failed refresh must release the profile")
}

func TestRefresher_SettleErrorFailsTask(t *testing.T) {
	r := NewRefresher(instantOracle{})
	defer r.Close()

	subject := newFakeSubject("s1", "p1", models.DefaultAllocation())
	subject.settleErr = errors.New("disk full")

	task, err := r.Refresh(subject)
	require.NoError(t, err)
	_, err = waitTask(t, task)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Equal(t, 11, subject.current().Score)
}

func TestRefresher_SettleErrorUndoesJoinedSubjects(t *testing.T) {
	oracle := newGateOracle()
	events := &eventRecorder{}
	r := NewRefresher(oracle, WithRand(fixedRand(9)), WithEvents(events))
	defer r.Close()

	a := newFakeSubject("s1", "p1", models.DefaultAllocation())
	b := newFakeSubject("s2", "p1", models.DefaultAllocation())
	b.settleErr = errChainDown
	before := a.current()

	task, err := r.Refresh(a)
	require.NoError(t, err)
	joined, err := r.Refresh(b)
	require.NoError(t, err)
	require.Same(t, task, joined)

	close(oracle.release)
	_, err = waitTask(t, task)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.ErrorIs(t, err, errChainDown)
	assert.Equal(t, models.RefreshStatusFailed, task.Status())

	assert.Equal(t, before, a.current(), "a settled subject is rolled back when a joined one fails")
	assert.Equal(t, 1, a.undone)
	assert.Equal(t, 11, b.current().Score)
	assert.Contains(t, events.types(), models.RefreshEventFailed)
	assert.NotContains(t, events.types(), models.RefreshEventSettled)
}

func TestRefresher_DifferentAllocationConflicts(t *testing.T) {
	oracle := newGateOracle()
	r := NewRefresher(oracle, WithRand(fixedRand(5)))
	defer r.Close()

	a := newFakeSubject("s1", "shared", models.PortfolioAllocation{Stablecoins: 100})
	b := newFakeSubject("s2", "shared", models.PortfolioAllocation{Altcoins: 70, DeFi: 30})

	task, err := r.Refresh(a)
	require.NoError(t, err)

	_, err = r.Refresh(b)
	assert.ErrorIs(t, err, ErrRefreshConflict)

	close(oracle.release)
	_, err = waitTask(t, task)
	require.NoError(t, err)
	assert.Equal(t, 76, a.current().Score)
	assert.Equal(t, 0, b.settled, "a conflicting subject never receives another allocation's score")

	next, err := r.Refresh(b)
	require.NoError(t, err)
	update, err := waitTask(t, next)
	require.NoError(t, err)
	assert.Equal(t, 58, update.Score)
	assert.Equal(t, models.InvestorTypeAggressive, b.current().Type)
}

func TestRefresher_RefreshAllWaitsOutConflicts(t *testing.T) {
	r := NewRefresher(instantOracle{}, WithRand(fixedRand(5)))
	defer r.Close()

	a := newFakeSubject("s1", "shared", models.PortfolioAllocation{Stablecoins: 100})
	b := newFakeSubject("s2", "shared", models.PortfolioAllocation{Altcoins: 70, DeFi: 30})

	require.NoError(t, r.RefreshAll(context.Background(), []Subject{a, b}))
	assert.Equal(t, models.InvestorTypeRiskAverse, a.current().Type)
	assert.Equal(t, 76, a.current().Score)
	assert.Equal(t, models.InvestorTypeAggressive, b.current().Type)
	assert.Equal(t, 58, b.current().Score)
}

func TestRefresher_SubjectKeepsTaskAcrossProfileChange(t *testing.T) {
	oracle := newGateOracle()
	r := NewRefresher(oracle, WithRand(fixedRand(5)))
	defer r.Close()

	subject := newFakeSubject("s1", "p1", models.DefaultAllocation())
	first, err := r.Refresh(subject)
	require.NoError(t, err)

	subject.setProfileID("p2")
	second, err := r.Refresh(subject)
	require.NoError(t, err)
	assert.Same(t, first, second)

	close(oracle.release)
	_, err = waitTask(t, first)
	require.NoError(t, err)
	assert.Equal(t, int32(1), oracle.calls.Load())
	assert.Equal(t, 1, subject.settled)

	_, busy := r.InFlight("p1")
	assert.False(t, busy)
}

func TestRefresher_InvalidAllocationIsSynchronous(t *testing.T) {
	r := NewRefresher(instantOracle{})
	defer r.Close()

	task, err := r.Refresh(newFakeSubject("s1", "p1", models.PortfolioAllocation{Altcoins: -1}))
	assert.Nil(t, task)
	assert.ErrorIs(t, err, models.ErrInvalidAllocation)
}

func TestRefresher_CloseCancelsInFlight(t *testing.T) {
	oracle := newGateOracle()
	r := NewRefresher(oracle)

	subject := newFakeSubject("s1", "p1", models.DefaultAllocation())
	task, err := r.Refresh(subject)
	require.NoError(t, err)

	r.Close()

	_, err = waitTask(t, task)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 11, subject.current().Score)

	_, err = r.Refresh(subject)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRefresher_RefreshAll(t *testing.T) {
	r := NewRefresher(instantOracle{}, WithRand(fixedRand(5)), WithWorkers(2), WithRateLimit(6000, 2))
	defer r.Close()

	var subjects []Subject
	var fakes []*fakeSubject
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		s := newFakeSubject("s-"+id, "p-"+id, models.PortfolioAllocation{Stablecoins: 100})
		fakes = append(fakes, s)
		subjects = append(subjects, s)
	}

	require.NoError(t, r.RefreshAll(context.Background(), subjects))
	for _, s := range fakes {
		assert.Equal(t, 76, s.current().Score)
	}
}

func TestRefresher_RefreshAllReturnsFirstError(t *testing.T) {
	r := NewRefresher(instantOracle{err: errChainDown})
	defer r.Close()

	err := r.RefreshAll(context.Background(), []Subject{
		newFakeSubject("s1", "p1", models.DefaultAllocation()),
		newFakeSubject("s2", "p2", models.DefaultAllocation()),
	})
	assert.ErrorIs(t, err, ErrRefreshFailed)
}

func TestSimulatedOracle(t *testing.T) {
	ok := NewSimulatedOracle(0, 0, fixedRand(0), nil)
	assert.NoError(t, ok.Confirm(context.Background(), models.ScoreConfirmation{TaskID: "t1"}))

	failing := NewSimulatedOracle(0, 100, fixedRand(99), nil)
	assert.ErrorIs(t, failing.Confirm(context.Background(), models.ScoreConfirmation{TaskID: "t2"}), ErrConfirmationRejected)

	slow := NewSimulatedOracle(time.Hour, 0, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, slow.Confirm(ctx, models.ScoreConfirmation{TaskID: "t3"}), context.Canceled)

	short := NewSimulatedOracle(5*time.Millisecond, 0, nil, nil)
	start := time.Now()
	require.NoError(t, short.Confirm(context.Background(), models.ScoreConfirmation{TaskID: "t4"}))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}
