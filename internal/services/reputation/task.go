package reputation

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/investbadge/internal/models"
)

// Task is the handle for one in-flight or finished refresh.
type Task struct {
	ID        string
	SessionID string
	ProfileID string
	StartedAt time.Time

	alloc models.PortfolioAllocation

	done     chan struct{}
	doneOnce sync.Once

	mu        sync.RWMutex
	status    models.RefreshStatus
	update    models.ScoreUpdate
	err       error
	settledAt time.Time

	// subjects is guarded by the owning Refresher's mutex.
	subjects []Subject
}

func newTask(id string, subject Subject, profileID string, alloc models.PortfolioAllocation, startedAt time.Time) *Task {
	return &Task{
		ID:        id,
		SessionID: subject.SessionID(),
		ProfileID: profileID,
		StartedAt: startedAt,
		alloc:     alloc,
		done:      make(chan struct{}),
		status:    models.RefreshStatusUpdating,
		subjects:  []Subject{subject},
	}
}

// Done is closed when the task settles or fails.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Status returns updating until the task finishes.
func (t *Task) Status() models.RefreshStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Result returns the settled update, or the failure. Only meaningful after Done.
func (t *Task) Result() (models.ScoreUpdate, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.update, t.err
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (models.ScoreUpdate, error) {
	select {
	case <-t.done:
		return t.Result()
	case <-ctx.Done():
		return models.ScoreUpdate{}, ctx.Err()
	}
}

// Info returns a point-in-time view of the task.
func (t *Task) Info() models.RefreshTaskInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info := models.RefreshTaskInfo{
		ID:        t.ID,
		SessionID: t.SessionID,
		ProfileID: t.ProfileID,
		Status:    t.status,
		StartedAt: t.StartedAt,
		SettledAt: t.settledAt,
	}
	if t.status == models.RefreshStatusSettled {
		info.Score = t.update.Score
		info.Type = t.update.Type
	}
	if t.err != nil {
		info.Error = t.err.Error()
	}
	return info
}

func (t *Task) finish(update models.ScoreUpdate, err error, at time.Time) {
	t.mu.Lock()
	if t.status != models.RefreshStatusUpdating {
		t.mu.Unlock()
		return
	}
	if err != nil {
		t.status = models.RefreshStatusFailed
		t.err = err
	} else {
		t.status = models.RefreshStatusSettled
		t.update = update
	}
	t.settledAt = at
	t.mu.Unlock()
}

// release unblocks waiters. Called after lifecycle events are published.
func (t *Task) release() {
	t.doneOnce.Do(func() { close(t.done) })
}
