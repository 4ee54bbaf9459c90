package reputation

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/interfaces"
	"github.com/bobmcallan/investbadge/internal/models"
)

var (
	// ErrRefreshFailed wraps any fault during a refresh. The subject's
	// previous score and type are left unchanged.
	ErrRefreshFailed = errors.New("refresh failed")

	// ErrRateLimited is returned when a new refresh exceeds the configured rate.
	ErrRateLimited = errors.New("refresh rate limited")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("refresher closed")

	// ErrRefreshConflict is returned when a profile already has a refresh in
	// flight for a different allocation.
	ErrRefreshConflict = errors.New("refresh in progress for a different allocation")
)

// Subject is a profile owner that can be refreshed. Settle is the only
// path by which a refresh mutates the owner; a returned error fails the task.
// The undo returned by a successful Settle restores the previous score, type
// and lastUpdated, and is called when another subject of the task fails.
type Subject interface {
	SessionID() string
	Snapshot() (models.InvestorProfile, models.PortfolioAllocation)
	Settle(update models.ScoreUpdate) (undo func() error, err error)
}

// Refresher runs asynchronous score refreshes with at most one task in
// flight per profile and per session. A second request for the same profile
// and allocation joins the running task.
type Refresher struct {
	oracle  interfaces.ScoreOracle
	events  interfaces.EventPublisher
	rng     Rand
	now     func() time.Time
	limiter *rate.Limiter
	workers int
	logger  *common.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	inflight  map[string]*Task // by profile ID
	bySession map[string]*Task
	closed    bool
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithRand sets the perturbation source.
func WithRand(rng Rand) Option {
	return func(r *Refresher) { r.rng = rng }
}

// WithClock sets the time source used for lastUpdated and task timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Refresher) { r.now = now }
}

// WithRateLimit limits new (non-joined) refreshes to perMinute with the given burst.
// perMinute <= 0 disables limiting.
func WithRateLimit(perMinute, burst int) Option {
	return func(r *Refresher) {
		if perMinute <= 0 {
			r.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
	}
}

// WithEvents sets the lifecycle event publisher.
func WithEvents(p interfaces.EventPublisher) Option {
	return func(r *Refresher) { r.events = p }
}

// WithWorkers bounds RefreshAll concurrency.
func WithWorkers(n int) Option {
	return func(r *Refresher) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *common.Logger) Option {
	return func(r *Refresher) { r.logger = l }
}

// NewRefresher creates a Refresher that confirms scores with oracle.
func NewRefresher(oracle interfaces.ScoreOracle, opts ...Option) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Refresher{
		oracle:    oracle,
		rng:       NewRand(0),
		now:       time.Now,
		workers:   4,
		logger:    common.NewSilentLogger(),
		ctx:       ctx,
		cancel:    cancel,
		inflight:  make(map[string]*Task),
		bySession: make(map[string]*Task),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh starts a refresh for subject, or joins the one already in flight
// for the same profile. A subject that is already part of a running task gets
// that task back even if its profile ID changed since. Allocation errors and
// ErrRefreshConflict are returned synchronously; oracle and settle faults
// surface through the task.
func (r *Refresher) Refresh(subject Subject) (*Task, error) {
	return r.start(context.Background(), subject, false)
}

// RefreshAll refreshes every subject with at most the configured number of
// concurrent waits, blocking on the rate limiter and on conflicting refreshes
// instead of rejecting.
// It returns the first error.
func (r *Refresher) RefreshAll(ctx context.Context, subjects []Subject) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, s := range subjects {
		g.Go(func() error {
			t, err := r.startAfterConflicts(gctx, s)
			if err != nil {
				return err
			}
			_, err = t.Wait(gctx)
			return err
		})
	}
	return g.Wait()
}

// startAfterConflicts waits out any refresh of the same profile running for a
// different allocation, then starts or joins.
func (r *Refresher) startAfterConflicts(ctx context.Context, s Subject) (*Task, error) {
	for {
		t, err := r.start(ctx, s, true)
		if !errors.Is(err, ErrRefreshConflict) {
			return t, err
		}
		profile, _ := s.Snapshot()
		if busy, ok := r.InFlight(profile.ID); ok {
			if _, werr := busy.Wait(ctx); werr != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
	}
}

// InFlight returns the running task for a profile, if any.
func (r *Refresher) InFlight(profileID string) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.inflight[profileID]
	return t, ok
}

// Close cancels running refreshes and waits for them to finish.
// Cancelled tasks fail with ErrRefreshFailed.
func (r *Refresher) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
	r.wg.Wait()
}

func (r *Refresher) start(ctx context.Context, subject Subject, block bool) (*Task, error) {
	profile, alloc := subject.Snapshot()
	if err := alloc.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if t, joined, err := r.joinLocked(subject, profile.ID, alloc); err != nil || joined {
		r.mu.Unlock()
		if joined {
			r.publish(models.RefreshEventCoalesced, subject.SessionID(), t.Info())
		}
		return t, err
	}

	if r.limiter != nil {
		if block {
			r.mu.Unlock()
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			r.mu.Lock()
			// Another caller may have started one while we waited.
			if t, joined, err := r.joinLocked(subject, profile.ID, alloc); err != nil || joined {
				r.mu.Unlock()
				if joined {
					r.publish(models.RefreshEventCoalesced, subject.SessionID(), t.Info())
				}
				return t, err
			}
		} else if !r.limiter.Allow() {
			r.mu.Unlock()
			return nil, ErrRateLimited
		}
	}

	t := newTask(uuid.New().String(), subject, profile.ID, alloc, r.now())
	r.inflight[profile.ID] = t
	r.bySession[t.SessionID] = t
	r.wg.Add(1)
	r.mu.Unlock()

	r.logger.Info().
		Str("task_id", t.ID).
		Str("session_id", t.SessionID).
		Str("profile_id", t.ProfileID).
		Msg("Refresh started")
	r.publish(models.RefreshEventStarted, t.SessionID, t.Info())

	go r.run(t, profile, alloc)
	return t, nil
}

// joinLocked must be called with r.mu held.
func (r *Refresher) joinLocked(subject Subject, profileID string, alloc models.PortfolioAllocation) (*Task, bool, error) {
	if r.closed {
		return nil, false, ErrClosed
	}
	sid := subject.SessionID()
	if t, ok := r.bySession[sid]; ok {
		return t, true, nil
	}
	t, ok := r.inflight[profileID]
	if !ok {
		return nil, false, nil
	}
	if t.alloc != alloc {
		return nil, false, fmt.Errorf("%w: profile %s", ErrRefreshConflict, profileID)
	}
	t.subjects = append(t.subjects, subject)
	r.bySession[sid] = t
	return t, true, nil
}

func (r *Refresher) run(t *Task, profile models.InvestorProfile, alloc models.PortfolioAllocation) {
	defer r.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("task_id", t.ID).
				Str("panic", fmt.Sprintf("%v", rec)).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic in refresh")
			r.complete(t, models.ScoreUpdate{}, fmt.Errorf("%w: panic: %v", ErrRefreshFailed, rec))
			t.release()
		}
	}()

	update := models.ScoreUpdate{
		Score:     Perturb(score(alloc), r.rng),
		Type:      classify(alloc),
		UpdatedAt: r.now(),
	}

	err := r.oracle.Confirm(r.ctx, models.ScoreConfirmation{
		TaskID:    t.ID,
		ProfileID: profile.ID,
		Address:   profile.Address,
		Score:     update.Score,
		Type:      update.Type,
	})
	if err != nil {
		r.complete(t, update, fmt.Errorf("%w: %w", ErrRefreshFailed, err))
		return
	}
	r.complete(t, update, nil)
}

// complete settles every joined subject, releases the profile and closes the task.
// Settlement is all or nothing: if one subject fails, those already settled are undone.
func (r *Refresher) complete(t *Task, update models.ScoreUpdate, err error) {
	r.mu.Lock()
	subjects := t.subjects
	if r.inflight[t.ProfileID] == t {
		delete(r.inflight, t.ProfileID)
	}
	for _, s := range subjects {
		if r.bySession[s.SessionID()] == t {
			delete(r.bySession, s.SessionID())
		}
	}
	r.mu.Unlock()

	if err == nil {
		err = r.settleAll(t, subjects, update)
	}

	t.finish(update, err, r.now())
	info := t.Info()

	eventType := models.RefreshEventSettled
	if err != nil {
		eventType = models.RefreshEventFailed
		r.logger.Warn().Err(err).Str("task_id", t.ID).Str("profile_id", t.ProfileID).Msg("Refresh failed")
	} else {
		r.logger.Info().
			Str("task_id", t.ID).
			Str("profile_id", t.ProfileID).
			Int("score", update.Score).
			Str("type", string(update.Type)).
			Msg("Refresh settled")
	}
	for _, s := range subjects {
		r.publish(eventType, s.SessionID(), info)
	}
	t.release()
}

func (r *Refresher) settleAll(t *Task, subjects []Subject, update models.ScoreUpdate) error {
	undos := make([]func() error, 0, len(subjects))
	for _, s := range subjects {
		undo, err := s.Settle(update)
		if err == nil {
			undos = append(undos, undo)
			continue
		}
		for i := len(undos) - 1; i >= 0; i-- {
			if uerr := undos[i](); uerr != nil {
				r.logger.Error().Err(uerr).Str("task_id", t.ID).Msg("Failed to undo settled refresh")
			}
		}
		return fmt.Errorf("%w: settle session %s: %w", ErrRefreshFailed, s.SessionID(), err)
	}
	return nil
}

func (r *Refresher) publish(eventType, sessionID string, info models.RefreshTaskInfo) {
	if r.events == nil {
		return
	}
	info.SessionID = sessionID
	r.events.Publish(models.RefreshEvent{
		Type:      eventType,
		SessionID: sessionID,
		Task:      info,
		Timestamp: r.now(),
	})
}
