package reputation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/bobmcallan/investbadge/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixedRand always draws the same value, reduced into range.
type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fakeSubject struct {
	mu        sync.Mutex
	sessionID string
	profile   models.InvestorProfile
	alloc     models.PortfolioAllocation
	settleErr error
	settled   int
	undone    int
}

func newFakeSubject(sessionID, profileID string, alloc models.PortfolioAllocation) *fakeSubject {
	return &fakeSubject{
		sessionID: sessionID,
		profile: models.InvestorProfile{
			ID:      profileID,
			Address: "0x1234567890123456789012345678901234567890",
			Score:   11,
			Type:    models.InvestorTypeRiskAverse,
		},
		alloc: alloc,
	}
}

func (s *fakeSubject) SessionID() string { return s.sessionID }

func (s *fakeSubject) Snapshot() (models.InvestorProfile, models.PortfolioAllocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.alloc
}

func (s *fakeSubject) Settle(u models.ScoreUpdate) (func() error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settleErr != nil {
		return nil, s.settleErr
	}
	prev := s.profile
	s.profile.Score = u.Score
	s.profile.Type = u.Type
	s.profile.LastUpdated = u.UpdatedAt
	s.settled++
	return func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.profile.Score = prev.Score
		s.profile.Type = prev.Type
		s.profile.LastUpdated = prev.LastUpdated
		s.undone++
		return nil
	}, nil
}

// setProfileID simulates an account change.
func (s *fakeSubject) setProfileID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.ID = id
}

func (s *fakeSubject) current() models.InvestorProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// gateOracle blocks every confirmation until release is closed.
type gateOracle struct {
	release chan struct{}
	calls   atomic.Int32
	err     error
}

func newGateOracle() *gateOracle {
	return &gateOracle{release: make(chan struct{})}
}

func (o *gateOracle) Confirm(ctx context.Context, _ models.ScoreConfirmation) error {
	o.calls.Add(1)
	select {
	case <-o.release:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type instantOracle struct{ err error }

func (o instantOracle) Confirm(context.Context, models.ScoreConfirmation) error { return o.err }

var errChainDown = errors.New("chain unavailable")

type eventRecorder struct {
	mu     sync.Mutex
	events []models.RefreshEvent
}

func (r *eventRecorder) Publish(e models.RefreshEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
