package session

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/investbadge/internal/interfaces"
	"github.com/bobmcallan/investbadge/internal/models"
	"github.com/bobmcallan/investbadge/internal/services/reputation"
)

// Session is the context of one connected wallet. Score, type and
// lastUpdated change only through Settle.
type Session struct {
	id          string
	connectedAt time.Time
	store       interfaces.ProfileStore

	mu         sync.RWMutex
	profile    models.InvestorProfile
	allocation models.PortfolioAllocation
	lastTask   *reputation.Task
}

var _ reputation.Subject = (*Session)(nil)

func (s *Session) SessionID() string { return s.id }

// Snapshot returns copies of the profile and allocation.
func (s *Session) Snapshot() (models.InvestorProfile, models.PortfolioAllocation) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile, s.allocation
}

// Settle persists the refreshed score and then applies it. A store error
// leaves the session unchanged. The returned undo puts back the previous
// score, type and lastUpdated.
func (s *Session) Settle(update models.ScoreUpdate) (func() error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.profile
	next := s.profile
	next.Score = update.Score
	next.Type = update.Type
	next.LastUpdated = update.UpdatedAt
	if err := s.store.SaveProfile(context.Background(), &next); err != nil {
		return nil, err
	}
	s.profile = next
	return func() error { return s.restore(prev) }, nil
}

// restore reverts the reputation fields to prev, keeping any identity change
// made since. The session is reverted even when the store write fails.
func (s *Session) restore(prev models.InvestorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.Score = prev.Score
	s.profile.Type = prev.Type
	s.profile.LastUpdated = prev.LastUpdated
	reverted := s.profile
	return s.store.SaveProfile(context.Background(), &reverted)
}

func (s *Session) profileID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.ID
}

func (s *Session) setTask(t *reputation.Task) {
	s.mu.Lock()
	s.lastTask = t
	s.mu.Unlock()
}

// refreshInfo describes the latest refresh, or idle when none has run.
func (s *Session) refreshInfo() models.RefreshTaskInfo {
	s.mu.RLock()
	task := s.lastTask
	profileID := s.profile.ID
	s.mu.RUnlock()

	if task == nil {
		return models.RefreshTaskInfo{
			SessionID: s.id,
			ProfileID: profileID,
			Status:    models.RefreshStatusIdle,
		}
	}
	info := task.Info()
	info.SessionID = s.id
	return info
}
