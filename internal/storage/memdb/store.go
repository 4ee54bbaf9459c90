// Package memdb implements ProfileStore and FollowStore in process memory.
// Records live as long as the process.
package memdb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/interfaces"
	"github.com/bobmcallan/investbadge/internal/models"
)

// Store keeps copies of every record so callers cannot mutate stored state.
type Store struct {
	mu        sync.RWMutex
	profiles  map[string]models.InvestorProfile
	following map[string][]string
	logger    *common.Logger
}

var (
	_ interfaces.ProfileStore = (*Store)(nil)
	_ interfaces.FollowStore  = (*Store)(nil)
)

// NewStore creates an empty in-memory store.
func NewStore(logger *common.Logger) *Store {
	return &Store{
		profiles:  make(map[string]models.InvestorProfile),
		following: make(map[string][]string),
		logger:    logger,
	}
}

func (s *Store) GetProfile(_ context.Context, id string) (*models.InvestorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile '%s': %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) SaveProfile(_ context.Context, profile *models.InvestorProfile) error {
	if profile == nil || profile.ID == "" {
		return fmt.Errorf("profile ID is required")
	}
	s.mu.Lock()
	s.profiles[profile.ID] = *profile
	s.mu.Unlock()
	s.logger.Debug().Str("profile_id", profile.ID).Msg("Profile saved")
	return nil
}

func (s *Store) DeleteProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
	delete(s.following, id)
	return nil
}

// ListProfiles returns profiles ordered by ID.
func (s *Store) ListProfiles(_ context.Context) ([]*models.InvestorProfile, error) {
	s.mu.RLock()
	out := make([]*models.InvestorProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		p := p
		out = append(out, &p)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetFollowing(_ context.Context, ownerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.following[ownerID]...), nil
}

func (s *Store) SetFollowing(_ context.Context, ownerID string, investorIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(investorIDs) == 0 {
		delete(s.following, ownerID)
		return nil
	}
	s.following[ownerID] = append([]string{}, investorIDs...)
	return nil
}
