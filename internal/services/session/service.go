// Package session manages connected wallet sessions: profile identity,
// follow sets and score refreshes.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/interfaces"
	"github.com/bobmcallan/investbadge/internal/models"
	"github.com/bobmcallan/investbadge/internal/services/reputation"
	"github.com/bobmcallan/investbadge/internal/wallet"
)

var (
	// ErrSessionNotFound is returned for unknown or disconnected sessions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSelfFollow is returned when a session tries to follow its own profile.
	ErrSelfFollow = errors.New("cannot follow your own profile")
)

// Service implements interfaces.SessionService.
type Service struct {
	profiles  interfaces.ProfileStore
	follows   interfaces.FollowStore
	refresher *reputation.Refresher
	defaults  defaults
	now       func() time.Time
	logger    *common.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	followMu sync.Mutex
}

type defaults struct {
	allocation           models.PortfolioAllocation
	portfolioValue       float64
	diversificationScore int
}

var _ interfaces.SessionService = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for connect timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a session service. Profile defaults come from config.
func NewService(storage interfaces.StorageManager, refresher *reputation.Refresher, config *common.Config, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		profiles:  storage.ProfileStore(),
		follows:   storage.FollowStore(),
		refresher: refresher,
		defaults: defaults{
			allocation:           config.Reputation.Allocation,
			portfolioValue:       config.Profile.PortfolioValue,
			diversificationScore: config.Profile.DiversificationScore,
		},
		now:      time.Now,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a session for address. The profile's score and type are
// derived from the allocation.
func (s *Service) Connect(ctx context.Context, address string, allocation *models.PortfolioAllocation) (*models.SessionView, error) {
	addr, err := wallet.ChecksumAddress(address)
	if err != nil {
		return nil, err
	}

	alloc := s.defaults.allocation
	if allocation != nil {
		alloc = *allocation
	}
	assessment, err := reputation.Assess(alloc)
	if err != nil {
		return nil, err
	}

	id, err := wallet.ProfileID(addr)
	if err != nil {
		return nil, err
	}

	profile := models.InvestorProfile{
		ID:                   id,
		Address:              addr,
		Score:                assessment.Score,
		Type:                 assessment.Type,
		NFTID:                models.NFTLabel(id),
		PortfolioValue:       s.defaults.portfolioValue,
		DiversificationScore: s.defaults.diversificationScore,
		LastUpdated:          s.now(),
	}
	if err := s.profiles.SaveProfile(ctx, &profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	sess := &Session{
		id:          uuid.New().String(),
		connectedAt: s.now(),
		store:       s.profiles,
		profile:     profile,
		allocation:  alloc,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info().
		Str("session_id", sess.id).
		Str("address", wallet.ShortenAddress(addr)).
		Int("score", profile.Score).
		Str("type", string(profile.Type)).
		Msg("Wallet connected")

	return s.view(ctx, sess)
}

// Get returns a snapshot of the session.
func (s *Service) Get(ctx context.Context, sessionID string) (*models.SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sess)
}

// ChangeAccount applies a wallet account change. A new address re-derives
// the profile identity and keeps score, type and lastUpdated. An empty
// address disconnects and returns a nil view.
func (s *Service) ChangeAccount(ctx context.Context, sessionID, address string) (*models.SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(address) == "" {
		return nil, s.Disconnect(ctx, sessionID)
	}

	addr, err := wallet.ChecksumAddress(address)
	if err != nil {
		return nil, err
	}
	id, err := wallet.ProfileID(addr)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.profile.ID == id {
		sess.mu.Unlock()
		return s.view(ctx, sess)
	}
	previous := sess.profile.Address
	next := sess.profile
	next.ID = id
	next.Address = addr
	next.NFTID = models.NFTLabel(id)
	if err := s.profiles.SaveProfile(ctx, &next); err != nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	sess.profile = next
	sess.mu.Unlock()

	s.logger.Info().
		Str("session_id", sessionID).
		Str("from", wallet.ShortenAddress(previous)).
		Str("to", wallet.ShortenAddress(addr)).
		Msg("Wallet account changed")

	return s.view(ctx, sess)
}

// Disconnect closes the session. The stored profile is kept.
func (s *Service) Disconnect(_ context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.logger.Info().Str("session_id", sessionID).Msg("Wallet disconnected")
	return nil
}

// RefreshTask starts or joins the refresh for the session and returns its handle.
func (s *Service) RefreshTask(_ context.Context, sessionID string) (*reputation.Task, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	task, err := s.refresher.Refresh(sess)
	if err != nil {
		return nil, err
	}
	sess.setTask(task)
	return task, nil
}

// Refresh starts or joins a refresh and returns its current state.
func (s *Service) Refresh(ctx context.Context, sessionID string) (models.RefreshTaskInfo, error) {
	task, err := s.RefreshTask(ctx, sessionID)
	if err != nil {
		return models.RefreshTaskInfo{}, err
	}
	info := task.Info()
	info.SessionID = sessionID
	return info, nil
}

// RefreshStatus reports the most recent refresh for the session.
func (s *Service) RefreshStatus(_ context.Context, sessionID string) (models.RefreshTaskInfo, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return models.RefreshTaskInfo{}, err
	}
	return sess.refreshInfo(), nil
}

// RefreshAll refreshes every connected session.
func (s *Service) RefreshAll(ctx context.Context) error {
	s.mu.RLock()
	subjects := make([]reputation.Subject, 0, len(s.sessions))
	for _, sess := range s.sessions {
		subjects = append(subjects, sess)
	}
	s.mu.RUnlock()

	if len(subjects) == 0 {
		return nil
	}
	return s.refresher.RefreshAll(ctx, subjects)
}

// ToggleFollow follows or unfollows investorID and returns the new state.
func (s *Service) ToggleFollow(ctx context.Context, sessionID, investorID string) (bool, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return false, err
	}
	owner := sess.profileID()
	if investorID == owner {
		return false, ErrSelfFollow
	}
	if _, err := s.profiles.GetProfile(ctx, investorID); err != nil {
		return false, err
	}

	s.followMu.Lock()
	defer s.followMu.Unlock()

	ids, err := s.follows.GetFollowing(ctx, owner)
	if err != nil {
		return false, err
	}
	following := false
	if i := slices.Index(ids, investorID); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	} else {
		ids = append(ids, investorID)
		following = true
	}
	if err := s.follows.SetFollowing(ctx, owner, ids); err != nil {
		return false, err
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("investor_id", investorID).
		Bool("following", following).
		Msg("Follow toggled")
	return following, nil
}

// Following returns the IDs the session follows.
func (s *Service) Following(ctx context.Context, sessionID string) ([]string, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.follows.GetFollowing(ctx, sess.profileID())
}

// Count returns the number of connected sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) lookup(sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

func (s *Service) view(ctx context.Context, sess *Session) (*models.SessionView, error) {
	profile, alloc := sess.Snapshot()
	following, err := s.follows.GetFollowing(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return &models.SessionView{
		SessionID:     sess.id,
		Profile:       profile,
		Allocation:    alloc,
		RefreshStatus: sess.refreshInfo().Status,
		Following:     following,
		ConnectedAt:   sess.connectedAt,
	}, nil
}
