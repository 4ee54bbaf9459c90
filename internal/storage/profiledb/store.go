// Package profiledb implements ProfileStore and FollowStore on LevelDB.
// Values are JSON; keys are "profile:<id>" and "follow:<owner id>".
package profiledb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/interfaces"
	"github.com/bobmcallan/investbadge/internal/models"
)

const (
	profilePrefix = "profile:"
	followPrefix  = "follow:"
)

// Store implements the profile and follow stores using LevelDB.
type Store struct {
	db     *leveldb.DB
	logger *common.Logger
}

var (
	_ interfaces.ProfileStore = (*Store)(nil)
	_ interfaces.FollowStore  = (*Store)(nil)
)

// NewStore opens (or creates) the database at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create profile db path %s: %w", path, err)
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("ProfileDB opened")
	return &Store{db: db, logger: logger}, nil
}

func profileKey(id string) []byte { return []byte(profilePrefix + id) }
func followKey(id string) []byte  { return []byte(followPrefix + id) }

// --- Profiles ---

func (s *Store) GetProfile(_ context.Context, id string) (*models.InvestorProfile, error) {
	data, err := s.db.Get(profileKey(id), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, fmt.Errorf("profile '%s': %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile '%s': %w", id, err)
	}
	var p models.InvestorProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile '%s': %w", id, err)
	}
	return &p, nil
}

func (s *Store) SaveProfile(_ context.Context, profile *models.InvestorProfile) error {
	if profile == nil || profile.ID == "" {
		return fmt.Errorf("profile ID is required")
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile '%s': %w", profile.ID, err)
	}
	if err := s.db.Put(profileKey(profile.ID), data, nil); err != nil {
		return fmt.Errorf("failed to save profile '%s': %w", profile.ID, err)
	}
	s.logger.Debug().Str("profile_id", profile.ID).Msg("Profile saved")
	return nil
}

// DeleteProfile removes the profile and its follow set in one batch.
func (s *Store) DeleteProfile(_ context.Context, id string) error {
	batch := new(leveldb.Batch)
	batch.Delete(profileKey(id))
	batch.Delete(followKey(id))
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to delete profile '%s': %w", id, err)
	}
	return nil
}

// ListProfiles returns profiles in key order, which is ID order.
func (s *Store) ListProfiles(_ context.Context) ([]*models.InvestorProfile, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(profilePrefix)), nil)
	defer iter.Release()

	var out []*models.InvestorProfile
	for iter.Next() {
		var p models.InvestorProfile
		if err := json.Unmarshal(iter.Value(), &p); err != nil {
			s.logger.Warn().Err(err).Str("key", string(iter.Key())).Msg("Skipping undecodable profile")
			continue
		}
		out = append(out, &p)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return out, nil
}

// --- Follows ---

func (s *Store) GetFollowing(_ context.Context, ownerID string) ([]string, error) {
	data, err := s.db.Get(followKey(ownerID), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to get follows for '%s': %w", ownerID, err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode follows for '%s': %w", ownerID, err)
	}
	return ids, nil
}

func (s *Store) SetFollowing(_ context.Context, ownerID string, investorIDs []string) error {
	if len(investorIDs) == 0 {
		if err := s.db.Delete(followKey(ownerID), nil); err != nil {
			return fmt.Errorf("failed to clear follows for '%s': %w", ownerID, err)
		}
		return nil
	}
	data, err := json.Marshal(investorIDs)
	if err != nil {
		return fmt.Errorf("failed to encode follows for '%s': %w", ownerID, err)
	}
	if err := s.db.Put(followKey(ownerID), data, nil); err != nil {
		return fmt.Errorf("failed to save follows for '%s': %w", ownerID, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
