// Package interfaces defines service contracts for InvestBadge
package interfaces

import (
	"context"

	"github.com/bobmcallan/investbadge/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	ProfileStore() ProfileStore
	FollowStore() FollowStore

	// Backend returns the configured backend name ("memory" or "leveldb").
	Backend() string

	// Lifecycle
	Close() error
}

// ProfileStore persists investor profiles keyed by profile ID.
// Missing records return models.ErrNotFound.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*models.InvestorProfile, error)
	SaveProfile(ctx context.Context, profile *models.InvestorProfile) error
	DeleteProfile(ctx context.Context, id string) error
	ListProfiles(ctx context.Context) ([]*models.InvestorProfile, error)
}

// FollowStore persists the set of investor IDs a profile follows.
type FollowStore interface {
	// GetFollowing returns the followed IDs in insertion order, or an empty slice.
	GetFollowing(ctx context.Context, ownerID string) ([]string, error)
	SetFollowing(ctx context.Context, ownerID string, investorIDs []string) error
}
