// Package storage provides the top-level StorageManager that selects the
// profile store backend.
package storage

import (
	"fmt"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/interfaces"
	"github.com/bobmcallan/investbadge/internal/storage/memdb"
	"github.com/bobmcallan/investbadge/internal/storage/profiledb"
)

// Backend names.
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
)

// store is the union both backends implement.
type store interface {
	interfaces.ProfileStore
	interfaces.FollowStore
}

// Manager implements interfaces.StorageManager.
type Manager struct {
	backend string
	store   store
	closer  func() error
	logger  *common.Logger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager creates the configured backend.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = BackendMemory
	}

	m := &Manager{backend: backend, logger: logger}
	switch backend {
	case BackendMemory:
		m.store = memdb.NewStore(logger)
		m.closer = func() error { return nil }
	case BackendLevelDB:
		db, err := profiledb.NewStore(logger, config.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create profile store: %w", err)
		}
		m.store = db
		m.closer = db.Close
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: memory, leveldb)", backend)
	}

	logger.Info().Str("backend", backend).Msg("Storage manager initialized")
	return m, nil
}

func (m *Manager) ProfileStore() interfaces.ProfileStore {
	return m.store
}

func (m *Manager) FollowStore() interfaces.FollowStore {
	return m.store
}

func (m *Manager) Backend() string {
	return m.backend
}

// Close closes the backend.
func (m *Manager) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer()
}
