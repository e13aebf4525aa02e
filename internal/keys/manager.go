package keys

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/cryptox"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrKeyExists   = errors.New("key already exists")
)

// Store persists the encoded key artifact at one fixed location.
type Store interface {
	// Load returns the stored artifact or ErrKeyNotFound.
	Load(ctx context.Context) ([]byte, error)
	// Create writes the artifact only if none exists, else ErrKeyExists.
	Create(ctx context.Context, data []byte) error
	// Location describes where the key lives, for messages.
	Location() string
}

type Manager struct {
	store  Store
	log    logging.Logger
	random func(int) []byte
}

func NewManager(store Store, log logging.Logger) *Manager {
	return &Manager{store: store, log: log, random: common.GenerateRandByteArray}
}

// EnsureKey returns the vault key, generating and persisting it if the store
// is empty. An existing key is always returned unchanged.
func (m *Manager) EnsureKey(ctx context.Context) (Material, error) {
	key, err := m.load(ctx)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	fresh := Material(m.random(cryptox.KeySize))
	err = m.store.Create(ctx, encodeMaterial(fresh))
	switch {
	case err == nil:
		m.log.Info(ctx, "encryption key generated", "location", m.store.Location())
		return fresh, nil
	case errors.Is(err, ErrKeyExists):
		// Someone else created it between our load and create.
		fresh.Zero()
		return m.load(ctx)
	default:
		fresh.Zero()
		return nil, fmt.Errorf("%w: create key at %s: %w", common.ErrStorage, m.store.Location(), err)
	}
}

func (m *Manager) load(ctx context.Context) (Material, error) {
	raw, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: load key from %s: %w", common.ErrStorage, m.store.Location(), err)
	}
	defer common.WipeByteArray(raw)
	return decodeMaterial(raw)
}
