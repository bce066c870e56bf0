// Package registry manages the set of wallet records under one profile
// and arbitrates which of them is active. It layers on the record store
// and never touches key material: records arrive already enveloped from
// the wallet manager.
package registry

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kestrelwallet/kestrel/internal/walletstore"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// Locker is the session surface the registry needs: switching or
// removing the active wallet must drop any live session first.
// Implemented by session.Controller.
type Locker interface {
	Lock()
}

// Registry arbitrates the multi-wallet set. Every mutation is a full
// load-modify-save of the persisted blob, so the on-disk state is
// always internally consistent.
type Registry struct {
	store    *walletstore.Store
	sessions Locker
	log      *zap.Logger
	now      func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces the registry's time source for LastUsedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New creates a registry over the given store. sessions may be nil when
// no session controller exists, such as in one-shot CLI invocations
// that never unlock.
func New(store *walletstore.Store, sessions Locker, log *zap.Logger, opts ...Option) *Registry {
	if log == nil {
		log = zap.NewNop()
	}

	r := &Registry{
		store:    store,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metadata is the per-wallet presentation state the registry layers on
// a record. Nil pointer fields are left unchanged by UpdateMetadata.
type Metadata struct {
	Label *string
	Color *string
	Icon  *string
	Order *int
}

// AddOrUpdate upserts a wallet record. The first wallet added to an
// empty registry becomes active; later additions never steal the active
// slot.
func (r *Registry) AddOrUpdate(record *walletstore.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	reg, err := r.store.LoadRegistry()
	if err != nil {
		return err
	}

	entry, exists := reg.Wallets[record.ID]
	if exists {
		entry.Record = *record
	} else {
		reg.Wallets[record.ID] = &walletstore.RegistryEntry{
			Record: *record,
			Order:  len(reg.Wallets),
		}
	}
	if reg.ActiveWalletID == "" {
		reg.ActiveWalletID = record.ID
	}

	if err := r.store.SaveRegistry(reg); err != nil {
		return err
	}

	r.log.Info("registry wallet upserted",
		zap.String("id", record.ID),
		zap.String("address", record.Address),
		zap.Bool("existing", exists))
	return nil
}

// SwitchActive makes another wallet the active one. The live session
// always dies first: the newly active wallet starts locked and must be
// unlocked with its own password.
func (r *Registry) SwitchActive(id string) error {
	reg, err := r.store.LoadRegistry()
	if err != nil {
		return err
	}

	entry, ok := reg.Wallets[id]
	if !ok {
		return unknownWallet(id)
	}

	if r.sessions != nil {
		r.sessions.Lock()
	}

	reg.ActiveWalletID = id
	entry.LastUsedAt = r.now().UTC()

	if err := r.store.SaveRegistry(reg); err != nil {
		return err
	}

	r.log.Info("active wallet switched", zap.String("id", id))
	return nil
}

// Remove deletes a wallet from the registry. Removing the active wallet
// drops the session and promotes the most recently used survivor; when
// the last wallet goes, the registry blob goes with it.
func (r *Registry) Remove(id string) error {
	reg, err := r.store.LoadRegistry()
	if err != nil {
		return err
	}
	if _, ok := reg.Wallets[id]; !ok {
		return unknownWallet(id)
	}

	wasActive := reg.ActiveWalletID == id
	delete(reg.Wallets, id)

	if wasActive {
		if r.sessions != nil {
			r.sessions.Lock()
		}
		reg.ActiveWalletID = mostRecentlyUsed(reg.Wallets)
	}

	if err := r.store.SaveRegistry(reg); err != nil {
		return err
	}

	r.log.Info("registry wallet removed",
		zap.String("id", id),
		zap.Bool("was_active", wasActive),
		zap.String("new_active", reg.ActiveWalletID))
	return nil
}

// UpdateMetadata changes presentation fields on one wallet. Only
// non-nil fields are applied.
func (r *Registry) UpdateMetadata(id string, meta Metadata) error {
	reg, err := r.store.LoadRegistry()
	if err != nil {
		return err
	}

	entry, ok := reg.Wallets[id]
	if !ok {
		return unknownWallet(id)
	}

	if meta.Label != nil {
		entry.Label = *meta.Label
	}
	if meta.Color != nil {
		entry.Color = *meta.Color
	}
	if meta.Icon != nil {
		entry.Icon = *meta.Icon
	}
	if meta.Order != nil {
		entry.Order = *meta.Order
	}

	return r.store.SaveRegistry(reg)
}

// Active returns the active wallet's entry, or ErrNoWallet when the
// registry is empty.
func (r *Registry) Active() (*walletstore.RegistryEntry, error) {
	reg, err := r.store.LoadRegistry()
	if err != nil {
		return nil, err
	}
	if reg.ActiveWalletID == "" {
		return nil, kerrors.ErrNoWallet
	}
	return reg.Wallets[reg.ActiveWalletID], nil
}

// List returns all entries ordered by their Order field, ties broken by
// creation time so listing is deterministic.
func (r *Registry) List() ([]*walletstore.RegistryEntry, error) {
	reg, err := r.store.LoadRegistry()
	if err != nil {
		return nil, err
	}

	entries := make([]*walletstore.RegistryEntry, 0, len(reg.Wallets))
	for _, entry := range reg.Wallets {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Order != entries[j].Order {
			return entries[i].Order < entries[j].Order
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// mostRecentlyUsed picks the survivor with the newest LastUsedAt, or ""
// when none remain.
func mostRecentlyUsed(wallets map[string]*walletstore.RegistryEntry) string {
	var bestID string
	var bestTime time.Time
	for id, entry := range wallets {
		switch {
		case bestID == "", entry.LastUsedAt.After(bestTime):
			bestID, bestTime = id, entry.LastUsedAt
		case entry.LastUsedAt.Equal(bestTime) && id < bestID:
			// Deterministic tiebreak across map iteration order.
			bestID = id
		}
	}
	return bestID
}

func unknownWallet(id string) error {
	return kerrors.WithDetails(
		kerrors.Wrap(kerrors.ErrInvalidData, "wallet not present in registry"),
		map[string]string{"id": id},
	)
}
