package cachechain

import (
	"fmt"
	"sort"

	dbm "github.com/cosmos/cosmos-db"
)

/*
BackingStore is the optional terminal layer of a chain: a persistent,
capacity-bounded key-value store backed by cosmos-db's LevelDB
implementation, the same engine this ecosystem's IAVLStore and friends
sit on top of.

Unlike a Cache, a BackingStore is opened and closed explicitly — its
database handle is a real file-system resource, not a map that lives
for the process's lifetime. Every dictionary operation below fails with
ErrBackingStoreClosed if called while the handle is nil.

NONDIRTY SNAPSHOT

s.nondirty tracks which keys the chain's caches believe are already
reflected here, refreshed wholesale by the Cache layer above on every
top-level Lookup/Store (see Cache.refreshNondirtySnapshotExtra). When
this store evicts a key to stay within capacity, it only needs to warn
the caches above if that key was in the snapshot — an upper cache
holding a stale belief that a value is safely persisted is the one
scenario the pending dirty-mark notification protocol exists to
prevent.
*/

type BackingStore[V any] struct {
	capacity int
	dbName   string
	db       dbm.DB

	nondirty map[string]V
	upper    *Cache[V]

	serializer Serializer[V]
	logger     Logger
}

// NewBackingStore constructs a BackingStore. It is not yet open; call
// Open with a directory before any dictionary operation.
func NewBackingStore[V any](serializer Serializer[V], opts ...StoreOption[V]) (*BackingStore[V], error) {
	cfg := storeOptions[V]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	capacity := cfg.capacity
	if !cfg.capacitySet {
		capacity = 1000
	} else if capacity <= 0 {
		return nil, configErrorf("store capacity must be positive, got %d", capacity)
	}

	dbName := cfg.dbName
	if dbName == "" {
		dbName = "cachechain"
	}

	logger := cfg.logger
	if logger == nil {
		logger = NewNopLogger()
	}

	return &BackingStore[V]{
		capacity:   capacity,
		dbName:     dbName,
		nondirty:   make(map[string]V),
		serializer: serializer,
		logger:     logger,
	}, nil
}

// Open opens the on-disk database at "<dir>/<name>.db", where name is
// whatever WithDBName configured (default "cachechain"). Calling Open
// on an already-open store is a no-op.
func (s *BackingStore[V]) Open(dir string) error {
	if s.db != nil {
		return nil
	}
	db, err := dbm.NewDB(s.dbName, dbm.GoLevelDBBackend, dir)
	if err != nil {
		return fmt.Errorf("cachechain: opening backing store %q: %w", s.dbName, err)
	}
	s.db = db
	s.logger.Debug("opened backing store", "name", s.dbName, "dir", dir)
	return s.evictWhileOverCapacity()
}

// Close releases the database handle. Calling Close on an already-closed
// store is a no-op.
func (s *BackingStore[V]) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.logger.Debug("closed backing store", "name", s.dbName)
	if err != nil {
		return fmt.Errorf("cachechain: closing backing store %q: %w", s.dbName, err)
	}
	return nil
}

// Closed reports whether the store currently has no open handle.
func (s *BackingStore[V]) Closed() bool {
	return s.db == nil
}

// Capacity returns this store's configured capacity.
func (s *BackingStore[V]) Capacity() int {
	return s.capacity
}

// SetCapacity changes the store's capacity, evicting over-capacity
// entries immediately if the new value is lower than the current size.
func (s *BackingStore[V]) SetCapacity(n int) error {
	if n <= 0 {
		return configErrorf("store capacity must be positive, got %d", n)
	}
	s.capacity = n
	if s.db == nil {
		return nil
	}
	return s.evictWhileOverCapacity()
}

// Get reads key without removing it. ok is false, with no error, when
// the store is open but the key is simply absent.
func (s *BackingStore[V]) Get(key string) (V, bool, error) {
	var zero V
	if s.db == nil {
		return zero, false, ErrBackingStoreClosed
	}
	raw, err := s.db.Get([]byte(key))
	if err != nil {
		return zero, false, fmt.Errorf("cachechain: backing store get: %w", err)
	}
	if raw == nil {
		return zero, false, nil
	}
	v, err := s.serializer.Unmarshal(raw)
	if err != nil {
		return zero, false, fmt.Errorf("cachechain: backing store unmarshal: %w", err)
	}
	return v, true, nil
}

// Set writes key unconditionally, exactly as a direct dictionary
// operation, making room by evicting first if the store is already at
// capacity.
func (s *BackingStore[V]) Set(key string, value V) error {
	if err := s.rawSet(key, value); err != nil {
		return err
	}
	return nil
}

// rawSet is Set's implementation, also used by Cache.demote when a
// dirty entry is evicted out of the chain's lowest cache layer and
// must finally be persisted.
func (s *BackingStore[V]) rawSet(key string, value V) error {
	if s.db == nil {
		return ErrBackingStoreClosed
	}
	// Room is made *before* the write: PopItem runs until len < capacity,
	// so the entry about to be written can never be chosen as its own
	// eviction victim once it lands.
	if err := s.evictUntilRoomFor(); err != nil {
		return err
	}
	raw, err := s.serializer.Marshal(value)
	if err != nil {
		return fmt.Errorf("cachechain: backing store marshal: %w", err)
	}
	if err := s.db.Set([]byte(key), raw); err != nil {
		return fmt.Errorf("cachechain: backing store set: %w", err)
	}
	// The nondirty snapshot is owned by the top cache layer (see
	// Cache.refreshNondirtySnapshotExtra) and rewritten wholesale on
	// every top-level Lookup/Store; a store-local write must not poke
	// it directly, or a freshly-persisted key with no actual upper
	// shadow would look shadowed to PopItem.
	return nil
}

// Delete removes key. Absence is not an error — deleting an absent key
// leaves the store unchanged.
func (s *BackingStore[V]) Delete(key string) error {
	if s.db == nil {
		return ErrBackingStoreClosed
	}
	if err := s.db.Delete([]byte(key)); err != nil {
		return fmt.Errorf("cachechain: backing store delete: %w", err)
	}
	return nil
}

// Contains reports whether key is present.
func (s *BackingStore[V]) Contains(key string) (bool, error) {
	if s.db == nil {
		return false, ErrBackingStoreClosed
	}
	ok, err := s.db.Has([]byte(key))
	if err != nil {
		return false, fmt.Errorf("cachechain: backing store has: %w", err)
	}
	return ok, nil
}

// Len returns the number of entries currently persisted.
func (s *BackingStore[V]) Len() (int, error) {
	keys, err := s.sortedKeys()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Keys returns every persisted key in sorted order.
func (s *BackingStore[V]) Keys() ([]string, error) {
	return s.sortedKeys()
}

// Values returns every persisted value, ordered by key.
func (s *BackingStore[V]) Values() ([]V, error) {
	items, err := s.Items()
	if err != nil {
		return nil, err
	}
	out := make([]V, len(items))
	for i, p := range items {
		out[i] = p.Value
	}
	return out, nil
}

// Items returns every (key, value) pair, ordered by key.
func (s *BackingStore[V]) Items() ([]Pair[V], error) {
	if s.db == nil {
		return nil, ErrBackingStoreClosed
	}
	it, err := s.db.Iterator(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("cachechain: backing store iterator: %w", err)
	}
	defer it.Close()

	var out []Pair[V]
	for ; it.Valid(); it.Next() {
		v, err := s.serializer.Unmarshal(it.Value())
		if err != nil {
			return nil, fmt.Errorf("cachechain: backing store unmarshal: %w", err)
		}
		out = append(out, Pair[V]{Key: string(it.Key()), Value: v})
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("cachechain: backing store iteration: %w", err)
	}
	return out, nil
}

func (s *BackingStore[V]) sortedKeys() ([]string, error) {
	if s.db == nil {
		return nil, ErrBackingStoreClosed
	}
	it, err := s.db.Iterator(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("cachechain: backing store iterator: %w", err)
	}
	defer it.Close()

	var keys []string
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("cachechain: backing store iteration: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Pop reads and removes key. Absence fails with ErrKeyMissing.
func (s *BackingStore[V]) Pop(key string) (V, error) {
	v, ok, err := s.Get(key)
	if err != nil {
		var zero V
		return zero, err
	}
	if !ok {
		var zero V
		return zero, ErrKeyMissing
	}
	if err := s.Delete(key); err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}

// SetDefault reads key; on absence it writes def and returns it.
func (s *BackingStore[V]) SetDefault(key string, def V) (V, error) {
	v, ok, err := s.Get(key)
	if err != nil {
		var zero V
		return zero, err
	}
	if ok {
		return v, nil
	}
	if err := s.Set(key, def); err != nil {
		var zero V
		return zero, err
	}
	return def, nil
}

// Update writes every pair in pairs.
func (s *BackingStore[V]) Update(pairs []Pair[V]) error {
	for _, p := range pairs {
		if err := s.Set(p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every persisted entry.
func (s *BackingStore[V]) Clear() error {
	keys, err := s.sortedKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// PopItem evicts and returns one entry, the same routine SetCapacity
// and Set use internally to stay within capacity. It prefers a key that
// has no clean shadow in an upper cache (the nondirty snapshot) so that
// eviction needs no notification; only when every persisted key has a
// clean upper shadow does it fall back to evicting one of those and
// walking upward to mark every cache above this store's copy of that
// key dirty again, so a later reinsertion there is not mistakenly
// assumed still safe.
func (s *BackingStore[V]) PopItem() (string, V, error) {
	if s.db == nil {
		var zero V
		return "", zero, ErrBackingStoreClosed
	}
	it, err := s.db.Iterator(nil, nil)
	if err != nil {
		var zero V
		return "", zero, fmt.Errorf("cachechain: backing store iterator: %w", err)
	}
	defer it.Close()

	var key string
	var shadowedKey string
	haveKey, haveShadowed := false, false
	for ; it.Valid(); it.Next() {
		k := string(it.Key())
		if _, shadowed := s.nondirty[k]; !shadowed {
			key, haveKey = k, true
			break
		}
		if !haveShadowed {
			shadowedKey, haveShadowed = k, true
		}
	}
	if err := it.Error(); err != nil {
		var zero V
		return "", zero, fmt.Errorf("cachechain: backing store iteration: %w", err)
	}

	wasClean := false
	if !haveKey {
		if !haveShadowed {
			var zero V
			return "", zero, ErrKeyMissing
		}
		key, wasClean = shadowedKey, true
	}

	v, ok, err := s.Get(key)
	if err != nil {
		var zero V
		return "", zero, err
	}
	if !ok {
		var zero V
		return "", zero, ErrKeyMissing
	}

	if err := s.db.Delete([]byte(key)); err != nil {
		var zero V
		return "", zero, fmt.Errorf("cachechain: backing store delete: %w", err)
	}

	if wasClean {
		s.notifyPendingDirty(key)
		s.logger.Info("evicted nondirty entry from backing store, notifying upper layers", "key", key)
	}

	return key, v, nil
}

// evictWhileOverCapacity trims down to at most capacity entries. Used
// by Open and SetCapacity, where no pending insert needs room made for
// it.
func (s *BackingStore[V]) evictWhileOverCapacity() error {
	for {
		n, err := s.Len()
		if err != nil {
			return err
		}
		if n <= s.capacity {
			return nil
		}
		if _, _, err := s.PopItem(); err != nil {
			return err
		}
	}
}

// evictUntilRoomFor trims down to strictly fewer than capacity entries,
// making room for a single pending insert. Used by rawSet before it
// writes, so Set never grows the store beyond capacity.
func (s *BackingStore[V]) evictUntilRoomFor() error {
	for {
		n, err := s.Len()
		if err != nil {
			return err
		}
		if n < s.capacity {
			return nil
		}
		if _, _, err := s.PopItem(); err != nil {
			return err
		}
	}
}

// Equal reports whether s and other name the same database and are in
// the same open/closed state and configured with the same capacity.
// This is a handle-level comparison, not a content comparison: two
// stores pointed at the same on-disk database are equal regardless of
// what either has cached in s.nondirty.
func (s *BackingStore[V]) Equal(other *BackingStore[V]) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.dbName == other.dbName && s.capacity == other.capacity && s.Closed() == other.Closed()
}
