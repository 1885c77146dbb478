// Package state persists ledger entries in a key-value database.
package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goswap/internal/core/ledger/entry"
	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/storage/database"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultCacheSize is the number of entries kept in the read cache.
const DefaultCacheSize = 4096

// Store is a LedgerView over a database.DB. Reads go through an LRU cache;
// writes go to the database and refresh the cache.
type Store struct {
	db     database.DB
	cache  *lru.Cache[keylet.Keylet, []byte]
	logger *zap.Logger
}

var (
	_ tx.LedgerView   = (*Store)(nil)
	_ tx.BatchApplier = (*Store)(nil)
)

// NewStore wraps db. cacheSize <= 0 selects DefaultCacheSize.
func NewStore(db database.DB, cacheSize int, logger *zap.Logger) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[keylet.Keylet, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("state cache: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, cache: cache, logger: logger}, nil
}

// Read returns the entry at k, or nil when it does not exist.
func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	if data, ok := s.cache.Get(k); ok {
		return data, nil
	}
	data, err := s.db.Read(context.Background(), k.Bytes())
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", k, err)
	}
	s.cache.Add(k, data)
	return data, nil
}

func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	return data != nil, err
}

func (s *Store) Insert(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", tx.ErrEntryExists, k)
	}
	return s.put(k, data)
}

func (s *Store) Update(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", tx.ErrEntryNotFound, k)
	}
	return s.put(k, data)
}

func (s *Store) Erase(k keylet.Keylet) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", tx.ErrEntryNotFound, k)
	}
	if err := s.db.Delete(context.Background(), k.Bytes()); err != nil {
		return fmt.Errorf("delete %s: %w", k, err)
	}
	s.cache.Remove(k)
	return nil
}

func (s *Store) put(k keylet.Keylet, data []byte) error {
	if err := s.db.Write(context.Background(), k.Bytes(), data); err != nil {
		return fmt.Errorf("write %s: %w", k, err)
	}
	s.cache.Add(k, data)
	return nil
}

// ApplyBatch commits changes in one database batch.
func (s *Store) ApplyBatch(changes []tx.StateChange) error {
	ops := make([]database.BatchOperation, 0, len(changes))
	for _, c := range changes {
		if c.Data == nil {
			ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: c.Key.Bytes()})
		} else {
			ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: c.Key.Bytes(), Value: c.Data})
		}
	}
	if err := s.db.Batch(context.Background(), ops); err != nil {
		// The cache may hold entries the batch was meant to replace
		s.cache.Purge()
		return fmt.Errorf("apply batch: %w", err)
	}

	for _, c := range changes {
		if c.Data == nil {
			s.cache.Remove(c.Key)
		} else {
			s.cache.Add(c.Key, c.Data)
		}
	}
	s.logger.Debug("batch applied", zap.Int("changes", len(changes)))
	return nil
}

// ForEach iterates entries of type t in key order.
func (s *Store) ForEach(t entry.Type, fn func(k keylet.Keylet, data []byte) bool) error {
	prefix := keylet.Prefix(t)
	it, err := s.db.Iterator(context.Background(), prefix, database.PrefixEnd(prefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		k, err := keylet.FromBytes(it.Key())
		if err != nil {
			s.logger.Warn("skipping malformed key", zap.Binary("key", it.Key()))
			continue
		}
		if !fn(k, it.Value()) {
			break
		}
	}
	return it.Error()
}

// Count returns the number of entries of type t.
func (s *Store) Count(t entry.Type) (int, error) {
	n := 0
	err := s.ForEach(t, func(keylet.Keylet, []byte) bool {
		n++
		return true
	})
	return n, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.cache.Purge()
	return s.db.Close()
}
