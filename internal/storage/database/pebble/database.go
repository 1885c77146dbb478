package pebble

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goswap/internal/storage/database"
	"github.com/cockroachdb/pebble"
)

// DB is a database.DB backed by a pebble store.
type DB struct {
	db *pebble.DB
}

// NewDB wraps an open pebble handle.
func NewDB(db *pebble.DB) *DB {
	return &DB{db: db}
}

// Open opens (or creates) a pebble store at path.
func Open(path string) (*DB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database %s: %w", path, err)
	}
	return NewDB(db), nil
}

// Read returns a copy of the value at key, or database.ErrKeyNotFound.
func (p *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if p.db == nil {
		return nil, database.ErrDBClosed
	}

	val, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, database.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	// Copy the value out
	valCopy := make([]byte, len(val))
	copy(valCopy, val)
	return valCopy, nil
}

// Write sets key to value with a synced write.
func (p *DB) Write(ctx context.Context, key, value []byte) error {
	if p.db == nil {
		return database.ErrDBClosed
	}
	return p.db.Set(key, value, pebble.Sync)
}

// Delete removes key. Missing keys are not an error.
func (p *DB) Delete(ctx context.Context, key []byte) error {
	if p.db == nil {
		return database.ErrDBClosed
	}
	return p.db.Delete(key, pebble.Sync)
}

// Batch applies ops as one atomic pebble batch.
func (p *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if p.db == nil {
		return database.ErrDBClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			if err := batch.Set(op.Key, op.Value, nil); err != nil {
				return err
			}
		case database.BatchDelete:
			if err := batch.Delete(op.Key, nil); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}

	return batch.Commit(pebble.Sync)
}

// Close releases the store. Calling it twice is a no-op.
func (p *DB) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// Iterator walks a key range in ascending order.
type Iterator struct {
	iter    *pebble.Iterator
	started bool
	current struct {
		key, value []byte
	}
}

// Iterator returns an iterator over [start, end). A nil bound is open.
func (p *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	if p.db == nil {
		return nil, database.ErrDBClosed
	}

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return nil, err
	}

	return &Iterator{iter: iter}, nil
}

// Next advances to the next entry and reports whether one exists.
func (it *Iterator) Next() bool {
	if !it.started {
		it.started = true
		it.iter.First()
	} else {
		it.iter.Next()
	}

	if !it.iter.Valid() {
		return false
	}

	key := it.iter.Key()
	val := it.iter.Value()

	it.current.key = append([]byte(nil), key...)
	it.current.value = append([]byte(nil), val...)
	return true
}

// Key returns the current key. It stays valid after Next.
func (it *Iterator) Key() []byte {
	return it.current.key
}

// Value returns the current value. It stays valid after Next.
func (it *Iterator) Value() []byte {
	return it.current.value
}

// Error returns the first error seen by the underlying iterator.
func (it *Iterator) Error() error {
	return it.iter.Error()
}

// Close releases the iterator.
func (it *Iterator) Close() error {
	return it.iter.Close()
}
