package tx

import (
	"github.com/LeJamon/goswap/internal/core/ledger/entry"
	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
)

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	// Read reads a ledger entry. It returns nil data when the entry is absent.
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error

	// ForEach iterates over all entries of type t in key order.
	// If fn returns false, iteration stops early
	ForEach(t entry.Type, fn func(k keylet.Keylet, data []byte) bool) error
}

// StateChange is one committed write. Data is nil for an erase.
type StateChange struct {
	Key  keylet.Keylet
	Data []byte
}

// BatchApplier is implemented by views that can commit a set of changes
// atomically. ApplyStateTable prefers it over individual writes.
type BatchApplier interface {
	ApplyBatch(changes []StateChange) error
}
