package tx

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/LeJamon/goswap/internal/core/ledger/entry"
	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
)

var (
	// ErrEntryExists is returned when inserting over a live entry.
	ErrEntryExists = errors.New("entry already exists")

	// ErrEntryNotFound is returned when updating or erasing a missing entry.
	ErrEntryNotFound = errors.New("entry not found")
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

func (a Action) String() string {
	switch a {
	case ActionCache:
		return "cache"
	case ActionInsert:
		return "created"
	case ActionModify:
		return "modified"
	case ActionErase:
		return "deleted"
	}
	return "unknown"
}

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// ApplyStateTable wraps a LedgerView and tracks every modification made by
// one invocation. Nothing reaches the base view until Apply is called, so an
// invocation that fails part way leaves the base untouched.
type ApplyStateTable struct {
	base  LedgerView
	items map[keylet.Keylet]*TrackedEntry
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base LedgerView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[keylet.Keylet]*TrackedEntry),
	}
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if e, exists := t.items[k]; exists {
		if e.Action == ActionErase {
			return nil, nil
		}
		return e.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}
	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if e, exists := t.items[k]; exists {
		return e.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if e, exists := t.items[k]; exists {
		if e.Action != ActionErase {
			return fmt.Errorf("%w: %s", ErrEntryExists, k)
		}
		// Re-inserting a deleted entry becomes a modify
		e.Action = ActionModify
		e.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrEntryExists, k)
	}

	t.items[k] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if e, exists := t.items[k]; exists {
		if e.Action == ActionErase {
			return fmt.Errorf("%w: %s (deleted)", ErrEntryNotFound, k)
		}
		if e.Action == ActionCache {
			e.Action = ActionModify
		}
		// For insert, keep it as insert with new data
		e.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, k)
	}

	t.items[k] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if e, exists := t.items[k]; exists {
		switch e.Action {
		case ActionErase:
			return fmt.Errorf("%w: %s (already deleted)", ErrEntryNotFound, k)
		case ActionInsert:
			// Inserting then deleting = no change
			delete(t.items, k)
		default:
			e.Action = ActionErase
		}
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, k)
	}

	t.items[k] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// ForEach iterates over entries of type t as they would look after Apply.
func (t *ApplyStateTable) ForEach(typ entry.Type, fn func(k keylet.Keylet, data []byte) bool) error {
	seen := make(map[keylet.Keylet]bool)
	stopped := false

	err := t.base.ForEach(typ, func(k keylet.Keylet, data []byte) bool {
		seen[k] = true
		if e, ok := t.items[k]; ok {
			if e.Action == ActionErase {
				return true
			}
			data = e.Current
		}
		if !fn(k, data) {
			stopped = true
			return false
		}
		return true
	})
	if err != nil || stopped {
		return err
	}

	// Entries created in this table are not in the base yet
	var created []keylet.Keylet
	for k, e := range t.items {
		if k.Type == typ && !seen[k] && e.Action != ActionErase {
			created = append(created, k)
		}
	}
	sortKeylets(created)
	for _, k := range created {
		if !fn(k, t.items[k].Current) {
			return nil
		}
	}
	return nil
}

// Apply commits all changes to the base view and returns the metadata
// describing them. Affected nodes are ordered by storage key.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	metadata := &Metadata{
		AffectedNodes: make([]AffectedNode, 0),
	}

	keys := make([]keylet.Keylet, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sortKeylets(keys)

	changes := make([]StateChange, 0, len(keys))
	for _, k := range keys {
		e := t.items[k]
		switch e.Action {
		case ActionCache:
			continue
		case ActionModify:
			// Skip if no actual change
			if bytes.Equal(e.Original, e.Current) {
				continue
			}
			changes = append(changes, StateChange{Key: k, Data: e.Current})
		case ActionInsert:
			changes = append(changes, StateChange{Key: k, Data: e.Current})
		case ActionErase:
			changes = append(changes, StateChange{Key: k})
		}
		metadata.AffectedNodes = append(metadata.AffectedNodes, AffectedNode{
			Action: e.Action,
			Key:    k,
		})
	}

	if err := t.commit(changes); err != nil {
		return nil, err
	}
	t.items = make(map[keylet.Keylet]*TrackedEntry)
	return metadata, nil
}

func (t *ApplyStateTable) commit(changes []StateChange) error {
	if len(changes) == 0 {
		return nil
	}
	if b, ok := t.base.(BatchApplier); ok {
		return b.ApplyBatch(changes)
	}

	for _, c := range changes {
		e := t.items[c.Key]
		var err error
		switch e.Action {
		case ActionInsert:
			err = t.base.Insert(c.Key, c.Data)
		case ActionModify:
			if e.Original == nil {
				err = t.base.Insert(c.Key, c.Data)
			} else {
				err = t.base.Update(c.Key, c.Data)
			}
		case ActionErase:
			err = t.base.Erase(c.Key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every tracked change.
func (t *ApplyStateTable) Discard() {
	t.items = make(map[keylet.Keylet]*TrackedEntry)
}

// Tracked returns the tracked entry for k, if any. Used by tests.
func (t *ApplyStateTable) Tracked(k keylet.Keylet) (*TrackedEntry, bool) {
	e, ok := t.items[k]
	return e, ok
}

func sortKeylets(keys []keylet.Keylet) {
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) < 0
	})
}
