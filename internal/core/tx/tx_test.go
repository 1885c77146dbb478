package tx

import (
	"bytes"
	"crypto/sha256"
	"sort"

	"github.com/LeJamon/goswap/internal/core/ledger/entry"
	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/gagliardetto/solana-go"
)

func key(name string) solana.PublicKey {
	h := sha256.Sum256([]byte(name))
	return solana.PublicKeyFromBytes(h[:])
}

// mapView is a minimal LedgerView for tests.
type mapView struct {
	entries map[keylet.Keylet][]byte
	batches int
}

func newMapView() *mapView {
	return &mapView{entries: make(map[keylet.Keylet][]byte)}
}

func (m *mapView) Read(k keylet.Keylet) ([]byte, error) { return m.entries[k], nil }

func (m *mapView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := m.entries[k]
	return ok, nil
}

func (m *mapView) Insert(k keylet.Keylet, data []byte) error {
	if _, ok := m.entries[k]; ok {
		return ErrEntryExists
	}
	m.entries[k] = data
	return nil
}

func (m *mapView) Update(k keylet.Keylet, data []byte) error {
	if _, ok := m.entries[k]; !ok {
		return ErrEntryNotFound
	}
	m.entries[k] = data
	return nil
}

func (m *mapView) Erase(k keylet.Keylet) error {
	if _, ok := m.entries[k]; !ok {
		return ErrEntryNotFound
	}
	delete(m.entries, k)
	return nil
}

func (m *mapView) ForEach(t entry.Type, fn func(k keylet.Keylet, data []byte) bool) error {
	var keys []keylet.Keylet
	for k := range m.entries {
		if k.Type == t {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) < 0 })
	for _, k := range keys {
		if !fn(k, m.entries[k]) {
			return nil
		}
	}
	return nil
}

// batchView records batch commits.
type batchView struct {
	*mapView
}

func (b batchView) ApplyBatch(changes []StateChange) error {
	b.batches++
	for _, c := range changes {
		if c.Data == nil {
			delete(b.entries, c.Key)
		} else {
			b.entries[c.Key] = c.Data
		}
	}
	return nil
}
