package keylet

import (
	"encoding/binary"
	"fmt"

	"github.com/LeJamon/goswap/internal/core/ledger/entry"
)

// KeySize is the length of an encoded keylet: a 2-byte big-endian type
// followed by the 32-byte address.
const KeySize = 2 + 32

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key. Keys are account
// addresses, so one address holds at most one entry of each type.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// Pool returns the keylet for the pool record stored at addr.
func Pool(addr [32]byte) Keylet {
	return Keylet{Type: entry.TypePool, Key: addr}
}

// Holding returns the keylet for the holding stored at addr.
func Holding(addr [32]byte) Keylet {
	return Keylet{Type: entry.TypeHolding, Key: addr}
}

// Mint returns the keylet for the mint stored at addr.
func Mint(addr [32]byte) Keylet {
	return Keylet{Type: entry.TypeMint, Key: addr}
}

// Bytes encodes the keylet as a storage key. Keys of one type share a
// prefix so a type can be scanned in isolation.
func (k Keylet) Bytes() []byte {
	out := make([]byte, KeySize)
	binary.BigEndian.PutUint16(out, uint16(k.Type))
	copy(out[2:], k.Key[:])
	return out
}

// Prefix returns the storage prefix shared by every keylet of type t.
func Prefix(t entry.Type) []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(t))
	return out
}

// FromBytes decodes a storage key produced by Bytes.
func FromBytes(b []byte) (Keylet, error) {
	if len(b) != KeySize {
		return Keylet{}, fmt.Errorf("keylet: invalid key length %d", len(b))
	}
	var k Keylet
	k.Type = entry.Type(binary.BigEndian.Uint16(b))
	copy(k.Key[:], b[2:])
	return k, nil
}

func (k Keylet) String() string {
	return fmt.Sprintf("%s:%x", k.Type, k.Key)
}
