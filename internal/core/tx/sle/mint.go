package sle

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MintSize is the serialized size of a Mint.
const MintSize = 32 + 8 + 1

// Mint defines an asset: who may issue it and how much exists.
type Mint struct {
	Authority solana.PublicKey
	Supply    uint64
	Decimals  uint8
}

// ParseMint decodes authority[32] supply[8 LE] decimals[1].
func ParseMint(data []byte) (Mint, error) {
	if len(data) != MintSize {
		return Mint{}, fmt.Errorf("%w: mint is %d bytes, want %d", ErrInvalidLength, len(data), MintSize)
	}
	var m Mint
	copy(m.Authority[:], data[0:32])
	m.Supply = binary.LittleEndian.Uint64(data[32:40])
	m.Decimals = data[40]
	return m, nil
}

// SerializeMint encodes m in the layout read by ParseMint.
func SerializeMint(m Mint) []byte {
	out := make([]byte, MintSize)
	copy(out[0:32], m.Authority[:])
	binary.LittleEndian.PutUint64(out[32:40], m.Supply)
	out[40] = m.Decimals
	return out
}
