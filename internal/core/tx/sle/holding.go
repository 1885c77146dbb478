package sle

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// HoldingSize is the serialized size of a Holding.
const HoldingSize = 32 + 32 + 8

// Holding is a balance of one asset controlled by Owner. The mint occupies
// the first 32 bytes so the asset of any holding can be read without a full
// decode.
type Holding struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

// ParseHolding decodes mint[32] owner[32] amount[8 LE].
func ParseHolding(data []byte) (Holding, error) {
	if len(data) != HoldingSize {
		return Holding{}, fmt.Errorf("%w: holding is %d bytes, want %d", ErrInvalidLength, len(data), HoldingSize)
	}
	var h Holding
	copy(h.Mint[:], data[0:32])
	copy(h.Owner[:], data[32:64])
	h.Amount = binary.LittleEndian.Uint64(data[64:72])
	return h, nil
}

// SerializeHolding encodes h in the layout read by ParseHolding.
func SerializeHolding(h Holding) []byte {
	out := make([]byte, HoldingSize)
	copy(out[0:32], h.Mint[:])
	copy(out[32:64], h.Owner[:])
	binary.LittleEndian.PutUint64(out[64:72], h.Amount)
	return out
}

// HoldingMint reads the mint of a serialized holding.
func HoldingMint(data []byte) (solana.PublicKey, error) {
	if len(data) < 32 {
		return solana.PublicKey{}, fmt.Errorf("%w: holding is %d bytes", ErrInvalidLength, len(data))
	}
	return solana.PublicKeyFromBytes(data[0:32]), nil
}
