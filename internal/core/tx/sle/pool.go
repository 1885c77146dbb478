package sle

import (
	"encoding/binary"
	"fmt"

	"github.com/LeJamon/goswap/internal/core/swapmath"
	"github.com/gagliardetto/solana-go"
)

// PoolSize is the serialized size of a Pool.
const PoolSize = 32 + 32 + 1 + 8 + 8 + 8

// Pool is the persisted state of one trading pair. It is a value type:
// operations copy it, compute a new one and write that back.
type Pool struct {
	AssetA        solana.PublicKey
	AssetB        solana.PublicKey
	Bump          uint8
	ReserveA      uint64
	ReserveB      uint64
	TotalLPSupply uint64
}

// ParsePool decodes the fixed 89-byte layout:
//
//	asset_a[32] asset_b[32] bump[1] reserve_a[8] reserve_b[8] total_lp_supply[8]
//
// Integers are little-endian.
func ParsePool(data []byte) (Pool, error) {
	if len(data) != PoolSize {
		return Pool{}, fmt.Errorf("%w: pool is %d bytes, want %d", ErrInvalidLength, len(data), PoolSize)
	}

	var p Pool
	copy(p.AssetA[:], data[0:32])
	copy(p.AssetB[:], data[32:64])
	p.Bump = data[64]
	p.ReserveA = binary.LittleEndian.Uint64(data[65:73])
	p.ReserveB = binary.LittleEndian.Uint64(data[73:81])
	p.TotalLPSupply = binary.LittleEndian.Uint64(data[81:89])
	return p, nil
}

// SerializePool encodes p in the layout read by ParsePool.
func SerializePool(p Pool) []byte {
	out := make([]byte, PoolSize)
	copy(out[0:32], p.AssetA[:])
	copy(out[32:64], p.AssetB[:])
	out[64] = p.Bump
	binary.LittleEndian.PutUint64(out[65:73], p.ReserveA)
	binary.LittleEndian.PutUint64(out[73:81], p.ReserveB)
	binary.LittleEndian.PutUint64(out[81:89], p.TotalLPSupply)
	return out
}

// Validate checks the at-rest invariants: either reserves and supply are all
// zero or all positive, and the two assets differ.
func (p Pool) Validate() error {
	if p.AssetA == p.AssetB {
		return fmt.Errorf("%w: asset_a equals asset_b", ErrInvariant)
	}
	emptyA, emptyB, emptyLP := p.ReserveA == 0, p.ReserveB == 0, p.TotalLPSupply == 0
	if emptyA != emptyB || emptyA != emptyLP {
		return fmt.Errorf("%w: reserve_a=%d reserve_b=%d supply=%d",
			ErrInvariant, p.ReserveA, p.ReserveB, p.TotalLPSupply)
	}
	return nil
}

// Side reports which side of the pool asset is. aToB is true for asset_a.
func (p Pool) Side(asset solana.PublicKey) (aToB bool, ok bool) {
	switch asset {
	case p.AssetA:
		return true, true
	case p.AssetB:
		return false, true
	}
	return false, false
}

// Reserves returns (reserve_in, reserve_out) for a trade in the given direction.
func (p Pool) Reserves(aToB bool) (uint64, uint64) {
	if aToB {
		return p.ReserveA, p.ReserveB
	}
	return p.ReserveB, p.ReserveA
}

// Assets returns (asset_in, asset_out) for a trade in the given direction.
func (p Pool) Assets(aToB bool) (solana.PublicKey, solana.PublicKey) {
	if aToB {
		return p.AssetA, p.AssetB
	}
	return p.AssetB, p.AssetA
}

// WithSwap returns p after amountIn entered and amountOut left.
func (p Pool) WithSwap(aToB bool, amountIn, amountOut uint64) (Pool, error) {
	in, out := &p.ReserveA, &p.ReserveB
	if !aToB {
		in, out = &p.ReserveB, &p.ReserveA
	}

	var err error
	if *in, err = swapmath.Add(*in, amountIn); err != nil {
		return Pool{}, err
	}
	if *out, err = swapmath.Sub(*out, amountOut); err != nil {
		return Pool{}, err
	}
	return p, nil
}

// WithDeposit returns p after a deposit minted lp shares.
func (p Pool) WithDeposit(amountA, amountB, lp uint64) (Pool, error) {
	var err error
	if p.ReserveA, err = swapmath.Add(p.ReserveA, amountA); err != nil {
		return Pool{}, err
	}
	if p.ReserveB, err = swapmath.Add(p.ReserveB, amountB); err != nil {
		return Pool{}, err
	}
	if p.TotalLPSupply, err = swapmath.Add(p.TotalLPSupply, lp); err != nil {
		return Pool{}, err
	}
	return p, nil
}

// WithWithdrawal returns p after lp shares redeemed amountA and amountB.
func (p Pool) WithWithdrawal(amountA, amountB, lp uint64) (Pool, error) {
	var err error
	if p.ReserveA, err = swapmath.Sub(p.ReserveA, amountA); err != nil {
		return Pool{}, err
	}
	if p.ReserveB, err = swapmath.Sub(p.ReserveB, amountB); err != nil {
		return Pool{}, err
	}
	if p.TotalLPSupply, err = swapmath.Sub(p.TotalLPSupply, lp); err != nil {
		return Pool{}, err
	}
	return p, nil
}
