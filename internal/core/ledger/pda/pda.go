// Package pda derives the deterministic addresses that custody pool funds and
// issues the authority tokens needed to move funds out of them.
//
// An address is derived from a seed list, a one-byte bump and the program id.
// Find searches for the first bump that yields a valid address; Create
// re-derives an address from a bump stored earlier.
package pda

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrInvalidSeeds is returned when a seed list cannot produce an address.
	ErrInvalidSeeds = errors.New("pda: invalid seeds")

	// ErrAddressMismatch is returned when a supplied address differs from its
	// derivation.
	ErrAddressMismatch = errors.New("pda: address does not match derivation")
)

// Seed prefixes.
var (
	PoolSeed  = []byte("pool")
	VaultSeed = []byte("vault")
	MintSeed  = []byte("mint")
)

// Deriver computes program-derived addresses.
type Deriver interface {
	// ProgramID is the program the derived addresses belong to.
	ProgramID() solana.PublicKey

	// Find returns the address and bump for seeds, searching bumps from 255 down.
	Find(seeds [][]byte) (solana.PublicKey, uint8, error)

	// Create re-derives the address for seeds with a known bump.
	Create(seeds [][]byte, bump uint8) (solana.PublicKey, error)
}

// ProgramDeriver derives addresses the same way the on-chain runtime does.
type ProgramDeriver struct {
	programID solana.PublicKey
}

// NewProgramDeriver returns a Deriver bound to programID.
func NewProgramDeriver(programID solana.PublicKey) *ProgramDeriver {
	return &ProgramDeriver{programID: programID}
}

func (d *ProgramDeriver) ProgramID() solana.PublicKey {
	return d.programID
}

func (d *ProgramDeriver) Find(seeds [][]byte) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, d.programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
	}
	return addr, bump, nil
}

func (d *ProgramDeriver) Create(seeds [][]byte, bump uint8) (solana.PublicKey, error) {
	withBump := make([][]byte, 0, len(seeds)+1)
	withBump = append(withBump, seeds...)
	withBump = append(withBump, []byte{bump})

	addr, err := solana.CreateProgramAddress(withBump, d.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
	}
	return addr, nil
}

// PoolSeeds returns ["pool", a, b].
func PoolSeeds(a, b solana.PublicKey) [][]byte {
	return [][]byte{PoolSeed, a[:], b[:]}
}

// VaultSeeds returns ["vault", pool, asset].
func VaultSeeds(pool, asset solana.PublicKey) [][]byte {
	return [][]byte{VaultSeed, pool[:], asset[:]}
}

// MintSeeds returns ["mint", pool].
func MintSeeds(pool solana.PublicKey) [][]byte {
	return [][]byte{MintSeed, pool[:]}
}

// PoolAddress derives the pool address for the ordered pair (a, b).
func PoolAddress(d Deriver, a, b solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.Find(PoolSeeds(a, b))
}

// VaultAddress derives the vault holding asset on behalf of pool.
func VaultAddress(d Deriver, pool, asset solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.Find(VaultSeeds(pool, asset))
}

// LPMintAddress derives the liquidity share mint of pool.
func LPMintAddress(d Deriver, pool solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.Find(MintSeeds(pool))
}

// Expect derives seeds and checks the result against want, returning the bump.
func Expect(d Deriver, seeds [][]byte, want solana.PublicKey) (uint8, error) {
	addr, bump, err := d.Find(seeds)
	if err != nil {
		return 0, err
	}
	if addr != want {
		return 0, fmt.Errorf("%w: have %s want %s", ErrAddressMismatch, want, addr)
	}
	return bump, nil
}
