// Package token is the custody primitive: asset definitions (mints), balances
// (holdings) and the moves between them. Moving funds out of a holding needs
// either its owner or an Authority that can sign for the owner.
package token

import (
	"fmt"

	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/LeJamon/goswap/internal/core/swapmath"
	"github.com/LeJamon/goswap/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// View is the part of the ledger the custody primitive reads and writes.
type View interface {
	Read(k keylet.Keylet) ([]byte, error)
	Insert(k keylet.Keylet, data []byte) error
	Update(k keylet.Keylet, data []byte) error
}

// GetMint loads the mint at addr.
func GetMint(v View, addr solana.PublicKey) (sle.Mint, error) {
	data, err := v.Read(keylet.Mint(addr))
	if err != nil {
		return sle.Mint{}, err
	}
	if data == nil {
		return sle.Mint{}, fmt.Errorf("%w: mint %s", ErrNotFound, addr)
	}
	return sle.ParseMint(data)
}

// GetHolding loads the holding at addr.
func GetHolding(v View, addr solana.PublicKey) (sle.Holding, error) {
	data, err := v.Read(keylet.Holding(addr))
	if err != nil {
		return sle.Holding{}, err
	}
	if data == nil {
		return sle.Holding{}, fmt.Errorf("%w: holding %s", ErrNotFound, addr)
	}
	return sle.ParseHolding(data)
}

// Balance returns the amount held at addr.
func Balance(v View, addr solana.PublicKey) (uint64, error) {
	h, err := GetHolding(v, addr)
	if err != nil {
		return 0, err
	}
	return h.Amount, nil
}

// HoldingExists reports whether a holding is stored at addr.
func HoldingExists(v View, addr solana.PublicKey) (bool, error) {
	data, err := v.Read(keylet.Holding(addr))
	return data != nil, err
}

// CreateMint defines a new asset at addr.
func CreateMint(v View, addr, authority solana.PublicKey, decimals uint8) error {
	existing, err := v.Read(keylet.Mint(addr))
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: mint %s", ErrAlreadyExists, addr)
	}
	m := sle.Mint{Authority: authority, Decimals: decimals}
	return v.Insert(keylet.Mint(addr), sle.SerializeMint(m))
}

// CreateHolding opens an empty holding of mint for owner at addr.
func CreateHolding(v View, addr, mint, owner solana.PublicKey) error {
	if _, err := GetMint(v, mint); err != nil {
		return err
	}
	exists, err := HoldingExists(v, addr)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: holding %s", ErrAlreadyExists, addr)
	}
	h := sle.Holding{Mint: mint, Owner: owner}
	return v.Insert(keylet.Holding(addr), sle.SerializeHolding(h))
}

// Transfer moves amount from one holding to another. owner must be the
// owner of the source holding; the caller has checked that owner signed.
func Transfer(v View, from, to solana.PublicKey, amount uint64, owner solana.PublicKey) error {
	src, err := GetHolding(v, from)
	if err != nil {
		return err
	}
	if src.Owner != owner {
		return fmt.Errorf("%w: holding %s is owned by %s", ErrOwnerMismatch, from, src.Owner)
	}
	return move(v, from, src, to, amount)
}

// TransferSigned moves amount out of a holding whose owner is a derived
// address, using an authority that can sign for it.
func TransferSigned(v View, from, to solana.PublicKey, amount uint64, auth pda.Authority) error {
	src, err := GetHolding(v, from)
	if err != nil {
		return err
	}
	if !auth.CanSign(src.Owner) {
		return fmt.Errorf("%w: %s", ErrAuthorityMismatch, from)
	}
	return move(v, from, src, to, amount)
}

func move(v View, from solana.PublicKey, src sle.Holding, to solana.PublicKey, amount uint64) error {
	if from == to {
		return fmt.Errorf("%w: %s", ErrSelfTransfer, from)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: holding %s has %d, need %d", ErrInsufficientFunds, from, src.Amount, amount)
	}

	dst, err := GetHolding(v, to)
	if err != nil {
		return err
	}
	if dst.Mint != src.Mint {
		return fmt.Errorf("%w: %s holds %s, %s holds %s", ErrMintMismatch, from, src.Mint, to, dst.Mint)
	}

	src.Amount -= amount
	if dst.Amount, err = swapmath.Add(dst.Amount, amount); err != nil {
		return err
	}
	if err := v.Update(keylet.Holding(from), sle.SerializeHolding(src)); err != nil {
		return err
	}
	return v.Update(keylet.Holding(to), sle.SerializeHolding(dst))
}

// Issue mints amount of mint into a holding. authority must be the mint
// authority; the caller has checked that it signed.
func Issue(v View, mint, to solana.PublicKey, amount uint64, authority solana.PublicKey) error {
	m, err := GetMint(v, mint)
	if err != nil {
		return err
	}
	if m.Authority != authority {
		return fmt.Errorf("%w: mint %s", ErrAuthorityMismatch, mint)
	}
	return issue(v, mint, m, to, amount)
}

// MintTo mints amount into a holding of a mint whose authority is a derived address.
func MintTo(v View, mint, to solana.PublicKey, amount uint64, auth pda.Authority) error {
	m, err := GetMint(v, mint)
	if err != nil {
		return err
	}
	if !auth.CanSign(m.Authority) {
		return fmt.Errorf("%w: mint %s", ErrAuthorityMismatch, mint)
	}
	return issue(v, mint, m, to, amount)
}

func issue(v View, mint solana.PublicKey, m sle.Mint, to solana.PublicKey, amount uint64) error {
	dst, err := GetHolding(v, to)
	if err != nil {
		return err
	}
	if dst.Mint != mint {
		return fmt.Errorf("%w: %s does not hold %s", ErrMintMismatch, to, mint)
	}
	if m.Supply, err = swapmath.Add(m.Supply, amount); err != nil {
		return err
	}
	if dst.Amount, err = swapmath.Add(dst.Amount, amount); err != nil {
		return err
	}
	if err := v.Update(keylet.Mint(mint), sle.SerializeMint(m)); err != nil {
		return err
	}
	return v.Update(keylet.Holding(to), sle.SerializeHolding(dst))
}

// Burn destroys amount from a holding. owner must own the holding; the
// caller has checked that owner signed.
func Burn(v View, mint, from solana.PublicKey, amount uint64, owner solana.PublicKey) error {
	m, err := GetMint(v, mint)
	if err != nil {
		return err
	}
	src, err := GetHolding(v, from)
	if err != nil {
		return err
	}
	if src.Owner != owner {
		return fmt.Errorf("%w: holding %s is owned by %s", ErrOwnerMismatch, from, src.Owner)
	}
	if src.Mint != mint {
		return fmt.Errorf("%w: %s does not hold %s", ErrMintMismatch, from, mint)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: holding %s has %d, need %d", ErrInsufficientFunds, from, src.Amount, amount)
	}
	src.Amount -= amount
	if m.Supply, err = swapmath.Sub(m.Supply, amount); err != nil {
		return err
	}
	if err := v.Update(keylet.Holding(from), sle.SerializeHolding(src)); err != nil {
		return err
	}
	return v.Update(keylet.Mint(mint), sle.SerializeMint(m))
}
