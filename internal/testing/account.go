package testing

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// Account is a deterministic test account derived from its name.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// PrivateKey is the ed25519 key derived from sha256(name).
	PrivateKey solana.PrivateKey

	// Address is the public key of the account.
	Address solana.PublicKey
}

// NewAccount creates a test account from name. The same name always yields
// the same keys.
func NewAccount(name string) *Account {
	seed := sha256.Sum256([]byte(name))
	priv := solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:]))
	return &Account{
		Name:       name,
		PrivateKey: priv,
		Address:    priv.PublicKey(),
	}
}

// Human returns the account name for log output.
func (a *Account) Human() string {
	return a.Name
}

// Key derives a deterministic address from name without key material. Used
// for mints and holdings, which never sign.
func Key(name string) solana.PublicKey {
	h := sha256.Sum256([]byte(name))
	return solana.PublicKeyFromBytes(h[:])
}
