package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Authority is proof that the holder can sign for a derived address. The
// zero value signs for nothing. Only Sign constructs a usable Authority, so
// code without the seeds and a Deriver cannot produce one.
type Authority struct {
	address solana.PublicKey
	valid   bool
}

// Sign re-derives the address for seeds and bump and returns an Authority
// for it.
func Sign(d Deriver, seeds [][]byte, bump uint8) (Authority, error) {
	addr, err := d.Create(seeds, bump)
	if err != nil {
		return Authority{}, err
	}
	return Authority{address: addr, valid: true}, nil
}

// SignFor is Sign followed by a check that the derived address equals want.
func SignFor(d Deriver, seeds [][]byte, bump uint8, want solana.PublicKey) (Authority, error) {
	auth, err := Sign(d, seeds, bump)
	if err != nil {
		return Authority{}, err
	}
	if auth.address != want {
		return Authority{}, fmt.Errorf("%w: signer %s for %s", ErrAddressMismatch, auth.address, want)
	}
	return auth, nil
}

// Address returns the address this authority signs for.
func (a Authority) Address() solana.PublicKey {
	return a.address
}

// CanSign reports whether a signs for addr.
func (a Authority) CanSign(addr solana.PublicKey) bool {
	return a.valid && a.address == addr
}
