package token

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/LeJamon/goswap/internal/core/swapmath"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapView map[keylet.Keylet][]byte

func (m mapView) Read(k keylet.Keylet) ([]byte, error) { return m[k], nil }

func (m mapView) Insert(k keylet.Keylet, data []byte) error {
	if _, ok := m[k]; ok {
		return errors.New("exists")
	}
	m[k] = data
	return nil
}

func (m mapView) Update(k keylet.Keylet, data []byte) error {
	if _, ok := m[k]; !ok {
		return errors.New("missing")
	}
	m[k] = data
	return nil
}

func key(name string) solana.PublicKey {
	h := sha256.Sum256([]byte(name))
	return solana.PublicKeyFromBytes(h[:])
}

func setup(t *testing.T) mapView {
	t.Helper()
	v := mapView{}
	require.NoError(t, CreateMint(v, key("usd"), key("issuer"), 6))
	require.NoError(t, CreateMint(v, key("eur"), key("issuer"), 6))
	require.NoError(t, CreateHolding(v, key("alice-usd"), key("usd"), key("alice")))
	require.NoError(t, CreateHolding(v, key("bob-usd"), key("usd"), key("bob")))
	require.NoError(t, CreateHolding(v, key("bob-eur"), key("eur"), key("bob")))
	require.NoError(t, Issue(v, key("usd"), key("alice-usd"), 1000, key("issuer")))
	return v
}

func TestCreate(t *testing.T) {
	v := setup(t)

	t.Run("DuplicateMint", func(t *testing.T) {
		err := CreateMint(v, key("usd"), key("issuer"), 6)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("DuplicateHolding", func(t *testing.T) {
		err := CreateHolding(v, key("alice-usd"), key("usd"), key("alice"))
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("HoldingOfUnknownMint", func(t *testing.T) {
		err := CreateHolding(v, key("x"), key("gold"), key("alice"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SupplyTracksIssue", func(t *testing.T) {
		m, err := GetMint(v, key("usd"))
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), m.Supply)
		assert.Equal(t, key("issuer"), m.Authority)
	})

	t.Run("IssueWrongAuthority", func(t *testing.T) {
		err := Issue(v, key("usd"), key("alice-usd"), 1, key("mallory"))
		assert.ErrorIs(t, err, ErrAuthorityMismatch)
	})
}

func TestTransfer(t *testing.T) {
	t.Run("MovesFunds", func(t *testing.T) {
		v := setup(t)
		require.NoError(t, Transfer(v, key("alice-usd"), key("bob-usd"), 400, key("alice")))

		a, _ := Balance(v, key("alice-usd"))
		b, _ := Balance(v, key("bob-usd"))
		assert.Equal(t, uint64(600), a)
		assert.Equal(t, uint64(400), b)
	})

	t.Run("WrongOwner", func(t *testing.T) {
		v := setup(t)
		err := Transfer(v, key("alice-usd"), key("bob-usd"), 1, key("bob"))
		assert.ErrorIs(t, err, ErrOwnerMismatch)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		v := setup(t)
		err := Transfer(v, key("alice-usd"), key("bob-usd"), 1001, key("alice"))
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("MintMismatch", func(t *testing.T) {
		v := setup(t)
		err := Transfer(v, key("alice-usd"), key("bob-eur"), 1, key("alice"))
		assert.ErrorIs(t, err, ErrMintMismatch)
	})

	t.Run("SelfTransfer", func(t *testing.T) {
		v := setup(t)
		err := Transfer(v, key("alice-usd"), key("alice-usd"), 10, key("alice"))
		assert.ErrorIs(t, err, ErrSelfTransfer)
		a, _ := Balance(v, key("alice-usd"))
		assert.Equal(t, uint64(1000), a)
	})

	t.Run("MissingDestination", func(t *testing.T) {
		v := setup(t)
		err := Transfer(v, key("alice-usd"), key("nobody"), 1, key("alice"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTransferSigned(t *testing.T) {
	d := pda.NewProgramDeriver(key("program"))
	seeds := [][]byte{[]byte("vault"), key("pool").Bytes()}
	vault, bump, err := d.Find(seeds)
	require.NoError(t, err)

	v := setup(t)
	require.NoError(t, CreateHolding(v, vault, key("usd"), vault))
	require.NoError(t, Transfer(v, key("alice-usd"), vault, 500, key("alice")))

	t.Run("ZeroAuthorityRejected", func(t *testing.T) {
		err := TransferSigned(v, vault, key("bob-usd"), 1, pda.Authority{})
		assert.ErrorIs(t, err, ErrAuthorityMismatch)
	})

	t.Run("OtherAuthorityRejected", func(t *testing.T) {
		other := [][]byte{[]byte("vault"), key("other").Bytes()}
		_, otherBump, err := d.Find(other)
		require.NoError(t, err)
		auth, err := pda.Sign(d, other, otherBump)
		require.NoError(t, err)
		err = TransferSigned(v, vault, key("bob-usd"), 1, auth)
		assert.ErrorIs(t, err, ErrAuthorityMismatch)
	})

	t.Run("DerivedAuthorityMoves", func(t *testing.T) {
		auth, err := pda.Sign(d, seeds, bump)
		require.NoError(t, err)
		require.NoError(t, TransferSigned(v, vault, key("bob-usd"), 200, auth))
		b, _ := Balance(v, key("bob-usd"))
		assert.Equal(t, uint64(200), b)
	})
}

func TestMintAndBurn(t *testing.T) {
	d := pda.NewProgramDeriver(key("program"))
	seeds := [][]byte{[]byte("mint"), key("pool").Bytes()}
	mintAddr, bump, err := d.Find(seeds)
	require.NoError(t, err)
	auth, err := pda.Sign(d, seeds, bump)
	require.NoError(t, err)

	v := setup(t)
	require.NoError(t, CreateMint(v, mintAddr, mintAddr, 0))
	require.NoError(t, CreateHolding(v, key("alice-lp"), mintAddr, key("alice")))

	require.NoError(t, MintTo(v, mintAddr, key("alice-lp"), 70, auth))
	assert.ErrorIs(t, MintTo(v, mintAddr, key("alice-lp"), 1, pda.Authority{}), ErrAuthorityMismatch)
	assert.ErrorIs(t, MintTo(v, mintAddr, key("alice-usd"), 1, auth), ErrMintMismatch)

	t.Run("BurnWrongOwner", func(t *testing.T) {
		assert.ErrorIs(t, Burn(v, mintAddr, key("alice-lp"), 1, key("bob")), ErrOwnerMismatch)
	})

	t.Run("BurnTooMuch", func(t *testing.T) {
		assert.ErrorIs(t, Burn(v, mintAddr, key("alice-lp"), 71, key("alice")), ErrInsufficientFunds)
	})

	t.Run("Burn", func(t *testing.T) {
		require.NoError(t, Burn(v, mintAddr, key("alice-lp"), 30, key("alice")))
		m, err := GetMint(v, mintAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(40), m.Supply)
		bal, _ := Balance(v, key("alice-lp"))
		assert.Equal(t, uint64(40), bal)
	})

	t.Run("IssueOverflow", func(t *testing.T) {
		err := Issue(v, key("usd"), key("alice-usd"), ^uint64(0), key("issuer"))
		assert.ErrorIs(t, err, swapmath.ErrOverflow)
	})
}
