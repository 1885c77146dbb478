package amm

import (
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/gagliardetto/solana-go"
)

// PoolKeys are the derived addresses of one pool.
type PoolKeys struct {
	AssetA solana.PublicKey
	AssetB solana.PublicKey
	Pool   solana.PublicKey
	Bump   uint8
	VaultA solana.PublicKey
	VaultB solana.PublicKey
	LPMint solana.PublicKey
}

// DerivePoolKeys derives every address of the pool for the ordered pair (a, b).
func DerivePoolKeys(d pda.Deriver, a, b solana.PublicKey) (PoolKeys, error) {
	k := PoolKeys{AssetA: a, AssetB: b}
	var err error
	if k.Pool, k.Bump, err = pda.PoolAddress(d, a, b); err != nil {
		return PoolKeys{}, err
	}
	if k.VaultA, _, err = pda.VaultAddress(d, k.Pool, a); err != nil {
		return PoolKeys{}, err
	}
	if k.VaultB, _, err = pda.VaultAddress(d, k.Pool, b); err != nil {
		return PoolKeys{}, err
	}
	if k.LPMint, _, err = pda.LPMintAddress(d, k.Pool); err != nil {
		return PoolKeys{}, err
	}
	return k, nil
}

func (k PoolKeys) block() []solana.PublicKey {
	return []solana.PublicKey{k.Pool, k.AssetA, k.AssetB, k.VaultA, k.VaultB}
}

// InitPoolAccounts orders the accounts of an InitPool invocation.
func (k PoolKeys) InitPoolAccounts(user, userA, userB, userLP solana.PublicKey) []solana.PublicKey {
	return append(k.block(), k.LPMint, user, userA, userB, userLP)
}

// AddLiquidityAccounts orders the accounts of an AddLiquidity invocation.
func (k PoolKeys) AddLiquidityAccounts(userA, userB, userLP, user solana.PublicKey) []solana.PublicKey {
	return append(k.block(), k.LPMint, userA, userB, userLP, user)
}

// RemoveLiquidityAccounts orders the accounts of a RemoveLiquidity invocation.
func (k PoolKeys) RemoveLiquidityAccounts(userLP, userA, userB, user solana.PublicKey) []solana.PublicKey {
	return append(k.block(), k.LPMint, userLP, userA, userB, user)
}

// SwapAccounts orders the accounts of a Swap invocation.
func (k PoolKeys) SwapAccounts(userIn, userOut, user solana.PublicKey) []solana.PublicKey {
	return append(k.block(), userIn, userOut, user)
}

// Hop is one leg of a multihop account list.
type Hop struct {
	Keys         PoolKeys
	Intermediate solana.PublicKey
	Output       solana.PublicKey
}

// MultihopAccounts orders the accounts of either multihop invocation.
func MultihopAccounts(user, input solana.PublicKey, hops ...Hop) []solana.PublicKey {
	out := []solana.PublicKey{user, input}
	for _, h := range hops {
		out = append(out, h.Keys.block()...)
		out = append(out, h.Intermediate, h.Output)
	}
	return out
}
