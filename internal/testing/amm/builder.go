// Package amm provides test builders for AMM invocations.
package amm

import (
	"github.com/LeJamon/goswap/internal/core/tx"
	coreAmm "github.com/LeJamon/goswap/internal/core/tx/amm"
	jtx "github.com/LeJamon/goswap/internal/testing"
	"github.com/gagliardetto/solana-go"
)

// Builder assembles an invocation. Accounts default to the correct derived
// addresses; Modify lets a test corrupt them.
type Builder struct {
	op       tx.Operation
	signers  []solana.PublicKey
	accounts []solana.PublicKey
	modify   []func([]solana.PublicKey) []solana.PublicKey
}

// Modify registers a function rewriting the account list before Build.
func (b *Builder) Modify(fn func([]solana.PublicKey) []solana.PublicKey) *Builder {
	b.modify = append(b.modify, fn)
	return b
}

// ReplaceAccount replaces the i-th account.
func (b *Builder) ReplaceAccount(i int, addr solana.PublicKey) *Builder {
	return b.Modify(func(accts []solana.PublicKey) []solana.PublicKey {
		accts[i] = addr
		return accts
	})
}

// Signers overrides the signer list.
func (b *Builder) Signers(signers ...solana.PublicKey) *Builder {
	b.signers = signers
	return b
}

// Build returns the invocation.
func (b *Builder) Build() jtx.Tx {
	accts := append([]solana.PublicKey(nil), b.accounts...)
	for _, fn := range b.modify {
		accts = fn(accts)
	}
	return jtx.Tx{Op: b.op, Signers: b.signers, Accounts: accts}
}

// InitPool builds an InitPool for the pair (a, b) funded from user's holdings.
func InitPool(env *jtx.TestEnv, user *jtx.Account, a, b solana.PublicKey, amountA, amountB uint64) *Builder {
	keys := env.PoolKeys(a, b)
	return &Builder{
		op:      tx.InitPool{AmountA: amountA, AmountB: amountB},
		signers: []solana.PublicKey{user.Address},
		accounts: keys.InitPoolAccounts(
			user.Address,
			env.Holding(user, a),
			env.Holding(user, b),
			env.HoldingAddress(user, keys.LPMint),
		),
	}
}

// AddLiquidity builds an AddLiquidity into the pool for (a, b).
func AddLiquidity(env *jtx.TestEnv, user *jtx.Account, a, b solana.PublicKey, amountA, amountB uint64) *Builder {
	keys := env.PoolKeys(a, b)
	return &Builder{
		op:      tx.AddLiquidity{AmountA: amountA, AmountB: amountB},
		signers: []solana.PublicKey{user.Address},
		accounts: keys.AddLiquidityAccounts(
			env.Holding(user, a),
			env.Holding(user, b),
			env.Holding(user, keys.LPMint),
			user.Address,
		),
	}
}

// RemoveLiquidity builds a RemoveLiquidity from the pool for (a, b).
func RemoveLiquidity(env *jtx.TestEnv, user *jtx.Account, a, b solana.PublicKey, lp uint64) *Builder {
	keys := env.PoolKeys(a, b)
	return &Builder{
		op:      tx.RemoveLiquidity{LPAmount: lp},
		signers: []solana.PublicKey{user.Address},
		accounts: keys.RemoveLiquidityAccounts(
			env.Holding(user, keys.LPMint),
			env.Holding(user, a),
			env.Holding(user, b),
			user.Address,
		),
	}
}

// Swap builds a Swap against the pool for (a, b).
func Swap(env *jtx.TestEnv, user *jtx.Account, a, b solana.PublicKey, amountIn uint64, aToB bool) *Builder {
	keys := env.PoolKeys(a, b)
	in, out := env.Holding(user, a), env.Holding(user, b)
	if !aToB {
		in, out = out, in
	}
	return &Builder{
		op:       tx.Swap{AmountIn: amountIn, AToB: aToB},
		signers:  []solana.PublicKey{user.Address},
		accounts: keys.SwapAccounts(in, out, user.Address),
	}
}

// Leg names the pool of one hop by its ordered pair.
type Leg struct {
	A, B solana.PublicKey
}

// route builds the account list for trading along path through legs. The
// holding for path[i+1] serves as both intermediate and output of hop i.
func route(env *jtx.TestEnv, user *jtx.Account, path []solana.PublicKey, legs []Leg) []solana.PublicKey {
	hops := make([]coreAmm.Hop, len(legs))
	for i, l := range legs {
		h := env.Holding(user, path[i+1])
		hops[i] = coreAmm.Hop{Keys: env.PoolKeys(l.A, l.B), Intermediate: h, Output: h}
	}
	return coreAmm.MultihopAccounts(user.Address, env.Holding(user, path[0]), hops...)
}

// MultihopSwap builds a direction-inferring multihop swap along path.
func MultihopSwap(env *jtx.TestEnv, user *jtx.Account, path []solana.PublicKey, legs []Leg, amountIn, minOut uint64) *Builder {
	return &Builder{
		op:       tx.MultihopSwap{AmountIn: amountIn, MinimumAmountOut: minOut},
		signers:  []solana.PublicKey{user.Address},
		accounts: route(env, user, path, legs),
	}
}

// MultihopSwapWithPath builds an explicit-path multihop swap.
func MultihopSwapWithPath(env *jtx.TestEnv, user *jtx.Account, path []solana.PublicKey, legs []Leg, amountIn, minOut uint64) *Builder {
	return &Builder{
		op:       tx.MultihopSwapWithPath{AmountIn: amountIn, MinimumAmountOut: minOut, Path: path},
		signers:  []solana.PublicKey{user.Address},
		accounts: route(env, user, path, legs),
	}
}
