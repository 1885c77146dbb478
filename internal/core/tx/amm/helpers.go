// Package amm implements the constant-product pool operations and the
// multi-hop router on top of the custody primitive in package token.
package amm

import (
	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/LeJamon/goswap/internal/core/swapmath"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/core/tx/sle"
	"github.com/LeJamon/goswap/internal/core/tx/token"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Processor implements tx.Processor.
type Processor struct{}

var _ tx.Processor = (*Processor)(nil)

// NewProcessor creates the AMM processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// poolAccounts is the [pool, asset_a, asset_b, vault_a, vault_b] block every
// pool operation starts with.
type poolAccounts struct {
	pool   solana.PublicKey
	assetA solana.PublicKey
	assetB solana.PublicKey
	vaultA solana.PublicKey
	vaultB solana.PublicKey
}

func poolAccountsAt(ctx *tx.ApplyContext, i int) poolAccounts {
	return poolAccounts{
		pool:   ctx.Account(i),
		assetA: ctx.Account(i + 1),
		assetB: ctx.Account(i + 2),
		vaultA: ctx.Account(i + 3),
		vaultB: ctx.Account(i + 4),
	}
}

// poolState is a loaded pool whose addresses have been checked.
type poolState struct {
	addr   solana.PublicKey
	pool   sle.Pool
	vaultA solana.PublicKey
	vaultB solana.PublicKey
	bumpA  uint8
	bumpB  uint8
}

// vaults returns (vault_in, vault_out) for a trade in the given direction.
func (ps *poolState) vaults(aToB bool) (solana.PublicKey, solana.PublicKey) {
	if aToB {
		return ps.vaultA, ps.vaultB
	}
	return ps.vaultB, ps.vaultA
}

// vaultAuthority signs for the vault of asset_a (sideA) or asset_b.
func (ps *poolState) vaultAuthority(d pda.Deriver, sideA bool) (pda.Authority, error) {
	if sideA {
		return pda.SignFor(d, pda.VaultSeeds(ps.addr, ps.pool.AssetA), ps.bumpA, ps.vaultA)
	}
	return pda.SignFor(d, pda.VaultSeeds(ps.addr, ps.pool.AssetB), ps.bumpB, ps.vaultB)
}

// mintAuthority signs for the pool address, the authority of its share mint.
func (ps *poolState) mintAuthority(d pda.Deriver) (pda.Authority, error) {
	return pda.SignFor(d, pda.PoolSeeds(ps.pool.AssetA, ps.pool.AssetB), ps.pool.Bump, ps.addr)
}

// fail maps err to a result code and logs it.
func fail(ctx *tx.ApplyContext, step string, err error) tx.Result {
	r := tx.ResultFromError(err)
	ctx.Log().Debug("amm: "+step, zap.Error(err), zap.Stringer("result", r))
	return r
}

func requireSigner(ctx *tx.ApplyContext, user solana.PublicKey) tx.Result {
	if !ctx.IsSigner(user) {
		return tx.TemMISSING_SIGNATURE
	}
	return tx.TesSUCCESS
}

// loadPool reads the pool record at a.pool and checks that the pool address
// re-derives from its stored bump, that the asset accounts are the pool's
// assets and that both vaults are the pool's derived vaults.
func loadPool(ctx *tx.ApplyContext, a poolAccounts) (*poolState, tx.Result) {
	data, err := ctx.View.Read(keylet.Pool(a.pool))
	if err != nil {
		return nil, fail(ctx, "read pool", err)
	}
	if data == nil {
		return nil, tx.TecNO_ENTRY
	}
	p, err := sle.ParsePool(data)
	if err != nil {
		return nil, fail(ctx, "parse pool", err)
	}
	if p.AssetA != a.assetA || p.AssetB != a.assetB {
		return nil, tx.TemINVALID_ARGUMENT
	}

	addr, err := ctx.Deriver.Create(pda.PoolSeeds(p.AssetA, p.AssetB), p.Bump)
	if err != nil {
		return nil, fail(ctx, "derive pool", err)
	}
	if addr != a.pool {
		return nil, tx.TemINVALID_SEEDS
	}

	ps := &poolState{addr: a.pool, pool: p, vaultA: a.vaultA, vaultB: a.vaultB}
	if ps.bumpA, err = pda.Expect(ctx.Deriver, pda.VaultSeeds(a.pool, p.AssetA), a.vaultA); err != nil {
		return nil, fail(ctx, "vault_a", err)
	}
	if ps.bumpB, err = pda.Expect(ctx.Deriver, pda.VaultSeeds(a.pool, p.AssetB), a.vaultB); err != nil {
		return nil, fail(ctx, "vault_b", err)
	}
	return ps, tx.TesSUCCESS
}

// checkLPMint verifies the share mint address of the pool.
func checkLPMint(ctx *tx.ApplyContext, pool, lpMint solana.PublicKey) tx.Result {
	if _, err := pda.Expect(ctx.Deriver, pda.MintSeeds(pool), lpMint); err != nil {
		return fail(ctx, "lp mint", err)
	}
	return tx.TesSUCCESS
}

// savePool validates p and writes it once.
func savePool(ctx *tx.ApplyContext, addr solana.PublicKey, p sle.Pool) tx.Result {
	if err := p.Validate(); err != nil {
		return fail(ctx, "validate pool", err)
	}
	if err := ctx.View.Update(keylet.Pool(addr), sle.SerializePool(p)); err != nil {
		return fail(ctx, "write pool", err)
	}
	return tx.TesSUCCESS
}

// swapThrough trades amountIn through one pool on behalf of user: transfer
// in, price against the reserves read before the transfer, transfer out,
// then persist the new reserves.
func swapThrough(ctx *tx.ApplyContext, ps *poolState, aToB bool, amountIn uint64, from, to, user solana.PublicKey) (uint64, tx.Result) {
	reserveIn, reserveOut := ps.pool.Reserves(aToB)
	vaultIn, vaultOut := ps.vaults(aToB)

	if err := token.Transfer(ctx.View, from, vaultIn, amountIn, user); err != nil {
		return 0, fail(ctx, "transfer in", err)
	}

	amountOut, err := swapmath.ComputeSwapOutput(amountIn, reserveIn, reserveOut)
	if err != nil {
		return 0, fail(ctx, "price swap", err)
	}

	auth, err := ps.vaultAuthority(ctx.Deriver, !aToB)
	if err != nil {
		return 0, fail(ctx, "vault authority", err)
	}
	if err := token.TransferSigned(ctx.View, vaultOut, to, amountOut, auth); err != nil {
		return 0, fail(ctx, "transfer out", err)
	}

	next, err := ps.pool.WithSwap(aToB, amountIn, amountOut)
	if err != nil {
		return 0, fail(ctx, "update reserves", err)
	}
	if r := savePool(ctx, ps.addr, next); !r.IsSuccess() {
		return 0, r
	}
	ps.pool = next

	ctx.Log().Debug("swap",
		zap.Stringer("pool", ps.addr),
		zap.Bool("a_to_b", aToB),
		zap.Uint64("in", amountIn),
		zap.Uint64("out", amountOut),
	)
	return amountOut, tx.TesSUCCESS
}
