package amm

import (
	"github.com/LeJamon/goswap/internal/core/swapmath"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/core/tx/token"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// AddLiquidity deposits at the pool's current ratio. The requested amounts
// are moved in, shares are minted for the clamped amounts and the excess is
// refunded out of the vaults.
//
// Accounts: [pool, asset_a, asset_b, vault_a, vault_b, lp_mint, user_a, user_b, user_lp, user]
func (p *Processor) AddLiquidity(ctx *tx.ApplyContext, op tx.AddLiquidity) tx.Result {
	if r := ctx.RequireAccounts(addLiquidityAccounts); !r.IsSuccess() {
		return r
	}
	a := poolAccountsAt(ctx, 0)
	lpMint := ctx.Account(5)
	userA, userB, userLP, user := ctx.Account(6), ctx.Account(7), ctx.Account(8), ctx.Account(9)

	if r := requireSigner(ctx, user); !r.IsSuccess() {
		return r
	}
	ps, r := loadPool(ctx, a)
	if !r.IsSuccess() {
		return r
	}
	if r := checkLPMint(ctx, a.pool, lpMint); !r.IsSuccess() {
		return r
	}

	pool := ps.pool
	amountA, amountB, err := swapmath.ClampDeposit(op.AmountA, op.AmountB, pool.ReserveA, pool.ReserveB)
	if err != nil {
		return fail(ctx, "clamp deposit", err)
	}
	if amountA == 0 || amountB == 0 {
		return tx.TemINVALID_ARGUMENT
	}

	var minted uint64
	if pool.TotalLPSupply == 0 {
		// A fully withdrawn pool is seeded again like a new one
		minted, err = swapmath.ComputeInitialLiquidity(amountA, amountB)
	} else {
		minted, err = swapmath.ComputeIncrementalLiquidity(amountA, pool.ReserveA, pool.TotalLPSupply)
	}
	if err != nil {
		return fail(ctx, "liquidity", err)
	}
	if minted == 0 {
		return tx.TemINVALID_ARGUMENT
	}

	if err := token.Transfer(ctx.View, userA, ps.vaultA, op.AmountA, user); err != nil {
		return fail(ctx, "deposit a", err)
	}
	if err := token.Transfer(ctx.View, userB, ps.vaultB, op.AmountB, user); err != nil {
		return fail(ctx, "deposit b", err)
	}

	auth, err := ps.mintAuthority(ctx.Deriver)
	if err != nil {
		return fail(ctx, "pool authority", err)
	}
	if err := token.MintTo(ctx.View, lpMint, userLP, minted, auth); err != nil {
		return fail(ctx, "mint shares", err)
	}

	next, err := pool.WithDeposit(amountA, amountB, minted)
	if err != nil {
		return fail(ctx, "update reserves", err)
	}
	if r := savePool(ctx, ps.addr, next); !r.IsSuccess() {
		return r
	}

	if r := refund(ctx, ps, true, userA, op.AmountA-amountA); !r.IsSuccess() {
		return r
	}
	if r := refund(ctx, ps, false, userB, op.AmountB-amountB); !r.IsSuccess() {
		return r
	}

	ctx.Log().Debug("liquidity added",
		zap.Stringer("pool", ps.addr),
		zap.Uint64("a", amountA),
		zap.Uint64("b", amountB),
		zap.Uint64("lp", minted),
	)
	return tx.TesSUCCESS
}

// refund returns excess deposited on one side back to the user holding.
func refund(ctx *tx.ApplyContext, ps *poolState, sideA bool, to solana.PublicKey, excess uint64) tx.Result {
	if excess == 0 {
		return tx.TesSUCCESS
	}
	auth, err := ps.vaultAuthority(ctx.Deriver, sideA)
	if err != nil {
		return fail(ctx, "vault authority", err)
	}
	vault := ps.vaultB
	if sideA {
		vault = ps.vaultA
	}
	if err := token.TransferSigned(ctx.View, vault, to, excess, auth); err != nil {
		return fail(ctx, "refund", err)
	}
	return tx.TesSUCCESS
}
