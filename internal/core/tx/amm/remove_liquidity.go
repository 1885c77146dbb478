package amm

import (
	"github.com/LeJamon/goswap/internal/core/swapmath"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/core/tx/token"
	"go.uber.org/zap"
)

// RemoveLiquidity burns shares and pays out the proportional reserves.
//
// Accounts: [pool, asset_a, asset_b, vault_a, vault_b, lp_mint, user_lp, user_a, user_b, user]
func (p *Processor) RemoveLiquidity(ctx *tx.ApplyContext, op tx.RemoveLiquidity) tx.Result {
	if r := ctx.RequireAccounts(removeLiquidityAccounts); !r.IsSuccess() {
		return r
	}
	a := poolAccountsAt(ctx, 0)
	lpMint := ctx.Account(5)
	userLP, userA, userB, user := ctx.Account(6), ctx.Account(7), ctx.Account(8), ctx.Account(9)

	if op.LPAmount == 0 {
		return tx.TemINVALID_ARGUMENT
	}
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
	if op.LPAmount > pool.TotalLPSupply {
		return tx.TefUNDERFLOW
	}
	amountA, amountB, err := swapmath.ComputeWithdrawal(op.LPAmount, pool.ReserveA, pool.ReserveB, pool.TotalLPSupply)
	if err != nil {
		return fail(ctx, "withdrawal", err)
	}

	if err := token.Burn(ctx.View, lpMint, userLP, op.LPAmount, user); err != nil {
		return fail(ctx, "burn shares", err)
	}

	authA, err := ps.vaultAuthority(ctx.Deriver, true)
	if err != nil {
		return fail(ctx, "vault_a authority", err)
	}
	authB, err := ps.vaultAuthority(ctx.Deriver, false)
	if err != nil {
		return fail(ctx, "vault_b authority", err)
	}
	if err := token.TransferSigned(ctx.View, ps.vaultA, userA, amountA, authA); err != nil {
		return fail(ctx, "pay out a", err)
	}
	if err := token.TransferSigned(ctx.View, ps.vaultB, userB, amountB, authB); err != nil {
		return fail(ctx, "pay out b", err)
	}

	next, err := pool.WithWithdrawal(amountA, amountB, op.LPAmount)
	if err != nil {
		return fail(ctx, "update reserves", err)
	}
	if r := savePool(ctx, ps.addr, next); !r.IsSuccess() {
		return r
	}

	ctx.Log().Debug("liquidity removed",
		zap.Stringer("pool", ps.addr),
		zap.Uint64("a", amountA),
		zap.Uint64("b", amountB),
		zap.Uint64("lp", op.LPAmount),
	)
	return tx.TesSUCCESS
}
