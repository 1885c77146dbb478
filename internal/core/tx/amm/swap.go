package amm

import "github.com/LeJamon/goswap/internal/core/tx"

// Swap trades against one pool.
//
// Accounts: [pool, asset_a, asset_b, vault_a, vault_b, user_in, user_out, user]
func (p *Processor) Swap(ctx *tx.ApplyContext, op tx.Swap) tx.Result {
	if r := ctx.RequireAccounts(swapAccounts); !r.IsSuccess() {
		return r
	}
	a := poolAccountsAt(ctx, 0)
	userIn, userOut, user := ctx.Account(5), ctx.Account(6), ctx.Account(7)

	if r := requireSigner(ctx, user); !r.IsSuccess() {
		return r
	}
	ps, r := loadPool(ctx, a)
	if !r.IsSuccess() {
		return r
	}
	_, r = swapThrough(ctx, ps, op.AToB, op.AmountIn, userIn, userOut, user)
	return r
}
