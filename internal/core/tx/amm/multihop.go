package amm

import (
	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// hop is one 7-account block of a multihop account list.
type hop struct {
	poolAccounts
	intermediate solana.PublicKey
	output       solana.PublicKey
}

func hopAt(ctx *tx.ApplyContext, i int) hop {
	base := multihopPrefixAccounts + i*hopAccounts
	return hop{
		poolAccounts: poolAccountsAt(ctx, base),
		intermediate: ctx.Account(base + 5),
		output:       ctx.Account(base + 6),
	}
}

// directionFunc picks the trade direction of hop i given the loaded pool
// and the holding currently carrying the funds.
type directionFunc func(i int, ps *poolState, input solana.PublicKey) (aToB bool, r tx.Result)

// MultihopSwap routes through a chain of pools, inferring each hop's
// direction from the asset of the holding that carries the funds into it.
//
// Accounts: [user, user_input, (pool, asset_a, asset_b, vault_a, vault_b, intermediate, output) * hops]
func (p *Processor) MultihopSwap(ctx *tx.ApplyContext, op tx.MultihopSwap) tx.Result {
	if r := ctx.RequireAccounts(multihopPrefixAccounts + hopAccounts); !r.IsSuccess() {
		return r
	}
	rest := len(ctx.Accounts) - multihopPrefixAccounts
	if rest%hopAccounts != 0 {
		return tx.TemINVALID_ACCOUNT_DATA
	}

	infer := func(_ int, ps *poolState, input solana.PublicKey) (bool, tx.Result) {
		data, err := ctx.View.Read(keylet.Holding(input))
		if err != nil {
			return false, fail(ctx, "read input holding", err)
		}
		if data == nil {
			return false, tx.TecNO_ENTRY
		}
		mint, err := sle.HoldingMint(data)
		if err != nil {
			return false, fail(ctx, "input holding mint", err)
		}
		aToB, ok := ps.pool.Side(mint)
		if !ok {
			return false, tx.TemINVALID_ARGUMENT
		}
		return aToB, tx.TesSUCCESS
	}
	return runHops(ctx, rest/hopAccounts, op.AmountIn, op.MinimumAmountOut, infer)
}

// MultihopSwapWithPath routes along an explicit asset path. Hop i trades
// path[i] for path[i+1] through a pool holding exactly that pair.
//
// Accounts: [user, user_input, (pool, asset_a, asset_b, vault_a, vault_b, intermediate, output) * (len(path)-1)]
func (p *Processor) MultihopSwapWithPath(ctx *tx.ApplyContext, op tx.MultihopSwapWithPath) tx.Result {
	if len(op.Path) < 2 {
		return tx.TemINVALID_ARGUMENT
	}
	hops := len(op.Path) - 1
	if len(ctx.Accounts) < multihopPrefixAccounts+hops*hopAccounts {
		return tx.TemNOT_ENOUGH_ACCOUNTS
	}
	if len(ctx.Accounts) != multihopPrefixAccounts+hops*hopAccounts {
		return tx.TemINVALID_ACCOUNT_DATA
	}

	follow := func(i int, ps *poolState, _ solana.PublicKey) (bool, tx.Result) {
		from, to := op.Path[i], op.Path[i+1]
		switch {
		case ps.pool.AssetA == from && ps.pool.AssetB == to:
			return true, tx.TesSUCCESS
		case ps.pool.AssetB == from && ps.pool.AssetA == to:
			return false, tx.TesSUCCESS
		}
		return false, tx.TemINVALID_ARGUMENT
	}
	return runHops(ctx, hops, op.AmountIn, op.MinimumAmountOut, follow)
}

// runHops executes hops in order, carrying each output into the next hop.
// Output lands in the hop's intermediate holding, except on the last hop
// where it lands in the output holding.
func runHops(ctx *tx.ApplyContext, hops int, amountIn, minimumOut uint64, direction directionFunc) tx.Result {
	user, input := ctx.Account(0), ctx.Account(1)
	if r := requireSigner(ctx, user); !r.IsSuccess() {
		return r
	}

	amount := amountIn
	for i := 0; i < hops; i++ {
		h := hopAt(ctx, i)
		ps, r := loadPool(ctx, h.poolAccounts)
		if !r.IsSuccess() {
			return r
		}
		aToB, r := direction(i, ps, input)
		if !r.IsSuccess() {
			return r
		}

		target := h.intermediate
		if i == hops-1 {
			target = h.output
		}
		out, r := swapThrough(ctx, ps, aToB, amount, input, target, user)
		if !r.IsSuccess() {
			return r
		}
		amount, input = out, target
	}

	if amount < minimumOut {
		ctx.Log().Debug("amm: multihop below minimum",
			zap.Uint64("out", amount),
			zap.Uint64("minimum", minimumOut),
		)
		return tx.TecINSUFFICIENT_FUNDS
	}
	return tx.TesSUCCESS
}
