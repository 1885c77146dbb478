package amm

import (
	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/LeJamon/goswap/internal/core/swapmath"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/core/tx/sle"
	"github.com/LeJamon/goswap/internal/core/tx/token"
	"go.uber.org/zap"
)

// InitPool creates the pool record, both vaults and the share mint, moves the
// first deposit in and mints isqrt(a*b) shares to the creator.
//
// Accounts: [pool, asset_a, asset_b, vault_a, vault_b, lp_mint, user, user_a, user_b, user_lp]
func (p *Processor) InitPool(ctx *tx.ApplyContext, op tx.InitPool) tx.Result {
	if r := ctx.RequireAccounts(initPoolAccounts); !r.IsSuccess() {
		return r
	}
	a := poolAccountsAt(ctx, 0)
	lpMint := ctx.Account(5)
	user, userA, userB, userLP := ctx.Account(6), ctx.Account(7), ctx.Account(8), ctx.Account(9)

	if r := requireSigner(ctx, user); !r.IsSuccess() {
		return r
	}
	if a.assetA == a.assetB {
		return tx.TemINVALID_ARGUMENT
	}
	if _, err := token.GetMint(ctx.View, a.assetA); err != nil {
		return fail(ctx, "asset_a", err)
	}
	if _, err := token.GetMint(ctx.View, a.assetB); err != nil {
		return fail(ctx, "asset_b", err)
	}

	bump, err := pda.Expect(ctx.Deriver, pda.PoolSeeds(a.assetA, a.assetB), a.pool)
	if err != nil {
		return fail(ctx, "pool address", err)
	}
	exists, err := ctx.View.Exists(keylet.Pool(a.pool))
	if err != nil {
		return fail(ctx, "pool lookup", err)
	}
	if exists {
		return tx.TecDUPLICATE
	}
	if _, err := pda.Expect(ctx.Deriver, pda.VaultSeeds(a.pool, a.assetA), a.vaultA); err != nil {
		return fail(ctx, "vault_a address", err)
	}
	if _, err := pda.Expect(ctx.Deriver, pda.VaultSeeds(a.pool, a.assetB), a.vaultB); err != nil {
		return fail(ctx, "vault_b address", err)
	}
	if r := checkLPMint(ctx, a.pool, lpMint); !r.IsSuccess() {
		return r
	}

	liquidity, err := swapmath.ComputeInitialLiquidity(op.AmountA, op.AmountB)
	if err != nil {
		return fail(ctx, "initial liquidity", err)
	}
	if liquidity == 0 {
		return tx.TemINVALID_ARGUMENT
	}

	// Each vault is owned by its own derived address.
	if err := token.CreateHolding(ctx.View, a.vaultA, a.assetA, a.vaultA); err != nil {
		return fail(ctx, "create vault_a", err)
	}
	if err := token.CreateHolding(ctx.View, a.vaultB, a.assetB, a.vaultB); err != nil {
		return fail(ctx, "create vault_b", err)
	}
	if err := token.CreateMint(ctx.View, lpMint, a.pool, LPDecimals); err != nil {
		return fail(ctx, "create lp mint", err)
	}
	hasLP, err := token.HoldingExists(ctx.View, userLP)
	if err != nil {
		return fail(ctx, "user_lp lookup", err)
	}
	if !hasLP {
		if err := token.CreateHolding(ctx.View, userLP, lpMint, user); err != nil {
			return fail(ctx, "create user_lp", err)
		}
	}

	if err := token.Transfer(ctx.View, userA, a.vaultA, op.AmountA, user); err != nil {
		return fail(ctx, "deposit a", err)
	}
	if err := token.Transfer(ctx.View, userB, a.vaultB, op.AmountB, user); err != nil {
		return fail(ctx, "deposit b", err)
	}

	pool := sle.Pool{
		AssetA:        a.assetA,
		AssetB:        a.assetB,
		Bump:          bump,
		ReserveA:      op.AmountA,
		ReserveB:      op.AmountB,
		TotalLPSupply: liquidity,
	}
	ps := &poolState{addr: a.pool, pool: pool}
	auth, err := ps.mintAuthority(ctx.Deriver)
	if err != nil {
		return fail(ctx, "pool authority", err)
	}
	if err := token.MintTo(ctx.View, lpMint, userLP, liquidity, auth); err != nil {
		return fail(ctx, "mint shares", err)
	}

	if err := pool.Validate(); err != nil {
		return fail(ctx, "validate pool", err)
	}
	if err := ctx.View.Insert(keylet.Pool(a.pool), sle.SerializePool(pool)); err != nil {
		return fail(ctx, "write pool", err)
	}

	ctx.Log().Info("pool created",
		zap.Stringer("pool", a.pool),
		zap.Uint64("reserve_a", op.AmountA),
		zap.Uint64("reserve_b", op.AmountB),
		zap.Uint64("lp", liquidity),
	)
	return tx.TesSUCCESS
}
