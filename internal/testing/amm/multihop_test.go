package amm_test

import (
	"testing"

	jtx "github.com/LeJamon/goswap/internal/testing"
	"github.com/LeJamon/goswap/internal/testing/amm"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// twoPools creates USD/EUR and EUR/BTC at 1000/1000 and funds everyone.
func twoPools(t *testing.T) *amm.AMMTestEnv {
	t.Helper()
	env := amm.NewAMMTestEnv(t)
	env.FundAll(10000)
	env.CreatePool(env.USD, env.EUR, 1000, 1000)
	env.CreatePool(env.EUR, env.BTC, 1000, 1000)
	return env
}

func TestMultihopSwap(t *testing.T) {
	t.Run("TwoHops", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR, env.BTC}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.EUR, B: env.BTC}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 82).Build())
		jtx.RequireTxSuccess(t, result)

		// 100 USD -> 90 EUR -> 82 BTC
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.USD, 9900)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.EUR, 10000)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.BTC, 10082)
		jtx.RequirePoolReserves(t, env.TestEnv, env.PoolKeys(env.USD, env.EUR).Pool, 1100, 910, 1000)
		jtx.RequirePoolReserves(t, env.TestEnv, env.PoolKeys(env.EUR, env.BTC).Pool, 1090, 918, 1000)
		jtx.RequirePoolBacked(t, env.TestEnv, env.USD, env.EUR)
		jtx.RequirePoolBacked(t, env.TestEnv, env.EUR, env.BTC)
	})

	t.Run("BelowMinimumRevertsEveryHop", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR, env.BTC}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.EUR, B: env.BTC}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 83).Build())
		jtx.RequireTxFail(t, result, amm.TecINSUFFICIENT_FUNDS)

		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.USD, 10000)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.BTC, 10000)
		jtx.RequirePoolReserves(t, env.TestEnv, env.PoolKeys(env.USD, env.EUR).Pool, 1000, 1000, 1000)
		jtx.RequirePoolReserves(t, env.TestEnv, env.PoolKeys(env.EUR, env.BTC).Pool, 1000, 1000, 1000)
	})

	t.Run("InfersReversedPool", func(t *testing.T) {
		env := amm.NewAMMTestEnv(t)
		env.FundAll(10000)
		env.CreatePool(env.USD, env.EUR, 1000, 1000)
		env.CreatePool(env.BTC, env.EUR, 1000, 1000)
		path := []solana.PublicKey{env.USD, env.EUR, env.BTC}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.BTC, B: env.EUR}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 0).Build())
		jtx.RequireTxSuccess(t, result)

		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.BTC, 10082)
		jtx.RequirePoolReserves(t, env.TestEnv, env.PoolKeys(env.BTC, env.EUR).Pool, 918, 1090, 1000)
	})

	t.Run("SingleHop", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 90).Build())
		jtx.RequireTxSuccess(t, result)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.EUR, 10090)
	})

	t.Run("RevisitsPoolWithUpdatedReserves", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR, env.USD}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 0).Build())
		jtx.RequireTxSuccess(t, result)

		// The second hop prices 90 EUR against (1100, 910).
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.USD, 9998)
		jtx.RequirePoolReserves(t, env.TestEnv, env.PoolKeys(env.USD, env.EUR).Pool, 1002, 1000, 1000)
		jtx.RequirePoolBacked(t, env.TestEnv, env.USD, env.EUR)
	})

	t.Run("InputAssetNotInPool", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.BTC, env.EUR}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 0).Build())
		jtx.RequireTxFail(t, result, amm.TemINVALID_ARGUMENT)
	})

	t.Run("MissingInputHolding", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 0).
			ReplaceAccount(1, jtx.Key("no such holding")).Build())
		jtx.RequireTxFail(t, result, amm.TecNO_ENTRY)
	})

	t.Run("IntermediateOwnedByOtherUser", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR, env.BTC}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.EUR, B: env.BTC}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 0).
			ReplaceAccount(7, env.HoldingAddress(env.Alice, env.EUR)).Build())
		jtx.RequireTxFail(t, result, amm.TecOWNER_MISMATCH)
		jtx.RequireBalance(t, env.TestEnv, env.Alice, env.EUR, 8000)
	})

	t.Run("IntermediateIsHopVault", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR, env.BTC}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.EUR, B: env.BTC}}
		first := env.PoolKeys(env.USD, env.EUR)

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 0).
			ReplaceAccount(7, first.VaultB).Build())
		jtx.RequireTxFail(t, result, amm.TemINVALID_ARGUMENT)
		jtx.RequirePoolReserves(t, env.TestEnv, first.Pool, 1000, 1000, 1000)
		jtx.RequirePoolBacked(t, env.TestEnv, env.USD, env.EUR)
		jtx.RequirePoolBacked(t, env.TestEnv, env.EUR, env.BTC)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.USD, 10000)
	})

	t.Run("NotEnoughAccounts", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 0).
			Modify(func(accts []solana.PublicKey) []solana.PublicKey { return accts[:8] }).Build())
		jtx.RequireTxFail(t, result, amm.TemNOT_ENOUGH_ACCOUNTS)
	})

	t.Run("PartialHopBlock", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 0).
			Modify(func(accts []solana.PublicKey) []solana.PublicKey {
				return append(accts, env.USD, env.EUR, env.BTC)
			}).Build())
		jtx.RequireTxFail(t, result, amm.TemINVALID_ACCOUNT_DATA)
	})

	t.Run("MissingSignature", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwap(env.TestEnv, env.Bob, path, legs, 100, 0).
			Signers(env.Carol.Address).Build())
		jtx.RequireTxFail(t, result, amm.TemMISSING_SIGNATURE)
	})
}

func TestMultihopSwapWithPath(t *testing.T) {
	t.Run("FollowsPath", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR, env.BTC}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.EUR, B: env.BTC}}

		result := env.Submit(amm.MultihopSwapWithPath(env.TestEnv, env.Bob, path, legs, 100, 82).Build())
		jtx.RequireTxSuccess(t, result)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.BTC, 10082)
	})

	t.Run("Reverse", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.BTC, env.EUR, env.USD}
		legs := []amm.Leg{{A: env.EUR, B: env.BTC}, {A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwapWithPath(env.TestEnv, env.Bob, path, legs, 100, 82).Build())
		jtx.RequireTxSuccess(t, result)

		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.BTC, 9900)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.USD, 10082)
		jtx.RequirePoolReserves(t, env.TestEnv, env.PoolKeys(env.EUR, env.BTC).Pool, 910, 1100, 1000)
		jtx.RequirePoolReserves(t, env.TestEnv, env.PoolKeys(env.USD, env.EUR).Pool, 918, 1090, 1000)
	})

	t.Run("BelowMinimum", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR, env.BTC}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.EUR, B: env.BTC}}

		result := env.Submit(amm.MultihopSwapWithPath(env.TestEnv, env.Bob, path, legs, 100, 83).Build())
		jtx.RequireTxFail(t, result, amm.TecINSUFFICIENT_FUNDS)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.USD, 10000)
	})

	t.Run("PoolDoesNotMatchPath", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.BTC, env.EUR}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.EUR, B: env.BTC}}

		result := env.Submit(amm.MultihopSwapWithPath(env.TestEnv, env.Bob, path, legs, 100, 0).Build())
		jtx.RequireTxFail(t, result, amm.TemINVALID_ARGUMENT)
		jtx.RequireBalance(t, env.TestEnv, env.Bob, env.USD, 10000)
	})

	t.Run("ExtraAccounts", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwapWithPath(env.TestEnv, env.Bob, path, legs, 100, 0).
			Modify(func(accts []solana.PublicKey) []solana.PublicKey { return append(accts, env.BTC) }).Build())
		jtx.RequireTxFail(t, result, amm.TemINVALID_ACCOUNT_DATA)
	})

	t.Run("TooFewAccountsForPath", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR, env.BTC}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwapWithPath(env.TestEnv, env.Bob, path, legs, 100, 0).Build())
		jtx.RequireTxFail(t, result, amm.TemNOT_ENOUGH_ACCOUNTS)
	})

	t.Run("RepeatedAsset", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.USD}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}}

		result := env.Submit(amm.MultihopSwapWithPath(env.TestEnv, env.Bob, path, legs, 100, 0).Build())
		jtx.RequireTxFail(t, result, amm.TemINVALID_ARGUMENT)
	})

	t.Run("ReceiptsRecordEveryAttempt", func(t *testing.T) {
		env := twoPools(t)
		path := []solana.PublicKey{env.USD, env.EUR, env.BTC}
		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.EUR, B: env.BTC}}
		before := len(env.Receipts())

		env.Submit(amm.MultihopSwapWithPath(env.TestEnv, env.Bob, path, legs, 100, 83).Build())
		env.Submit(amm.MultihopSwapWithPath(env.TestEnv, env.Bob, path, legs, 100, 82).Build())

		receipts := env.Receipts()[before:]
		require.Len(t, receipts, 2)
		require.Equal(t, "MultihopSwapWithPath", receipts[0].Operation)
		require.Equal(t, "tecINSUFFICIENT_FUNDS", receipts[0].Result.String())
		require.Zero(t, receipts[0].Affected)
		require.Equal(t, "tesSUCCESS", receipts[1].Result.String())
		require.NotZero(t, receipts[1].Affected)
		require.Greater(t, receipts[1].Sequence, receipts[0].Sequence)
	})
}
