package amm_test

import (
	"context"
	"testing"

	coreAmm "github.com/LeJamon/goswap/internal/core/tx/amm"
	jtx "github.com/LeJamon/goswap/internal/testing"
	"github.com/LeJamon/goswap/internal/testing/amm"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestPoolQueries(t *testing.T) {
	env := twoPools(t)

	t.Run("ListPools", func(t *testing.T) {
		pools, err := coreAmm.ListPools(env.View())
		require.NoError(t, err)
		require.Len(t, pools, 2)

		n, err := coreAmm.CountPools(env.View())
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("FindPoolsByAsset", func(t *testing.T) {
		eur, err := coreAmm.FindPoolsByAsset(env.View(), env.EUR)
		require.NoError(t, err)
		require.Len(t, eur, 2)

		usd, err := coreAmm.FindPoolsByAsset(env.View(), env.USD)
		require.NoError(t, err)
		require.Len(t, usd, 1)
		require.Equal(t, env.PoolKeys(env.USD, env.EUR).Pool, usd[0].Address)
	})

	t.Run("GetPoolMissing", func(t *testing.T) {
		_, err := coreAmm.GetPool(env.View(), jtx.Key("nowhere"))
		require.ErrorIs(t, err, coreAmm.ErrPoolNotFound)
	})

	t.Run("QuoteSwapMatchesExecution", func(t *testing.T) {
		pool := env.PoolKeys(env.USD, env.EUR).Pool
		quote, err := coreAmm.QuoteSwap(env.View(), pool, 100, true)
		require.NoError(t, err)
		require.Equal(t, uint64(90), quote)
	})

	t.Run("QuoteRoute", func(t *testing.T) {
		path := []solana.PublicKey{env.USD, env.EUR, env.BTC}
		pools := []solana.PublicKey{env.PoolKeys(env.USD, env.EUR).Pool, env.PoolKeys(env.EUR, env.BTC).Pool}
		out, err := coreAmm.QuoteRoute(env.View(), 100, path, pools)
		require.NoError(t, err)
		require.Equal(t, uint64(82), out)

		_, err = coreAmm.QuoteRoute(env.View(), 100, []solana.PublicKey{env.USD, env.BTC}, pools[:1])
		require.ErrorIs(t, err, coreAmm.ErrPairMismatch)
	})

	t.Run("FindRoutes", func(t *testing.T) {
		routes, err := coreAmm.FindRoutes(env.View(), env.USD, env.BTC, 0)
		require.NoError(t, err)
		require.Len(t, routes, 1)
		require.Equal(t, []solana.PublicKey{env.USD, env.EUR, env.BTC}, routes[0].Path)

		routes, err = coreAmm.FindRoutes(env.View(), env.USD, env.BTC, 1)
		require.NoError(t, err)
		require.Empty(t, routes)
	})
}

func TestBestRoute(t *testing.T) {
	t.Run("PrefersDeeperTwoHopRoute", func(t *testing.T) {
		env := twoPools(t)
		env.CreatePool(env.USD, env.BTC, 100, 100)

		q, err := coreAmm.BestRoute(context.Background(), env.View(), 100, env.USD, env.BTC, 0)
		require.NoError(t, err)
		require.Equal(t, uint64(82), q.AmountOut)
		require.Len(t, q.Route.Pools, 2)
	})

	t.Run("PrefersDirectPoolWhenBetter", func(t *testing.T) {
		env := twoPools(t)
		env.CreatePool(env.USD, env.BTC, 1000, 1000)

		q, err := coreAmm.BestRoute(context.Background(), env.View(), 100, env.USD, env.BTC, 0)
		require.NoError(t, err)
		require.Equal(t, uint64(90), q.AmountOut)
		require.Equal(t, []solana.PublicKey{env.PoolKeys(env.USD, env.BTC).Pool}, q.Route.Pools)
	})

	t.Run("QuoteExecutes", func(t *testing.T) {
		env := twoPools(t)
		q, err := coreAmm.BestRoute(context.Background(), env.View(), 250, env.USD, env.BTC, 0)
		require.NoError(t, err)

		legs := []amm.Leg{{A: env.USD, B: env.EUR}, {A: env.EUR, B: env.BTC}}
		result := env.Submit(amm.MultihopSwapWithPath(env.TestEnv, env.Carol, q.Route.Path, legs, 250, q.AmountOut).Build())
		jtx.RequireTxSuccess(t, result)
		jtx.RequireBalance(t, env.TestEnv, env.Carol, env.BTC, 10000+q.AmountOut)
	})

	t.Run("NoRoute", func(t *testing.T) {
		env := amm.NewAMMTestEnv(t)
		env.FundAll(10000)
		env.CreatePool(env.USD, env.EUR, 1000, 1000)

		_, err := coreAmm.BestRoute(context.Background(), env.View(), 100, env.USD, env.BTC, 0)
		require.ErrorIs(t, err, coreAmm.ErrNoRoute)
	})

	t.Run("SkipsEmptiedPools", func(t *testing.T) {
		env := twoPools(t)
		jtx.RequireTxSuccess(t, env.Submit(amm.RemoveLiquidity(env.TestEnv, env.Alice, env.EUR, env.BTC, 1000).Build()))

		_, err := coreAmm.BestRoute(context.Background(), env.View(), 100, env.USD, env.BTC, 0)
		require.ErrorIs(t, err, coreAmm.ErrNoRoute)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		env := twoPools(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := coreAmm.BestRoute(ctx, env.View(), 100, env.USD, env.BTC, 0)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPoolStaysBacked(t *testing.T) {
	env := twoPools(t)
	steps := []*amm.Builder{
		amm.AddLiquidity(env.TestEnv, env.Bob, env.USD, env.EUR, 333, 777),
		amm.Swap(env.TestEnv, env.Carol, env.USD, env.EUR, 421, true),
		amm.MultihopSwap(env.TestEnv, env.Carol,
			[]solana.PublicKey{env.BTC, env.EUR, env.USD},
			[]amm.Leg{{A: env.EUR, B: env.BTC}, {A: env.USD, B: env.EUR}}, 600, 0),
		amm.RemoveLiquidity(env.TestEnv, env.Bob, env.USD, env.EUR, 200),
		amm.Swap(env.TestEnv, env.Bob, env.EUR, env.BTC, 55, false),
		amm.AddLiquidity(env.TestEnv, env.Carol, env.EUR, env.BTC, 1234, 99),
		amm.RemoveLiquidity(env.TestEnv, env.Alice, env.EUR, env.BTC, 999),
	}
	for i, b := range steps {
		jtx.RequireTxSuccess(t, env.Submit(b.Build()))
		jtx.RequirePoolBacked(t, env.TestEnv, env.USD, env.EUR)
		jtx.RequirePoolBacked(t, env.TestEnv, env.EUR, env.BTC)
		require.Len(t, env.Receipts(), 2+i+1)
	}
}
