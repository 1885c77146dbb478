package amm

import (
	"crypto/sha256"
	"testing"

	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/LeJamon/goswap/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func addr(name string) solana.PublicKey {
	return solana.PublicKey(sha256.Sum256([]byte(name)))
}

func entryFor(name string, a, b solana.PublicKey, ra, rb uint64) PoolEntry {
	return PoolEntry{
		Address: addr(name),
		Pool:    sle.Pool{AssetA: a, AssetB: b, ReserveA: ra, ReserveB: rb, TotalLPSupply: 1},
	}
}

func TestFindRoutes(t *testing.T) {
	x, y, z, w := addr("x"), addr("y"), addr("z"), addr("w")
	pools := []PoolEntry{
		entryFor("xy", x, y, 1000, 1000),
		entryFor("yz", y, z, 1000, 1000),
		entryFor("zx", z, x, 1000, 1000),
		entryFor("zw", z, w, 1000, 1000),
	}

	t.Run("OrderedByHops", func(t *testing.T) {
		routes := findRoutes(pools, x, z, 0)
		require.Len(t, routes, 2)
		require.Equal(t, []solana.PublicKey{x, z}, routes[0].Path)
		require.Equal(t, []solana.PublicKey{x, y, z}, routes[1].Path)
		require.Equal(t, []solana.PublicKey{addr("xy"), addr("yz")}, routes[1].Pools)
	})

	t.Run("NeverRevisitsAsset", func(t *testing.T) {
		for _, r := range findRoutes(pools, x, w, 0) {
			seen := map[solana.PublicKey]bool{}
			for _, a := range r.Path {
				require.False(t, seen[a], "route %v revisits %s", r.Path, a)
				seen[a] = true
			}
			require.Len(t, r.Pools, len(r.Path)-1)
		}
	})

	t.Run("HopLimit", func(t *testing.T) {
		require.Len(t, findRoutes(pools, x, w, 2), 1)
		require.Len(t, findRoutes(pools, x, w, 3), 2)
	})

	t.Run("SameAsset", func(t *testing.T) {
		require.Empty(t, findRoutes(pools, x, x, 0))
	})

	t.Run("EmptyPoolsSkipped", func(t *testing.T) {
		withEmpty := append([]PoolEntry{entryFor("xw", x, w, 0, 0)}, pools...)
		require.Empty(t, findRoutes(withEmpty, x, w, 1))
	})
}

func TestQuoteSnapshot(t *testing.T) {
	x, y, z := addr("x"), addr("y"), addr("z")
	snapshot := map[solana.PublicKey]sle.Pool{
		addr("xy"): {AssetA: x, AssetB: y, ReserveA: 1000, ReserveB: 1000, TotalLPSupply: 1000},
		addr("zy"): {AssetA: z, AssetB: y, ReserveA: 1000, ReserveB: 1000, TotalLPSupply: 1000},
	}

	out, err := quoteSnapshot(snapshot, 100, Route{
		Path:  []solana.PublicKey{x, y, z},
		Pools: []solana.PublicKey{addr("xy"), addr("zy")},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(82), out)

	_, err = quoteSnapshot(snapshot, 100, Route{
		Path:  []solana.PublicKey{x, z},
		Pools: []solana.PublicKey{addr("xy")},
	})
	require.ErrorIs(t, err, ErrPairMismatch)
}

func TestAccountLayouts(t *testing.T) {
	d := pda.NewProgramDeriver(addr("program"))
	keys, err := DerivePoolKeys(d, addr("x"), addr("y"))
	require.NoError(t, err)

	user, in, out := addr("user"), addr("in"), addr("out")
	require.Len(t, keys.InitPoolAccounts(user, in, out, addr("lp")), initPoolAccounts)
	require.Len(t, keys.AddLiquidityAccounts(in, out, addr("lp"), user), addLiquidityAccounts)
	require.Len(t, keys.RemoveLiquidityAccounts(addr("lp"), in, out, user), removeLiquidityAccounts)

	swap := keys.SwapAccounts(in, out, user)
	require.Len(t, swap, swapAccounts)
	require.Equal(t, []solana.PublicKey{keys.Pool, keys.AssetA, keys.AssetB, keys.VaultA, keys.VaultB}, swap[:5])

	hops := MultihopAccounts(user, in,
		Hop{Keys: keys, Intermediate: out, Output: out},
		Hop{Keys: keys, Intermediate: out, Output: out},
	)
	require.Len(t, hops, multihopPrefixAccounts+2*hopAccounts)
	require.Equal(t, keys.VaultB, hops[multihopPrefixAccounts+hopAccounts+4])
}
