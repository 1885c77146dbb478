package amm

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LeJamon/goswap/internal/core/ledger/entry"
	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/LeJamon/goswap/internal/core/swapmath"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"
)

var (
	ErrPoolNotFound = errors.New("amm: pool not found")
	ErrNoRoute      = errors.New("amm: no route")
	ErrPairMismatch = errors.New("amm: pool does not trade the requested pair")
)

// MaxRouteHops bounds route search.
const MaxRouteHops = 4

// quoteWorkers bounds concurrent route quoting.
const quoteWorkers = 8

// PoolEntry is a pool record and the address it is stored at.
type PoolEntry struct {
	Address solana.PublicKey
	Pool    sle.Pool
}

// GetPool loads the pool stored at addr.
func GetPool(view tx.LedgerView, addr solana.PublicKey) (sle.Pool, error) {
	data, err := view.Read(keylet.Pool(addr))
	if err != nil {
		return sle.Pool{}, err
	}
	if data == nil {
		return sle.Pool{}, fmt.Errorf("%w: %s", ErrPoolNotFound, addr)
	}
	return sle.ParsePool(data)
}

// ListPools returns every pool in key order.
func ListPools(view tx.LedgerView) ([]PoolEntry, error) {
	var (
		pools   []PoolEntry
		iterErr error
	)
	err := view.ForEach(entry.TypePool, func(k keylet.Keylet, data []byte) bool {
		p, err := sle.ParsePool(data)
		if err != nil {
			iterErr = fmt.Errorf("pool %x: %w", k.Key, err)
			return false
		}
		pools = append(pools, PoolEntry{Address: solana.PublicKeyFromBytes(k.Key[:]), Pool: p})
		return true
	})
	if err != nil {
		return nil, err
	}
	return pools, iterErr
}

// FindPoolsByAsset returns the pools trading asset on either side.
func FindPoolsByAsset(view tx.LedgerView, asset solana.PublicKey) ([]PoolEntry, error) {
	pools, err := ListPools(view)
	if err != nil {
		return nil, err
	}
	var out []PoolEntry
	for _, e := range pools {
		if _, ok := e.Pool.Side(asset); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// CountPools returns the number of pools.
func CountPools(view tx.LedgerView) (int, error) {
	n := 0
	err := view.ForEach(entry.TypePool, func(keylet.Keylet, []byte) bool {
		n++
		return true
	})
	return n, err
}

// QuoteSwap prices a single-pool trade without executing it.
func QuoteSwap(view tx.LedgerView, pool solana.PublicKey, amountIn uint64, aToB bool) (uint64, error) {
	p, err := GetPool(view, pool)
	if err != nil {
		return 0, err
	}
	reserveIn, reserveOut := p.Reserves(aToB)
	return swapmath.ComputeSwapOutput(amountIn, reserveIn, reserveOut)
}

// Route is a path of assets and the pools connecting consecutive assets.
type Route struct {
	Path  []solana.PublicKey
	Pools []solana.PublicKey
}

// RouteQuote is a priced route.
type RouteQuote struct {
	Route     Route
	AmountIn  uint64
	AmountOut uint64
}

// QuoteRoute prices amountIn along path through pools. pools[i] must trade
// path[i] against path[i+1].
func QuoteRoute(view tx.LedgerView, amountIn uint64, path, pools []solana.PublicKey) (uint64, error) {
	if len(path) < 2 || len(pools) != len(path)-1 {
		return 0, fmt.Errorf("%w: %d assets, %d pools", swapmath.ErrInvalidArgument, len(path), len(pools))
	}
	legs := make([]swapmath.Leg, len(pools))
	for i, addr := range pools {
		p, err := GetPool(view, addr)
		if err != nil {
			return 0, err
		}
		leg, err := legFor(p, path[i], path[i+1])
		if err != nil {
			return 0, fmt.Errorf("hop %d: %w", i, err)
		}
		legs[i] = leg
	}
	return swapmath.QuoteMultihop(amountIn, legs)
}

func legFor(p sle.Pool, from, to solana.PublicKey) (swapmath.Leg, error) {
	aToB, ok := p.Side(from)
	if !ok {
		return swapmath.Leg{}, ErrPairMismatch
	}
	if _, out := p.Assets(aToB); out != to {
		return swapmath.Leg{}, ErrPairMismatch
	}
	in, out := p.Reserves(aToB)
	return swapmath.Leg{ReserveIn: in, ReserveOut: out}, nil
}

// FindRoutes enumerates routes from one asset to another using at most
// maxHops pools. No route visits an asset twice. Routes are ordered by hop
// count, then discovery order.
func FindRoutes(view tx.LedgerView, from, to solana.PublicKey, maxHops int) ([]Route, error) {
	pools, err := ListPools(view)
	if err != nil {
		return nil, err
	}
	return findRoutes(pools, from, to, maxHops), nil
}

func findRoutes(pools []PoolEntry, from, to solana.PublicKey, maxHops int) []Route {
	if maxHops <= 0 || maxHops > MaxRouteHops {
		maxHops = MaxRouteHops
	}
	if from == to {
		return nil
	}

	byAsset := make(map[solana.PublicKey][]PoolEntry)
	for _, e := range pools {
		if e.Pool.ReserveA == 0 {
			continue
		}
		byAsset[e.Pool.AssetA] = append(byAsset[e.Pool.AssetA], e)
		byAsset[e.Pool.AssetB] = append(byAsset[e.Pool.AssetB], e)
	}

	var routes []Route
	visited := map[solana.PublicKey]bool{from: true}
	path := []solana.PublicKey{from}
	var via []solana.PublicKey

	var walk func(at solana.PublicKey)
	walk = func(at solana.PublicKey) {
		if len(via) == maxHops {
			return
		}
		for _, e := range byAsset[at] {
			aToB, _ := e.Pool.Side(at)
			_, next := e.Pool.Assets(aToB)
			if visited[next] {
				continue
			}
			path = append(path, next)
			via = append(via, e.Address)
			if next == to {
				routes = append(routes, Route{
					Path:  append([]solana.PublicKey(nil), path...),
					Pools: append([]solana.PublicKey(nil), via...),
				})
			} else {
				visited[next] = true
				walk(next)
				delete(visited, next)
			}
			path = path[:len(path)-1]
			via = via[:len(via)-1]
		}
	}
	walk(from)

	sort.SliceStable(routes, func(i, j int) bool { return len(routes[i].Pools) < len(routes[j].Pools) })
	return routes
}

// BestRoute quotes every route from one asset to another concurrently and
// returns the one paying the most. Routes that fail to price are skipped.
func BestRoute(ctx context.Context, view tx.LedgerView, amountIn uint64, from, to solana.PublicKey, maxHops int) (RouteQuote, error) {
	pools, err := ListPools(view)
	if err != nil {
		return RouteQuote{}, err
	}
	routes := findRoutes(pools, from, to, maxHops)
	if len(routes) == 0 {
		return RouteQuote{}, fmt.Errorf("%w: %s to %s", ErrNoRoute, from, to)
	}

	byAddr := make(map[solana.PublicKey]sle.Pool, len(pools))
	for _, e := range pools {
		byAddr[e.Address] = e.Pool
	}

	outs := make([]uint64, len(routes))
	priced := make([]bool, len(routes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteWorkers)
	for i, r := range routes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := quoteSnapshot(byAddr, amountIn, r)
			if err != nil {
				return nil
			}
			outs[i], priced[i] = out, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RouteQuote{}, err
	}

	best := -1
	for i := range routes {
		if priced[i] && (best < 0 || outs[i] > outs[best]) {
			best = i
		}
	}
	if best < 0 {
		return RouteQuote{}, fmt.Errorf("%w: no route prices %d", ErrNoRoute, amountIn)
	}
	return RouteQuote{Route: routes[best], AmountIn: amountIn, AmountOut: outs[best]}, nil
}

func quoteSnapshot(pools map[solana.PublicKey]sle.Pool, amountIn uint64, r Route) (uint64, error) {
	legs := make([]swapmath.Leg, len(r.Pools))
	for i, addr := range r.Pools {
		leg, err := legFor(pools[addr], r.Path[i], r.Path[i+1])
		if err != nil {
			return 0, err
		}
		legs[i] = leg
	}
	return swapmath.QuoteMultihop(amountIn, legs)
}
