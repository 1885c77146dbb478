// Package testing provides test infrastructure for AMM invocation testing.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: an in-memory ledger with an engine bound to the AMM processor
//   - Account: deterministic test accounts derived from a name
//   - Assertions: helpers for result codes, balances and pool reserves
//
// # Basic Usage
//
//	func TestSwap(t *testing.T) {
//	    env := jtx.NewTestEnv(t)
//	    alice := jtx.NewAccount("alice")
//	    usd, eur := env.CreateAsset("USD"), env.CreateAsset("EUR")
//	    env.Fund(alice, usd, 1000)
//	    env.Fund(alice, eur, 1000)
//
//	    result := env.Submit(amm.InitPool(env, alice, usd, eur, 1000, 1000).Build())
//	    jtx.RequireTxSuccess(t, result)
//	}
//
// Setup helpers such as CreateAsset and Fund write directly to the ledger,
// outside any invocation. Everything sent through Submit goes through the engine:
// decode, validate, dispatch, commit on success.
package testing
