package testing

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// RequireTxSuccess asserts that an invocation was applied.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected invocation success, got %s: %s", result.Code, result.Message)
	require.Equal(t, "tesSUCCESS", result.Code,
		"Expected tesSUCCESS, got %s: %s", result.Code, result.Message)
}

// RequireTxFail asserts that an invocation failed with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expectedCode string) {
	t.Helper()
	require.False(t, result.Success,
		"Expected invocation failure with code %s, but invocation succeeded", expectedCode)
	require.Equal(t, expectedCode, result.Code,
		"Expected failure code %s, got %s: %s", expectedCode, result.Code, result.Message)
}

// RequireBalance asserts acc's balance of mint.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, mint solana.PublicKey, expected uint64) {
	t.Helper()
	actual := env.Balance(acc, mint)
	require.Equal(t, expected, actual,
		"Account %s balance mismatch: expected %d, got %d", acc.Name, expected, actual)
}

// RequirePoolReserves asserts the reserves and share supply of the pool at addr.
func RequirePoolReserves(t *testing.T, env *TestEnv, addr solana.PublicKey, reserveA, reserveB, supply uint64) {
	t.Helper()
	p := env.Pool(addr)
	require.Equal(t, reserveA, p.ReserveA, "reserve_a")
	require.Equal(t, reserveB, p.ReserveB, "reserve_b")
	require.Equal(t, supply, p.TotalLPSupply, "total_lp_supply")
}

// RequirePoolBacked asserts that the pool reserves equal its vault balances,
// the share mint supply equals the recorded supply and the record is valid.
func RequirePoolBacked(t *testing.T, env *TestEnv, a, b solana.PublicKey) {
	t.Helper()
	keys := env.PoolKeys(a, b)
	p := env.Pool(keys.Pool)
	require.NoError(t, p.Validate())
	require.Equal(t, p.ReserveA, env.BalanceAt(keys.VaultA), "vault_a balance")
	require.Equal(t, p.ReserveB, env.BalanceAt(keys.VaultB), "vault_b balance")
	require.Equal(t, p.TotalLPSupply, env.Supply(keys.LPMint), "lp supply")
}
