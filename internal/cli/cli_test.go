package cli

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/LeJamon/goswap/internal/config"
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/core/tx/amm"
	"github.com/LeJamon/goswap/internal/storage/database"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(name string) solana.PublicKey {
	return solana.PublicKey(sha256.Sum256([]byte(name)))
}

// run executes swapd with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "swapd %v", args)
	return out
}

func writeJSON(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func accountList(keys []solana.PublicKey) string {
	b, _ := json.Marshal(keys)
	return string(b)
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SWAPD_STATE_BACKEND", config.BackendPebble)
	t.Setenv("SWAPD_STATE_PATH", filepath.Join(dir, "state"))
	t.Setenv("SWAPD_RECEIPTS_BACKEND", config.ReceiptsSQLite)
	t.Setenv("SWAPD_RECEIPTS_PATH", filepath.Join(dir, "receipts.db"))
	t.Setenv("SWAPD_LOG_LEVEL", "error")

	program, err := solana.PublicKeyFromBase58(config.DefaultProgramID)
	require.NoError(t, err)
	keys, err := amm.DerivePoolKeys(pda.NewProgramDeriver(program), key("usd"), key("eur"))
	require.NoError(t, err)

	issuer, user := key("issuer"), key("user")
	userUSD, userEUR, userLP := key("user:usd"), key("user:eur"), key("user:lp")

	for _, mint := range []solana.PublicKey{keys.AssetA, keys.AssetB} {
		mustRun(t, "asset", "create", "--mint", mint.String(), "--authority", issuer.String())
	}
	for _, h := range []struct{ mint, holding solana.PublicKey }{{keys.AssetA, userUSD}, {keys.AssetB, userEUR}} {
		out := mustRun(t, "asset", "fund", "--mint", h.mint.String(), "--holding", h.holding.String(),
			"--owner", user.String(), "--amount", "10000")
		assert.Contains(t, out, `"balance": 10000`)
	}

	t.Run("Derive", func(t *testing.T) {
		out := mustRun(t, "pool", "derive", "--a", keys.AssetA.String(), "--b", keys.AssetB.String())
		var d derivedOutput
		require.NoError(t, json.Unmarshal([]byte(out), &d))
		assert.Equal(t, keys.Pool.String(), d.Pool)
		assert.Equal(t, keys.LPMint.String(), d.LPMint)
	})

	t.Run("ApplyInitPool", func(t *testing.T) {
		path := writeJSON(t, dir, "init.json", fmt.Sprintf(
			`{"signers":["%s"],"accounts":%s,"op":{"type":"InitPool","amount_a":1000,"amount_b":1000}}`,
			user, accountList(keys.InitPoolAccounts(user, userUSD, userEUR, userLP))))
		out := mustRun(t, "apply", "--file", path)

		var res []applyOutput
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		require.Len(t, res, 1)
		assert.Equal(t, "tesSUCCESS", res[0].Result)
		assert.Equal(t, uint64(1), res[0].Sequence)
		assert.True(t, res[0].Applied)
	})

	t.Run("PoolQueries", func(t *testing.T) {
		var pools []poolOutput
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "pool", "list")), &pools))
		require.Len(t, pools, 1)
		assert.Equal(t, uint64(1000), pools[0].ReserveA)
		assert.Equal(t, uint64(1000), pools[0].TotalLPSupply)

		var info poolOutput
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "pool", "info", keys.Pool.String())), &info))
		assert.Equal(t, pools[0], info)

		var found []poolOutput
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "pool", "find", "--asset", keys.AssetB.String())), &found))
		assert.Len(t, found, 1)
	})

	t.Run("Quote", func(t *testing.T) {
		out := mustRun(t, "quote", "swap", "--pool", keys.Pool.String(), "--amount", "100")
		assert.Contains(t, out, `"amount_out": 90`)

		out = mustRun(t, "quote", "route", "--from", keys.AssetA.String(), "--to", keys.AssetB.String(),
			"--amount", "100", "--max-hops", "2")
		var r routeOutput
		require.NoError(t, json.Unmarshal([]byte(out), &r))
		assert.Equal(t, uint64(90), r.AmountOut)
		assert.Equal(t, []solana.PublicKey{keys.Pool}, r.Pools)
	})

	t.Run("FailedApplyIsReported", func(t *testing.T) {
		path := writeJSON(t, dir, "dup.json", fmt.Sprintf(
			`[{"signers":["%s"],"accounts":%s,"op":{"type":"InitPool","amount_a":1,"amount_b":1}}]`,
			user, accountList(keys.InitPoolAccounts(user, userUSD, userEUR, userLP))))
		out, err := run(t, "apply", "--file", path)
		require.Error(t, err)
		var res []applyOutput
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, "tecDUPLICATE", res[0].Result)
		assert.Equal(t, uint64(2), res[0].Sequence)
	})

	t.Run("SequenceContinues", func(t *testing.T) {
		path := writeJSON(t, dir, "swap.json", fmt.Sprintf(
			`{"signers":["%s"],"accounts":%s,"op":{"type":"Swap","amount_in":100,"a_to_b":true}}`,
			user, accountList(keys.SwapAccounts(userUSD, userEUR, user))))
		var res []applyOutput
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "apply", "--file", path)), &res))
		assert.Equal(t, "tesSUCCESS", res[0].Result)
		assert.Equal(t, uint64(3), res[0].Sequence)

		var list struct {
			Total    int64 `json:"total"`
			Receipts []struct {
				ID        string `json:"id"`
				Sequence  uint64 `json:"sequence"`
				Operation string `json:"operation"`
			} `json:"receipts"`
		}
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "receipts", "list", "--limit", "10")), &list))
		assert.Equal(t, int64(3), list.Total)
		require.Len(t, list.Receipts, 3)
		assert.Equal(t, uint64(3), list.Receipts[0].Sequence)
		assert.Equal(t, "Swap", list.Receipts[0].Operation)
		assert.Equal(t, res[0].ID, list.Receipts[0].ID)

		out := mustRun(t, "receipts", "get", res[0].ID)
		assert.Contains(t, out, `"operation": "Swap"`)
	})

	t.Run("SnapshotRoundTrip", func(t *testing.T) {
		file := filepath.Join(dir, "state.snap")
		mustRun(t, "snapshot", "export", "--out", file)

		t.Setenv("SWAPD_STATE_PATH", filepath.Join(dir, "restored"))
		mustRun(t, "snapshot", "import", "--in", file)

		var info poolOutput
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "pool", "info", keys.Pool.String())), &info))
		assert.Equal(t, uint64(1100), info.ReserveA)
		assert.Equal(t, uint64(910), info.ReserveB)
	})

	t.Run("Prune", func(t *testing.T) {
		mustRun(t, "receipts", "prune", "--before", "3")
		out := mustRun(t, "receipts", "list")
		assert.Contains(t, out, `"total": 1`)
	})
}

func TestParseInvocations(t *testing.T) {
	user := key("user")

	t.Run("Single", func(t *testing.T) {
		invs, err := parseInvocations([]byte(fmt.Sprintf(
			`{"signers":["%s"],"accounts":[],"op":{"type":"RemoveLiquidity","lp_amount":5}}`, user)))
		require.NoError(t, err)
		require.Len(t, invs, 1)
		op, err := tx.DecodeInstruction(invs[0].Data)
		require.NoError(t, err)
		assert.Equal(t, tx.RemoveLiquidity{LPAmount: 5}, op)
		assert.Equal(t, []solana.PublicKey{user}, invs[0].Signers)
	})

	t.Run("PathAndData", func(t *testing.T) {
		a, b := key("a"), key("b")
		data, err := tx.EncodeInstruction(tx.Swap{AmountIn: 7})
		require.NoError(t, err)
		raw, err := json.Marshal(data)
		require.NoError(t, err)

		invs, err := parseInvocations([]byte(fmt.Sprintf(`[
			{"op":{"type":"MultihopSwapWithPath","amount_in":10,"minimum_amount_out":1,"path":["%s","%s"]}},
			{"data":%s}
		]`, a, b, raw)))
		require.NoError(t, err)
		require.Len(t, invs, 2)

		op, err := tx.DecodeInstruction(invs[0].Data)
		require.NoError(t, err)
		assert.Equal(t, tx.MultihopSwapWithPath{AmountIn: 10, MinimumAmountOut: 1, Path: []solana.PublicKey{a, b}}, op)
		assert.Equal(t, data, invs[1].Data)
	})

	t.Run("Errors", func(t *testing.T) {
		for name, input := range map[string]string{
			"Syntax":      `{`,
			"UnknownType": `{"op":{"type":"Mint"}}`,
			"Empty":       `{"signers":[]}`,
			"BadField":    `{"op":{"type":"Swap","amount_in":"lots"}}`,
		} {
			t.Run(name, func(t *testing.T) {
				_, err := parseInvocations([]byte(input))
				assert.Error(t, err)
			})
		}
	})
}

func TestStateBackends(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{config.BackendPebble, config.BackendBbolt, config.BackendLevelDB, config.BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			db, err := openStateDB(config.StateConfig{Backend: backend, Path: filepath.Join(dir, backend, "db")})
			require.NoError(t, err)
			require.NoError(t, db.Close())
		})
	}
	_, err := openStateDB(config.StateConfig{Backend: "nudb", Path: filepath.Join(dir, "x")})
	assert.ErrorIs(t, err, database.ErrUnknownBackend)
}

func TestPostgresConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := postgresConfig(config.ReceiptsConfig{DSN: "postgres://db/swapd"})
		assert.Equal(t, "postgres://db/swapd", c.ConnectionString)
		assert.Equal(t, 25, c.MaxOpenConns)
		assert.Equal(t, 5, c.MaxIdleConns)
	})

	t.Run("SmallPool", func(t *testing.T) {
		c := postgresConfig(config.ReceiptsConfig{DSN: "postgres://db/swapd", MaxOpenConns: 2})
		assert.Equal(t, 2, c.MaxOpenConns)
		assert.Equal(t, 2, c.MaxIdleConns)
		require.NoError(t, c.Validate())
	})
}
