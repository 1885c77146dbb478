package amm

import (
	"testing"

	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	jtx "github.com/LeJamon/goswap/internal/testing"
	"github.com/gagliardetto/solana-go"
)

// Result codes used by the AMM tests
const (
	TesSUCCESS = "tesSUCCESS"

	TecINSUFFICIENT_FUNDS = "tecINSUFFICIENT_FUNDS"
	TecNO_ENTRY           = "tecNO_ENTRY"
	TecDUPLICATE          = "tecDUPLICATE"
	TecOWNER_MISMATCH     = "tecOWNER_MISMATCH"
	TecMINT_MISMATCH      = "tecMINT_MISMATCH"

	TefOVERFLOW  = "tefOVERFLOW"
	TefUNDERFLOW = "tefUNDERFLOW"

	TemINVALID_ARGUMENT     = "temINVALID_ARGUMENT"
	TemINVALID_SEEDS        = "temINVALID_SEEDS"
	TemNOT_ENOUGH_ACCOUNTS  = "temNOT_ENOUGH_ACCOUNTS"
	TemINVALID_ACCOUNT_DATA = "temINVALID_ACCOUNT_DATA"
	TemINVALID_INSTRUCTION  = "temINVALID_INSTRUCTION"
	TemMISSING_SIGNATURE    = "temMISSING_SIGNATURE"
)

// AMMTestEnv wraps TestEnv with standard accounts and assets.
type AMMTestEnv struct {
	*jtx.TestEnv
	T *testing.T

	Alice *jtx.Account
	Bob   *jtx.Account
	Carol *jtx.Account

	USD solana.PublicKey
	EUR solana.PublicKey
	BTC solana.PublicKey
}

// NewAMMTestEnv creates an environment with three assets and three accounts.
func NewAMMTestEnv(t *testing.T) *AMMTestEnv {
	t.Helper()
	return wrap(t, jtx.NewTestEnv(t))
}

// NewAMMTestEnvWithDeriver is NewAMMTestEnv with a custom address deriver.
func NewAMMTestEnvWithDeriver(t *testing.T, d pda.Deriver) *AMMTestEnv {
	t.Helper()
	return wrap(t, jtx.NewTestEnvWithDeriver(t, d))
}

func wrap(t *testing.T, env *jtx.TestEnv) *AMMTestEnv {
	return &AMMTestEnv{
		TestEnv: env,
		T:       t,
		Alice:   jtx.NewAccount("alice"),
		Bob:     jtx.NewAccount("bob"),
		Carol:   jtx.NewAccount("carol"),
		USD:     env.CreateAsset("USD"),
		EUR:     env.CreateAsset("EUR"),
		BTC:     env.CreateAsset("BTC"),
	}
}

// FundAll gives every standard account amount of every standard asset.
func (e *AMMTestEnv) FundAll(amount uint64) {
	e.T.Helper()
	for _, acc := range []*jtx.Account{e.Alice, e.Bob, e.Carol} {
		for _, asset := range []solana.PublicKey{e.USD, e.EUR, e.BTC} {
			e.Fund(acc, asset, amount)
		}
	}
}

// CreatePool has Alice create the pool for (a, b) and requires success.
func (e *AMMTestEnv) CreatePool(a, b solana.PublicKey, amountA, amountB uint64) {
	e.T.Helper()
	jtx.RequireTxSuccess(e.T, e.Submit(InitPool(e.TestEnv, e.Alice, a, b, amountA, amountB).Build()))
}
