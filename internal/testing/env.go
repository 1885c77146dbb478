package testing

import (
	"context"
	"errors"
	"testing"

	"github.com/LeJamon/goswap/internal/core/ledger/keylet"
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/LeJamon/goswap/internal/core/ledger/state"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/core/tx/amm"
	"github.com/LeJamon/goswap/internal/core/tx/sle"
	"github.com/LeJamon/goswap/internal/core/tx/token"
	"github.com/LeJamon/goswap/internal/storage/database/memorydb"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestEnv manages an in-memory ledger, an engine bound to the AMM processor
// and the host-side setup (assets, holdings, funding) tests need.
type TestEnv struct {
	t        *testing.T
	store    *state.Store
	engine   *tx.Engine
	deriver  pda.Deriver
	clock    *ManualClock
	issuer   *Account
	assets   map[string]solana.PublicKey
	receipts []tx.Receipt
}

// Tx is an invocation before encoding.
type Tx struct {
	Op       tx.Operation
	Signers  []solana.PublicKey
	Accounts []solana.PublicKey
}

// ProgramID is the program every test environment derives addresses for.
var ProgramID = NewAccount("program").Address

// NewTestEnv creates a test environment with the default deriver.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvWithDeriver(t, pda.NewProgramDeriver(ProgramID))
}

// NewTestEnvWithDeriver creates a test environment that derives addresses with d.
func NewTestEnvWithDeriver(t *testing.T, d pda.Deriver) *TestEnv {
	t.Helper()

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	store, err := state.NewStore(memorydb.New(), 0, logger)
	if err != nil {
		t.Fatalf("Failed to create state store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	env := &TestEnv{
		t:       t,
		store:   store,
		deriver: d,
		clock:   NewManualClock(),
		issuer:  NewAccount("issuer"),
		assets:  make(map[string]solana.PublicKey),
	}
	env.engine = tx.NewEngine(store, d, amm.NewProcessor(), tx.EngineConfig{StartSequence: 1},
		tx.WithLogger(logger),
		tx.WithClock(env.clock.Now),
		tx.WithReceiptSink(env),
	)
	return env
}

// RecordReceipt keeps receipts in memory so tests can inspect them.
func (e *TestEnv) RecordReceipt(_ context.Context, r tx.Receipt) error {
	e.receipts = append(e.receipts, r)
	return nil
}

// Receipts returns every receipt recorded so far.
func (e *TestEnv) Receipts() []tx.Receipt {
	return e.receipts
}

// View returns the committed ledger state.
func (e *TestEnv) View() tx.LedgerView { return e.store }

// Engine returns the engine.
func (e *TestEnv) Engine() *tx.Engine { return e.engine }

// Deriver returns the address deriver.
func (e *TestEnv) Deriver() pda.Deriver { return e.deriver }

// Clock returns the clock the engine stamps receipts with.
func (e *TestEnv) Clock() *ManualClock { return e.clock }

// CreateAsset defines a new asset issued by the environment issuer and
// returns its mint address. Creating the same name twice returns the same mint.
func (e *TestEnv) CreateAsset(name string) solana.PublicKey {
	e.t.Helper()
	if mint, ok := e.assets[name]; ok {
		return mint
	}
	mint := Key("asset:" + name)
	if err := token.CreateMint(e.store, mint, e.issuer.Address, 6); err != nil {
		e.t.Fatalf("Failed to create asset %s: %v", name, err)
	}
	e.assets[name] = mint
	return mint
}

// HoldingAddress is the address of acc's holding of mint. The holding
// may not exist yet.
func (e *TestEnv) HoldingAddress(acc *Account, mint solana.PublicKey) solana.PublicKey {
	return Key("holding:" + acc.Address.String() + ":" + mint.String())
}

// Holding returns acc's holding of mint, creating an empty one if needed.
// Nothing is created while mint does not exist yet.
func (e *TestEnv) Holding(acc *Account, mint solana.PublicKey) solana.PublicKey {
	e.t.Helper()
	addr := e.HoldingAddress(acc, mint)
	if _, err := token.GetMint(e.store, mint); errors.Is(err, token.ErrNotFound) {
		return addr
	}
	exists, err := token.HoldingExists(e.store, addr)
	if err != nil {
		e.t.Fatalf("Failed to look up holding: %v", err)
	}
	if !exists {
		if err := token.CreateHolding(e.store, addr, mint, acc.Address); err != nil {
			e.t.Fatalf("Failed to create holding for %s: %v", acc.Name, err)
		}
	}
	return addr
}

// Fund issues amount of mint into acc's holding.
func (e *TestEnv) Fund(acc *Account, mint solana.PublicKey, amount uint64) {
	e.t.Helper()
	addr := e.Holding(acc, mint)
	if err := token.Issue(e.store, mint, addr, amount, e.issuer.Address); err != nil {
		e.t.Fatalf("Failed to fund %s: %v", acc.Name, err)
	}
}

// Balance returns acc's balance of mint, zero when it has no holding.
func (e *TestEnv) Balance(acc *Account, mint solana.PublicKey) uint64 {
	e.t.Helper()
	return e.BalanceAt(e.HoldingAddress(acc, mint))
}

// BalanceAt returns the balance of the holding at addr, zero when absent.
func (e *TestEnv) BalanceAt(addr solana.PublicKey) uint64 {
	e.t.Helper()
	h, err := e.store.Read(keylet.Holding(addr))
	if err != nil {
		e.t.Fatalf("Failed to read holding: %v", err)
	}
	if h == nil {
		return 0
	}
	holding, err := sle.ParseHolding(h)
	if err != nil {
		e.t.Fatalf("Failed to parse holding: %v", err)
	}
	return holding.Amount
}

// Supply returns the circulating supply of mint.
func (e *TestEnv) Supply(mint solana.PublicKey) uint64 {
	e.t.Helper()
	m, err := token.GetMint(e.store, mint)
	if err != nil {
		e.t.Fatalf("Failed to read mint: %v", err)
	}
	return m.Supply
}

// PoolKeys derives the addresses of the pool for the ordered pair (a, b).
func (e *TestEnv) PoolKeys(a, b solana.PublicKey) amm.PoolKeys {
	e.t.Helper()
	keys, err := amm.DerivePoolKeys(e.deriver, a, b)
	if err != nil {
		e.t.Fatalf("Failed to derive pool keys: %v", err)
	}
	return keys
}

// Pool loads the pool record at addr.
func (e *TestEnv) Pool(addr solana.PublicKey) sle.Pool {
	e.t.Helper()
	p, err := amm.GetPool(e.store, addr)
	if err != nil {
		e.t.Fatalf("Failed to load pool: %v", err)
	}
	return p
}

// PoolExists reports whether a pool record is stored at addr.
func (e *TestEnv) PoolExists(addr solana.PublicKey) bool {
	e.t.Helper()
	ok, err := e.store.Exists(keylet.Pool(addr))
	if err != nil {
		e.t.Fatalf("Failed to look up pool: %v", err)
	}
	return ok
}

// Submit encodes and applies an invocation.
func (e *TestEnv) Submit(t Tx) TxResult {
	e.t.Helper()
	inv, err := tx.NewInvocation(t.Op, t.Signers, t.Accounts)
	if err != nil {
		e.t.Fatalf("Failed to encode %s: %v", t.Op.Type(), err)
	}
	return e.SubmitRaw(inv)
}

// SubmitRaw applies an already encoded invocation.
func (e *TestEnv) SubmitRaw(inv tx.Invocation) TxResult {
	return newTxResult(e.engine.Apply(context.Background(), inv))
}
