package tx

import (
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// ApplyContext provides all the state and helpers needed to apply an operation.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// Accounts is the ordered account list supplied with the invocation
	Accounts []solana.PublicKey

	// Signers are the accounts that authorized the invocation
	Signers []solana.PublicKey

	// Deriver derives the program addresses that custody pool funds
	Deriver pda.Deriver

	// Config holds engine configuration
	Config EngineConfig

	// InvocationID identifies the current invocation
	InvocationID [32]byte

	Logger *zap.Logger
}

// IsSigner reports whether addr signed the invocation.
func (ctx *ApplyContext) IsSigner(addr solana.PublicKey) bool {
	for _, s := range ctx.Signers {
		if s == addr {
			return true
		}
	}
	return false
}

// Account returns the i-th supplied account. Handlers check the account
// count before indexing.
func (ctx *ApplyContext) Account(i int) solana.PublicKey {
	return ctx.Accounts[i]
}

// RequireAccounts returns TemNOT_ENOUGH_ACCOUNTS unless at least n accounts were supplied.
func (ctx *ApplyContext) RequireAccounts(n int) Result {
	if len(ctx.Accounts) < n {
		return TemNOT_ENOUGH_ACCOUNTS
	}
	return TesSUCCESS
}

// Log returns the context logger, never nil.
func (ctx *ApplyContext) Log() *zap.Logger {
	if ctx.Logger == nil {
		return zap.NewNop()
	}
	return ctx.Logger
}
