package testing

import "github.com/LeJamon/goswap/internal/core/tx"

// TxResult represents the result of applying an invocation.
type TxResult struct {
	// Code is the result code (e.g., "tesSUCCESS").
	Code string

	// Success indicates whether the invocation was applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Result is the typed result code.
	Result tx.Result

	// Affected is the number of ledger entries the invocation changed.
	Affected int
}

func newTxResult(r tx.ApplyResult) TxResult {
	res := TxResult{
		Code:    r.Result.String(),
		Success: r.Applied,
		Message: r.Message,
		Result:  r.Result,
	}
	if r.Metadata != nil {
		res.Affected = len(r.Metadata.AffectedNodes)
	}
	return res
}
