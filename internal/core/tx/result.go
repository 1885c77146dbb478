package tx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/LeJamon/goswap/internal/core/swapmath"
	"github.com/LeJamon/goswap/internal/core/tx/sle"
	"github.com/LeJamon/goswap/internal/core/tx/token"
)

// Result represents an invocation result code
type Result int

// Result codes are grouped by category:
// tes success, tec economic/state failure, tef arithmetic/internal failure,
// tem malformed input. Every non-success aborts the invocation.
const (
	// tesSUCCESS
	TesSUCCESS Result = 0

	// tec codes (100-199): well-formed request the current state cannot satisfy
	TecINSUFFICIENT_FUNDS Result = 159
	TecNO_ENTRY           Result = 140
	TecDUPLICATE          Result = 149
	TecOWNER_MISMATCH     Result = 174
	TecMINT_MISMATCH      Result = 175

	// tef codes (-199 to -100): arithmetic failure or corrupted state
	TefINTERNAL       Result = -195
	TefOVERFLOW       Result = -180
	TefUNDERFLOW      Result = -179
	TefDIVIDE_BY_ZERO Result = -178
	TefBAD_LEDGER     Result = -177

	// tem codes (-299 to -200): malformed request
	TemMALFORMED            Result = -299
	TemINVALID_INSTRUCTION  Result = -270
	TemINVALID_ARGUMENT     Result = -269
	TemINVALID_SEEDS        Result = -268
	TemNOT_ENOUGH_ACCOUNTS  Result = -267
	TemINVALID_ACCOUNT_DATA Result = -266
	TemMISSING_SIGNATURE    Result = -265
)

// String returns the string representation of the result code
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecINSUFFICIENT_FUNDS:
		return "tecINSUFFICIENT_FUNDS"
	case TecNO_ENTRY:
		return "tecNO_ENTRY"
	case TecDUPLICATE:
		return "tecDUPLICATE"
	case TecOWNER_MISMATCH:
		return "tecOWNER_MISMATCH"
	case TecMINT_MISMATCH:
		return "tecMINT_MISMATCH"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TefOVERFLOW:
		return "tefOVERFLOW"
	case TefUNDERFLOW:
		return "tefUNDERFLOW"
	case TefDIVIDE_BY_ZERO:
		return "tefDIVIDE_BY_ZERO"
	case TefBAD_LEDGER:
		return "tefBAD_LEDGER"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemINVALID_INSTRUCTION:
		return "temINVALID_INSTRUCTION"
	case TemINVALID_ARGUMENT:
		return "temINVALID_ARGUMENT"
	case TemINVALID_SEEDS:
		return "temINVALID_SEEDS"
	case TemNOT_ENOUGH_ACCOUNTS:
		return "temNOT_ENOUGH_ACCOUNTS"
	case TemINVALID_ACCOUNT_DATA:
		return "temINVALID_ACCOUNT_DATA"
	case TemMISSING_SIGNATURE:
		return "temMISSING_SIGNATURE"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The invocation was applied."
	case TecINSUFFICIENT_FUNDS:
		return "Insufficient funds, or output below the requested minimum."
	case TecNO_ENTRY:
		return "A referenced ledger entry does not exist."
	case TecDUPLICATE:
		return "The ledger entry already exists."
	case TecOWNER_MISMATCH:
		return "The holding is not controlled by the signing authority."
	case TecMINT_MISMATCH:
		return "The holding does not hold the expected asset."
	case TefINTERNAL:
		return "Internal error."
	case TefOVERFLOW:
		return "Arithmetic overflow."
	case TefUNDERFLOW:
		return "Arithmetic underflow."
	case TefDIVIDE_BY_ZERO:
		return "Division by zero."
	case TefBAD_LEDGER:
		return "A ledger entry is corrupt."
	case TemMALFORMED:
		return "Malformed invocation."
	case TemINVALID_INSTRUCTION:
		return "The instruction data could not be decoded."
	case TemINVALID_ARGUMENT:
		return "An argument is invalid."
	case TemINVALID_SEEDS:
		return "An address does not match its derivation."
	case TemNOT_ENOUGH_ACCOUNTS:
		return "Not enough accounts were supplied."
	case TemINVALID_ACCOUNT_DATA:
		return "The account list is malformed."
	case TemMISSING_SIGNATURE:
		return "A required signature is missing."
	default:
		return "Unknown result."
	}
}

var resultsByName = func() map[string]Result {
	m := make(map[string]Result)
	for _, r := range []Result{
		TesSUCCESS,
		TecINSUFFICIENT_FUNDS, TecNO_ENTRY, TecDUPLICATE, TecOWNER_MISMATCH, TecMINT_MISMATCH,
		TefINTERNAL, TefOVERFLOW, TefUNDERFLOW, TefDIVIDE_BY_ZERO, TefBAD_LEDGER,
		TemMALFORMED, TemINVALID_INSTRUCTION, TemINVALID_ARGUMENT, TemINVALID_SEEDS,
		TemNOT_ENOUGH_ACCOUNTS, TemINVALID_ACCOUNT_DATA, TemMISSING_SIGNATURE,
	} {
		m[r.String()] = r
	}
	return m
}()

// ResultFromName maps a code name such as "tecINSUFFICIENT_FUNDS" back to its Result.
func ResultFromName(name string) (Result, bool) {
	r, ok := resultsByName[name]
	return r, ok
}

// parseValidationError extracts a result code from a validation error message.
// Validate implementations prefix their errors with the code
// ("temINVALID_ARGUMENT: ..."); anything else is TemMALFORMED.
func parseValidationError(err error) Result {
	msg := err.Error()
	if i := strings.IndexByte(msg, ':'); i > 0 {
		if r, ok := resultsByName[msg[:i]]; ok {
			return r
		}
	}
	return TemMALFORMED
}

// ResultFromError maps the sentinel errors of the math, record, custody and
// addressing layers onto result codes. Handlers return the mapped code and
// never mask the underlying failure.
func ResultFromError(err error) Result {
	switch {
	case err == nil:
		return TesSUCCESS
	case errors.Is(err, swapmath.ErrInvalidArgument):
		return TemINVALID_ARGUMENT
	case errors.Is(err, swapmath.ErrOverflow):
		return TefOVERFLOW
	case errors.Is(err, swapmath.ErrUnderflow):
		return TefUNDERFLOW
	case errors.Is(err, swapmath.ErrDivideByZero):
		return TefDIVIDE_BY_ZERO
	case errors.Is(err, token.ErrSelfTransfer):
		return TemINVALID_ARGUMENT
	case errors.Is(err, token.ErrInsufficientFunds):
		return TecINSUFFICIENT_FUNDS
	case errors.Is(err, token.ErrNotFound):
		return TecNO_ENTRY
	case errors.Is(err, token.ErrAlreadyExists):
		return TecDUPLICATE
	case errors.Is(err, token.ErrOwnerMismatch), errors.Is(err, token.ErrAuthorityMismatch):
		return TecOWNER_MISMATCH
	case errors.Is(err, token.ErrMintMismatch):
		return TecMINT_MISMATCH
	case errors.Is(err, pda.ErrInvalidSeeds), errors.Is(err, pda.ErrAddressMismatch):
		return TemINVALID_SEEDS
	case errors.Is(err, sle.ErrInvalidLength):
		return TemINVALID_ACCOUNT_DATA
	case errors.Is(err, sle.ErrInvariant):
		return TefBAD_LEDGER
	default:
		return TefINTERNAL
	}
}
