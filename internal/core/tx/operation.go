package tx

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

// OpType identifies an operation variant. Values are the wire variant index.
type OpType uint8

const (
	OpInitPool OpType = iota
	OpAddLiquidity
	OpRemoveLiquidity
	OpSwap
	OpMultihopSwap
	OpMultihopSwapWithPath
)

var opTypeNames = map[OpType]string{
	OpInitPool:             "InitPool",
	OpAddLiquidity:         "AddLiquidity",
	OpRemoveLiquidity:      "RemoveLiquidity",
	OpSwap:                 "Swap",
	OpMultihopSwap:         "MultihopSwap",
	OpMultihopSwapWithPath: "MultihopSwapWithPath",
}

// String returns the string name of the operation type
func (t OpType) String() string {
	if name, ok := opTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// OpTypeFromName returns the OpType for a given name
func OpTypeFromName(name string) (OpType, bool) {
	for t, n := range opTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Operation is one decoded AMM instruction. The set of variants is closed.
type Operation interface {
	Type() OpType

	// Validate performs the stateless checks. Errors carry a result code prefix.
	Validate() error

	isOperation()
}

// InitPool creates a pool for an asset pair and seeds it with the first deposit.
type InitPool struct {
	AmountA uint64 `json:"amount_a"`
	AmountB uint64 `json:"amount_b"`
}

// AddLiquidity deposits both assets at the current ratio.
type AddLiquidity struct {
	AmountA uint64 `json:"amount_a"`
	AmountB uint64 `json:"amount_b"`
}

// RemoveLiquidity burns LP shares for a proportional share of the reserves.
type RemoveLiquidity struct {
	LPAmount uint64 `json:"lp_amount"`
}

// Swap trades against a single pool.
type Swap struct {
	AmountIn uint64 `json:"amount_in"`
	AToB     bool   `json:"a_to_b"`
}

// MultihopSwap trades through a chain of pools, inferring the direction of
// each hop from the asset currently held.
type MultihopSwap struct {
	AmountIn         uint64 `json:"amount_in"`
	MinimumAmountOut uint64 `json:"minimum_amount_out"`
}

// MultihopSwapWithPath trades along an explicit asset path.
type MultihopSwapWithPath struct {
	AmountIn         uint64             `json:"amount_in"`
	MinimumAmountOut uint64             `json:"minimum_amount_out"`
	Path             []solana.PublicKey `json:"path"`
}

func (InitPool) Type() OpType             { return OpInitPool }
func (AddLiquidity) Type() OpType         { return OpAddLiquidity }
func (RemoveLiquidity) Type() OpType      { return OpRemoveLiquidity }
func (Swap) Type() OpType                 { return OpSwap }
func (MultihopSwap) Type() OpType         { return OpMultihopSwap }
func (MultihopSwapWithPath) Type() OpType { return OpMultihopSwapWithPath }

func (InitPool) isOperation()             {}
func (AddLiquidity) isOperation()         {}
func (RemoveLiquidity) isOperation()      {}
func (Swap) isOperation()                 {}
func (MultihopSwap) isOperation()         {}
func (MultihopSwapWithPath) isOperation() {}

// Validate validates the InitPool operation
func (o InitPool) Validate() error {
	if o.AmountA == 0 || o.AmountB == 0 {
		return errors.New("temINVALID_ARGUMENT: initial amounts must be positive")
	}
	return nil
}

// Validate validates the AddLiquidity operation
func (o AddLiquidity) Validate() error {
	if o.AmountA == 0 || o.AmountB == 0 {
		return errors.New("temINVALID_ARGUMENT: deposit amounts must be positive")
	}
	return nil
}

// Validate validates the RemoveLiquidity operation
func (o RemoveLiquidity) Validate() error {
	if o.LPAmount == 0 {
		return errors.New("temINVALID_ARGUMENT: lp amount must be positive")
	}
	return nil
}

// Validate validates the Swap operation
func (o Swap) Validate() error {
	if o.AmountIn == 0 {
		return errors.New("temINVALID_ARGUMENT: amount in must be positive")
	}
	return nil
}

// Validate validates the MultihopSwap operation
func (o MultihopSwap) Validate() error {
	if o.AmountIn == 0 {
		return errors.New("temINVALID_ARGUMENT: amount in must be positive")
	}
	return nil
}

// Validate validates the MultihopSwapWithPath operation
func (o MultihopSwapWithPath) Validate() error {
	if o.AmountIn == 0 {
		return errors.New("temINVALID_ARGUMENT: amount in must be positive")
	}
	if len(o.Path) < 2 {
		return errors.New("temINVALID_ARGUMENT: path needs at least two assets")
	}
	for i := 1; i < len(o.Path); i++ {
		if o.Path[i] == o.Path[i-1] {
			return errors.New("temINVALID_ARGUMENT: path repeats an asset on consecutive hops")
		}
	}
	return nil
}
