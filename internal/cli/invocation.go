package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
)

// invocationFile is the JSON form of an invocation accepted by apply. Either
// Op or Data must be set; Op names its variant in "type".
type invocationFile struct {
	Signers  []solana.PublicKey `json:"signers"`
	Accounts []solana.PublicKey `json:"accounts"`
	Op       json.RawMessage    `json:"op,omitempty"`
	Data     []byte             `json:"data,omitempty"`
}

var errNoInstruction = errors.New("invocation needs either op or data")

// toInvocation encodes the file into an Invocation
func (f invocationFile) toInvocation() (tx.Invocation, error) {
	switch {
	case len(f.Op) > 0:
		op, err := tx.FromJSON(f.Op)
		if err != nil {
			return tx.Invocation{}, fmt.Errorf("op: %w", err)
		}
		return tx.NewInvocation(op, f.Signers, f.Accounts)
	case len(f.Data) > 0:
		return tx.Invocation{Signers: f.Signers, Accounts: f.Accounts, Data: f.Data}, nil
	}
	return tx.Invocation{}, errNoInstruction
}

// parseInvocations accepts a single invocation object or an array of them
func parseInvocations(data []byte) ([]tx.Invocation, error) {
	var files []invocationFile
	if err := json.Unmarshal(data, &files); err != nil {
		var one invocationFile
		if err1 := json.Unmarshal(data, &one); err1 != nil {
			return nil, fmt.Errorf("parse invocation: %w", err1)
		}
		files = []invocationFile{one}
	}
	invs := make([]tx.Invocation, len(files))
	for i, f := range files {
		inv, err := f.toInvocation()
		if err != nil {
			return nil, fmt.Errorf("invocation %d: %w", i, err)
		}
		invs[i] = inv
	}
	return invs, nil
}
