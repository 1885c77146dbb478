package tx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownOperationType is returned when an operation type is unknown
var ErrUnknownOperationType = errors.New("unknown operation type")

// FromJSON creates an Operation from a JSON object such as
// {"type":"Swap","amount_in":100,"a_to_b":true}.
func FromJSON(data []byte) (Operation, error) {
	var raw struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	opType, ok := OpTypeFromName(raw.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperationType, raw.Type)
	}

	switch opType {
	case OpInitPool:
		return decodeJSON[InitPool](data)
	case OpAddLiquidity:
		return decodeJSON[AddLiquidity](data)
	case OpRemoveLiquidity:
		return decodeJSON[RemoveLiquidity](data)
	case OpSwap:
		return decodeJSON[Swap](data)
	case OpMultihopSwap:
		return decodeJSON[MultihopSwap](data)
	case OpMultihopSwapWithPath:
		return decodeJSON[MultihopSwapWithPath](data)
	}
	return nil, ErrUnknownOperationType
}

func decodeJSON[T Operation](data []byte) (Operation, error) {
	var op T
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, err
	}
	return op, nil
}

// ToJSON is the inverse of FromJSON.
func ToJSON(op Operation) ([]byte, error) {
	body, err := json.Marshal(op)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	typeName, _ := json.Marshal(op.Type().String())
	fields["type"] = typeName
	return json.Marshal(fields)
}
