package entry

import (
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	TypeHolding Type = 0x0068 // Asset balance held by an owner
	TypeMint    Type = 0x006d // Asset definition and supply
	TypePool    Type = 0x0070 // Constant-product pool record
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeHolding:
		return "Holding"
	case TypeMint:
		return "Mint"
	case TypePool:
		return "Pool"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(t))
	}
}

// Types returns every known entry type in storage order.
func Types() []Type {
	return []Type{TypeHolding, TypeMint, TypePool}
}
