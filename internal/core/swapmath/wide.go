package swapmath

import "github.com/holiman/uint256"

// maxWideBits is the width of the intermediate arithmetic. Products are
// computed in 256 bits and rejected once they leave the 128-bit range, so
// results match a checked u128 implementation exactly.
const maxWideBits = 128

// wide is a checked 128-bit accumulator.
type wide struct {
	v *uint256.Int
}

func w(x uint64) wide {
	return wide{v: uint256.NewInt(x)}
}

func (a wide) mul(b wide) (wide, error) {
	z, overflow := new(uint256.Int).MulOverflow(a.v, b.v)
	if overflow || z.BitLen() > maxWideBits {
		return wide{}, ErrOverflow
	}
	return wide{v: z}, nil
}

func (a wide) add(b wide) (wide, error) {
	z, overflow := new(uint256.Int).AddOverflow(a.v, b.v)
	if overflow || z.BitLen() > maxWideBits {
		return wide{}, ErrOverflow
	}
	return wide{v: z}, nil
}

func (a wide) div(b wide) (wide, error) {
	if b.v.IsZero() {
		return wide{}, ErrDivideByZero
	}
	return wide{v: new(uint256.Int).Div(a.v, b.v)}, nil
}

func (a wide) u64() (uint64, error) {
	if !a.v.IsUint64() {
		return 0, ErrOverflow
	}
	return a.v.Uint64(), nil
}

// mulDiv computes floor(a*b/c) with a 128-bit intermediate.
func mulDiv(a, b, c uint64) (uint64, error) {
	p, err := w(a).mul(w(b))
	if err != nil {
		return 0, err
	}
	q, err := p.div(w(c))
	if err != nil {
		return 0, err
	}
	return q.u64()
}
