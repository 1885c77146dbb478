package swapmath

import "github.com/holiman/uint256"

// Isqrt returns floor(sqrt(n)) using integer Newton iteration.
//
// The sequence y = (x + n/x) / 2 decreases strictly until it reaches the
// floor square root, so the loop stops on the first non-decreasing step.
func Isqrt(n *uint256.Int) *uint256.Int {
	if n.LtUint64(2) {
		return new(uint256.Int).Set(n)
	}

	x := new(uint256.Int).Set(n)
	y := new(uint256.Int).AddUint64(n, 1)
	y.Rsh(y, 1)

	for y.Lt(x) {
		x.Set(y)
		q := new(uint256.Int).Div(n, x)
		y.Add(x, q)
		y.Rsh(y, 1)
	}
	return x
}

// Isqrt64 is Isqrt for a 64-bit argument.
func Isqrt64(n uint64) uint64 {
	return Isqrt(uint256.NewInt(n)).Uint64()
}
