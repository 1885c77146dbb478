// Package swapmath holds the constant-product pricing and liquidity share
// arithmetic. Every function is pure; intermediates are checked 128-bit
// products and every result rounds down.
package swapmath

import "github.com/holiman/uint256"

const (
	// FeeNumerator over FeeDenominator is the share of the input that is
	// priced; the remaining 0.3% stays in the pool.
	FeeNumerator   = 997
	FeeDenominator = 1000
)

// ComputeSwapOutput returns the amount paid out for amountIn against the
// given reserves:
//
//	out = floor(in*997*reserveOut / (reserveIn*1000 + in*997))
func ComputeSwapOutput(amountIn, reserveIn, reserveOut uint64) (uint64, error) {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0, ErrInvalidArgument
	}

	inEff, err := w(amountIn).mul(w(FeeNumerator))
	if err != nil {
		return 0, err
	}
	numerator, err := inEff.mul(w(reserveOut))
	if err != nil {
		return 0, err
	}
	denominator, err := w(reserveIn).mul(w(FeeDenominator))
	if err != nil {
		return 0, err
	}
	denominator, err = denominator.add(inEff)
	if err != nil {
		return 0, err
	}

	out, err := numerator.div(denominator)
	if err != nil {
		return 0, err
	}
	return out.u64()
}

// ComputeInitialLiquidity returns floor(sqrt(amountA*amountB)).
func ComputeInitialLiquidity(amountA, amountB uint64) (uint64, error) {
	product, err := w(amountA).mul(w(amountB))
	if err != nil {
		return 0, err
	}
	// sqrt of a value below 2^128 always fits in 64 bits
	return Isqrt(product.v).Uint64(), nil
}

// ComputeIncrementalLiquidity returns floor(amountA*totalSupply/reserveA).
func ComputeIncrementalLiquidity(amountA, reserveA, totalSupply uint64) (uint64, error) {
	return mulDiv(amountA, totalSupply, reserveA)
}

// ComputeWithdrawal returns the share of each reserve redeemed by lpAmount.
func ComputeWithdrawal(lpAmount, reserveA, reserveB, totalSupply uint64) (amountA, amountB uint64, err error) {
	if totalSupply == 0 {
		return 0, 0, ErrDivideByZero
	}
	if amountA, err = mulDiv(lpAmount, reserveA, totalSupply); err != nil {
		return 0, 0, err
	}
	if amountB, err = mulDiv(lpAmount, reserveB, totalSupply); err != nil {
		return 0, 0, err
	}
	return amountA, amountB, nil
}

// ClampDeposit trims a deposit to the current reserve ratio. With either
// reserve empty the deposit is returned unchanged.
func ClampDeposit(amountA, amountB, reserveA, reserveB uint64) (uint64, uint64, error) {
	if reserveA == 0 || reserveB == 0 {
		return amountA, amountB, nil
	}

	requiredB, err := mulDiv(amountA, reserveB, reserveA)
	if err != nil {
		return 0, 0, err
	}
	if requiredB <= amountB {
		return amountA, requiredB, nil
	}

	requiredA, err := mulDiv(amountB, reserveA, reserveB)
	if err != nil {
		return 0, 0, err
	}
	return requiredA, amountB, nil
}

// Leg is one hop of a quoted route, reserves already oriented in the
// direction of travel.
type Leg struct {
	ReserveIn  uint64
	ReserveOut uint64
}

// QuoteMultihop chains ComputeSwapOutput over legs.
func QuoteMultihop(amountIn uint64, legs []Leg) (uint64, error) {
	if len(legs) == 0 {
		return 0, ErrInvalidArgument
	}

	amount := amountIn
	for _, leg := range legs {
		out, err := ComputeSwapOutput(amount, leg.ReserveIn, leg.ReserveOut)
		if err != nil {
			return 0, err
		}
		amount = out
	}
	return amount, nil
}

// Product returns the constant-product invariant k = reserveA*reserveB.
func Product(reserveA, reserveB uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(reserveA), uint256.NewInt(reserveB))
}
