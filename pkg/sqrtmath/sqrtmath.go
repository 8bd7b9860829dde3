// Package sqrtmath computes the next sqrt price a swap step moves to,
// given an exact token amount to apply at the current price and
// liquidity. Two independent derivations exist — one per token side —
// with opposite rounding biases chosen to keep the pool solvent.
package sqrtmath

import (
	"math/big"

	"lukechampine.com/uint128"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
	"github.com/solana-zh/clmmcore/pkg/fixedpoint"
)

const resolution = 64

var one = uint128.From64(1)

// NextSqrtPriceFromAmount0RoundingUp computes the next sqrt price after
// applying delta amount of token 0, rounding the result up. When add is
// true, delta is being added to the pool (price falls); when false, it
// is being removed (price rises). Falls back to the algebraically
// equivalent L / (L/sqrt_price + delta) form when the direct numerator
// would overflow 256 bits.
func NextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, delta uint128.Uint128, add bool) (uint128.Uint128, error) {
	if delta.IsZero() {
		return sqrtPrice, nil
	}
	numerator1, err := shiftLeft64(liquidity)
	if err != nil {
		return uint128.Zero, err
	}

	if add {
		product := new(big.Int).Mul(delta.Big(), sqrtPrice.Big())
		if product.BitLen() <= 256 {
			denominator := new(big.Int).Add(numerator1.Big(), product)
			if denominator.BitLen() <= 256 && denominator.Cmp(numerator1.Big()) >= 0 {
				denom128, ok := fitsU128(denominator)
				if ok {
					return fixedpoint.MulDivCeil(numerator1, sqrtPrice, denom128)
				}
			}
		}
		// overflow fallback: L / (L/sqrt_price + delta)
		floorQuotient := new(big.Int).Div(numerator1.Big(), sqrtPrice.Big())
		denom := new(big.Int).Add(floorQuotient, delta.Big())
		if denom.Sign() == 0 {
			return uint128.Zero, clmmerr.ErrCalculateOverflow
		}
		return fixedpoint.DivRoundingUp(numerator1, uint128.FromBig(denom))
	}

	product := new(big.Int).Mul(delta.Big(), sqrtPrice.Big())
	denominator := new(big.Int).Sub(numerator1.Big(), product)
	if denominator.Sign() <= 0 {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	denom128, ok := fitsU128(denominator)
	if !ok {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	return fixedpoint.MulDivCeil(numerator1, sqrtPrice, denom128)
}

// NextSqrtPriceFromAmount1RoundingDown computes the next sqrt price
// after applying delta amount of token 1. Addition floors the quotient
// (price rises by the least amount consistent with solvency);
// subtraction ceils it (price falls by at least the exact quotient).
func NextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, delta uint128.Uint128, add bool) (uint128.Uint128, error) {
	deltaShifted, err := shiftLeft64(delta)
	if err != nil {
		return uint128.Zero, err
	}
	if add {
		quotient, err := fixedpoint.MulDivFloor(deltaShifted, one, liquidity)
		if err != nil {
			return uint128.Zero, err
		}
		return fixedpoint.CheckedAdd128(sqrtPrice, quotient)
	}
	quotient, err := fixedpoint.MulDivCeil(deltaShifted, one, liquidity)
	if err != nil {
		return uint128.Zero, err
	}
	if sqrtPrice.Cmp(quotient) <= 0 {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	return fixedpoint.CheckedSub128(sqrtPrice, quotient)
}

// NextSqrtPriceFromInput dispatches by swap direction for an exact-in step.
func NextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn uint128.Uint128, zeroForOne bool) (uint128.Uint128, error) {
	if sqrtPrice.IsZero() || liquidity.IsZero() {
		return uint128.Zero, clmmerr.ErrInvalidLiquidity
	}
	if amountIn.IsZero() {
		return sqrtPrice, nil
	}
	if zeroForOne {
		return NextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, amountIn, true)
	}
	return NextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, amountIn, true)
}

// NextSqrtPriceFromOutput dispatches by swap direction for an exact-out step.
func NextSqrtPriceFromOutput(sqrtPrice, liquidity, amountOut uint128.Uint128, zeroForOne bool) (uint128.Uint128, error) {
	if sqrtPrice.IsZero() || liquidity.IsZero() {
		return uint128.Zero, clmmerr.ErrInvalidLiquidity
	}
	if zeroForOne {
		return NextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, amountOut, false)
	}
	return NextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, amountOut, false)
}

func shiftLeft64(v uint128.Uint128) (uint128.Uint128, error) {
	shifted := new(big.Int).Lsh(v.Big(), resolution)
	if shifted.BitLen() > 128 {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	return uint128.FromBig(shifted), nil
}

func fitsU128(v *big.Int) (uint128.Uint128, bool) {
	if v.Sign() < 0 || v.BitLen() > 128 {
		return uint128.Zero, false
	}
	return uint128.FromBig(v), true
}
