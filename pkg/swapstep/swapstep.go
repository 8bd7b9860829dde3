// Package swapstep implements the single-step swap kernel: given a
// current price, a target price bound by the next initialized tick or
// the caller's price limit, the active liquidity, and a remaining
// amount, it derives how far the price actually moves and how much of
// each token changes hands.
package swapstep

import (
	"errors"

	"lukechampine.com/uint128"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
	"github.com/solana-zh/clmmcore/pkg/fixedpoint"
	"github.com/solana-zh/clmmcore/pkg/liquidity"
	"github.com/solana-zh/clmmcore/pkg/sqrtmath"
)

// FeeRateDenominator is the fixed-point denominator fee rates (ppm)
// are expressed against.
const FeeRateDenominator = 1_000_000

// Step is the outcome of a single compute_swap_step call.
type Step struct {
	SqrtPriceNextX64 uint128.Uint128
	AmountIn         uint64
	AmountOut        uint64
	FeeAmount        uint64
}

// Compute runs one swap step between sqrtPriceCurrent and
// sqrtPriceTarget at the given liquidity, consuming at most
// amountRemaining (an input amount when isBaseInput, an output amount
// otherwise) at feeRate parts-per-million.
func Compute(
	sqrtPriceCurrent, sqrtPriceTarget, l uint128.Uint128,
	amountRemaining uint64,
	feeRate uint32,
	isBaseInput bool,
	zeroForOne bool,
) (Step, error) {
	var step Step

	if isBaseInput {
		amountRemainingLessFee, err := mulDivFloorU64(amountRemaining, uint64(FeeRateDenominator-feeRate), uint64(FeeRateDenominator))
		if err != nil {
			return Step{}, err
		}

		amountIn, err := amountInRange(sqrtPriceCurrent, sqrtPriceTarget, l, zeroForOne, true)
		unreachable := errors.Is(err, clmmerr.ErrMaxTokenOverflow)
		if err != nil && !unreachable {
			return Step{}, err
		}
		if !unreachable {
			step.AmountIn = amountIn
		}

		if !unreachable && amountRemainingLessFee >= step.AmountIn {
			step.SqrtPriceNextX64 = sqrtPriceTarget
		} else {
			next, err := sqrtmath.NextSqrtPriceFromInput(sqrtPriceCurrent, l, uint128.From64(amountRemainingLessFee), zeroForOne)
			if err != nil {
				return Step{}, err
			}
			step.SqrtPriceNextX64 = next
		}
	} else {
		amountOut, err := amountInRange(sqrtPriceCurrent, sqrtPriceTarget, l, zeroForOne, false)
		unreachable := errors.Is(err, clmmerr.ErrMaxTokenOverflow)
		if err != nil && !unreachable {
			return Step{}, err
		}
		if !unreachable {
			step.AmountOut = amountOut
		}

		if !unreachable && amountRemaining >= step.AmountOut {
			step.SqrtPriceNextX64 = sqrtPriceTarget
		} else {
			next, err := sqrtmath.NextSqrtPriceFromOutput(sqrtPriceCurrent, l, uint128.From64(amountRemaining), zeroForOne)
			if err != nil {
				return Step{}, err
			}
			step.SqrtPriceNextX64 = next
		}
	}

	max := sqrtPriceTarget.Equals(step.SqrtPriceNextX64)

	var amountIn128, amountOut128 uint128.Uint128
	var err error
	if zeroForOne {
		if !(max && isBaseInput) {
			if amountIn128, err = liquidity.GetDeltaAmount0(step.SqrtPriceNextX64, sqrtPriceCurrent, l, true); err != nil {
				return Step{}, err
			}
			if v, ok := toU64(amountIn128); ok {
				step.AmountIn = v
			} else {
				return Step{}, clmmerr.ErrCalculateOverflow
			}
		}
		if !(max && !isBaseInput) {
			if amountOut128, err = liquidity.GetDeltaAmount1(step.SqrtPriceNextX64, sqrtPriceCurrent, l, false); err != nil {
				return Step{}, err
			}
			if v, ok := toU64(amountOut128); ok {
				step.AmountOut = v
			} else {
				return Step{}, clmmerr.ErrCalculateOverflow
			}
		}
	} else {
		if !(max && isBaseInput) {
			if amountIn128, err = liquidity.GetDeltaAmount1(sqrtPriceCurrent, step.SqrtPriceNextX64, l, true); err != nil {
				return Step{}, err
			}
			if v, ok := toU64(amountIn128); ok {
				step.AmountIn = v
			} else {
				return Step{}, clmmerr.ErrCalculateOverflow
			}
		}
		if !(max && !isBaseInput) {
			if amountOut128, err = liquidity.GetDeltaAmount0(sqrtPriceCurrent, step.SqrtPriceNextX64, l, false); err != nil {
				return Step{}, err
			}
			if v, ok := toU64(amountOut128); ok {
				step.AmountOut = v
			} else {
				return Step{}, clmmerr.ErrCalculateOverflow
			}
		}
	}

	if !isBaseInput && step.AmountOut > amountRemaining {
		step.AmountOut = amountRemaining
	}

	if isBaseInput && !step.SqrtPriceNextX64.Equals(sqrtPriceTarget) {
		if amountRemaining < step.AmountIn {
			return Step{}, clmmerr.ErrCalculateOverflow
		}
		step.FeeAmount = amountRemaining - step.AmountIn
	} else {
		fee, err := mulDivCeilU64(step.AmountIn, uint64(feeRate), uint64(FeeRateDenominator-feeRate))
		if err != nil {
			return Step{}, err
		}
		step.FeeAmount = fee
	}

	return step, nil
}

// amountInRange pre-computes the exact amount the current->target move
// would consume/produce at full liquidity. ErrMaxTokenOverflow means the
// amount does not fit in u64 — the target is "unreachable" in a single
// step at this liquidity, and the caller must derive sqrt_price_next
// from amountRemaining instead. Callers branch on this sentinel with
// errors.Is; any other error is fatal.
func amountInRange(sqrtPriceCurrent, sqrtPriceTarget, l uint128.Uint128, zeroForOne, isBaseInput bool) (uint64, error) {
	var result uint128.Uint128
	var err error

	if isBaseInput {
		if zeroForOne {
			result, err = liquidity.GetDeltaAmount0(sqrtPriceTarget, sqrtPriceCurrent, l, true)
		} else {
			result, err = liquidity.GetDeltaAmount1(sqrtPriceCurrent, sqrtPriceTarget, l, true)
		}
	} else {
		if zeroForOne {
			result, err = liquidity.GetDeltaAmount1(sqrtPriceTarget, sqrtPriceCurrent, l, false)
		} else {
			result, err = liquidity.GetDeltaAmount0(sqrtPriceCurrent, sqrtPriceTarget, l, false)
		}
	}

	if err != nil {
		if errors.Is(err, clmmerr.ErrCalculateOverflow) {
			return 0, clmmerr.ErrMaxTokenOverflow
		}
		return 0, clmmerr.ErrSqrtPriceLimitOverflow
	}

	v, ok := toU64(result)
	if !ok {
		return 0, clmmerr.ErrMaxTokenOverflow
	}
	return v, nil
}

func toU64(v uint128.Uint128) (uint64, bool) {
	b := v.Big()
	if !b.IsUint64() {
		return 0, false
	}
	return b.Uint64(), true
}

func mulDivFloorU64(a, b, denom uint64) (uint64, error) {
	r, err := fixedpoint.MulDivFloor(uint128.From64(a), uint128.From64(b), uint128.From64(denom))
	if err != nil {
		return 0, err
	}
	v, ok := toU64(r)
	if !ok {
		return 0, clmmerr.ErrCalculateOverflow
	}
	return v, nil
}

func mulDivCeilU64(a, b, denom uint64) (uint64, error) {
	r, err := fixedpoint.MulDivCeil(uint128.From64(a), uint128.From64(b), uint128.From64(denom))
	if err != nil {
		return 0, err
	}
	v, ok := toU64(r)
	if !ok {
		return 0, clmmerr.ErrCalculateOverflow
	}
	return v, nil
}
