package pool

import (
	"lukechampine.com/uint128"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
	"github.com/solana-zh/clmmcore/pkg/feeschedule"
	"github.com/solana-zh/clmmcore/pkg/liquidity"
	"github.com/solana-zh/clmmcore/pkg/swapstep"
	"github.com/solana-zh/clmmcore/pkg/tickarray"
	"github.com/solana-zh/clmmcore/pkg/tickmath"
)

// MaxTickArrayCrossings bounds how many tick-array boundaries one quote
// may cross before giving up, matching the donor's swap instruction budget
// and preventing an unbounded walk across a thin, mostly-uninitialized
// price range.
const MaxTickArrayCrossings = 10

// Quote is the result of running the swap quoter: the amounts actually
// consumed and produced, the fee paid, and the price/tick the pool would
// land on.
type Quote struct {
	AmountIn            uint64
	AmountOut           uint64
	FeeAmount           uint64
	SqrtPriceX64        uint128.Uint128
	TickCurrent         int32
	TickArrayCrossings  int
}

// ArrayLookup resolves a tick-array start index to its loaded Container.
// Callers supply this instead of a map so they can lazily fetch arrays
// from whatever account source they use.
type ArrayLookup func(startIndex int32) (tickarray.Container, bool)

// ComputeSwapQuote runs the compute_swap_step kernel tick array by tick
// array, starting at the pool's current price, until amountSpecified is
// exhausted, the price limit is reached, or MaxTickArrayCrossings tick
// arrays have been switched to; in the last case the partial quote is
// returned without error. When the bitmap/extension search or the
// caller's ArrayLookup turns up no further initialized tick array, the
// loop keeps stepping towards the price limit across the next
// spacing-aligned grid point instead of stopping short. amountSpecified is positive for an exact-input swap,
// negative for exact-output, matching the sign convention of the donor's
// swapCompute.
func ComputeSwapQuote(
	s *State,
	cfg AmmConfig,
	arrays ArrayLookup,
	zeroForOne bool,
	amountSpecified int64,
	sqrtPriceLimitX64 uint128.Uint128,
	currentTimestamp uint64,
) (Quote, error) {
	if amountSpecified == 0 {
		return Quote{}, clmmerr.ErrInvalidLiquidity
	}
	if !s.SwapEnabled() {
		return Quote{}, clmmerr.ErrNotApproved
	}

	isBaseInput := amountSpecified > 0
	if sqrtPriceLimitX64.IsZero() {
		if zeroForOne {
			sqrtPriceLimitX64 = tickmath.MinSqrtPriceX64.Add64(1)
		} else {
			sqrtPriceLimitX64 = tickmath.MaxSqrtPriceX64.Sub64(1)
		}
	}
	if zeroForOne && sqrtPriceLimitX64.Cmp(s.SqrtPriceX64) >= 0 {
		return Quote{}, clmmerr.ErrSqrtPriceLimitOverflow
	}
	if !zeroForOne && sqrtPriceLimitX64.Cmp(s.SqrtPriceX64) <= 0 {
		return Quote{}, clmmerr.ErrSqrtPriceLimitOverflow
	}

	feeRate, err := feeschedule.EffectiveFeeRate(s.DecayFee, cfg.TradeFeeRate, zeroForOne, currentTimestamp)
	if err != nil {
		return Quote{}, err
	}

	var amountRemaining uint64
	if isBaseInput {
		amountRemaining = uint64(amountSpecified)
	} else {
		amountRemaining = uint64(-amountSpecified)
	}

	sqrtPrice := s.SqrtPriceX64
	currentTick := s.TickCurrent
	liq := s.Liquidity

	var totalIn, totalOut, totalFee uint64
	crossings := 0

	startIndex := tickarray.GetArrayStartIndex(currentTick, s.TickSpacing)
	container, ok := arrays(startIndex)
	if !ok {
		return Quote{}, clmmerr.ErrInvalidTickArray
	}

	for amountRemaining > 0 && sqrtPrice.Cmp(sqrtPriceLimitX64) != 0 && crossings < MaxTickArrayCrossings {
		tickState, hasNext := container.NextInitializedTick(currentTick, zeroForOne, false)

		if !hasNext && crossings < MaxTickArrayCrossings {
			found, nextStart, err := tickarray.NextInitializedTickArrayStartIndex(s.Bitmap, s.Extension, currentTick, s.TickSpacing, zeroForOne)
			if err != nil {
				return Quote{}, err
			}
			if found {
				if next, ok := arrays(nextStart); ok {
					container = next
					crossings++
					tickState, hasNext = container.FirstInitializedTick(zeroForOne)
				}
			}
		}

		// No initialized tick ahead anywhere the bitmap/extension search or
		// the caller's array lookup can reach: fall back to the next
		// spacing-aligned grid point so the step still advances towards the
		// price limit. It carries no liquidity, so crossing it applies no
		// delta.
		if !hasNext {
			tickState = tickarray.TickState{Tick: nextGridTick(currentTick, s.TickSpacing, zeroForOne)}
			hasNext = true
		}

		tickNext := tickState.Tick
		if tickNext < tickmath.MinTick {
			tickNext = tickmath.MinTick
		} else if tickNext > tickmath.MaxTick {
			tickNext = tickmath.MaxTick
		}

		sqrtPriceNext, err := tickmath.GetSqrtPriceAtTick(tickNext)
		if err != nil {
			return Quote{}, err
		}

		target := sqrtPriceNext
		if (zeroForOne && sqrtPriceNext.Cmp(sqrtPriceLimitX64) < 0) ||
			(!zeroForOne && sqrtPriceNext.Cmp(sqrtPriceLimitX64) > 0) {
			target = sqrtPriceLimitX64
		}

		step, err := swapstep.Compute(sqrtPrice, target, liq, amountRemaining, feeRate, isBaseInput, zeroForOne)
		if err != nil {
			return Quote{}, err
		}

		if isBaseInput {
			amountRemaining -= step.AmountIn + step.FeeAmount
		} else {
			amountRemaining -= step.AmountOut
		}
		totalIn += step.AmountIn
		totalOut += step.AmountOut
		totalFee += step.FeeAmount
		sqrtPrice = step.SqrtPriceNextX64

		if sqrtPrice.Cmp(sqrtPriceNext) == 0 {
			if tickState.IsInitialized() {
				delta := tickState.LiquidityNet
				if zeroForOne {
					delta = delta.Neg()
				}
				liq, err = liquidity.AddDelta(liq, delta)
				if err != nil {
					return Quote{}, err
				}
			}
			if zeroForOne {
				currentTick = tickNext - 1
			} else {
				currentTick = tickNext
			}
		} else {
			t, err := tickmath.GetTickAtSqrtPrice(sqrtPrice)
			if err != nil {
				return Quote{}, err
			}
			currentTick = t
		}
	}

	return Quote{
		AmountIn:           totalIn,
		AmountOut:          totalOut,
		FeeAmount:          totalFee,
		SqrtPriceX64:       sqrtPrice,
		TickCurrent:        currentTick,
		TickArrayCrossings: crossings,
	}, nil
}

// nextGridTick returns the nearest tick-spacing multiple strictly beyond
// currentTick in the swap direction, for stepping across a liquidity gap
// with no initialized tick ahead.
func nextGridTick(currentTick int32, tickSpacing uint16, zeroForOne bool) int32 {
	spacing := int32(tickSpacing)
	if zeroForOne {
		return floorDiv(currentTick-1, spacing) * spacing
	}
	return floorDiv(currentTick, spacing)*spacing + spacing
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
