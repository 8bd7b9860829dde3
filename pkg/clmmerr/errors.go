// Package clmmerr collects the sentinel errors the CLMM core returns.
// Call sites wrap these with fmt.Errorf("...: %w", err) for context;
// callers should compare with errors.Is against the sentinels below.
package clmmerr

import "errors"

var (
	// ErrSqrtPriceX64 signals a sqrt price outside [MinSqrtPriceX64, MaxSqrtPriceX64].
	ErrSqrtPriceX64 = errors.New("clmm: sqrt price out of range")

	// ErrInvalidLiquidity signals a liquidity value that would leave the pool insolvent.
	ErrInvalidLiquidity = errors.New("clmm: invalid liquidity")

	// ErrCalculateOverflow signals an intermediate arithmetic step overflowed
	// its checked width (256-bit accumulator or narrowing cast).
	ErrCalculateOverflow = errors.New("clmm: calculation overflow")

	// ErrMaxTokenOverflow is a recoverable signal from the swap-step kernel:
	// the maximum amount for the current interval does not fit in u64, so the
	// step's target tick cannot be reached in this pass. Callers treat this
	// as "derive sqrt_price_next from the remaining amount instead", not as
	// a fatal condition.
	ErrMaxTokenOverflow = errors.New("clmm: max token amount overflow")

	// ErrSqrtPriceLimitOverflow signals a caller-supplied price limit on the
	// wrong side of the current price for the swap direction, or an
	// arithmetic error other than overflow while the swap-step kernel
	// pre-computes the amount for a full current->target move.
	ErrSqrtPriceLimitOverflow = errors.New("clmm: sqrt price limit overflow")

	// ErrInvalidTickIndex signals a tick outside [MinTick, MaxTick] or not
	// aligned to the pool's tick spacing.
	ErrInvalidTickIndex = errors.New("clmm: invalid tick index")

	// ErrInvalidTickArray signals an account buffer (tick array, bitmap
	// extension, pool or AMM config) that failed its discriminator, length
	// or decode check, a starting tick array the quoter cannot resolve, or
	// a dynamic tick array with no free slot left.
	ErrInvalidTickArray = errors.New("clmm: invalid tick array")

	// ErrTickAndSpacingNotMatch signals a tick-array start index that is not
	// a multiple of TickArraySize*tick_spacing.
	ErrTickAndSpacingNotMatch = errors.New("clmm: tick and spacing not match")

	// ErrLiquidityAddValueErr signals a signed liquidity delta that would
	// drive a running liquidity total negative or past 128 bits.
	ErrLiquidityAddValueErr = errors.New("clmm: liquidity add value error")

	// ErrNotApproved signals a pool status bit gating the requested operation.
	ErrNotApproved = errors.New("clmm: operation not approved by pool status")
)
