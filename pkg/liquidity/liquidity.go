// Package liquidity implements the token-amount <-> liquidity
// conversions that tie a liquidity position's size to the amounts of
// each token it is worth across a price range, and the signed
// liquidity-delta application used when crossing ticks or adjusting
// positions.
package liquidity

import (
	"math/big"

	cosmath "cosmossdk.io/math"
	"lukechampine.com/uint128"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
	"github.com/solana-zh/clmmcore/pkg/fixedpoint"
)

const resolution = 64

var one = uint128.From64(1)

func orderPrices(a, b uint128.Uint128) (lo, hi uint128.Uint128) {
	if a.Cmp(b) > 0 {
		return b, a
	}
	return a, b
}

// GetDeltaAmount0 returns the amount of token 0 backing `liquidity`
// across [sqrtPriceA, sqrtPriceB]. roundUp must be true when computing
// the amount a depositor owes (bias towards the pool) and false when
// computing the amount a withdrawer receives (also biased towards the
// pool, which pays out no more than the exact amount).
func GetDeltaAmount0(sqrtPriceA, sqrtPriceB, liquidity uint128.Uint128, roundUp bool) (uint128.Uint128, error) {
	lo, hi := orderPrices(sqrtPriceA, sqrtPriceB)
	if lo.IsZero() {
		return uint128.Zero, clmmerr.ErrSqrtPriceX64
	}

	numerator1 := new(big.Int).Lsh(liquidity.Big(), resolution)
	numerator2, err := fixedpoint.CheckedSub128(hi, lo)
	if err != nil {
		return uint128.Zero, err
	}

	product := new(big.Int).Mul(numerator1, numerator2.Big())
	temp, rem := new(big.Int).QuoRem(product, hi.Big(), new(big.Int))
	if roundUp && rem.Sign() != 0 {
		temp.Add(temp, one.Big())
	}
	result, rem := new(big.Int).QuoRem(temp, lo.Big(), new(big.Int))
	if roundUp && rem.Sign() != 0 {
		result.Add(result, one.Big())
	}
	if result.BitLen() > 128 {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	return uint128.FromBig(result), nil
}

// GetDeltaAmount1 returns the amount of token 1 backing `liquidity`
// across [sqrtPriceA, sqrtPriceB].
func GetDeltaAmount1(sqrtPriceA, sqrtPriceB, liquidity uint128.Uint128, roundUp bool) (uint128.Uint128, error) {
	lo, hi := orderPrices(sqrtPriceA, sqrtPriceB)
	if lo.IsZero() {
		return uint128.Zero, clmmerr.ErrSqrtPriceX64
	}
	diff, err := fixedpoint.CheckedSub128(hi, lo)
	if err != nil {
		return uint128.Zero, err
	}
	denom, err := shiftLeft64(one)
	if err != nil {
		return uint128.Zero, err
	}
	if roundUp {
		return fixedpoint.MulDivCeil(liquidity, diff, denom)
	}
	return fixedpoint.MulDivFloor(liquidity, diff, denom)
}

func shiftLeft64(v uint128.Uint128) (uint128.Uint128, error) {
	shifted := new(big.Int).Lsh(v.Big(), resolution)
	if shifted.BitLen() > 128 {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	return uint128.FromBig(shifted), nil
}

// AddDelta applies a signed liquidity delta to a running liquidity
// total, returning ErrLiquidityAddValueErr if the result would be
// negative or would not fit back into 128 bits unsigned.
func AddDelta(liquidity uint128.Uint128, delta cosmath.Int) (uint128.Uint128, error) {
	sum := new(big.Int).Add(liquidity.Big(), delta.BigInt())
	if sum.Sign() < 0 || sum.BitLen() > 128 {
		return uint128.Zero, clmmerr.ErrLiquidityAddValueErr
	}
	return uint128.FromBig(sum), nil
}
