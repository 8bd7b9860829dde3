// Package tickmath implements the bijection between signed ticks and
// Q64.64 square-root prices: sqrt_price = 1.0001^(tick/2). Both
// directions use the magic-constant multiplication ladder so that the
// result is bit-identical to every other CLMM implementation built on
// the same ladder, which downstream wire compatibility depends on.
package tickmath

import (
	"math/big"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
)

const (
	MinTick = -443636
	MaxTick = 443636

	bitPrecision = 14
)

var (
	MinSqrtPriceX64 = uint128.New(4295048016, 0)
	// MaxSqrtPriceX64 = 79226673521066979257578248091, the value consistent
	// with MaxTick (see DESIGN.md's constant-reconciliation note).
	maxSqrtPriceBig, _ = new(big.Int).SetString("79226673521066979257578248091", 10)
	MaxSqrtPriceX64    = uint128.FromBig(maxSqrtPriceBig)

	logB2X32, _               = new(big.Int).SetString("59543866431248", 10)
	logBpErrMarginLowerX64, _ = new(big.Int).SetString("184467440737095516", 10)
	logBpErrMarginUpperX64, _ = new(big.Int).SetString("15793534762490258745", 10)

	maxUint128Big = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// ladder holds, for each bit position of |tick|, the Q64.64 multiplier
// applied to the running ratio. Constants are the standard CLMM
// tick-to-sqrt-price ladder, carried bit-identical from the reference
// implementation.
var ladder = []struct {
	mask uint32
	val  string
}{
	{0x2, "18444899583751176192"},
	{0x4, "18443055278223355904"},
	{0x8, "18439367220385607680"},
	{0x10, "18431993317065453568"},
	{0x20, "18417254355718170624"},
	{0x40, "18387811781193609216"},
	{0x80, "18329067761203558400"},
	{0x100, "18212142134806163456"},
	{0x200, "17980523815641700352"},
	{0x400, "17526086738831433728"},
	{0x800, "16651378430235570176"},
	{0x1000, "15030750278694412288"},
	{0x2000, "12247334978884435968"},
	{0x4000, "8131365268886854656"},
	{0x8000, "3584323654725218816"},
	{0x10000, "696457651848324352"},
	{0x20000, "26294789957507116"},
	{0x40000, "37481735321082"},
}

// GetSqrtPriceAtTick computes sqrt_price = 1.0001^(tick/2) in Q64.64.
func GetSqrtPriceAtTick(tick int32) (uint128.Uint128, error) {
	if tick < MinTick || tick > MaxTick {
		return uint128.Zero, clmmerr.ErrInvalidTickIndex
	}

	tickAbs := tick
	if tick < 0 {
		tickAbs = -tick
	}
	u := uint32(tickAbs)

	var ratio *uint256.Int
	if u&0x1 != 0 {
		ratio, _ = new(uint256.Int).SetFromDecimal("18445821805675395072")
	} else {
		ratio, _ = new(uint256.Int).SetFromDecimal("18446744073709551616")
	}

	for _, step := range ladder {
		if u&step.mask == 0 {
			continue
		}
		mulBy, _ := new(uint256.Int).SetFromDecimal(step.val)
		ratio = new(uint256.Int).Mul(ratio, mulBy)
		ratio = new(uint256.Int).Rsh(ratio, 64)
	}

	result := ratio.ToBig()
	if tick > 0 {
		result = new(big.Int).Quo(maxUint128Big, result)
	}
	if result.BitLen() > 128 {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	return uint128.FromBig(result), nil
}

// GetTickAtSqrtPrice returns the greatest tick whose sqrt price is <=
// the supplied price (monotone floor), inverting GetSqrtPriceAtTick via
// a base-2 logarithm approximation refined to exact precision by a
// final bracketing check.
func GetTickAtSqrtPrice(sqrtPriceX64 uint128.Uint128) (int32, error) {
	if sqrtPriceX64.Cmp(MaxSqrtPriceX64) > 0 || sqrtPriceX64.Cmp(MinSqrtPriceX64) < 0 {
		return 0, clmmerr.ErrSqrtPriceX64
	}

	price := sqrtPriceX64.Big()
	msb := price.BitLen() - 1

	// math/big's Lsh/Rsh/And already implement two's-complement semantics
	// for negative values, so the signed shift-and-mask of the reference
	// ladder falls out of the stdlib bigint ops directly.
	log2IntegerX32 := new(big.Int).Lsh(big.NewInt(int64(msb-64)), 32)
	mask128 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	log2IntegerX32.And(log2IntegerX32, mask128)

	var r *big.Int
	if msb >= 64 {
		r = new(big.Int).Rsh(price, uint(msb-63))
	} else {
		r = new(big.Int).Lsh(price, uint(63-msb))
	}

	bit := new(big.Int).SetUint64(0x8000000000000000)
	precision := 0
	log2FractionX64 := big.NewInt(0)
	zero := big.NewInt(0)
	for bit.Cmp(zero) > 0 && precision < bitPrecision {
		r = new(big.Int).Mul(r, r)
		moreThanTwo := new(big.Int).Rsh(r, 127)
		r = new(big.Int).Rsh(r, uint(63+moreThanTwo.Int64()))
		log2FractionX64 = new(big.Int).Add(log2FractionX64, new(big.Int).Mul(bit, moreThanTwo))
		bit = new(big.Int).Rsh(bit, 1)
		precision++
	}

	log2FractionX32 := new(big.Int).Rsh(log2FractionX64, 32)
	log2X32 := new(big.Int).Add(log2IntegerX32, log2FractionX32)
	logbpX64 := new(big.Int).Mul(log2X32, logB2X32)

	tickLow := new(big.Int).Sub(logbpX64, logBpErrMarginLowerX64)
	tickLow = new(big.Int).Rsh(tickLow, 64)
	tickHigh := new(big.Int).Add(logbpX64, logBpErrMarginUpperX64)
	tickHigh = new(big.Int).Rsh(tickHigh, 64)

	if tickLow.Cmp(tickHigh) == 0 {
		return int32(tickLow.Int64()), nil
	}

	derivedHigh, err := GetSqrtPriceAtTick(int32(tickHigh.Int64()))
	if err != nil {
		return 0, err
	}
	if derivedHigh.Cmp(sqrtPriceX64) <= 0 {
		return int32(tickHigh.Int64()), nil
	}
	return int32(tickLow.Int64()), nil
}
