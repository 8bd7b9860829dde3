// Package fixedpoint implements the checked fixed-point arithmetic
// primitives every higher CLMM layer is built on: mul-div with floor
// and ceiling rounding, rounding-up division, and checked/wrapping
// 128-bit add and subtract. Every operation here is panic-free; callers
// get a distinguishable error instead of a silent wrap or a crash,
// except WrappingSub128 which wraps on purpose.
package fixedpoint

import (
	"math/big"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
)

func u128ToU256(v uint128.Uint128) *uint256.Int {
	z, _ := uint256.FromBig(v.Big())
	return z
}

func u256ToU128(z *uint256.Int) (uint128.Uint128, bool) {
	b := z.ToBig()
	if b.BitLen() > 128 {
		return uint128.Zero, false
	}
	return uint128.FromBig(b), true
}

// MulDivFloor computes floor(a*b/denom) over a 256-bit intermediate
// product, then narrows the quotient back to 128 bits. It returns
// ErrCalculateOverflow if denom is zero or the quotient does not fit
// in 128 bits.
func MulDivFloor(a, b, denom uint128.Uint128) (uint128.Uint128, error) {
	if denom.IsZero() {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	x, y, d := u128ToU256(a), u128ToU256(b), u128ToU256(denom)
	q, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	r, ok := u256ToU128(q)
	if !ok {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	return r, nil
}

// MulDivCeil computes ceil(a*b/denom), rounding up whenever the
// division leaves a nonzero remainder.
func MulDivCeil(a, b, denom uint128.Uint128) (uint128.Uint128, error) {
	if denom.IsZero() {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	x, y, d := u128ToU256(a), u128ToU256(b), u128ToU256(denom)
	q, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	rem := new(uint256.Int).MulMod(x, y, d)
	if !rem.IsZero() {
		one := uint256.NewInt(1)
		var sum uint256.Int
		ovf := sum.AddOverflow(q, one)
		if ovf {
			return uint128.Zero, clmmerr.ErrCalculateOverflow
		}
		q = &sum
	}
	r, ok := u256ToU128(q)
	if !ok {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	return r, nil
}

// DivRoundingUp computes ceil(a/b) for plain 128-bit operands.
func DivRoundingUp(a, b uint128.Uint128) (uint128.Uint128, error) {
	if b.IsZero() {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	q, r := a.QuoRem(b)
	if !r.IsZero() {
		q = q.Add64(1)
	}
	return q, nil
}

// CheckedAdd128 adds two 128-bit values, returning ErrCalculateOverflow
// instead of panicking when the sum does not fit in 128 bits.
func CheckedAdd128(a, b uint128.Uint128) (uint128.Uint128, error) {
	sum := new(big.Int).Add(a.Big(), b.Big())
	if sum.BitLen() > 128 {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	return uint128.FromBig(sum), nil
}

// CheckedSub128 subtracts b from a, returning ErrCalculateOverflow
// instead of panicking or wrapping when b > a.
func CheckedSub128(a, b uint128.Uint128) (uint128.Uint128, error) {
	if a.Cmp(b) < 0 {
		return uint128.Zero, clmmerr.ErrCalculateOverflow
	}
	return a.Sub(b), nil
}

// WrappingSub128 subtracts b from a modulo 2^128, matching the
// fee-growth accounting convention where fee_growth_inside is computed
// as a difference of two monotonically-increasing-mod-2^128 counters.
func WrappingSub128(a, b uint128.Uint128) uint128.Uint128 {
	diff := new(big.Int).Sub(a.Big(), b.Big())
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	diff.Mod(diff, mod)
	return uint128.FromBig(diff)
}
