// Package feeschedule implements the decay-fee curve: a pool may open
// with an elevated fee rate on one swap direction that decays toward
// the base trade fee rate over a configured number of intervals, meant
// to discourage front-running a pool's opening block.
package feeschedule

import (
	"lukechampine.com/uint128"

	"github.com/solana-zh/clmmcore/pkg/fixedpoint"
)

const (
	// FeeRateDenominator is the fixed-point denominator all fee rates
	// (ppm, parts per million) are expressed against.
	FeeRateDenominator = 1_000_000

	flagEnabled      = 1 << 0
	flagSellMint0    = 1 << 1
	flagSellMint1    = 1 << 2
)

// Schedule carries the subset of pool state the decay-fee formula
// consumes. It is decoupled from pool.State so the formula stays
// testable in isolation.
type Schedule struct {
	Flag             uint8
	OpenTime         uint64
	DecreaseInterval uint32
	DecreaseRateBps  uint16
	InitFeeRatePct   uint16
}

func (s Schedule) enabled() bool       { return s.Flag&flagEnabled != 0 }
func (s Schedule) decaysOnSellMint0() bool { return s.Flag&flagSellMint0 != 0 }
func (s Schedule) decaysOnSellMint1() bool { return s.Flag&flagSellMint1 != 0 }

// DecayFeeRate returns the fee rate, in ppm, the decay curve prescribes
// at currentTimestamp. It is 0 before the pool opens, before decay is
// enabled, or when the decrease interval is unset.
func DecayFeeRate(s Schedule, currentTimestamp uint64) (uint32, error) {
	if !s.enabled() {
		return 0, nil
	}
	if currentTimestamp < s.OpenTime {
		return 0, nil
	}
	if s.DecreaseInterval == 0 {
		return 0, nil
	}

	intervalCount := (currentTimestamp - s.OpenTime) / uint64(s.DecreaseInterval)
	decreaseRate := uint64(s.DecreaseRateBps) * 10_000

	const hundredthsOfABip = uint64(FeeRateDenominator)
	rate := hundredthsOfABip

	base := hundredthsOfABip
	if decreaseRate < base {
		base -= decreaseRate
	} else {
		base = 0
	}

	exp := intervalCount
	for exp > 0 {
		if exp%2 == 1 {
			r, err := mulDivCeil64(rate, base, hundredthsOfABip)
			if err != nil {
				return 0, err
			}
			rate = r
		}
		b, err := mulDivCeil64(base, base, hundredthsOfABip)
		if err != nil {
			return 0, err
		}
		base = b
		exp /= 2
	}

	rate, err := mulDivCeil64(rate, uint64(s.InitFeeRatePct), 100)
	if err != nil {
		return 0, err
	}
	return uint32(rate), nil
}

// EffectiveFeeRate returns the greater of the AMM config's base trade
// fee rate and the decay-fee rate, if decay applies to this swap's
// direction.
func EffectiveFeeRate(s Schedule, baseTradeFeeRate uint32, zeroForOne bool, currentTimestamp uint64) (uint32, error) {
	feeRate := baseTradeFeeRate
	if !s.enabled() {
		return feeRate, nil
	}
	directionGated := (zeroForOne && s.decaysOnSellMint0()) || (!zeroForOne && s.decaysOnSellMint1())
	if !directionGated {
		return feeRate, nil
	}
	decayRate, err := DecayFeeRate(s, currentTimestamp)
	if err != nil {
		return 0, err
	}
	if decayRate > feeRate {
		feeRate = decayRate
	}
	return feeRate, nil
}

func mulDivCeil64(a, b, denom uint64) (uint64, error) {
	r, err := fixedpoint.MulDivCeil(uint128.From64(a), uint128.From64(b), uint128.From64(denom))
	if err != nil {
		return 0, err
	}
	return r.Big().Uint64(), nil
}
