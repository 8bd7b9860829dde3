package feeschedule

import "testing"

func TestDecayFeeRateDisabled(t *testing.T) {
	s := Schedule{Flag: 0, OpenTime: 100, DecreaseInterval: 10, DecreaseRateBps: 500, InitFeeRatePct: 100}
	rate, err := DecayFeeRate(s, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0 {
		t.Fatalf("disabled schedule should decay to 0, got %d", rate)
	}
}

func TestDecayFeeRateBeforeOpen(t *testing.T) {
	s := Schedule{Flag: flagEnabled, OpenTime: 1000, DecreaseInterval: 10, DecreaseRateBps: 500, InitFeeRatePct: 100}
	rate, err := DecayFeeRate(s, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0 {
		t.Fatalf("before open time should be 0, got %d", rate)
	}
}

func TestDecayFeeRateMonotonicDecrease(t *testing.T) {
	s := Schedule{Flag: flagEnabled, OpenTime: 0, DecreaseInterval: 60, DecreaseRateBps: 1000, InitFeeRatePct: 100}

	prev := uint32(FeeRateDenominator + 1)
	for _, ts := range []uint64{0, 60, 120, 600, 6000} {
		rate, err := DecayFeeRate(s, ts)
		if err != nil {
			t.Fatalf("unexpected error at ts=%d: %v", ts, err)
		}
		if rate > prev {
			t.Fatalf("decay fee rate should not increase over time: ts=%d rate=%d prev=%d", ts, rate, prev)
		}
		prev = rate
	}
}

func TestEffectiveFeeRateGatedByDirection(t *testing.T) {
	s := Schedule{Flag: flagEnabled | flagSellMint0, OpenTime: 0, DecreaseInterval: 60, DecreaseRateBps: 1000, InitFeeRatePct: 200}
	base := uint32(2500)

	zeroForOne, err := EffectiveFeeRate(s, base, true, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zeroForOne <= base {
		t.Fatalf("decay-gated direction at time 0 should exceed base fee rate %d, got %d", base, zeroForOne)
	}

	oneForZero, err := EffectiveFeeRate(s, base, false, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oneForZero != base {
		t.Fatalf("non-gated direction should fall back to base fee rate %d, got %d", base, oneForZero)
	}
}

func TestEffectiveFeeRateNeverBelowBase(t *testing.T) {
	s := Schedule{Flag: flagEnabled | flagSellMint0, OpenTime: 0, DecreaseInterval: 1, DecreaseRateBps: 9999, InitFeeRatePct: 100}
	base := uint32(500)

	rate, err := EffectiveFeeRate(s, base, true, 1_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate < base {
		t.Fatalf("effective fee rate %d should never fall below base trade fee rate %d", rate, base)
	}
}
