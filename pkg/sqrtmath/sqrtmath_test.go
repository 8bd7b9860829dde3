package sqrtmath

import (
	"testing"

	"lukechampine.com/uint128"
)

func TestNextSqrtPriceFromAmount0AddLowersPrice(t *testing.T) {
	sqrtPrice := uint128.New(0, 1) // 2^64
	liq := uint128.From64(1_000_000)
	delta := uint128.From64(1000)

	next, err := NextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liq, delta, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Cmp(sqrtPrice) >= 0 {
		t.Fatalf("adding token 0 should lower sqrt price: got %v, started at %v", next, sqrtPrice)
	}
}

func TestNextSqrtPriceFromAmount0RemoveRaisesPrice(t *testing.T) {
	sqrtPrice := uint128.New(0, 1)
	liq := uint128.From64(1_000_000)
	delta := uint128.From64(1000)

	next, err := NextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liq, delta, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Cmp(sqrtPrice) <= 0 {
		t.Fatalf("removing token 0 should raise sqrt price: got %v, started at %v", next, sqrtPrice)
	}
}

func TestNextSqrtPriceFromAmount0ZeroDeltaIsNoop(t *testing.T) {
	sqrtPrice := uint128.New(0, 1)
	liq := uint128.From64(1_000_000)

	next, err := NextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liq, uint128.Zero, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Equals(sqrtPrice) {
		t.Fatalf("zero delta should not move price: got %v", next)
	}
}

func TestNextSqrtPriceFromAmount1AddRaisesPrice(t *testing.T) {
	sqrtPrice := uint128.New(0, 1)
	liq := uint128.From64(1_000_000)
	delta := uint128.From64(1000)

	next, err := NextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liq, delta, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Cmp(sqrtPrice) <= 0 {
		t.Fatalf("adding token 1 should raise sqrt price: got %v, started at %v", next, sqrtPrice)
	}
}

func TestNextSqrtPriceFromAmount1RemoveLowersPrice(t *testing.T) {
	sqrtPrice := uint128.New(0, 1)
	liq := uint128.From64(1_000_000)
	delta := uint128.From64(1000)

	next, err := NextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liq, delta, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Cmp(sqrtPrice) >= 0 {
		t.Fatalf("removing token 1 should lower sqrt price: got %v, started at %v", next, sqrtPrice)
	}
}

func TestNextSqrtPriceFromInputRejectsZeroLiquidity(t *testing.T) {
	if _, err := NextSqrtPriceFromInput(uint128.New(0, 1), uint128.Zero, uint128.From64(1), true); err == nil {
		t.Fatal("expected error for zero liquidity")
	}
}

func TestNextSqrtPriceFromInputOutputDirectionDispatch(t *testing.T) {
	sqrtPrice := uint128.New(0, 1)
	liq := uint128.From64(1_000_000)
	amount := uint128.From64(1000)

	inZeroForOne, err := NextSqrtPriceFromInput(sqrtPrice, liq, amount, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inZeroForOne.Cmp(sqrtPrice) >= 0 {
		t.Fatalf("exact-in zeroForOne should lower price, got %v", inZeroForOne)
	}

	outZeroForOne, err := NextSqrtPriceFromOutput(sqrtPrice, liq, amount, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outZeroForOne.Cmp(sqrtPrice) >= 0 {
		t.Fatalf("exact-out zeroForOne (removing token1) should lower price, got %v", outZeroForOne)
	}
}
