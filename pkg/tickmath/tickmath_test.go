package tickmath

import (
	"testing"

	"lukechampine.com/uint128"
)

func TestGetSqrtPriceAtTickZero(t *testing.T) {
	got, err := GetSqrtPriceAtTick(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := uint128.New(0, 1) // 2^64
	if !got.Equals(want) {
		t.Fatalf("tick 0 should be sqrt_price 2^64, got %v", got)
	}
}

func TestGetSqrtPriceAtTickOutOfRange(t *testing.T) {
	if _, err := GetSqrtPriceAtTick(MaxTick + 1); err == nil {
		t.Fatal("expected error above MaxTick")
	}
	if _, err := GetSqrtPriceAtTick(MinTick - 1); err == nil {
		t.Fatal("expected error below MinTick")
	}
}

func TestGetSqrtPriceAtTickMonotonic(t *testing.T) {
	ticks := []int32{-443600, -100000, -1, 0, 1, 100000, 443600}
	prev := uint128.Zero
	for _, tick := range ticks {
		got, err := GetSqrtPriceAtTick(tick)
		if err != nil {
			t.Fatalf("tick %d: unexpected error %v", tick, err)
		}
		if got.Cmp(prev) <= 0 {
			t.Fatalf("tick %d: sqrt price %v not increasing from %v", tick, got, prev)
		}
		prev = got
	}
}

func TestTickSqrtPriceRoundTrip(t *testing.T) {
	for _, tick := range []int32{-443636, -256, -1, 0, 1, 256, 443636} {
		sqrtPrice, err := GetSqrtPriceAtTick(tick)
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		derived, err := GetTickAtSqrtPrice(sqrtPrice)
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if derived != tick {
			t.Fatalf("round trip tick %d -> sqrt price -> tick %d", tick, derived)
		}
	}
}

func TestGetTickAtSqrtPriceOutOfRange(t *testing.T) {
	if _, err := GetTickAtSqrtPrice(MaxSqrtPriceX64.Add64(1)); err == nil {
		t.Fatal("expected error above MaxSqrtPriceX64")
	}
	if _, err := GetTickAtSqrtPrice(MinSqrtPriceX64.Sub64(1)); err == nil {
		t.Fatal("expected error below MinSqrtPriceX64")
	}
}
