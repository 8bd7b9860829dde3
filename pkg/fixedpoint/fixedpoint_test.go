package fixedpoint

import (
	"math/big"
	"testing"

	"lukechampine.com/uint128"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
)

func TestMulDivFloor(t *testing.T) {
	cases := []struct {
		name        string
		a, b, denom uint128.Uint128
		want        uint128.Uint128
		wantErr     error
	}{
		{"exact", uint128.From64(10), uint128.From64(3), uint128.From64(5), uint128.From64(6), nil},
		{"rounds down", uint128.From64(10), uint128.From64(3), uint128.From64(4), uint128.From64(7), nil},
		{"zero denom", uint128.From64(1), uint128.From64(1), uint128.Zero, uint128.Zero, clmmerr.ErrCalculateOverflow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := MulDivFloor(c.a, c.b, c.denom)
			if c.wantErr != nil {
				if err != c.wantErr {
					t.Fatalf("got err %v, want %v", err, c.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equals(c.want) {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestMulDivCeil(t *testing.T) {
	got, err := MulDivCeil(uint128.From64(10), uint128.From64(3), uint128.From64(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := uint128.From64(8); !got.Equals(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, err = MulDivCeil(uint128.From64(10), uint128.From64(4), uint128.From64(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := uint128.From64(8); !got.Equals(want) {
		t.Fatalf("exact division should not round up: got %v, want %v", got, want)
	}
}

func TestDivRoundingUp(t *testing.T) {
	got, err := DivRoundingUp(uint128.From64(7), uint128.From64(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := uint128.From64(4); !got.Equals(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := DivRoundingUp(uint128.From64(1), uint128.Zero); err != clmmerr.ErrCalculateOverflow {
		t.Fatalf("expected overflow error dividing by zero, got %v", err)
	}
}

func TestCheckedAddSub128(t *testing.T) {
	max := uint128.Max
	if _, err := CheckedAdd128(max, uint128.From64(1)); err != clmmerr.ErrCalculateOverflow {
		t.Fatalf("expected overflow on max+1, got %v", err)
	}
	sum, err := CheckedAdd128(uint128.From64(1), uint128.From64(2))
	if err != nil || !sum.Equals(uint128.From64(3)) {
		t.Fatalf("got %v, %v", sum, err)
	}

	if _, err := CheckedSub128(uint128.From64(1), uint128.From64(2)); err != clmmerr.ErrCalculateOverflow {
		t.Fatalf("expected overflow on underflow, got %v", err)
	}
	diff, err := CheckedSub128(uint128.From64(5), uint128.From64(2))
	if err != nil || !diff.Equals(uint128.From64(3)) {
		t.Fatalf("got %v, %v", diff, err)
	}
}

func TestWrappingSub128(t *testing.T) {
	// 2 - 5 mod 2^128 == 2^128 - 3.
	got := WrappingSub128(uint128.From64(2), uint128.From64(5))
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	want := uint128.FromBig(new(big.Int).Sub(mod, big.NewInt(3)))
	if !got.Equals(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if got := WrappingSub128(uint128.From64(5), uint128.From64(2)); !got.Equals(uint128.From64(3)) {
		t.Fatalf("non-wrapping case: got %v, want 3", got)
	}
}
