package tickarray

import (
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestNextInitializedTickArrayStartIndexInlineOnly(t *testing.T) {
	spacing := uint16(60)
	multiplier := tickCount(spacing)

	var bm Bitmap
	// One array width to the right of zero: bitPos = 513, word 8 bit 1.
	bm.Words[8] |= 1 << 1

	found, start, err := NextInitializedTickArrayStartIndex(bm, nil, 0, spacing, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || start != multiplier {
		t.Fatalf("got found=%v start=%d, want found=true start=%d", found, start, multiplier)
	}
}

func TestNextInitializedTickArrayStartIndexZeroForOne(t *testing.T) {
	spacing := uint16(60)
	multiplier := tickCount(spacing)

	var bm Bitmap
	// One array width to the left of zero: bitPos = 511, word 7 bit 63.
	bm.Words[7] |= 1 << 63

	found, start, err := NextInitializedTickArrayStartIndex(bm, nil, 0, spacing, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || start != -multiplier {
		t.Fatalf("got found=%v start=%d, want found=true start=%d", found, start, -multiplier)
	}
}

func TestNextInitializedTickArrayStartIndexNoneFound(t *testing.T) {
	spacing := uint16(60)
	var bm Bitmap
	found, _, err := NextInitializedTickArrayStartIndex(bm, nil, 0, spacing, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("an all-zero bitmap should report no initialized tick arrays")
	}
}

func TestExtensionEncodeDecodeRoundTrip(t *testing.T) {
	e := &Extension{PoolID: solana.NewWallet().PublicKey()}
	e.Positive[0][0] = 0xDEADBEEF
	e.Negative[3][7] = 0xCAFEF00D

	encoded := e.Encode()
	decoded, err := LoadExtension(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.PoolID != e.PoolID {
		t.Fatalf("pool id: got %v, want %v", decoded.PoolID, e.PoolID)
	}
	if decoded.Positive[0][0] != 0xDEADBEEF {
		t.Fatalf("positive[0][0]: got %x, want %x", decoded.Positive[0][0], 0xDEADBEEF)
	}
	if decoded.Negative[3][7] != 0xCAFEF00D {
		t.Fatalf("negative[3][7]: got %x, want %x", decoded.Negative[3][7], 0xCAFEF00D)
	}
}

func TestLoadExtensionRejectsWrongDiscriminator(t *testing.T) {
	garbage := make([]byte, 64)
	if _, err := LoadExtension(garbage); err == nil {
		t.Fatal("expected error decoding an account with the wrong discriminator")
	}
}

func TestWithinInlineBitmapRange(t *testing.T) {
	spacing := uint16(1)
	negative, positive, err := extensionTickBoundary(spacing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !withinInlineBitmap(0, spacing) {
		t.Fatal("tick 0 should always be within the inline bitmap")
	}
	if withinInlineBitmap(positive+1, spacing) {
		t.Fatal("a tick past the positive boundary should not be within the inline bitmap")
	}
	if withinInlineBitmap(negative-1, spacing) {
		t.Fatal("a tick past the negative boundary should not be within the inline bitmap")
	}
}
