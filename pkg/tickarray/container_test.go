package tickarray

import (
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestLoadDispatchesOnDiscriminator(t *testing.T) {
	fixed := &FixedArray{tickSpacing: 10}
	data := fixed.Encode()

	loaded, err := Load(data, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := loaded.(*FixedArray); !ok {
		t.Fatalf("expected *FixedArray, got %T", loaded)
	}

	dyn := &DynamicArray{tickSpacing: 10}
	data = dyn.Encode()
	loaded, err = Load(data, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := loaded.(*DynamicArray); !ok {
		t.Fatalf("expected *DynamicArray, got %T", loaded)
	}
}

func TestLoadRejectsUnknownDiscriminator(t *testing.T) {
	garbage := make([]byte, 16)
	if _, err := Load(garbage, 10); err == nil {
		t.Fatal("expected error decoding an account with an unrecognized discriminator")
	}
}

func TestGetArrayStartIndexRoundsTowardsNegativeInfinity(t *testing.T) {
	spacing := uint16(10)
	ticksInArray := int32(TickArraySize) * int32(spacing)

	if got := GetArrayStartIndex(0, spacing); got != 0 {
		t.Fatalf("start index of 0: got %d, want 0", got)
	}
	if got := GetArrayStartIndex(ticksInArray+5, spacing); got != ticksInArray {
		t.Fatalf("start index of %d: got %d, want %d", ticksInArray+5, got, ticksInArray)
	}
	if got := GetArrayStartIndex(-5, spacing); got != -ticksInArray {
		t.Fatalf("start index of -5: got %d, want %d", got, -ticksInArray)
	}
}

func TestCheckIsValidStartIndex(t *testing.T) {
	spacing := uint16(10)
	ticksInArray := int32(TickArraySize) * int32(spacing)

	if !CheckIsValidStartIndex(ticksInArray, spacing) {
		t.Fatal("a start index aligned to the array span should be valid")
	}
	if CheckIsValidStartIndex(ticksInArray+1, spacing) {
		t.Fatal("a misaligned start index should be invalid")
	}
}

func TestTickArrayAddressDeterministic(t *testing.T) {
	programID := solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	pool := solana.NewWallet().PublicKey()

	addr1, bump1, err := TickArrayAddress(programID, pool, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr2, bump2, err := TickArrayAddress(programID, pool, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr1 != addr2 || bump1 != bump2 {
		t.Fatal("tick array PDA derivation should be deterministic for the same inputs")
	}

	addr3, _, err := TickArrayAddress(programID, pool, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr1 == addr3 {
		t.Fatal("different start indices should derive different PDAs")
	}
}

func TestBitmapExtensionAddressDeterministic(t *testing.T) {
	programID := solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	pool := solana.NewWallet().PublicKey()

	addr1, _, err := BitmapExtensionAddress(programID, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr2, _, err := BitmapExtensionAddress(programID, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr1 != addr2 {
		t.Fatal("bitmap extension PDA derivation should be deterministic for the same inputs")
	}
}
