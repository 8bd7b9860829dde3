package tickarray

import (
	"github.com/gagliardetto/solana-go"

	"github.com/solana-zh/clmmcore/pkg/anchor"
	"github.com/solana-zh/clmmcore/pkg/clmmerr"
)

// Container is the unified view over a tick-array account, regardless
// of which of the two physical layouts backs it. A pool's tick arrays
// can be a mix of both: older accounts were allocated as one fixed
// 60-tick record, newer ones grow lazily as a dynamic, offset-indexed
// record that only stores the ticks actually used.
type Container interface {
	StartTickIndex() int32
	TickSpacing() uint16
	// Tick returns the slot for the given absolute tick index, or ok=false
	// if that tick is outside this container's range or not initialized.
	Tick(tickIndex int32) (TickState, bool)
	// SetTick writes a tick's state back, growing the container if its
	// layout needs to (the dynamic layout only; the fixed layout's slot
	// for every tick spacing multiple always exists).
	SetTick(tickIndex int32, t TickState) error
	// NextInitializedTick scans from currentTick (exclusive unless
	// allowCurrent) towards -inf (zeroForOne) or +inf, within this
	// container only, returning the first initialized tick found.
	NextInitializedTick(currentTick int32, zeroForOne, allowCurrent bool) (TickState, bool)
	// FirstInitializedTick scans this container end-to-end in the swap
	// direction, used when seeding the quoter loop from a fresh array.
	FirstInitializedTick(zeroForOne bool) (TickState, bool)
}

var (
	fixedDiscriminator   = anchor.GetDiscriminator("account", "TickArrayState")
	dynamicDiscriminator = anchor.GetDiscriminator("account", "DynTickArrayState")
)

// Load dispatches on the account's 8-byte Anchor discriminator and
// decodes the corresponding physical layout. tickSpacing comes from the
// owning pool's state, since neither wire layout stores it per array.
func Load(data []byte, tickSpacing uint16) (Container, error) {
	if len(data) < 8 {
		return nil, clmmerr.ErrInvalidTickArray
	}
	disc := data[:8]
	switch {
	case equalBytes(disc, fixedDiscriminator):
		return decodeFixed(data, tickSpacing)
	case equalBytes(disc, dynamicDiscriminator):
		return decodeDynamic(data, tickSpacing)
	default:
		return nil, clmmerr.ErrInvalidTickArray
	}
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GetArrayStartIndex rounds tickIndex down to the start of the tick
// array that owns it, in units of TickArraySize*tickSpacing.
func GetArrayStartIndex(tickIndex int32, tickSpacing uint16) int32 {
	ticksInArray := int32(TickArraySize) * int32(tickSpacing)
	start := tickIndex / ticksInArray
	if tickIndex < 0 && tickIndex%ticksInArray != 0 {
		start--
	}
	return start * ticksInArray
}

// CheckIsValidStartIndex reports whether startIndex is a multiple of
// TickArraySize*tickSpacing. It does not check MinTick/MaxTick bounds.
func CheckIsValidStartIndex(startIndex int32, tickSpacing uint16) bool {
	ticksInArray := int32(TickArraySize) * int32(tickSpacing)
	return startIndex%ticksInArray == 0
}

// TickArrayAddress derives the PDA for the tick array starting at
// startIndex, seeded "tick_array" || pool || start_index.to_be_bytes().
func TickArrayAddress(programID, pool solana.PublicKey, startIndex int32) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{
		[]byte("tick_array"),
		pool.Bytes(),
		i32ToBE(startIndex),
	}
	return solana.FindProgramAddress(seeds, programID)
}

// BitmapExtensionAddress derives the PDA for a pool's tick-array
// bitmap extension account.
func BitmapExtensionAddress(programID, pool solana.PublicKey) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{
		[]byte("pool_tick_array_bitmap_extension"),
		pool.Bytes(),
	}
	return solana.FindProgramAddress(seeds, programID)
}

func i32ToBE(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
}
