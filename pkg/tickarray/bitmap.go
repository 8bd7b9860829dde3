package tickarray

import (
	"encoding/binary"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/solana-zh/clmmcore/pkg/anchor"
	"github.com/solana-zh/clmmcore/pkg/clmmerr"
	"github.com/solana-zh/clmmcore/pkg/tickmath"
)

// bitmapWords is the word count of the inline bitmap carried on the pool
// account itself: 8 words cover the negative side, 8 the positive side,
// 1024 bits total.
const bitmapWords = 16

// extensionCells is the number of extra 512-bit cells the bitmap
// extension account carries on each side of zero, for tick spacings
// narrow enough that the inline bitmap's range doesn't cover MinTick..MaxTick.
const extensionCells = 14

// bitmapSpan is the number of tick-array slots one 512-bit half of the
// inline bitmap (or one extension cell) can address.
const bitmapSpan = 512

// Bitmap is the pool account's inline initialized-tick-array bitmap: bit
// i%64 of Words[i/64] is set when the tick array starting at tick
// (i-bitmapSpan)*spacing*60 holds an initialized tick.
type Bitmap struct {
	Words [bitmapWords]uint64
}

// Extension is the bitmap-extension account: once a pool's tick range, at
// its spacing, outgrows the inline bitmap's bitmapSpan cells per side, the
// next initialized-tick-array search continues into these additional cells.
type Extension struct {
	PoolID   solana.PublicKey
	Positive [extensionCells][8]uint64
	Negative [extensionCells][8]uint64
}

var extensionDiscriminator = anchor.GetDiscriminator("account", "TickArrayBitmapExtension")

func decodeExtension(data []byte) (*Extension, error) {
	const header = 8 + 32
	const cellBytes = 8 * 8
	need := header + 2*extensionCells*cellBytes
	if len(data) < need {
		return nil, clmmerr.ErrInvalidTickArray
	}
	e := &Extension{}
	copy(e.PoolID[:], data[8:40])
	off := header
	for i := 0; i < extensionCells; i++ {
		for j := 0; j < 8; j++ {
			e.Positive[i][j] = binary.LittleEndian.Uint64(data[off : off+8])
			off += 8
		}
	}
	for i := 0; i < extensionCells; i++ {
		for j := 0; j < 8; j++ {
			e.Negative[i][j] = binary.LittleEndian.Uint64(data[off : off+8])
			off += 8
		}
	}
	return e, nil
}

// Encode serializes the extension account back to its wire format.
func (e *Extension) Encode() []byte {
	const header = 8 + 32
	out := make([]byte, header+2*extensionCells*8*8)
	copy(out[0:8], extensionDiscriminator)
	copy(out[8:40], e.PoolID[:])
	off := header
	for i := 0; i < extensionCells; i++ {
		for j := 0; j < 8; j++ {
			binary.LittleEndian.PutUint64(out[off:off+8], e.Positive[i][j])
			off += 8
		}
	}
	for i := 0; i < extensionCells; i++ {
		for j := 0; j < 8; j++ {
			binary.LittleEndian.PutUint64(out[off:off+8], e.Negative[i][j])
			off += 8
		}
	}
	return out
}

// LoadExtension decodes a bitmap-extension account.
func LoadExtension(data []byte) (*Extension, error) {
	if len(data) < 8 || !equalBytes(data[:8], extensionDiscriminator) {
		return nil, clmmerr.ErrInvalidTickArray
	}
	return decodeExtension(data)
}

func mergeWords(words []uint64) *big.Int {
	result := new(big.Int)
	for i, w := range words {
		shifted := new(big.Int).Lsh(new(big.Int).SetUint64(w), uint(64*i))
		result.Add(result, shifted)
	}
	return result
}

func tickCount(tickSpacing uint16) int32 {
	return int32(tickSpacing) * TickArraySize
}

func maxTickInBitmap(tickSpacing uint16) int32 {
	return bitmapSpan * tickCount(tickSpacing)
}

func absInt32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// extensionTickBoundary returns the [negative, positive) tick range the
// inline bitmap alone covers for this spacing; beyond it the extension
// account must be consulted.
func extensionTickBoundary(tickSpacing uint16) (negative, positive int32, err error) {
	positive = maxTickInBitmap(tickSpacing)
	negative = -positive
	if tickmath.MaxTick <= positive {
		return 0, 0, clmmerr.ErrInvalidTickIndex
	}
	if negative <= tickmath.MinTick {
		return 0, 0, clmmerr.ErrInvalidTickIndex
	}
	return negative, positive, nil
}

// withinInlineBitmap reports whether tickIndex's tick array is addressable
// by the pool's inline bitmap rather than requiring the extension.
func withinInlineBitmap(tickIndex int32, tickSpacing uint16) bool {
	negative, positive, err := extensionTickBoundary(tickSpacing)
	if err != nil {
		return false
	}
	return tickIndex >= negative && tickIndex < positive
}

func extensionOffset(tickIndex int32, tickSpacing uint16) (int, error) {
	if withinInlineBitmap(tickIndex, tickSpacing) {
		return 0, clmmerr.ErrInvalidTickIndex
	}
	ticksPerCell := maxTickInBitmap(tickSpacing)
	offset := absInt32(tickIndex)/ticksPerCell - 1
	if tickIndex < 0 && absInt32(tickIndex)%ticksPerCell == 0 {
		offset--
	}
	if offset < 0 || offset >= extensionCells {
		return 0, clmmerr.ErrInvalidTickIndex
	}
	return int(offset), nil
}

func extensionCellFor(ext *Extension, tickIndex int32, tickSpacing uint16) ([]uint64, error) {
	offset, err := extensionOffset(tickIndex, tickSpacing)
	if err != nil {
		return nil, err
	}
	if tickIndex < 0 {
		return ext.Negative[offset][:], nil
	}
	return ext.Positive[offset][:], nil
}

// tickArrayOffsetInBitmap maps a tick-array start index to its bit position
// within one 512-bit half (inline) or cell (extension) of the bitmap.
func tickArrayOffsetInBitmap(startIndex int32, tickSpacing uint16) int32 {
	maxTick := maxTickInBitmap(tickSpacing)
	m := absInt32(startIndex) % maxTick
	offset := m / tickCount(tickSpacing)
	if startIndex < 0 && m != 0 {
		offset = bitmapSpan - offset
	}
	return offset
}

func bitmapTickBoundary(startIndex int32, tickSpacing uint16) (min, max int32) {
	ticksPerBitmap := maxTickInBitmap(tickSpacing)
	m := absInt32(startIndex) / ticksPerBitmap
	if startIndex < 0 && absInt32(startIndex)%ticksPerBitmap != 0 {
		m++
	}
	minValue := ticksPerBitmap * m
	if startIndex < 0 {
		return -minValue, -minValue + ticksPerBitmap
	}
	return minValue, minValue + ticksPerBitmap
}

func leadingZeros(bits int, v *big.Int) (int, bool) {
	if v.Sign() == 0 {
		return 0, false
	}
	for i := bits - 1; i >= 0; i-- {
		if v.Bit(i) == 1 {
			return bits - 1 - i, true
		}
	}
	return 0, false
}

func trailingZeros(bits int, v *big.Int) (int, bool) {
	if v.Sign() == 0 {
		return 0, false
	}
	for i := 0; i < bits; i++ {
		if v.Bit(i) == 1 {
			return i, true
		}
	}
	return 0, false
}

// nextInlineStartIndex walks the inline bitmap one tick-array width at a
// time from lastStartIndex, returning the next initialized start index it
// finds within the inline bitmap's range. found is false when the search ran
// off the inline bitmap's edge without finding one, in which case
// startIndex is the boundary to resume the search from in the extension.
func nextInlineStartIndex(bm Bitmap, lastStartIndex int32, tickSpacing uint16, zeroForOne bool) (found bool, startIndex int32) {
	boundary := maxTickInBitmap(tickSpacing)
	var next int32
	if zeroForOne {
		next = lastStartIndex - tickCount(tickSpacing)
	} else {
		next = lastStartIndex + tickCount(tickSpacing)
	}
	if next < -boundary || next >= boundary {
		return false, lastStartIndex
	}

	merged := mergeWords(bm.Words[:])
	multiplier := tickCount(tickSpacing)
	compressedF := float64(next)/float64(multiplier) + 512
	compressed := int(compressedF)
	if next < 0 && next%multiplier != 0 {
		compressed--
	}
	bitPos := compressed
	if bitPos < 0 {
		bitPos = -bitPos
	}

	if zeroForOne {
		shifted := new(big.Int).Lsh(merged, uint(1024-bitPos-1))
		bit, ok := leadingZeros(1024, shifted)
		if !ok {
			return false, -boundary
		}
		return true, int32(bitPos-bit-512) * multiplier
	}
	shifted := new(big.Int).Rsh(merged, uint(bitPos))
	bit, ok := trailingZeros(1024, shifted)
	if !ok {
		return false, boundary - multiplier
	}
	return true, int32(bitPos+bit-512) * multiplier
}

// nextExtensionStartIndex continues the search for the next initialized
// tick-array start index into the bitmap extension, one cell at a time.
func nextExtensionStartIndex(ext *Extension, lastStartIndex int32, tickSpacing uint16, zeroForOne bool) (found bool, startIndex int32, err error) {
	multiplier := tickCount(tickSpacing)
	var next int32
	if zeroForOne {
		next = lastStartIndex - multiplier
	} else {
		next = lastStartIndex + multiplier
	}

	cell, err := extensionCellFor(ext, next, tickSpacing)
	if err != nil {
		return false, 0, err
	}
	minB, maxB := bitmapTickBoundary(next, tickSpacing)
	offset := tickArrayOffsetInBitmap(next, tickSpacing)
	merged := mergeWords(cell)

	if zeroForOne {
		shifted := new(big.Int).Lsh(merged, uint(bitmapSpan-1-offset))
		bit, ok := leadingZeros(512, shifted)
		if !ok {
			return false, minB, nil
		}
		return true, next - int32(bit)*multiplier, nil
	}
	shifted := new(big.Int).Rsh(merged, uint(offset))
	bit, ok := trailingZeros(512, shifted)
	if ok {
		return true, next + int32(bit)*multiplier, nil
	}
	return false, maxB - multiplier, nil
}

// NextInitializedTickArrayStartIndex is the top-level bitmap search the
// quoter drives once it exhausts the ticks loaded into the current array:
// it walks the pool's inline bitmap first, and falls through to the
// extension account when the inline bitmap's range is exceeded. ext may be
// nil for pools narrow enough never to need one; the search then fails
// closed (found=false) once it steps outside the inline range.
func NextInitializedTickArrayStartIndex(bm Bitmap, ext *Extension, currentTick int32, tickSpacing uint16, zeroForOne bool) (bool, int32, error) {
	last := GetArrayStartIndex(currentTick, tickSpacing)
	for {
		found, next := nextInlineStartIndex(bm, last, tickSpacing, zeroForOne)
		if found {
			return true, next, nil
		}
		last = next
		if ext == nil {
			return false, 0, nil
		}
		found, tickIndex, err := nextExtensionStartIndex(ext, last, tickSpacing, zeroForOne)
		if err != nil {
			return false, 0, err
		}
		if found {
			return true, tickIndex, nil
		}
		last = tickIndex
		if last < tickmath.MinTick || last > tickmath.MaxTick {
			return false, 0, nil
		}
	}
}
