package tickarray

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
)

// fixedHeaderLen is the byte offset of the first TickState record:
// 8 bytes discriminator + 32 bytes pool id + 4 bytes start tick index.
const fixedHeaderLen = 8 + 32 + 4

// fixedTailLen is the 1-byte initialized-tick counter plus its
// trailing padding, matching the wire layout's fixed total size.
const fixedTailLen = 1 + 115

// FixedArray is the original, densely-allocated tick-array layout:
// always exactly TickArraySize slots, one per tick-spacing multiple in
// its range, whether or not that tick is actually initialized.
type FixedArray struct {
	PoolID               solana.PublicKey
	startTickIndex       int32
	tickSpacing          uint16
	ticks                [TickArraySize]TickState
	initializedTickCount uint8
}

func decodeFixed(data []byte, tickSpacing uint16) (*FixedArray, error) {
	need := fixedHeaderLen + TickArraySize*TickStateSize + fixedTailLen
	if len(data) < need {
		return nil, clmmerr.ErrInvalidTickArray
	}
	a := &FixedArray{tickSpacing: tickSpacing}
	copy(a.PoolID[:], data[8:40])
	a.startTickIndex = int32(binary.LittleEndian.Uint32(data[40:44]))

	off := fixedHeaderLen
	for i := 0; i < TickArraySize; i++ {
		t, err := decodeTickState(data[off : off+TickStateSize])
		if err != nil {
			return nil, err
		}
		a.ticks[i] = t
		off += TickStateSize
	}
	a.initializedTickCount = data[off]
	return a, nil
}

// Encode serializes the array back to its wire format, for tests and
// for pools that mutate tick state in place.
func (a *FixedArray) Encode() []byte {
	out := make([]byte, fixedHeaderLen+TickArraySize*TickStateSize+fixedTailLen)
	copy(out[0:8], fixedDiscriminator)
	copy(out[8:40], a.PoolID[:])
	binary.LittleEndian.PutUint32(out[40:44], uint32(a.startTickIndex))
	off := fixedHeaderLen
	for i := 0; i < TickArraySize; i++ {
		encodeTickState(a.ticks[i], out[off:off+TickStateSize])
		off += TickStateSize
	}
	out[off] = a.initializedTickCount
	return out
}

func (a *FixedArray) StartTickIndex() int32 { return a.startTickIndex }
func (a *FixedArray) TickSpacing() uint16   { return a.tickSpacing }

func (a *FixedArray) offsetOf(tickIndex int32) (int, bool) {
	if a.tickSpacing == 0 {
		return 0, false
	}
	rel := tickIndex - a.startTickIndex
	spacing := int32(a.tickSpacing)
	if rel < 0 || rel%spacing != 0 {
		return 0, false
	}
	offset := int(rel / spacing)
	if offset < 0 || offset >= TickArraySize {
		return 0, false
	}
	return offset, true
}

func (a *FixedArray) Tick(tickIndex int32) (TickState, bool) {
	offset, ok := a.offsetOf(tickIndex)
	if !ok {
		return TickState{}, false
	}
	t := a.ticks[offset]
	if !t.IsInitialized() {
		return TickState{}, false
	}
	return t, true
}

func (a *FixedArray) SetTick(tickIndex int32, t TickState) error {
	offset, ok := a.offsetOf(tickIndex)
	if !ok {
		return clmmerr.ErrInvalidTickIndex
	}
	wasInit := a.ticks[offset].IsInitialized()
	a.ticks[offset] = t
	isInit := t.IsInitialized()
	switch {
	case !wasInit && isInit:
		a.initializedTickCount++
	case wasInit && !isInit:
		a.initializedTickCount--
	}
	return nil
}

func (a *FixedArray) NextInitializedTick(currentTick int32, zeroForOne, allowCurrent bool) (TickState, bool) {
	if a.tickSpacing == 0 || GetArrayStartIndex(currentTick, a.tickSpacing) != a.startTickIndex {
		return TickState{}, false
	}
	rel := currentTick - a.startTickIndex
	offset := int(rel / int32(a.tickSpacing))
	onSlot := rel%int32(a.tickSpacing) == 0
	if zeroForOne {
		for i := offset; i >= 0; i-- {
			if i == offset && onSlot && !allowCurrent {
				continue
			}
			if a.ticks[i].IsInitialized() {
				return a.ticks[i], true
			}
		}
		return TickState{}, false
	}
	start := offset
	if !allowCurrent || !onSlot {
		start++
	}
	for i := start; i < TickArraySize; i++ {
		if a.ticks[i].IsInitialized() {
			return a.ticks[i], true
		}
	}
	return TickState{}, false
}

func (a *FixedArray) FirstInitializedTick(zeroForOne bool) (TickState, bool) {
	if zeroForOne {
		for i := TickArraySize - 1; i >= 0; i-- {
			if a.ticks[i].IsInitialized() {
				return a.ticks[i], true
			}
		}
		return TickState{}, false
	}
	for i := 0; i < TickArraySize; i++ {
		if a.ticks[i].IsInitialized() {
			return a.ticks[i], true
		}
	}
	return TickState{}, false
}
