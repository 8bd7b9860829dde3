package tickarray

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
)

// dynamicHeaderLen is the fixed header size of a dynamic tick array:
// 8 (discriminator) + 32 (pool id) + 4 (start tick index) + 4 (padding)
// + 60 (tick_offset_index) + 1 (alloc count) + 1 (initialized count)
// + 2 (padding) + 8 (recent epoch) + 96 (padding).
const dynamicHeaderLen = 8 + 32 + 4 + 4 + TickArraySize + 1 + 1 + 2 + 8 + 96

// DynamicArray is the sparse tick-array layout: it allocates storage
// only for ticks actually used, growing one TickState record at a
// time, and maps an absolute tick-spacing slot to its position in the
// backing slice through tick_offset_index (0 means unallocated, so
// every stored position is offset+1).
type DynamicArray struct {
	PoolID             solana.PublicKey
	startTickIndex     int32
	tickSpacing        uint16
	tickOffsetIndex    [TickArraySize]uint8
	allocTickCount     uint8
	initializedCount   uint8
	recentEpoch        uint64
	ticks              []TickState
}

func decodeDynamic(data []byte, tickSpacing uint16) (*DynamicArray, error) {
	if len(data) < dynamicHeaderLen {
		return nil, clmmerr.ErrInvalidTickArray
	}
	a := &DynamicArray{tickSpacing: tickSpacing}
	off := 8
	copy(a.PoolID[:], data[off:off+32])
	off += 32
	a.startTickIndex = int32(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	off += 4 // padding_0
	copy(a.tickOffsetIndex[:], data[off:off+TickArraySize])
	off += TickArraySize
	a.allocTickCount = data[off]
	off++
	a.initializedCount = data[off]
	off++
	off += 2 // padding_1
	a.recentEpoch = binary.LittleEndian.Uint64(data[off : off+8])
	off += 8
	off += 96 // padding_2

	need := dynamicHeaderLen + int(a.allocTickCount)*TickStateSize
	if len(data) < need {
		return nil, clmmerr.ErrInvalidTickArray
	}
	a.ticks = make([]TickState, a.allocTickCount)
	for i := 0; i < int(a.allocTickCount); i++ {
		t, err := decodeTickState(data[off : off+TickStateSize])
		if err != nil {
			return nil, err
		}
		a.ticks[i] = t
		off += TickStateSize
	}
	return a, nil
}

// Encode serializes the header plus every allocated TickState slot.
func (a *DynamicArray) Encode() []byte {
	out := make([]byte, dynamicHeaderLen+len(a.ticks)*TickStateSize)
	copy(out[0:8], dynamicDiscriminator)
	off := 8
	copy(out[off:off+32], a.PoolID[:])
	off += 32
	binary.LittleEndian.PutUint32(out[off:off+4], uint32(a.startTickIndex))
	off += 4
	off += 4
	copy(out[off:off+TickArraySize], a.tickOffsetIndex[:])
	off += TickArraySize
	out[off] = a.allocTickCount
	off++
	out[off] = a.initializedCount
	off++
	off += 2
	binary.LittleEndian.PutUint64(out[off:off+8], a.recentEpoch)
	off += 8
	off += 96
	for _, t := range a.ticks {
		encodeTickState(t, out[off:off+TickStateSize])
		off += TickStateSize
	}
	return out
}

func (a *DynamicArray) StartTickIndex() int32 { return a.startTickIndex }
func (a *DynamicArray) TickSpacing() uint16   { return a.tickSpacing }

func (a *DynamicArray) slotOf(tickIndex int32) (int, bool) {
	if a.tickSpacing == 0 {
		return 0, false
	}
	rel := tickIndex - a.startTickIndex
	spacing := int32(a.tickSpacing)
	if rel < 0 || rel%spacing != 0 {
		return 0, false
	}
	slot := int(rel / spacing)
	if slot < 0 || slot >= TickArraySize {
		return 0, false
	}
	return slot, true
}

func (a *DynamicArray) Tick(tickIndex int32) (TickState, bool) {
	slot, ok := a.slotOf(tickIndex)
	if !ok {
		return TickState{}, false
	}
	pos := a.tickOffsetIndex[slot]
	if pos == 0 {
		return TickState{}, false
	}
	t := a.ticks[pos-1]
	if !t.IsInitialized() {
		return TickState{}, false
	}
	return t, true
}

// SetTick writes a tick's state, allocating a new backing slot the
// first time this tick index is touched (the growth policy the
// dynamic layout exists for).
func (a *DynamicArray) SetTick(tickIndex int32, t TickState) error {
	slot, ok := a.slotOf(tickIndex)
	if !ok {
		return clmmerr.ErrInvalidTickIndex
	}
	pos := a.tickOffsetIndex[slot]
	if pos == 0 {
		if a.allocTickCount == TickArraySize {
			return clmmerr.ErrInvalidTickArray
		}
		a.ticks = append(a.ticks, t)
		a.allocTickCount++
		a.tickOffsetIndex[slot] = a.allocTickCount
		if t.IsInitialized() {
			a.initializedCount++
		}
		return nil
	}
	wasInit := a.ticks[pos-1].IsInitialized()
	a.ticks[pos-1] = t
	isInit := t.IsInitialized()
	switch {
	case !wasInit && isInit:
		a.initializedCount++
	case wasInit && !isInit:
		a.initializedCount--
	}
	return nil
}

func (a *DynamicArray) NextInitializedTick(currentTick int32, zeroForOne, allowCurrent bool) (TickState, bool) {
	if a.tickSpacing == 0 || GetArrayStartIndex(currentTick, a.tickSpacing) != a.startTickIndex {
		return TickState{}, false
	}
	rel := currentTick - a.startTickIndex
	slot := int(rel / int32(a.tickSpacing))
	onSlot := rel%int32(a.tickSpacing) == 0
	if zeroForOne {
		for i := slot; i >= 0; i-- {
			if i == slot && onSlot && !allowCurrent {
				continue
			}
			if pos := a.tickOffsetIndex[i]; pos > 0 && a.ticks[pos-1].IsInitialized() {
				return a.ticks[pos-1], true
			}
		}
		return TickState{}, false
	}
	start := slot
	if !allowCurrent || !onSlot {
		start++
	}
	for i := start; i < TickArraySize; i++ {
		if pos := a.tickOffsetIndex[i]; pos > 0 && a.ticks[pos-1].IsInitialized() {
			return a.ticks[pos-1], true
		}
	}
	return TickState{}, false
}

func (a *DynamicArray) FirstInitializedTick(zeroForOne bool) (TickState, bool) {
	if zeroForOne {
		for i := TickArraySize - 1; i >= 0; i-- {
			if pos := a.tickOffsetIndex[i]; pos > 0 && a.ticks[pos-1].IsInitialized() {
				return a.ticks[pos-1], true
			}
		}
		return TickState{}, false
	}
	for i := 0; i < TickArraySize; i++ {
		if pos := a.tickOffsetIndex[i]; pos > 0 && a.ticks[pos-1].IsInitialized() {
			return a.ticks[pos-1], true
		}
	}
	return TickState{}, false
}
