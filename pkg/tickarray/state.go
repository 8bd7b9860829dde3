// Package tickarray models the per-tick state record and the two
// physical containers (fixed-dense and dynamic-sparse) a pool's
// initialized ticks can be stored in, unified behind one Container
// interface so the swap quoter never needs to know which layout a
// given account uses.
package tickarray

import (
	"encoding/binary"
	"math/big"

	cosmath "cosmossdk.io/math"
	"lukechampine.com/uint128"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
)

// TickArraySize is the number of tick slots a fixed-layout tick array holds.
const TickArraySize = 60

// TickStateSize is the packed wire size of one TickState record.
const TickStateSize = 168

// TickState is one initialized-tick record: the liquidity crossing
// this tick applies, the fee growth recorded outside this tick at the
// time it was last crossed, and the same for each of up to three
// reward emissions.
type TickState struct {
	Tick                    int32
	LiquidityNet            cosmath.Int
	LiquidityGross          uint128.Uint128
	FeeGrowthOutsideX64A    uint128.Uint128
	FeeGrowthOutsideX64B    uint128.Uint128
	RewardGrowthsOutsideX64 [3]uint128.Uint128
}

// IsInitialized reports whether this slot holds an initialized tick,
// i.e. whether its LiquidityGross is nonzero. The Tick field is not
// consulted, so a slot for tick 0 is told apart from an unused slot by
// its liquidity alone.
func (t TickState) IsInitialized() bool {
	return !t.LiquidityGross.IsZero()
}

func decodeTickState(b []byte) (TickState, error) {
	if len(b) < TickStateSize {
		return TickState{}, clmmerr.ErrInvalidTickArray
	}
	off := 0
	tick := int32(binary.LittleEndian.Uint32(b[off:]))
	off += 4
	liquidityNet := decodeI128LE(b[off : off+16])
	off += 16
	liquidityGross := decodeU128LE(b[off : off+16])
	off += 16
	feeA := decodeU128LE(b[off : off+16])
	off += 16
	feeB := decodeU128LE(b[off : off+16])
	off += 16
	var rewards [3]uint128.Uint128
	for i := 0; i < 3; i++ {
		rewards[i] = decodeU128LE(b[off : off+16])
		off += 16
	}
	return TickState{
		Tick:                    tick,
		LiquidityNet:            liquidityNet,
		LiquidityGross:          liquidityGross,
		FeeGrowthOutsideX64A:    feeA,
		FeeGrowthOutsideX64B:    feeB,
		RewardGrowthsOutsideX64: rewards,
	}, nil
}

func encodeTickState(t TickState, out []byte) {
	off := 0
	binary.LittleEndian.PutUint32(out[off:], uint32(t.Tick))
	off += 4
	encodeI128LE(t.LiquidityNet, out[off:off+16])
	off += 16
	encodeU128LE(t.LiquidityGross, out[off:off+16])
	off += 16
	encodeU128LE(t.FeeGrowthOutsideX64A, out[off:off+16])
	off += 16
	encodeU128LE(t.FeeGrowthOutsideX64B, out[off:off+16])
	off += 16
	for i := 0; i < 3; i++ {
		encodeU128LE(t.RewardGrowthsOutsideX64[i], out[off:off+16])
		off += 16
	}
}

func decodeU128LE(b []byte) uint128.Uint128 {
	lo := binary.LittleEndian.Uint64(b[0:8])
	hi := binary.LittleEndian.Uint64(b[8:16])
	return uint128.New(lo, hi)
}

func encodeU128LE(v uint128.Uint128, out []byte) {
	binary.LittleEndian.PutUint64(out[0:8], v.Lo)
	binary.LittleEndian.PutUint64(out[8:16], v.Hi)
}

func decodeI128LE(b []byte) cosmath.Int {
	u := decodeU128LE(b)
	mag := u.Big()
	if mag.Bit(127) == 1 {
		// two's complement negative: value = mag - 2^128
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		mag = new(big.Int).Sub(mag, mod)
	}
	return cosmath.NewIntFromBigInt(mag)
}

func encodeI128LE(v cosmath.Int, out []byte) {
	b := v.BigInt()
	if b.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		b = new(big.Int).Add(b, mod)
	}
	u := uint128.FromBig(b)
	encodeU128LE(u, out)
}
