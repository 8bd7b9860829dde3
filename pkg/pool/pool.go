// Package pool models the pool account itself and its fee configuration,
// and drives the swap quoter loop over a caller-supplied set of tick
// arrays (pkg/tickarray).
package pool

import (
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"github.com/solana-zh/clmmcore/pkg/clmmerr"
	"github.com/solana-zh/clmmcore/pkg/feeschedule"
	"github.com/solana-zh/clmmcore/pkg/tickarray"
)

const (
	statusSwapDisabled = 1 << 2
)

// State is the subset of the on-chain pool account the quoter needs: the
// current price/tick/liquidity, fee-growth accumulators, the decay-fee
// schedule, and the inline bitmap used to find the next tick array.
// Extension holds the pool's bitmap-extension account, decoded via
// tickarray.LoadExtension from the account at tickarray.BitmapExtensionAddress;
// it is nil for pools whose tick range never outgrows the inline bitmap.
type State struct {
	PoolID         solana.PublicKey
	AmmConfig      solana.PublicKey
	TokenMint0     solana.PublicKey
	TokenMint1     solana.PublicKey
	TokenVault0    solana.PublicKey
	TokenVault1    solana.PublicKey
	MintDecimals0  uint8
	MintDecimals1  uint8
	TickSpacing    uint16
	Liquidity      uint128.Uint128
	SqrtPriceX64   uint128.Uint128
	TickCurrent    int32
	FeeGrowthGlobal0X64 uint128.Uint128
	FeeGrowthGlobal1X64 uint128.Uint128
	Status         uint8
	Bitmap         tickarray.Bitmap
	Extension      *tickarray.Extension
	OpenTime       uint64
	DecayFee       feeschedule.Schedule
}

// SwapEnabled reports whether the pool's status bits permit swaps.
func (s *State) SwapEnabled() bool {
	return s.Status&statusSwapDisabled == 0
}

// Decode parses a pool account's wire format, skipping the 8-byte Anchor
// discriminator when present. Field order and sizes are grounded on the
// donor's CLMMPool.Decode. Decoding stops after Status: PoolID, Bitmap,
// Extension, OpenTime and DecayFee are left at their zero values.
func Decode(data []byte) (*State, error) {
	if len(data) > 8 {
		data = data[8:]
	}
	const minLen = 1 + 32*7 + 1 + 1 + 2 + 16 + 16 + 4 + 2 + 2 + 16 + 16 + 8 + 8 + 16 + 16 + 16 + 16 + 1 + 7
	if len(data) < minLen {
		return nil, clmmerr.ErrInvalidTickArray
	}

	s := &State{}
	off := 1 // bump
	s.AmmConfig = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	off += 32 // owner
	s.TokenMint0 = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	s.TokenMint1 = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	s.TokenVault0 = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	s.TokenVault1 = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	off += 32 // observation key
	s.MintDecimals0 = data[off]
	off++
	s.MintDecimals1 = data[off]
	off++
	s.TickSpacing = binary.LittleEndian.Uint16(data[off : off+2])
	off += 2
	s.Liquidity = decodeU128(data[off : off+16])
	off += 16
	s.SqrtPriceX64 = decodeU128(data[off : off+16])
	off += 16
	s.TickCurrent = int32(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	off += 2 // observation index
	off += 2 // observation update duration
	s.FeeGrowthGlobal0X64 = decodeU128(data[off : off+16])
	off += 16
	s.FeeGrowthGlobal1X64 = decodeU128(data[off : off+16])
	off += 16
	off += 8 // protocol fees token0
	off += 8 // protocol fees token1
	off += 16 // swap in amount token0
	off += 16 // swap out amount token1
	off += 16 // swap in amount token1
	off += 16 // swap out amount token0
	s.Status = data[off]
	off++
	off += 7 // padding

	return s, nil
}

func decodeU128(b []byte) uint128.Uint128 {
	lo := binary.LittleEndian.Uint64(b[0:8])
	hi := binary.LittleEndian.Uint64(b[8:16])
	return uint128.New(lo, hi)
}

// AmmConfig is the fee-tier configuration a pool references, shared across
// every pool that opens at the same tier.
type AmmConfig struct {
	Bump            uint8
	Index           uint16
	Owner           solana.PublicKey
	ProtocolFeeRate uint32
	TradeFeeRate    uint32
	TickSpacing     uint16
	FundFeeRate     uint32
	PaddingU32      uint32
	FundOwner       solana.PublicKey
	Padding         [3]uint64
}

// DecodeAmmConfig parses an AMM config account, skipping its discriminator
// when present.
func DecodeAmmConfig(data []byte) (AmmConfig, error) {
	if len(data) > 8 {
		data = data[8:]
	}
	var cfg AmmConfig
	dec := bin.NewBinDecoder(data)
	if err := dec.Decode(&cfg); err != nil {
		return AmmConfig{}, clmmerr.ErrInvalidTickArray
	}
	return cfg, nil
}
