package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestGrayRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var v = uint32(rapid.IntRange(0, 1<<20).Draw(t, "v"))
		assert.Equal(t, v, GrayDecode(GrayEncode(v)))
		assert.Equal(t, v, GrayEncode(GrayDecode(v)))
	})
}

func TestGrayAdjacency(t *testing.T) {
	// Consecutive values differ in exactly one bit after encoding.
	for v := uint32(0); v < 1<<12; v++ {
		diff := GrayEncode(v) ^ GrayEncode(v+1)
		assert.Equal(t, uint32(0), diff&(diff-1), "v=%d", v)
	}
}

func TestGrayTable(t *testing.T) {
	table := GrayTable(5)
	require.Len(t, table, 32)
	golden := []struct {
		v    int
		want uint32
	}{
		{v: 0, want: 0},
		{v: 1, want: 1},
		{v: 2, want: 3},
		{v: 3, want: 2},
		{v: 9, want: 13},
		{v: 27, want: 22},
	}
	for _, g := range golden {
		assert.Equal(t, g.want, table[g.v], "v=%d", g.v)
	}
}

func TestHammingEncodeGolden(t *testing.T) {
	// Codewords observed in decoded explicit headers: data nibble in the
	// low bits, parity p0..p3 above.
	golden := []struct {
		nibble uint8
		want   uint8
	}{
		{nibble: 0x0, want: 0x00},
		{nibble: 0x1, want: 0xD1}, // parity 1101
		{nibble: 0x2, want: 0x72}, // parity 0111
		{nibble: 0x5, want: 0x65}, // parity 0110
	}
	for _, g := range golden {
		assert.Equal(t, g.want, HammingEncode(g.nibble, CR48), "nibble=%#x", g.nibble)
	}
	// Shortened rates truncate the same codeword.
	assert.Equal(t, uint8(0x11), HammingEncode(0x1, CR45))
	assert.Equal(t, uint8(0x11), HammingEncode(0x1, CR46))
	assert.Equal(t, uint8(0x51), HammingEncode(0x1, CR47))
}

func TestHammingDecodeCorrectsSingleBitErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var nibble = uint8(rapid.IntRange(0, 15).Draw(t, "nibble"))
		var bit = rapid.IntRange(0, 7).Draw(t, "bit")

		cw := HammingEncode(nibble, CR48)
		got, ok := HammingDecode(cw^1<<uint(bit), CR48)
		require.True(t, ok)
		assert.Equal(t, nibble, got)
	})
}

func TestHammingDecodeShortenedDetectsOnly(t *testing.T) {
	for _, cr := range []CodeRate{CR45, CR46, CR47} {
		for nibble := uint8(0); nibble < 16; nibble++ {
			cw := HammingEncode(nibble, cr)
			got, ok := HammingDecode(cw, cr)
			require.True(t, ok, "cr=%d nibble=%d", cr, nibble)
			assert.Equal(t, nibble, got)
		}
	}
	// A corrupted parity bit is detected, not corrected, at 4/6.
	cw := HammingEncode(0x9, CR46)
	_, ok := HammingDecode(cw^0x20, CR46)
	assert.False(t, ok)
}

func TestDewhitenInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var n = rapid.IntRange(0, 256).Draw(t, "n")
		bits := make([]uint8, n)
		for i := range bits {
			bits[i] = uint8(rapid.IntRange(0, 1).Draw(t, "bit"))
		}
		orig := append([]uint8{}, bits...)

		Dewhiten(bits)
		Dewhiten(bits)
		assert.Equal(t, orig, bits)
	})
}

func TestDewhitenSequenceStart(t *testing.T) {
	// The LFSR seeds with all ones, so the first whitening byte flips
	// every bit; the feedback taps shift a zero into the second byte.
	bits := make([]uint8, 16)
	Dewhiten(bits)
	assert.Equal(t, []uint8{1, 1, 1, 1, 1, 1, 1, 1}, bits[:8])
	assert.Equal(t, []uint8{0, 1, 1, 1, 1, 1, 1, 1}, bits[8:])
}

func TestDewhitenPartialByteUntouched(t *testing.T) {
	bits := []uint8{0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1}
	Dewhiten(bits)
	// Only the full leading byte is processed.
	assert.Equal(t, []uint8{1, 0, 1}, bits[8:])
}

func TestHeaderCRC5Golden(t *testing.T) {
	golden := []struct {
		n0, n1, n2 uint8
		want       uint8
	}{
		// (len=0x12, cr=2, crc=1): observed in the reference header.
		{n0: 1, n1: 2, n2: 5, want: 0x10},
		{n0: 2, n1: 1, n2: 5, want: 0x1C},
		{n0: 0, n1: 0, n2: 0, want: 0x00},
		{n0: 0, n1: 0, n2: 1, want: 0x0B},
	}
	for _, g := range golden {
		assert.Equal(t, g.want, HeaderCRC5(g.n0, g.n1, g.n2), "n0=%d n1=%d n2=%d", g.n0, g.n1, g.n2)
	}
}

func TestHeaderCRC5SingleBitSensitivity(t *testing.T) {
	// Any single-bit change in the nibbles must change the checksum.
	base := HeaderCRC5(0x3, 0xA, 0x5)
	for i := uint(0); i < 4; i++ {
		assert.NotEqual(t, base, HeaderCRC5(0x3^1<<i, 0xA, 0x5))
		assert.NotEqual(t, base, HeaderCRC5(0x3, 0xA^1<<i, 0x5))
		assert.NotEqual(t, base, HeaderCRC5(0x3, 0xA, 0x5^1<<i))
	}
}

func TestPayloadCRC16LengthBounds(t *testing.T) {
	bits := make([]uint8, 64*8)
	for i := range bits {
		bits[i] = uint8(i % 2)
	}
	// Lengths under five bytes have no defined initial state.
	assert.Equal(t, [16]uint8{}, PayloadCRC16(bits, 4*8))

	got := PayloadCRC16(bits, 5*8)
	assert.NotEqual(t, [16]uint8{}, got)
	// Deterministic.
	assert.Equal(t, got, PayloadCRC16(bits, 5*8))
}

func TestPayloadCRC16MessageSensitivity(t *testing.T) {
	bits := make([]uint8, 16*8)
	a := PayloadCRC16(bits, 10*8)
	bits[3] = 1
	b := PayloadCRC16(bits, 10*8)
	assert.NotEqual(t, a, b)
	// Bits past the message length do not contribute.
	bits[10*8+2] = 1
	c := PayloadCRC16(bits, 10*8)
	assert.Equal(t, b, c)
}
