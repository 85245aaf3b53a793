// Package testsig synthesizes LoRa baseband frames for receiver tests. It
// builds the exact air structure the receiver expects — 8 preamble
// upchirps, 2 sync-word chirps, 2.25 downchirps and the interleaved,
// whitened data symbols — by inverting each receive stage in turn.
//
// The package lives under internal and is imported by test files only; the
// library itself ships no modulator.
package testsig

import (
	"fmt"

	"github.com/mewkiz/lora/internal/bits"
	"github.com/mewkiz/lora/internal/codec"
	"github.com/mewkiz/lora/internal/dsp"
)

// Config selects the frame parameters. In implicit mode the payload must
// begin with bytes whose first twenty whitened bits match the receiver's
// fixed fake-header prefix; "HELLO WORLD"-style payloads (H, E, then a
// low-nibble-0xC byte) satisfy this.
type Config struct {
	SF           int
	BandwidthHz  int
	SampleRateHz int
	CR           int
	HasCRC       bool
	Implicit     bool
	LDRO         bool
	SyncWord     uint8
	Payload      []byte
	// Zero samples appended after the frame.
	TailSymbols int
}

// Frame synthesizes the baseband samples of one frame.
func Frame(cfg Config) ([]complex64, error) {
	up, err := dsp.Upchirp(cfg.SF, cfg.BandwidthHz, cfg.SampleRateHz)
	if err != nil {
		return nil, err
	}
	down, err := dsp.Downchirp(cfg.SF, cfg.BandwidthHz, cfg.SampleRateHz)
	if err != nil {
		return nil, err
	}
	if cfg.CR < 1 || cfg.CR > 4 {
		return nil, fmt.Errorf("testsig.Frame: coding rate out of range [1,4]; got %d", cfg.CR)
	}
	if len(cfg.Payload) == 0 || len(cfg.Payload) > 255 {
		return nil, fmt.Errorf("testsig.Frame: payload length out of range [1,255]; got %d", len(cfg.Payload))
	}

	k := 1 << uint(cfg.SF)
	osFactor := cfg.SampleRateHz / cfg.BandwidthHz
	n := k * osFactor

	de := 0
	if cfg.LDRO || cfg.SF >= 11 {
		de = 1
	}
	ppm := cfg.SF - 2*de
	ppmHdr := cfg.SF - 2
	hdrExtra := ppmHdr*4 - 20
	if hdrExtra < 0 {
		hdrExtra = 0
	}

	// Plain bit stream: message bits LSB-first per byte, then the CRC-16.
	var stream []uint8
	for _, b := range cfg.Payload {
		for j := 0; j < 8; j++ {
			stream = append(stream, (b>>uint(j))&1)
		}
	}
	if cfg.HasCRC {
		crc := codec.PayloadCRC16(stream, len(cfg.Payload)*8)
		stream = append(stream, crc[:]...)
	}

	// Bit budget: in explicit mode the extra header rows carry the first
	// hdrExtra bits and the blocks the rest; in implicit mode the first
	// twenty bits ride in the skipped first block.
	blockBits := ppm * 4
	var nBlocks, prefixBits int
	if cfg.Implicit {
		prefixBits = 20
		nBlocks = (len(stream) - prefixBits + blockBits - 1) / blockBits
	} else {
		prefixBits = hdrExtra
		nBlocks = (len(stream) - prefixBits + blockBits - 1) / blockBits
	}
	if nBlocks < 0 {
		nBlocks = 0
	}
	for len(stream) < prefixBits+nBlocks*blockBits {
		stream = append(stream, 0)
	}

	// Whitening is an involution, so applying the receiver's dewhitening
	// to the plain stream yields the transmitted bits.
	whitened := codec.Dewhiten(append([]uint8(nil), stream...))

	if cfg.Implicit {
		// The receiver substitutes a fixed bit pattern for the skipped
		// first block; implicit frames only decode when the whitened
		// payload actually starts with it.
		fake := []uint8{1, 1, 1, 0, 1, 1, 0, 1, 1, 1, 0, 1, 1, 1, 0, 1, 0, 0, 0, 0}
		for i, b := range fake {
			if whitened[i] != b {
				return nil, fmt.Errorf("testsig.Frame: implicit payload prefix is not representable; whitened bit %d mismatches", i)
			}
		}
	}

	// Header symbols (explicit mode): three field nibbles, the CRC-5 split
	// across two rows, then the extra rows carrying the stream prefix.
	var dataSymbols []int
	if !cfg.Implicit {
		length := len(cfg.Payload)
		crcFlag := uint8(0)
		if cfg.HasCRC {
			crcFlag = 1
		}
		n0 := uint8(length >> 4)
		n1 := uint8(length & 0xF)
		n2 := uint8(cfg.CR)<<1 | crcFlag
		chk := codec.HeaderCRC5(n0, n1, n2)
		nibbles := make([]uint8, ppmHdr)
		nibbles[0], nibbles[1], nibbles[2] = n0, n1, n2
		nibbles[3] = chk >> 4
		nibbles[4] = chk & 0xF
		for i := 5; i < ppmHdr; i++ {
			nibbles[i] = bits.Uint8LE(whitened[(i-5)*4 : (i-5)*4+4])
		}
		rows := make([]uint8, ppmHdr)
		for r, nib := range nibbles {
			rows[r] = codec.HammingEncode(nib, codec.CR48)
		}
		for _, v := range blockSymbols(rows, ppmHdr, 8) {
			dataSymbols = append(dataSymbols, (4*int(codec.GrayDecode(v)))%k)
		}
	} else {
		// The receiver never demodulates the first block in implicit
		// mode; fill its slot with plain upchirps.
		for i := 0; i < 8; i++ {
			dataSymbols = append(dataSymbols, 0)
		}
	}

	// Payload blocks.
	cwLen := 4 + cfg.CR
	for blk := 0; blk < nBlocks; blk++ {
		rows := make([]uint8, ppm)
		for r := 0; r < ppm; r++ {
			nib := bits.Uint8LE(whitened[prefixBits+blk*blockBits+r*4 : prefixBits+blk*blockBits+r*4+4])
			rows[r] = codec.HammingEncode(nib, codec.CodeRate(cwLen))
		}
		for _, v := range blockSymbols(rows, ppm, cwLen) {
			bin := int(codec.GrayDecode(v))
			dataSymbols = append(dataSymbols, (bin<<uint(2*de)+1)%k)
		}
	}

	// Assemble the air frame.
	var out []complex64
	emit := func(src []complex128, shift, count int) {
		for i := 0; i < count; i++ {
			c := src[(i+shift)%n]
			out = append(out, complex64(complex(real(c), imag(c))))
		}
	}
	for i := 0; i < 8; i++ {
		emit(up, 0, n)
	}
	emit(up, int((cfg.SyncWord>>4)&0xF)*8*osFactor, n)
	emit(up, int(cfg.SyncWord&0xF)*8*osFactor, n)
	emit(down, 0, 2*n+n/4)
	for _, m := range dataSymbols {
		emit(up, m*osFactor, n)
	}
	out = append(out, make([]complex64, cfg.TailSymbols*n)...)
	return out, nil
}

// blockSymbols maps codeword rows through the inverse interleaver into
// per-symbol values of ppm bits each. Row r holds the codeword of the
// r-th flipped deinterleaver row; symbol jj collects, MSB-first, the bits
// S[jj][col] = C[(col-jj) mod ppm][jj] the receiver will unscramble back.
func blockSymbols(rows []uint8, ppm, cwLen int) []uint32 {
	symbols := make([]uint32, cwLen)
	for jj := 0; jj < cwLen; jj++ {
		var v uint32
		for col := 0; col < ppm; col++ {
			ii := ((col-jj)%ppm + ppm) % ppm
			cw := rows[ppm-1-ii]
			bit := (cw >> uint(jj)) & 1
			v |= uint32(bit) << uint(ppm-1-col)
		}
		symbols[jj] = v
	}
	return symbols
}
