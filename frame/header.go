package frame

import (
	"math"

	"github.com/mewkiz/lora/internal/bits"
	"github.com/mewkiz/lora/internal/codec"
	"github.com/mewkiz/lora/internal/dsp"
)

// Header holds the fields recovered from the eight explicit-header symbols,
// or synthesized from configuration in implicit mode.
type Header struct {
	// True when the header was synthesized rather than decoded.
	Implicit bool
	// Demodulated raw symbol bins (length 8, explicit mode only).
	RawSymbols []int
	// True when the received CRC-5 matches the header nibbles.
	FCSOK bool
	// Payload length in bytes.
	PayloadLength int
	// True when a CRC-16 trails the payload.
	HasCRC bool
	// Coding rate index 1..4, for 4/(4+cr).
	CR int
	// Residual low-nibble bits beyond the 20 header bits, present when
	// sf-2 > 5; they prefix the payload bit stream before dewhitening.
	PayloadHeaderBits []uint8
}

// HeaderDecoder demodulates and decodes the explicit LoRa header.
type HeaderDecoder struct {
	sf           int
	bandwidthHz  int
	sampleRateHz int
	osFactor     int
	chips        int
	sps          int
	downchirp    []complex128
}

// NewHeaderDecoder creates a header decoder for the given parameters.
func NewHeaderDecoder(sf, bandwidthHz, sampleRateHz int) (*HeaderDecoder, error) {
	down, err := dsp.Downchirp(sf, bandwidthHz, sampleRateHz)
	if err != nil {
		return nil, err
	}
	osFactor := sampleRateHz / bandwidthHz
	chips := 1 << uint(sf)
	return &HeaderDecoder{
		sf:           sf,
		bandwidthHz:  bandwidthHz,
		sampleRateHz: sampleRateHz,
		osFactor:     osFactor,
		chips:        chips,
		sps:          chips * osFactor,
		downchirp:    down,
	}, nil
}

// SymbolSpanSamples returns the length of the eight header symbols.
func (d *HeaderDecoder) SymbolSpanSamples() int {
	return 8 * d.sps
}

// Decode demodulates the eight header symbols relative to sync and parses
// the header fields. The header bits use sf-2 bits per symbol after the
// divide-by-four bin mapping, are Gray mapped, block-deinterleaved into
// 8-bit rows and Hamming(8,4) decoded with single-bit correction.
//
// Returns nil when samples does not cover the header span, when a row is
// uncorrectable, or when sf < 7 (the header needs at least five rows).
//
// Decode never fails on a CRC-5 mismatch; the FCSOK flag reports it so the
// caller can decide whether to continue.
func (d *HeaderDecoder) Decode(samples []complex64, sync *SyncResult) *Header {
	n := d.sps
	k := d.chips
	fs := float64(d.sampleRateHz)

	headerOffset := HeaderOffsetSamples(d.sf, d.bandwidthHz, d.sampleRateHz)
	base := sync.POfsEst + headerOffset
	if base < 0 || base+8*n > len(samples) {
		return nil
	}

	// Demodulate the eight raw header symbols. The per-chip sample is
	// taken at chip-internal index 1, matching the transmitter's
	// alignment convention.
	rawSymbols := make([]int, 0, 8)
	var sc demodScratch
	ofs := headerOffset
	for sym := 0; sym < 8; sym++ {
		kVal, ok := demodChipSymbol(samples, sync.POfsEst, ofs, sync.CFOHz, d.downchirp, d.osFactor, k, 1, fs, &sc)
		if !ok {
			return nil
		}
		rawSymbols = append(rawSymbols, kVal)
		ofs += n
	}

	// The header always runs at sf-2 bits per symbol and needs rows for
	// three nibbles plus two checksum nibbles.
	ppm := d.sf - 2
	if ppm < 1 {
		ppm = 1
	}
	const nSymHdr = 8
	if ppm < 5 {
		return nil
	}

	gray := codec.GrayTable(ppm)
	mask := 1<<uint(ppm) - 1

	// Raw symbol to bits: divide-by-four bin mapping, Gray map, then ppm
	// bits MSB-first per symbol.
	bitsEst := make([]uint8, ppm*nSymHdr)
	for sym := 0; sym < nSymHdr; sym++ {
		bin := int(math.Round(float64(k-1-rawSymbols[sym]) / 4))
		bin = ((bin % (1 << uint(ppm))) + (1 << uint(ppm))) % (1 << uint(ppm))
		decoded := gray[bin&mask]
		bits.FromUintMSB(decoded, ppm, bitsEst[sym*ppm:(sym+1)*ppm])
	}

	// Column-major symbol matrix, descrambled with the column-dependent
	// circular shift, then flipped top to bottom.
	rows := make([]uint8, ppm)
	for ii := 0; ii < ppm; ii++ {
		var row uint8
		for jj := 0; jj < nSymHdr; jj++ {
			bit := bitsEst[jj*ppm+(ii+jj)%ppm]
			row |= (bit & 1) << uint(jj)
		}
		rows[ppm-1-ii] = row
	}

	// Each row is an (8,4) codeword with the data nibble in the low bits.
	nibbles := make([]uint8, ppm)
	for i, row := range rows {
		nibble, ok := codec.HammingDecode(row, codec.CR48)
		if !ok {
			return nil
		}
		nibbles[i] = nibble
	}

	n0, n1, n2 := nibbles[0], nibbles[1], nibbles[2]
	length := int(n0)<<4 | int(n1)
	fcsRx := nibbles[3]<<4 | nibbles[4]
	chkRx := fcsRx & 0x1F
	chkCalc := codec.HeaderCRC5(n0, n1, n2) & 0x1F

	hdr := &Header{
		RawSymbols: rawSymbols,
		FCSOK:      chkRx == chkCalc,
	}
	if hdr.FCSOK {
		hdr.PayloadLength = length
		hdr.HasCRC = n2&1 != 0
		hdr.CR = int(n2>>1) & 7
		if extra := ppm*4 - 20; extra > 0 {
			hdr.PayloadHeaderBits = make([]uint8, 0, extra)
			for i := 5; i < ppm && len(hdr.PayloadHeaderBits) < extra; i++ {
				for j := 0; j < 4 && len(hdr.PayloadHeaderBits) < extra; j++ {
					hdr.PayloadHeaderBits = append(hdr.PayloadHeaderBits, (nibbles[i]>>uint(j))&1)
				}
			}
		}
	}
	return hdr
}
