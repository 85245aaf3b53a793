package frame

import (
	"math"

	"github.com/mewkiz/lora/internal/bits"
	"github.com/mewkiz/lora/internal/codec"
	"github.com/mewkiz/lora/internal/dsp"
)

// fakeHeaderBits is prefixed to the payload bit stream in implicit header
// mode in place of the undecoded first block, so the whitening LFSR
// advances exactly as it does in explicit mode. The values are part of the
// decode contract; changing them corrupts the payload.
var fakeHeaderBits = []uint8{1, 1, 1, 0, 1, 1, 0, 1, 1, 1, 0, 1, 1, 1, 0, 1, 0, 0, 0, 0}

// Payload is the outcome of payload demodulation and decoding.
type Payload struct {
	// Demodulated raw symbol bins.
	RawSymbols []int
	// Decoded message bytes (payload only, without the trailing CRC).
	Bytes []byte
	// True when no CRC is present or the CRC-16 matches.
	CRCOK bool
}

// PayloadDecoder demodulates the payload symbols and undoes the LoRa
// payload processing chain: Gray mapping with optional LDRO scaling, block
// deinterleaving, whitening and the trailing CRC-16.
type PayloadDecoder struct {
	sf           int
	bandwidthHz  int
	sampleRateHz int
	osFactor     int
	chips        int
	sps          int
	downchirp    []complex128
}

// NewPayloadDecoder creates a payload decoder for the given parameters.
func NewPayloadDecoder(sf, bandwidthHz, sampleRateHz int) (*PayloadDecoder, error) {
	down, err := dsp.Downchirp(sf, bandwidthHz, sampleRateHz)
	if err != nil {
		return nil, err
	}
	osFactor := sampleRateHz / bandwidthHz
	chips := 1 << uint(sf)
	return &PayloadDecoder{
		sf:           sf,
		bandwidthHz:  bandwidthHz,
		sampleRateHz: sampleRateHz,
		osFactor:     osFactor,
		chips:        chips,
		sps:          chips * osFactor,
		downchirp:    down,
	}, nil
}

// dataRateOptimization returns 1 when LDRO reduces the bits per symbol.
func dataRateOptimization(sf int, ldroEnabled bool) int {
	if ldroEnabled || sf >= 11 {
		return 1
	}
	return 0
}

// clampCR bounds a coding-rate index to [1,4].
func clampCR(cr int) int {
	if cr < 1 {
		return 1
	}
	if cr > 4 {
		return 4
	}
	return cr
}

// SymbolCount returns the number of payload symbols implied by the header
// fields and the LDRO setting.
//
// In explicit mode this is the LoRa formula
//
//	ceil((8*L - 4*sf + 28 + 16*crc) / (4*(sf-2*de))) * (4+cr)
//
// with the numerator clamped at zero. In implicit mode the twenty header
// bits are still accounted to the skipped first block:
//
//	ceil((8*L + 16*crc - 20) / (4*(sf-2*de))) * (4+cr)
func (d *PayloadDecoder) SymbolCount(hdr *Header, ldroEnabled bool) int {
	de := dataRateOptimization(d.sf, ldroEnabled)
	cr := clampCR(hdr.CR)
	crc := 0
	if hdr.HasCRC {
		crc = 1
	}
	payloadLen := hdr.PayloadLength
	if payloadLen < 0 {
		payloadLen = 0
	}
	symPerBlock := 4 + cr

	nBitsBlk := (d.sf - 2*de) * 4
	if hdr.Implicit {
		nBitsTot := 8*payloadLen + 16*crc
		nBlk := (nBitsTot - 20 + nBitsBlk - 1) / nBitsBlk
		if nBlk < 0 {
			nBlk = 0
		}
		return symPerBlock * nBlk
	}

	denom := nBitsBlk
	if denom < 1 {
		denom = 1
	}
	numerator := 8*payloadLen - 4*d.sf + 28 + 16*crc
	if numerator < 0 {
		numerator = 0
	}
	return symPerBlock * ((numerator + denom - 1) / denom)
}

// Decode demodulates and decodes the payload. Requires a valid header with
// a positive payload length. Returns nil when the sample window runs out of
// range or the bit accounting does not line up; a CRC-16 mismatch is not an
// error and is reported through CRCOK with the bytes still populated.
func (d *PayloadDecoder) Decode(samples []complex64, sync *SyncResult, hdr *Header, ldroEnabled bool) *Payload {
	if !hdr.FCSOK || hdr.PayloadLength <= 0 {
		return nil
	}
	cr := clampCR(hdr.CR)
	n := d.sps
	k := d.chips
	fs := float64(d.sampleRateHz)
	symbolOffset := PayloadOffsetSamples(d.sf, d.bandwidthHz, d.sampleRateHz)

	nPayloadSyms := d.SymbolCount(hdr, ldroEnabled)
	if nPayloadSyms <= 0 {
		return nil
	}

	// Demodulate the raw symbol bins. The payload path samples each chip
	// at its first sample (no DC-avoidance offset needed here).
	rawSymbols := make([]int, 0, nPayloadSyms)
	var sc demodScratch
	ofs := symbolOffset
	for sym := 0; sym < nPayloadSyms; sym++ {
		kVal, ok := demodChipSymbol(samples, sync.POfsEst, ofs, sync.CFOHz, d.downchirp, d.osFactor, k, 0, fs, &sc)
		if !ok {
			return nil
		}
		rawSymbols = append(rawSymbols, kVal)
		ofs += n
	}

	de := dataRateOptimization(d.sf, ldroEnabled)
	ppm := d.sf - 2*de
	nSymBlk := 4 + cr
	nBlkTot := len(rawSymbols) / nSymBlk
	nBitsBlk := ppm * 4

	// The bit stream starts with the header-provided prefix so that
	// dewhitening stays aligned with the transmitter.
	var payloadBits []uint8
	if hdr.Implicit {
		payloadBits = make([]uint8, 0, len(fakeHeaderBits)+nBlkTot*nBitsBlk)
		payloadBits = append(payloadBits, fakeHeaderBits...)
	} else {
		payloadBits = make([]uint8, 0, len(hdr.PayloadHeaderBits)+nBlkTot*nBitsBlk)
		payloadBits = append(payloadBits, hdr.PayloadHeaderBits...)
	}

	gray := codec.GrayTable(ppm)
	powScale := math.Pow(2, float64(2*de))
	symBits := make([]uint8, ppm*nSymBlk)

	for blk := 0; blk < nBlkTot; blk++ {
		// Per symbol: DE-scaled bin mapping, Gray map, ppm bits MSB-first.
		for sym := 0; sym < nSymBlk; sym++ {
			kVal := rawSymbols[blk*nSymBlk+sym]
			numerator := float64(k) - 2 - float64(kVal)
			bin := int(math.Round(numerator/powScale)) % (1 << uint(ppm))
			if bin < 0 {
				bin += 1 << uint(ppm)
			}
			decoded := gray[bin]
			bits.FromUintMSB(decoded, ppm, symBits[sym*ppm:(sym+1)*ppm])
		}

		// Deinterleave with the column-dependent circular shift, flip the
		// rows, and keep the four data bits of every row. The parity
		// columns are dropped; the block code only narrows the symbol
		// alphabet on the transmit side.
		for ii := ppm - 1; ii >= 0; ii-- {
			for jj := 0; jj < 4; jj++ {
				payloadBits = append(payloadBits, symBits[jj*ppm+(ii+jj)%ppm])
			}
		}
	}

	// Undo whitening, then pack LSB-first into bytes.
	payloadBits = codec.Dewhiten(payloadBits)
	packed := bits.PackLSBFirst(payloadBits)
	if len(packed) < hdr.PayloadLength {
		return nil
	}
	message := make([]byte, hdr.PayloadLength)
	copy(message, packed)

	crcOK := true
	if hdr.HasCRC {
		messageBitCount := hdr.PayloadLength * 8
		if len(payloadBits) < messageBitCount+16 || hdr.PayloadLength < 5 {
			crcOK = false
		} else {
			calc := codec.PayloadCRC16(payloadBits, messageBitCount)
			for i := 0; i < 16; i++ {
				if payloadBits[messageBitCount+i]&1 != calc[i] {
					crcOK = false
					break
				}
			}
		}
	}

	return &Payload{
		RawSymbols: rawSymbols,
		Bytes:      message,
		CRCOK:      crcOK,
	}
}
