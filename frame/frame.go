// Package frame implements the per-stage LoRa PHY receive pipeline:
// preamble detection, frame synchronization with CFO/STO estimation,
// sync-word validation, header decoding and payload decoding.
//
// All stages operate on complex baseband IQ samples at an integer multiple
// of the signal bandwidth. A frame as seen by the receiver is:
//
//	8 preamble upchirps
//	2 sync-word upchirps (the network ID nibbles, shifted by 8 bins each)
//	2.25 downchirps
//	8 header symbols (explicit header mode)
//	payload symbols
//
// Symbol demodulation dechirps with a reference downchirp, reduces the
// window to K = 2^sf chips, and locates the resulting tone with a K-point
// inverse FFT.
package frame

import (
	"math"

	"github.com/mewkiz/lora/internal/dsp"
)

// SyncResult reports where a frame was found and how far off the local
// oscillator and sampling clock are.
type SyncResult struct {
	// Coarse sample index of the preamble start, clamped to be
	// non-negative.
	PreambleOffset int
	// Fine-aligned start offset in samples; the header and payload
	// decoders index relative to this. May be negative.
	POfsEst int
	// Carrier frequency offset estimate in Hz.
	CFOHz float64
}

// riseSeconds is the assumed analog front-end rise time. Symbol offsets
// measured from the preamble start are padded by this many samples.
const riseSeconds = 50e-6

// riseSamples returns the rise-time padding in samples for the given rate.
func riseSamples(sampleRateHz int) int {
	return int(math.Ceil(riseSeconds * float64(sampleRateHz)))
}

// HeaderOffsetSamples returns the distance in samples from the preamble
// start to the first header symbol: the rise padding, 12 symbols of
// preamble structure, and a quarter-symbol guard.
func HeaderOffsetSamples(sf, bandwidthHz, sampleRateHz int) int {
	sps := (1 << uint(sf)) * (sampleRateHz / bandwidthHz)
	return riseSamples(sampleRateHz) + 12*sps + sps/4
}

// PayloadOffsetSamples returns the distance in samples from the preamble
// start to the first payload symbol. The payload always begins eight
// symbols after the header position, in implicit header mode as well: the
// first interleaver block occupies that span whether or not it carries an
// explicit header.
func PayloadOffsetSamples(sf, bandwidthHz, sampleRateHz int) int {
	sps := (1 << uint(sf)) * (sampleRateHz / bandwidthHz)
	return HeaderOffsetSamples(sf, bandwidthHz, sampleRateHz) + 8*sps
}

// demodScratch holds buffers reused across per-symbol demodulations so the
// hot path does not allocate.
type demodScratch struct {
	win  []complex128
	dec  []complex128
	spec []complex128
}

// demodChipSymbol recovers one raw symbol bin from samples. The symbol
// window starts at base+ofs; base is the fine-aligned frame start (possibly
// negative) and ofs the symbol position driving the CFO phase ramp. One
// sample per chip is taken at chipOffset within the chip, clamped near the
// window tail. Returns ok=false when the window reaches outside samples.
func demodChipSymbol(samples []complex64, base, ofs int, cfoHz float64, downchirp []complex128, osFactor, chips, chipOffset int, fs float64, sc *demodScratch) (k int, ok bool) {
	sps := chips * osFactor
	if cap(sc.win) < sps {
		sc.win = make([]complex128, sps)
	}
	sc.win = sc.win[:sps]

	ts := 1 / fs
	for n := 0; n < sps; n++ {
		idx := base + ofs + n
		if idx < 0 || idx >= len(samples) {
			return 0, false
		}
		angle := -2 * math.Pi * cfoHz * ts * float64(ofs+n)
		rot := complex(math.Cos(angle), math.Sin(angle))
		s := samples[idx]
		sc.win[n] = complex(float64(real(s)), float64(imag(s))) * downchirp[n] * rot
	}

	if cap(sc.dec) < chips {
		sc.dec = make([]complex128, chips)
	}
	sc.dec = sc.dec[:chips]
	for chip := 0; chip < chips; chip++ {
		idx := chipOffset + chip*osFactor
		if chipOffset > 0 && idx >= sps-1 {
			// Clamp near the tail; only reachable at os<=2, where the
			// DC-avoidance offset puts the last chip at or past the
			// window's final sample.
			idx = sps - 2
		}
		sc.dec[chip] = sc.win[idx]
	}

	spec, err := dsp.Spectrum(sc.dec, chips, true, sc.spec)
	if err != nil {
		return 0, false
	}
	sc.spec = spec
	pos := dsp.ArgmaxAbs(spec)
	k = pos - 1
	if k < 0 {
		k += chips
	}
	return k, true
}
