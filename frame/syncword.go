package frame

import (
	"math"
	"math/cmplx"

	"github.com/mewkiz/lora/internal/dsp"
)

// Symbol counts checked by the sync-word validator.
const (
	preambleSymCount = 8
	syncSymCount     = 2
)

// Circular bin distance tolerated between an observed symbol and its
// expected position.
const syncBinTolerance = 2

// SyncWordDetection reports the demodulated preamble and sync symbols. The
// bins and magnitudes cover the eight preamble symbols followed by the two
// sync symbols.
type SyncWordDetection struct {
	PreambleOffset int
	SymbolBins     []int
	Magnitudes     []float64
	PreambleOK     bool
	SyncOK         bool
}

// SyncWordDetector validates the two sync symbols that follow the
// preamble. The preamble symbols double as a reference: their most common
// bin gives the constant demodulation offset, and the sync symbols must
// then land on the bins encoded by the expected sync-word nibbles.
type SyncWordDetector struct {
	sf           int
	bandwidthHz  int
	sampleRateHz int
	osFactor     int
	chips        int
	sps          int
	syncWord     uint8
	downchirp    []complex128
}

// NewSyncWordDetector creates a validator expecting the given 8-bit sync
// word.
func NewSyncWordDetector(sf, bandwidthHz, sampleRateHz int, syncWord uint8) (*SyncWordDetector, error) {
	down, err := dsp.Downchirp(sf, bandwidthHz, sampleRateHz)
	if err != nil {
		return nil, err
	}
	osFactor := sampleRateHz / bandwidthHz
	chips := 1 << uint(sf)
	return &SyncWordDetector{
		sf:           sf,
		bandwidthHz:  bandwidthHz,
		sampleRateHz: sampleRateHz,
		osFactor:     osFactor,
		chips:        chips,
		sps:          chips * osFactor,
		syncWord:     syncWord,
		downchirp:    down,
	}, nil
}

// SamplesPerSymbol returns the symbol length in samples.
func (d *SyncWordDetector) SamplesPerSymbol() int {
	return d.sps
}

// demodSymbol demodulates the symbol at symIndex symbols past
// preambleOffset. Unlike the data path, each chip is folded by summing all
// its oversampled samples, which keeps the peak magnitude proportional to
// the full symbol energy; the magnitude is reported for diagnostics.
func (d *SyncWordDetector) demodSymbol(samples []complex64, symIndex, preambleOffset int, cfoHz float64, sc *demodScratch) (bin int, magnitude float64) {
	start := preambleOffset + symIndex*d.sps
	if cap(sc.win) < d.sps {
		sc.win = make([]complex128, d.sps)
	}
	sc.win = sc.win[:d.sps]

	ts := 1 / float64(d.sampleRateHz)
	for i := 0; i < d.sps; i++ {
		angle := -2 * math.Pi * cfoHz * ts * float64(i)
		rot := complex(math.Cos(angle), math.Sin(angle))
		s := samples[start+i]
		sc.win[i] = complex(float64(real(s)), float64(imag(s))) * d.downchirp[i] * rot
	}

	if cap(sc.dec) < d.chips {
		sc.dec = make([]complex128, d.chips)
	}
	sc.dec = sc.dec[:d.chips]
	for chip := 0; chip < d.chips; chip++ {
		base := chip * d.osFactor
		var acc complex128
		for j := 0; j < d.osFactor; j++ {
			acc += sc.win[base+j]
		}
		sc.dec[chip] = acc
	}

	spec, err := dsp.Spectrum(sc.dec, d.chips, true, sc.spec)
	if err != nil {
		return 0, 0
	}
	sc.spec = spec

	bestK := 0
	bestMag := 0.0
	for k, v := range spec {
		if mag := cmplx.Abs(v); mag > bestMag {
			bestMag = mag
			bestK = k
		}
	}
	return (bestK + d.chips - 1) % d.chips, bestMag
}

// circularDist returns the circular distance between two bins modulo the
// chip count.
func (d *SyncWordDetector) circularDist(a, b int) int {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if wrap := d.chips - diff; wrap < diff {
		return wrap
	}
	return diff
}

// Analyze demodulates the eight preamble symbols and the two sync symbols
// starting at preambleOffset, normalizes every bin by the preamble mode,
// and checks the sync symbols against the expected nibble-shifted bins.
// Each sync symbol may match as-is or as its complement K-b, whichever is
// closer. Returns nil when preambleOffset is negative or the ten symbols do
// not fit in samples.
func (d *SyncWordDetector) Analyze(samples []complex64, preambleOffset int, cfoHz float64) *SyncWordDetection {
	if preambleOffset < 0 {
		return nil
	}
	needed := preambleOffset + (preambleSymCount+syncSymCount)*d.sps
	if len(samples) < needed {
		return nil
	}

	det := &SyncWordDetection{
		PreambleOffset: preambleOffset,
		SymbolBins:     make([]int, 0, preambleSymCount+syncSymCount),
		Magnitudes:     make([]float64, 0, preambleSymCount+syncSymCount),
	}

	var sc demodScratch
	preBins := make([]int, 0, preambleSymCount)
	for sym := 0; sym < preambleSymCount; sym++ {
		bin, mag := d.demodSymbol(samples, sym, preambleOffset, cfoHz, &sc)
		preBins = append(preBins, bin)
		det.Magnitudes = append(det.Magnitudes, mag)
	}

	// The constant demodulation offset is the mode of the preamble bins.
	offsetEst := 0
	bestCount := 0
	for _, val := range preBins {
		count := 0
		for _, other := range preBins {
			if other == val {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			offsetEst = val
		}
	}

	det.PreambleOK = true
	for _, bin := range preBins {
		norm := (bin + d.chips - offsetEst) % d.chips
		det.SymbolBins = append(det.SymbolBins, norm)
		if d.circularDist(norm, 0) > syncBinTolerance {
			det.PreambleOK = false
		}
	}

	// Expected sync bins: the word's nibbles shifted left by three bits,
	// eight bins per nibble step.
	expected := [syncSymCount]int{
		int((d.syncWord>>4)&0xF) << 3,
		int(d.syncWord&0xF) << 3,
	}

	det.SyncOK = true
	for idx := 0; idx < syncSymCount; idx++ {
		raw, mag := d.demodSymbol(samples, preambleSymCount+idx, preambleOffset, cfoHz, &sc)
		bin := (raw + d.chips - offsetEst) % d.chips
		exp := expected[idx] % d.chips
		comp := (d.chips - bin) % d.chips
		if d.circularDist(comp, exp) < d.circularDist(bin, exp) {
			bin = comp
		}
		det.SymbolBins = append(det.SymbolBins, bin)
		det.Magnitudes = append(det.Magnitudes, mag)
		if d.circularDist(bin, exp) > syncBinTolerance {
			det.SyncOK = false
		}
	}

	return det
}
