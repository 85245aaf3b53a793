package frame

import (
	"math"

	"github.com/mewkiz/lora/internal/dsp"
)

// Number of interleaved scan phases. The synchronizer advances the window
// by sps/syncPhases samples per iteration and keeps per-phase peak
// histories, so entries within one phase are a full symbol apart.
const syncPhases = 2

// FFT oversampling factor for the fine sub-bin peak search.
const fineOversample = 4

// Depth of the per-phase peak history. The preamble match predicate looks
// this far back across the preamble/sync/downchirp transition.
const historyDepth = 6

// Synchronizer locates the LoRa preamble structure in a buffered sample
// sequence and estimates the carrier frequency offset and the fractional
// symbol timing.
type Synchronizer struct {
	sf           int
	bandwidthHz  int
	sampleRateHz int
	osFactor     int
	chips        int
	sps          int

	upchirp   []complex128
	downchirp []complex128
}

// NewSynchronizer creates a frame synchronizer for the given parameters.
func NewSynchronizer(sf, bandwidthHz, sampleRateHz int) (*Synchronizer, error) {
	up, err := dsp.Upchirp(sf, bandwidthHz, sampleRateHz)
	if err != nil {
		return nil, err
	}
	down, err := dsp.Downchirp(sf, bandwidthHz, sampleRateHz)
	if err != nil {
		return nil, err
	}
	osFactor := sampleRateHz / bandwidthHz
	chips := 1 << uint(sf)
	return &Synchronizer{
		sf:           sf,
		bandwidthHz:  bandwidthHz,
		sampleRateHz: sampleRateHz,
		osFactor:     osFactor,
		chips:        chips,
		sps:          chips * osFactor,
		upchirp:      up,
		downchirp:    down,
	}, nil
}

// SamplesPerSymbol returns the symbol length in samples.
func (s *Synchronizer) SamplesPerSymbol() int {
	return s.sps
}

// centerBin wraps a spectral index into the symmetric interval
// (-period/2, period/2] after the receiver's -1 bin alignment.
func centerBin(idx, period float64) float64 {
	return dsp.WrapMod(idx-1+period/2, period) - period/2
}

// finePeak demodulates one symbol starting at start with the given
// dechirp reference, computes a 4x zero-padded spectrum and returns the
// sub-bin peak position centered around 0.
func (s *Synchronizer) finePeak(samples []complex64, start int, ref []complex128, scratch []complex128) (float64, []complex128) {
	n := s.sps
	seg := make([]complex128, n)
	for i := 0; i < n; i++ {
		c := samples[start+i]
		seg[i] = complex(float64(real(c)), float64(imag(c))) * ref[i]
	}
	spec, err := dsp.Spectrum(seg, n*fineOversample, false, scratch)
	if err != nil {
		return 0, scratch
	}
	idx := dsp.ArgmaxAbs(spec)
	peak := dsp.ParabolicPeak(spec, idx)
	return centerBin(peak, float64(n*fineOversample)), spec
}

// Synchronize slides a one-symbol window across samples at half-symbol
// steps, dechirping with both references and tracking the recent peak bins
// per phase. When the histories match the expected preamble pattern, a fine
// search with 4x zero-padding and parabolic interpolation refines the up
// and down chirp peaks into CFO and timing estimates.
//
// The pattern constants are part of the detection contract: the 8-bin
// steps in the upchirp history encode the sync-word bin drift seen when
// stepping by half symbols, and the best window start sits 11 symbols past
// the preamble start. Returns nil when no window matches.
func (s *Synchronizer) Synchronize(samples []complex64) *SyncResult {
	n := s.sps
	if len(samples) < n {
		return nil
	}

	nrise := riseSamples(s.sampleRateHz)

	// Peak histories: two orientations per phase, most recent first.
	hist := make([][historyDepth]float64, 2*syncPhases)
	for i := range hist {
		for j := range hist[i] {
			hist[i][j] = -1
		}
	}

	winU := make([]complex128, n)
	winD := make([]complex128, n)
	var specScratchU, specScratchD, fineScratch []complex128

	sOfs := 0
	phase := 0
	found := false
	bestMetric := math.Inf(1)
	bestSOfs := 0
	bestMU0 := 0.0
	bestMD0 := 0.0

	step := n / syncPhases

	for sOfs+n <= len(samples) {
		// Dechirp the window both ways: an upchirp turns into a tone
		// under the downchirp reference and vice versa.
		for i := 0; i < n; i++ {
			c := samples[sOfs+i]
			cd := complex(float64(real(c)), float64(imag(c)))
			winU[i] = cd * s.downchirp[i]
			winD[i] = cd * s.upchirp[i]
		}

		specU, err := dsp.Spectrum(winU, n, false, specScratchU)
		if err != nil {
			return nil
		}
		specScratchU = specU
		specD, err := dsp.Spectrum(winD, n, false, specScratchD)
		if err != nil {
			return nil
		}
		specScratchD = specD

		mu := centerBin(float64(dsp.ArgmaxAbs(specU)), float64(n))
		md := centerBin(float64(dsp.ArgmaxAbs(specD)), float64(n))

		vecU := &hist[phase*2]
		vecD := &hist[phase*2+1]
		for i := historyDepth - 1; i > 0; i-- {
			vecU[i] = vecU[i-1]
			vecD[i] = vecD[i-1]
		}
		vecU[0] = mu
		vecD[0] = md

		conditionOK := math.Abs(vecD[0]-vecD[1]) <= 1 &&
			math.Abs(vecU[2]-vecU[3]-8) <= 1 &&
			math.Abs(vecU[3]-vecU[4]-8) <= 1 &&
			math.Abs(vecU[4]-vecU[5]) <= 1

		if conditionOK && sOfs >= 6*n {
			// Lower is better: older down-chirp peak plus the oldest
			// up-chirp peak, both near zero on a clean preamble.
			metric := math.Abs(vecD[1]) + math.Abs(vecU[5])
			if metric < bestMetric {
				bestMetric = metric

				// Fine search over two preamble upchirps and two
				// downchirps around the candidate.
				mu0 := 0.0
				fineValid := true
				for i := 1; i <= 2; i++ {
					start := sOfs - (4+i)*n
					if start < 0 {
						fineValid = false
						break
					}
					var peak float64
					peak, fineScratch = s.finePeak(samples, start, s.downchirp, fineScratch)
					mu0 += peak
				}
				if !fineValid {
					break
				}
				mu0 /= 2

				md0 := 0.0
				for i := 1; i <= 2; i++ {
					start := sOfs - (i-1)*n
					if start < 0 {
						fineValid = false
						break
					}
					var peak float64
					peak, fineScratch = s.finePeak(samples, start, s.upchirp, fineScratch)
					md0 += peak
				}
				if !fineValid {
					break
				}
				md0 /= 2

				bestSOfs = sOfs
				bestMU0 = mu0
				bestMD0 = md0
				found = true
			}
		}

		phase = (phase + 1) % syncPhases
		sOfs += step
	}

	if !found {
		return nil
	}

	// Convert sub-bin peaks into estimates: the mean of the up and down
	// peaks carries the frequency offset, their difference the timing.
	cfoHz := (bestMU0 + bestMD0) / 2 * float64(s.bandwidthHz) / float64(s.chips) / fineOversample
	tEst := (bestMD0-bestMU0)*float64(s.osFactor)/(2*fineOversample) +
		float64(bestSOfs) - 11*float64(n) - float64(nrise)

	preamble := bestSOfs - 11*n
	if preamble < 0 {
		preamble = 0
	}
	return &SyncResult{
		PreambleOffset: preamble,
		POfsEst:        int(math.Ceil(tEst)),
		CFOHz:          cfoHz,
	}
}
