package frame

import (
	"math"
	"math/cmplx"

	"github.com/mewkiz/lora/internal/dsp"
)

// PreambleDetection is the output of a matched-filter preamble search.
type PreambleDetection struct {
	// Sample offset of the best correlation window.
	Offset int
	// Normalized correlation magnitude at Offset; close to 1 for a clean
	// full-scale upchirp.
	Metric float64
}

// PreambleDetector locates the repeating preamble upchirps by correlating a
// reference upchirp against the input. The search runs in two passes: a
// coarse sweep at a quarter-symbol stride, then a per-sample refinement
// around the coarse winner.
type PreambleDetector struct {
	sf           int
	bandwidthHz  int
	sampleRateHz int
	sps          int
	upchirp      []complex128
}

// NewPreambleDetector creates a detector for the given LoRa parameters.
func NewPreambleDetector(sf, bandwidthHz, sampleRateHz int) (*PreambleDetector, error) {
	up, err := dsp.Upchirp(sf, bandwidthHz, sampleRateHz)
	if err != nil {
		return nil, err
	}
	return &PreambleDetector{
		sf:           sf,
		bandwidthHz:  bandwidthHz,
		sampleRateHz: sampleRateHz,
		sps:          len(up),
		upchirp:      up,
	}, nil
}

// SamplesPerSymbol returns the symbol length in samples.
func (d *PreambleDetector) SamplesPerSymbol() int {
	return d.sps
}

// correlate computes |sum(conj(ref[i]) * x[pos+i])| / sps.
func (d *PreambleDetector) correlate(samples []complex64, pos int) float64 {
	var acc complex128
	for i, ref := range d.upchirp {
		s := samples[pos+i]
		acc += cmplx.Conj(ref) * complex(float64(real(s)), float64(imag(s)))
	}
	return cmplx.Abs(acc) / float64(d.sps)
}

// Detect runs the matched-filter search and returns the best offset with
// its metric, or nil when samples is shorter than one symbol. Ties within
// 1e-9 prefer the earlier offset for stability.
func (d *PreambleDetector) Detect(samples []complex64) *PreambleDetection {
	if len(samples) < d.sps {
		return nil
	}

	step := d.sps / 4
	if step < 1 {
		step = 1
	}
	coarseOffset := 0
	coarseMetric := -1.0
	for pos := 0; pos+d.sps <= len(samples); pos += step {
		metric := d.correlate(samples, pos)
		if metric > coarseMetric+1e-9 {
			coarseMetric = metric
			coarseOffset = pos
		}
	}

	// Refine one coarse step around the winner at stride 1.
	start := coarseOffset - step
	if start < 0 {
		start = 0
	}
	end := coarseOffset + step
	if max := len(samples) - d.sps; end > max {
		end = max
	}

	bestOffset := coarseOffset
	bestMetric := coarseMetric
	for pos := start; pos <= end; pos++ {
		metric := d.correlate(samples, pos)
		if metric > bestMetric+1e-9 || (math.Abs(metric-bestMetric) <= 1e-9 && pos < bestOffset) {
			bestMetric = metric
			bestOffset = pos
		}
	}

	return &PreambleDetection{Offset: bestOffset, Metric: bestMetric}
}
