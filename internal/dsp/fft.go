package dsp

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
)

// TransformPow2 runs an in-place radix-2 Cooley-Tukey transform on data,
// whose length must be a power of two. The forward direction uses the -2*pi
// angular factor, the inverse +2*pi. Neither direction applies 1/N scaling;
// callers needing a unitary round trip scale explicitly. A zero-length
// buffer is a no-op.
func TransformPow2(data []complex128, inverse bool) error {
	n := len(data)
	if n == 0 {
		return nil
	}
	if n&(n-1) != 0 {
		return errors.Errorf("dsp.TransformPow2: length must be a power of two; got %d", n)
	}

	// Bit-reversed ordering.
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
		if i < j {
			data[i], data[j] = data[j], data[i]
		}
	}

	baseAngle := -2 * math.Pi
	if inverse {
		baseAngle = 2 * math.Pi
	}
	for length := 2; length <= n; length <<= 1 {
		angle := baseAngle / float64(length)
		wlen := complex(math.Cos(angle), math.Sin(angle))
		for i := 0; i < n; i += length {
			w := complex(1, 0)
			half := length >> 1
			for k := 0; k < half; k++ {
				u := data[i+k]
				v := data[i+k+half] * w
				data[i+k] = u + v
				data[i+k+half] = u - v
				w *= wlen
			}
		}
	}
	return nil
}

// Spectrum copies input into scratch, zero-pads to fftLen and transforms in
// place, returning the scratch slice. Call sites reuse the scratch buffer
// across symbols to keep the demodulation hot path allocation-free.
func Spectrum(input []complex128, fftLen int, inverse bool, scratch []complex128) ([]complex128, error) {
	if cap(scratch) < fftLen {
		scratch = make([]complex128, fftLen)
	}
	scratch = scratch[:fftLen]
	n := copy(scratch, input)
	for i := n; i < fftLen; i++ {
		scratch[i] = 0
	}
	if err := TransformPow2(scratch, inverse); err != nil {
		return nil, err
	}
	return scratch, nil
}

// ArgmaxAbs returns the index of the element with the largest magnitude,
// preferring the earliest index on exact ties.
func ArgmaxAbs(vec []complex128) int {
	idx := 0
	maxMag := 0.0
	for i, v := range vec {
		mag := cmplx.Abs(v)
		if mag > maxMag {
			maxMag = mag
			idx = i
		}
	}
	return idx
}

// WrapMod wraps value into [0, period).
func WrapMod(value, period float64) float64 {
	r := math.Mod(value, period)
	if r < 0 {
		r += period
	}
	return r
}

// ParabolicPeak refines an integer spectral peak at idx to a fractional
// position using three-point parabolic interpolation over magnitudes. When
// the curvature denominator is below 1e-9 the integer peak is returned
// unchanged, which avoids NaN on flat spectra.
func ParabolicPeak(spec []complex128, idx int) float64 {
	peak := float64(idx)
	if idx > 0 && idx+1 < len(spec) {
		ym1 := cmplx.Abs(spec[idx-1])
		y0 := cmplx.Abs(spec[idx])
		yp1 := cmplx.Abs(spec[idx+1])
		denom := ym1 - 2*y0 + yp1
		if math.Abs(denom) > 1e-9 {
			peak += 0.5 * (ym1 - yp1) / denom
		}
	}
	return peak
}
