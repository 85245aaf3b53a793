package dsp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformPow2RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{1, 2, 8, 64, 512} {
		data := make([]complex128, n)
		orig := make([]complex128, n)
		for i := range data {
			data[i] = complex(rng.NormFloat64(), rng.NormFloat64())
			orig[i] = data[i]
		}

		require.NoError(t, TransformPow2(data, false))
		require.NoError(t, TransformPow2(data, true))

		// Forward then inverse yields x[n] * N without scaling.
		for i := range data {
			assert.InDelta(t, real(orig[i])*float64(n), real(data[i]), 1e-9)
			assert.InDelta(t, imag(orig[i])*float64(n), imag(data[i]), 1e-9)
		}
	}
}

func TestTransformPow2KnownSpectrum(t *testing.T) {
	// DFT of [1, 0, 0, 0] is flat ones.
	data := []complex128{1, 0, 0, 0}
	require.NoError(t, TransformPow2(data, false))
	for i := range data {
		assert.InDelta(t, 1.0, real(data[i]), 1e-12)
		assert.InDelta(t, 0.0, imag(data[i]), 1e-12)
	}

	// A single-cycle complex tone concentrates in bin 1 under the forward
	// sign convention exp(-2*pi*i*k*n/N) applied to exp(+2*pi*i*n/N).
	data = []complex128{1, complex(0, 1), -1, complex(0, -1)}
	require.NoError(t, TransformPow2(data, false))
	assert.InDelta(t, 0.0, real(data[0]), 1e-12)
	assert.InDelta(t, 4.0, real(data[1]), 1e-12)
	assert.InDelta(t, 0.0, real(data[2]), 1e-12)
	assert.InDelta(t, 0.0, real(data[3]), 1e-12)
}

func TestTransformPow2Errors(t *testing.T) {
	assert.Error(t, TransformPow2(make([]complex128, 3), false))
	assert.Error(t, TransformPow2(make([]complex128, 12), true))
	// Zero length is a no-op.
	assert.NoError(t, TransformPow2(nil, false))
}

func TestSpectrumZeroPads(t *testing.T) {
	input := []complex128{1, 1}
	spec, err := Spectrum(input, 8, false, nil)
	require.NoError(t, err)
	require.Len(t, spec, 8)
	// DC bin sums the input.
	assert.InDelta(t, 2.0, real(spec[0]), 1e-12)
	// Input must be untouched.
	assert.Equal(t, complex128(1), input[0])
}

func TestArgmaxAbs(t *testing.T) {
	vec := []complex128{1, complex(0, -3), 2, complex(2, 2)}
	assert.Equal(t, 1, ArgmaxAbs(vec))
	assert.Equal(t, 0, ArgmaxAbs([]complex128{1, 1, 1}))
	assert.Equal(t, 0, ArgmaxAbs(nil))
}

func TestWrapMod(t *testing.T) {
	assert.InDelta(t, 1.0, WrapMod(513, 512), 1e-12)
	assert.InDelta(t, 511.0, WrapMod(-1, 512), 1e-12)
	assert.InDelta(t, 0.0, WrapMod(1024, 512), 1e-12)
}

func TestParabolicPeakGuard(t *testing.T) {
	// Flat spectrum: the curvature denominator vanishes and the integer
	// peak must come back unchanged instead of NaN.
	flat := []complex128{1, 1, 1}
	assert.InDelta(t, 1.0, ParabolicPeak(flat, 1), 1e-12)

	// Symmetric neighbors put the refined peak on the center bin.
	sym := []complex128{1, 5, 1}
	assert.InDelta(t, 1.0, ParabolicPeak(sym, 1), 1e-12)

	// A heavier left neighbor pulls the peak left.
	skew := []complex128{4, 5, 1}
	assert.Less(t, ParabolicPeak(skew, 1), 1.0)

	// Edge peaks are not interpolated.
	assert.InDelta(t, 0.0, ParabolicPeak(sym, 0), 1e-12)
}
