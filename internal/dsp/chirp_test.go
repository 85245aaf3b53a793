package dsp

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChirpLengthAndMagnitude(t *testing.T) {
	golden := []struct {
		sf      int
		bw      int
		fs      int
		wantSPS int
	}{
		{sf: 7, bw: 125000, fs: 500000, wantSPS: 512},
		{sf: 5, bw: 125000, fs: 125000, wantSPS: 32},
		{sf: 9, bw: 250000, fs: 500000, wantSPS: 1024},
		{sf: 12, bw: 125000, fs: 250000, wantSPS: 8192},
	}
	for _, g := range golden {
		up, err := Upchirp(g.sf, g.bw, g.fs)
		require.NoError(t, err)
		down, err := Downchirp(g.sf, g.bw, g.fs)
		require.NoError(t, err)

		assert.Len(t, up, g.wantSPS)
		assert.Len(t, down, g.wantSPS)
		for n := range up {
			assert.InDelta(t, 1.0, cmplx.Abs(up[n]), 1e-9)
			assert.InDelta(t, 1.0, cmplx.Abs(down[n]), 1e-9)
		}
	}
}

func TestChirpConjugate(t *testing.T) {
	up, err := Upchirp(7, 125000, 500000)
	require.NoError(t, err)
	down, err := Downchirp(7, 125000, 500000)
	require.NoError(t, err)

	// The downchirp is the conjugate sweep, so the product is unity.
	for n := range up {
		prod := up[n] * down[n]
		assert.InDelta(t, 1.0, real(prod), 1e-9)
		assert.InDelta(t, 0.0, imag(prod), 1e-9)
	}
}

func TestChirpStartFrequency(t *testing.T) {
	up, err := Upchirp(7, 125000, 500000)
	require.NoError(t, err)

	// First sample is 1+0j; the initial phase increment corresponds to
	// -bw/2.
	assert.InDelta(t, 1.0, real(up[0]), 1e-12)
	assert.InDelta(t, 0.0, imag(up[0]), 1e-12)
	phase := math.Atan2(imag(up[1]), real(up[1]))
	wantFreq := -125000.0 / 2
	gotFreq := phase / (2 * math.Pi) * 500000
	// One sample in, the quadratic term contributes bw/T/fs/2 Hz.
	assert.InDelta(t, wantFreq, gotFreq, 150)
}

func TestChirpInvalidParams(t *testing.T) {
	golden := []struct {
		name string
		sf   int
		bw   int
		fs   int
	}{
		{name: "sf too small", sf: 4, bw: 125000, fs: 500000},
		{name: "sf too large", sf: 13, bw: 125000, fs: 500000},
		{name: "bad bandwidth", sf: 7, bw: 0, fs: 500000},
		{name: "bad sample rate", sf: 7, bw: 125000, fs: 0},
		{name: "non-integer oversampling", sf: 7, bw: 125000, fs: 300000},
	}
	for _, g := range golden {
		t.Run(g.name, func(t *testing.T) {
			_, err := Upchirp(g.sf, g.bw, g.fs)
			assert.Error(t, err)
			_, err = Downchirp(g.sf, g.bw, g.fs)
			assert.Error(t, err)
		})
	}
}
