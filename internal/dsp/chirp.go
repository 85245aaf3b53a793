// Package dsp implements the numerical building blocks of the LoRa PHY
// receiver: reference chirp generation, an in-place power-of-two FFT, and
// spectral peak helpers shared by the demodulation stages.
package dsp

import (
	"math"

	"github.com/pkg/errors"
)

// Chirp parameter limits. LoRa spreading factors outside [5,12] are not
// defined by the PHY.
const (
	MinSF = 5
	MaxSF = 12
)

// ValidateChirpParams checks a (sf, bandwidth, sample rate) triple for
// integer oversampling. Every receiver stage shares these requirements, so
// the checks live next to the chirp generator that first needs them.
func ValidateChirpParams(sf, bandwidthHz, sampleRateHz int) error {
	if sf < MinSF || sf > MaxSF {
		return errors.Errorf("dsp.ValidateChirpParams: spreading factor out of supported range [%d, %d]; got %d", MinSF, MaxSF, sf)
	}
	if bandwidthHz <= 0 || sampleRateHz <= 0 {
		return errors.Errorf("dsp.ValidateChirpParams: bandwidth and sample rate must be positive; got bw=%d, fs=%d", bandwidthHz, sampleRateHz)
	}
	if sampleRateHz%bandwidthHz != 0 {
		return errors.Errorf("dsp.ValidateChirpParams: sample rate must be an integer multiple of bandwidth for integer oversampling; got bw=%d, fs=%d", bandwidthHz, sampleRateHz)
	}
	return nil
}

// makeChirp evaluates the linear-FM reference signal
//
//	phi(n) = 2*pi * (-bw/2) * t + pi * (bw/T) * t*t,   t = n/fs, T = 2^sf/bw
//
// over one symbol of sps = 2^sf * (fs/bw) samples. up selects the sweep
// direction; the downchirp is the complex conjugate of the upchirp.
func makeChirp(sf, bandwidthHz, sampleRateHz int, up bool) ([]complex128, error) {
	if err := ValidateChirpParams(sf, bandwidthHz, sampleRateHz); err != nil {
		return nil, err
	}
	osFactor := sampleRateHz / bandwidthHz
	chips := 1 << uint(sf)
	sps := chips * osFactor

	fs := float64(sampleRateHz)
	bw := float64(bandwidthHz)
	T := float64(chips) / bw

	chirp := make([]complex128, sps)
	for n := 0; n < sps; n++ {
		t := float64(n) / fs
		phase := 2*math.Pi*(-bw/2)*t + math.Pi*(bw/T)*t*t
		if !up {
			phase = -phase
		}
		chirp[n] = complex(math.Cos(phase), math.Sin(phase))
	}
	return chirp, nil
}

// Upchirp returns the reference upchirp for the given LoRa parameters,
// sweeping from -bw/2 to +bw/2 over one symbol.
func Upchirp(sf, bandwidthHz, sampleRateHz int) ([]complex128, error) {
	return makeChirp(sf, bandwidthHz, sampleRateHz, true)
}

// Downchirp returns the reference downchirp, the conjugate sweep of Upchirp.
func Downchirp(sf, bandwidthHz, sampleRateHz int) ([]complex128, error) {
	return makeChirp(sf, bandwidthHz, sampleRateHz, false)
}
