// Package lora provides a software-defined LoRa PHY receiver: it ingests
// complex baseband IQ samples and recovers the transmitted payload bytes,
// including carrier-frequency-offset and symbol-timing estimation, chirp
// demodulation, Gray de-mapping, block deinterleaving, Hamming error
// correction, dewhitening and CRC verification.
//
// Two entry points are provided. Receiver decodes a fully buffered capture
// in one shot; StreamingReceiver consumes arbitrarily sized chunks and
// emits structured events as frames assemble.
package lora

import (
	"github.com/pkg/errors"

	"github.com/mewkiz/lora/internal/dsp"
)

// Params is the immutable configuration of a receiver instance.
type Params struct {
	// Spreading factor in [5,12]; 2^SF chips per symbol.
	SF int
	// Signal bandwidth in Hz.
	BandwidthHz int
	// Sample rate in Hz; must be an integer multiple of BandwidthHz.
	SampleRateHz int
	// Force low-data-rate optimization. LDRO is implied for SF >= 11.
	LDROEnabled bool
	// Expected 8-bit network sync word.
	SyncWord uint8
	// Do not reject frames on a sync-word mismatch.
	SkipSyncWordCheck bool

	// Implicit header mode: the header is synthesized from the fields
	// below instead of being decoded from the frame.
	ImplicitHeader        bool
	ImplicitPayloadLength int
	ImplicitHasCRC        bool
	ImplicitCR            int

	// Emit one PayloadByte event per decoded byte before FrameDone
	// (streaming mode only).
	EmitPayloadBytes bool

	// Optional CFO sweep around the synchronizer estimate while the
	// streaming receiver decodes an explicit header, for tolerance to
	// residual offset. Active only when HeaderCFOSweep is set and
	// HeaderCFORangeHz is positive; the batch Receiver does not sweep.
	HeaderCFOSweep   bool
	HeaderCFORangeHz float64
	HeaderCFOStepHz  float64
}

// DefaultParams returns the common SF7 / 125 kHz / 500 kHz configuration
// with sync word 0x12.
func DefaultParams() Params {
	return Params{
		SF:             7,
		BandwidthHz:    125000,
		SampleRateHz:   500000,
		SyncWord:       0x12,
		ImplicitHasCRC: true,
		ImplicitCR:     1,
	}
}

// validate checks the construction-time invariants shared by both
// receivers.
func (p *Params) validate() error {
	if err := dsp.ValidateChirpParams(p.SF, p.BandwidthHz, p.SampleRateHz); err != nil {
		return err
	}
	if p.ImplicitHeader {
		if p.ImplicitPayloadLength < 1 || p.ImplicitPayloadLength > 255 {
			return errors.Errorf("lora.Params: implicit payload length out of range [1,255]; got %d", p.ImplicitPayloadLength)
		}
		if p.ImplicitCR < 1 || p.ImplicitCR > 4 {
			return errors.Errorf("lora.Params: implicit coding rate out of range [1,4]; got %d", p.ImplicitCR)
		}
	}
	return nil
}

// sps returns the samples per symbol for the configuration.
func (p *Params) sps() int {
	return (1 << uint(p.SF)) * (p.SampleRateHz / p.BandwidthHz)
}
