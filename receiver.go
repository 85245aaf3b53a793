package lora

import (
	"github.com/mewkiz/lora/frame"
)

// Result is the outcome of a one-shot decode. The stage flags latch at the
// stage that failed; Success is true only when the payload was recovered
// and its CRC (if present) verified.
type Result struct {
	Success      bool
	FrameSynced  bool
	HeaderOK     bool
	PayloadCRCOK bool
	// Decoded message bytes. Populated on a CRC mismatch as well, so
	// callers can inspect corrupt frames.
	Payload []byte
	// Demodulated raw payload symbol bins.
	RawPayloadSymbols []int
	// Fine-aligned frame start estimate in samples.
	POfsEst int
	// Payload length announced by the header.
	HeaderPayloadLength int
}

// Receiver is the one-shot batch decoder: frame synchronization, sync-word
// validation, header decode and payload decode over a buffered capture.
type Receiver struct {
	params       Params
	synchronizer *frame.Synchronizer
	syncDetector *frame.SyncWordDetector
	header       *frame.HeaderDecoder
	payload      *frame.PayloadDecoder
}

// NewReceiver creates a batch receiver. Construction fails on invalid
// parameters; decode failures are reported through Result flags instead.
func NewReceiver(params Params) (*Receiver, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	synchronizer, err := frame.NewSynchronizer(params.SF, params.BandwidthHz, params.SampleRateHz)
	if err != nil {
		return nil, err
	}
	syncDetector, err := frame.NewSyncWordDetector(params.SF, params.BandwidthHz, params.SampleRateHz, params.SyncWord)
	if err != nil {
		return nil, err
	}
	header, err := frame.NewHeaderDecoder(params.SF, params.BandwidthHz, params.SampleRateHz)
	if err != nil {
		return nil, err
	}
	payload, err := frame.NewPayloadDecoder(params.SF, params.BandwidthHz, params.SampleRateHz)
	if err != nil {
		return nil, err
	}
	return &Receiver{
		params:       params,
		synchronizer: synchronizer,
		syncDetector: syncDetector,
		header:       header,
		payload:      payload,
	}, nil
}

// implicitHeader synthesizes header metadata from the implicit-mode
// parameters.
func (r *Receiver) implicitHeader() *frame.Header {
	return &frame.Header{
		Implicit:      true,
		FCSOK:         true,
		PayloadLength: r.params.ImplicitPayloadLength,
		HasCRC:        r.params.ImplicitHasCRC,
		CR:            r.params.ImplicitCR,
	}
}

// DecodeSamples runs the full pipeline over a buffered capture. Each stage
// that fails leaves the later flags false; the method never returns an
// error for per-frame decode failures.
func (r *Receiver) DecodeSamples(samples []complex64) Result {
	var result Result

	sync := r.synchronizer.Synchronize(samples)
	if sync == nil {
		return result
	}
	result.FrameSynced = true
	result.POfsEst = sync.POfsEst

	if !r.params.SkipSyncWordCheck {
		det := r.syncDetector.Analyze(samples, sync.PreambleOffset, sync.CFOHz)
		if det == nil || !det.SyncOK {
			return result
		}
	}

	var hdr *frame.Header
	if r.params.ImplicitHeader {
		hdr = r.implicitHeader()
		result.HeaderOK = true
	} else {
		hdr = r.header.Decode(samples, sync)
		result.HeaderOK = hdr != nil && hdr.FCSOK
		if !result.HeaderOK {
			return result
		}
	}
	result.HeaderPayloadLength = hdr.PayloadLength

	payload := r.payload.Decode(samples, sync, hdr, r.params.LDROEnabled)
	if payload == nil {
		return result
	}

	result.PayloadCRCOK = payload.CRCOK
	result.Payload = payload.Bytes
	result.RawPayloadSymbols = payload.RawSymbols
	result.Success = payload.CRCOK
	return result
}

// DecodeFile loads a cf32 capture from path and decodes it.
func (r *Receiver) DecodeFile(path string) (Result, error) {
	samples, err := LoadCF32(path)
	if err != nil {
		return Result{}, err
	}
	return r.DecodeSamples(samples), nil
}
