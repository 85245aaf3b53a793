package lora

import (
	"github.com/charmbracelet/log"

	"github.com/mewkiz/lora/frame"
)

// EventType identifies a streaming receiver event.
type EventType int

// Event categories raised by PushSamples, in the order they may appear for
// one frame.
const (
	// A new frame's preamble has been detected.
	EventSyncAcquired EventType = iota
	// The frame header has been decoded or synthesized.
	EventHeaderDecoded
	// One more payload byte is available (only with EmitPayloadBytes).
	EventPayloadByte
	// The frame completed; Result carries the outcome.
	EventFrameDone
	// The frame terminated with an error.
	EventFrameError
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventSyncAcquired:
		return "SyncAcquired"
	case EventHeaderDecoded:
		return "HeaderDecoded"
	case EventPayloadByte:
		return "PayloadByte"
	case EventFrameDone:
		return "FrameDone"
	case EventFrameError:
		return "FrameError"
	}
	return "Unknown"
}

// Event is a single observation made while streaming samples through the
// receiver. Only the fields relevant to Type are populated.
type Event struct {
	Type EventType
	// Absolute sample index in the input stream at which the event is
	// considered to occur; non-decreasing across the whole stream.
	GlobalSampleIndex uint64
	// Present on SyncAcquired and HeaderDecoded: synchronization local to
	// the detected frame (PreambleOffset 0).
	Sync *frame.SyncResult
	// Present on HeaderDecoded.
	Header *frame.Header
	// Present on FrameDone and FrameError.
	Result *Result
	// Present on PayloadByte.
	PayloadByte byte
	// Human-readable detail on FrameError.
	Message string
}

// Sizing of the synchronizer's rolling buffer: enough symbols to hold the
// full preamble structure plus slack for chunk granularity while idle.
const syncBufferSymbols = 20

// streamSynchronizer wraps the batch synchronizer with a bounded rolling
// buffer so detection can run repeatedly over a chunked input stream.
type streamSynchronizer struct {
	sync         *frame.Synchronizer
	buf          []complex64
	globalOffset uint64
	maxSamples   int
}

// update appends chunk to the rolling buffer, trims it to the size bound,
// and, when detect is set, runs preamble detection over the buffer.
func (s *streamSynchronizer) update(chunk []complex64, detect bool) *frame.SyncResult {
	s.buf = append(s.buf, chunk...)
	if len(s.buf) > s.maxSamples {
		drop := len(s.buf) - s.maxSamples
		s.buf = append(s.buf[:0], s.buf[drop:]...)
		s.globalOffset += uint64(drop)
	}
	if !detect {
		return nil
	}
	return s.sync.Synchronize(s.buf)
}

// discardBefore drops every buffered sample preceding the absolute stream
// index.
func (s *streamSynchronizer) discardBefore(globalIndex uint64) {
	if globalIndex <= s.globalOffset {
		return
	}
	drop := int(globalIndex - s.globalOffset)
	if drop >= len(s.buf) {
		s.buf = s.buf[:0]
	} else {
		s.buf = append(s.buf[:0], s.buf[drop:]...)
	}
	s.globalOffset = globalIndex
}

func (s *streamSynchronizer) reset() {
	s.buf = s.buf[:0]
	s.globalOffset = 0
}

// pendingFrame tracks the frame currently being assembled across calls to
// PushSamples.
type pendingFrame struct {
	// Synchronization local to the frame: PreambleOffset is 0 and POfsEst
	// is relative to preambleOffset below.
	sync frame.SyncResult
	// Offset inside the capture buffer where the preamble begins.
	preambleOffset int
	// Absolute stream index of the preamble start.
	globalSampleIndex uint64
	// Decoded or synthesized header, nil until available.
	header *frame.Header
	// Whether HeaderDecoded has been emitted for this frame.
	headerReported bool
	// Samples required from the preamble start to cover the payload.
	samplesNeeded int
	// Effective LDRO setting for this frame's payload decode.
	ldroEnabled bool
}

// StreamingReceiver decodes LoRa frames from an arbitrarily chunked sample
// stream. It owns a rolling capture buffer mirroring the synchronizer's
// buffer; input chunks are copied, never retained. At most one frame is
// assembled at a time.
type StreamingReceiver struct {
	params       Params
	synchronizer streamSynchronizer
	header       *frame.HeaderDecoder
	payload      *frame.PayloadDecoder

	capture             []complex64
	captureGlobalOffset uint64
	pending             *pendingFrame
	sps                 int
}

// NewStreamingReceiver creates a streaming receiver with the given
// parameters.
func NewStreamingReceiver(params Params) (*StreamingReceiver, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	synchronizer, err := frame.NewSynchronizer(params.SF, params.BandwidthHz, params.SampleRateHz)
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
	sps := params.sps()
	return &StreamingReceiver{
		params: params,
		synchronizer: streamSynchronizer{
			sync:       synchronizer,
			maxSamples: syncBufferSymbols * sps,
		},
		header:  header,
		payload: payload,
		sps:     sps,
	}, nil
}

// Reset clears the synchronizer state, the capture buffer, the global
// offset and any pending frame.
func (r *StreamingReceiver) Reset() {
	r.synchronizer.reset()
	r.capture = r.capture[:0]
	r.captureGlobalOffset = 0
	r.pending = nil
}

// headerOffsetSamples is the distance from preamble start to header start.
func (r *StreamingReceiver) headerOffsetSamples() int {
	return frame.HeaderOffsetSamples(r.params.SF, r.params.BandwidthHz, r.params.SampleRateHz)
}

// payloadOffsetSamples is the distance from preamble start to payload
// start; the payload window always sits eight symbols past the header
// position, in implicit mode as well.
func (r *StreamingReceiver) payloadOffsetSamples() int {
	return frame.PayloadOffsetSamples(r.params.SF, r.params.BandwidthHz, r.params.SampleRateHz)
}

// guard returns the non-negative part of the frame's fine timing offset,
// the extra samples the decoders may index past the preamble start.
func (f *pendingFrame) guard() int {
	if f.sync.POfsEst > 0 {
		return f.sync.POfsEst
	}
	return 0
}

// headerReady reports whether the capture holds the full header span.
func (r *StreamingReceiver) headerReady(f *pendingFrame) bool {
	need := f.preambleOffset + f.guard() + r.headerOffsetSamples() + r.header.SymbolSpanSamples()
	return len(r.capture) >= need
}

// payloadReady reports whether the capture holds the full payload span.
func (r *StreamingReceiver) payloadReady(f *pendingFrame) bool {
	return f.samplesNeeded > 0 && len(r.capture) >= f.preambleOffset+f.samplesNeeded
}

// finalizeFrame advances all buffers past the completed frame and clears
// the pending state.
func (r *StreamingReceiver) finalizeFrame(samplesConsumed int) {
	if samplesConsumed > len(r.capture) {
		samplesConsumed = len(r.capture)
	}
	r.capture = append(r.capture[:0], r.capture[samplesConsumed:]...)
	r.captureGlobalOffset += uint64(samplesConsumed)
	r.synchronizer.discardBefore(r.captureGlobalOffset)
	r.pending = nil
	log.Debug("lora: frame finalized", "consumed", samplesConsumed, "capture", len(r.capture), "global", r.captureGlobalOffset)
}

// headerCandidates are the timing offsets, in samples, tried around the
// synchronizer estimate when an explicit header fails to decode; bounded
// retries against rounding and jitter.
func (r *StreamingReceiver) headerCandidates() []int {
	s := r.sps
	return []int{0, -s / 8, s / 8, -s / 4, s / 4, -s / 2, s / 2, -s, s, -2 * s, 2 * s}
}

// saneHeader checks the decoded fields before the frame commits to a
// payload window.
func saneHeader(hdr *frame.Header) bool {
	return hdr.FCSOK && hdr.PayloadLength >= 0 && hdr.PayloadLength <= 255 && hdr.CR >= 1 && hdr.CR <= 4
}

// tryDecodeHeader attempts an explicit header decode over the frame slice,
// sweeping the timing candidates and, when enabled, the CFO around the
// synchronizer estimate. On success the frame's sync is updated to the
// accepted trial.
func (r *StreamingReceiver) tryDecodeHeader(f *pendingFrame) *frame.Header {
	view := r.capture[f.preambleOffset:]
	for _, cand := range r.headerCandidates() {
		trial := f.sync
		trial.POfsEst += cand
		if hdr := r.header.Decode(view, &trial); hdr != nil && saneHeader(hdr) {
			f.sync = trial
			return hdr
		}
		if !r.params.HeaderCFOSweep || r.params.HeaderCFORangeHz <= 0 {
			continue
		}
		step := r.params.HeaderCFOStepHz
		if step <= 0 {
			step = 1
		}
		for delta := step; delta <= r.params.HeaderCFORangeHz; delta += step {
			for _, signed := range [2]float64{delta, -delta} {
				cfoTrial := trial
				cfoTrial.CFOHz += signed
				if hdr := r.header.Decode(view, &cfoTrial); hdr != nil && saneHeader(hdr) {
					f.sync = cfoTrial
					return hdr
				}
			}
		}
	}
	return nil
}

// PushSamples feeds one chunk of contiguous samples and returns the events
// observed while advancing the decode state machine. Per call the sequence
// is at most: one SyncAcquired, one HeaderDecoded, any PayloadByte events,
// and one terminal FrameDone or FrameError.
func (r *StreamingReceiver) PushSamples(chunk []complex64) []Event {
	var events []Event
	if len(chunk) == 0 {
		return events
	}

	detection := r.synchronizer.update(chunk, r.pending == nil)
	r.capture = append(r.capture, chunk...)

	// While no frame is pending the capture mirrors the synchronizer
	// buffer exactly; once a frame is active every sample from the
	// preamble onward is retained.
	if r.pending == nil {
		if drop := len(r.capture) - len(r.synchronizer.buf); drop > 0 {
			r.capture = append(r.capture[:0], r.capture[drop:]...)
			r.captureGlobalOffset += uint64(drop)
		}
	}

	if r.pending == nil {
		if detection == nil {
			return events
		}
		bufferBase := len(r.capture) - len(r.synchronizer.buf)
		if bufferBase < 0 {
			bufferBase = 0
		}
		preambleOffset := bufferBase
		if detection.PreambleOffset > 0 {
			preambleOffset += detection.PreambleOffset
		}
		f := &pendingFrame{
			sync: frame.SyncResult{
				POfsEst: bufferBase + detection.POfsEst - preambleOffset,
				CFOHz:   detection.CFOHz,
			},
			preambleOffset:    preambleOffset,
			globalSampleIndex: r.captureGlobalOffset + uint64(preambleOffset),
			ldroEnabled:       r.params.LDROEnabled,
		}
		r.pending = f
		log.Debug("lora: sync acquired", "preambleOffset", preambleOffset, "global", f.globalSampleIndex, "pOfs", f.sync.POfsEst, "cfoHz", f.sync.CFOHz)
		sync := f.sync
		events = append(events, Event{
			Type:              EventSyncAcquired,
			GlobalSampleIndex: f.globalSampleIndex,
			Sync:              &sync,
		})
	}

	f := r.pending

	// Header stage: synthesize in implicit mode, decode once enough
	// samples have arrived in explicit mode.
	if f.header == nil {
		if r.params.ImplicitHeader {
			f.header = &frame.Header{
				Implicit:      true,
				FCSOK:         true,
				PayloadLength: r.params.ImplicitPayloadLength,
				HasCRC:        r.params.ImplicitHasCRC,
				CR:            r.params.ImplicitCR,
			}
		} else if r.headerReady(f) {
			if hdr := r.tryDecodeHeader(f); hdr != nil {
				f.header = hdr
				log.Debug("lora: header decoded", "payloadLen", hdr.PayloadLength, "cr", hdr.CR, "hasCRC", hdr.HasCRC)
			}
		}
		if f.header != nil {
			payloadSyms := r.payload.SymbolCount(f.header, f.ldroEnabled)
			if payloadSyms > 0 {
				f.samplesNeeded = f.guard() + r.payloadOffsetSamples() + payloadSyms*r.sps
				log.Debug("lora: payload window sized", "symbols", payloadSyms, "samplesNeeded", f.samplesNeeded)
			} else {
				events = append(events, Event{
					Type:              EventFrameError,
					GlobalSampleIndex: f.globalSampleIndex,
					Message:           "invalid payload symbol count",
					Result: &Result{
						FrameSynced:         true,
						HeaderOK:            true,
						POfsEst:             f.sync.POfsEst,
						HeaderPayloadLength: f.header.PayloadLength,
					},
				})
				r.finalizeFrame(f.preambleOffset)
				return events
			}
		}
	}

	if f.header != nil && !f.headerReported {
		index := f.globalSampleIndex + uint64(f.guard()+r.headerOffsetSamples())
		sync := f.sync
		hdr := *f.header
		events = append(events, Event{
			Type:              EventHeaderDecoded,
			GlobalSampleIndex: index,
			Sync:              &sync,
			Header:            &hdr,
		})
		f.headerReported = true
	}

	// Payload stage: decode once the full window is buffered, then emit
	// the terminal event and advance past the frame.
	if f.header != nil && r.payloadReady(f) {
		view := r.capture[f.preambleOffset : f.preambleOffset+f.samplesNeeded]
		payload := r.payload.Decode(view, &f.sync, f.header, f.ldroEnabled)

		endIndex := f.globalSampleIndex + uint64(f.samplesNeeded)
		if payload != nil {
			if r.params.EmitPayloadBytes {
				for _, b := range payload.Bytes {
					events = append(events, Event{
						Type:              EventPayloadByte,
						GlobalSampleIndex: endIndex,
						PayloadByte:       b,
					})
				}
			}
			result := &Result{
				Success:             payload.CRCOK,
				FrameSynced:         true,
				HeaderOK:            true,
				PayloadCRCOK:        payload.CRCOK,
				Payload:             payload.Bytes,
				RawPayloadSymbols:   payload.RawSymbols,
				POfsEst:             f.sync.POfsEst,
				HeaderPayloadLength: f.header.PayloadLength,
			}
			log.Debug("lora: payload decoded", "bytes", len(payload.Bytes), "crcOK", payload.CRCOK)
			events = append(events, Event{
				Type:              EventFrameDone,
				GlobalSampleIndex: endIndex,
				Result:            result,
			})
		} else {
			log.Debug("lora: payload decode failed", "samplesNeeded", f.samplesNeeded)
			events = append(events, Event{
				Type:              EventFrameError,
				GlobalSampleIndex: endIndex,
				Message:           "payload decode failed",
				Result: &Result{
					FrameSynced:         true,
					HeaderOK:            true,
					POfsEst:             f.sync.POfsEst,
					HeaderPayloadLength: f.header.PayloadLength,
				},
			})
		}
		r.finalizeFrame(f.preambleOffset + f.samplesNeeded)
	}

	return events
}
