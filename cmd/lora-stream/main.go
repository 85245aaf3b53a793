// lora-stream is a harness around the streaming LoRa PHY receiver. It
// loads one or more IQ captures, synthesizes configurable idle gaps
// between them, and feeds each vector to a StreamingReceiver in bounded
// chunks, mirroring the event stream into per-frame summaries and a global
// tally.
//
// Per-vector metadata is discovered via a sibling .json sidecar; missing
// fields fall back to the CLI defaults. The harness exits 0 if all frames
// succeed, 1 if any frame fails, and 2 on argument or I/O errors.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mewkiz/pkg/osutil"
	"github.com/spf13/pflag"

	"github.com/mewkiz/lora"
)

// flexInt is an integer sidecar field that may also arrive as a string,
// optionally 0x-prefixed.
type flexInt int

func (v *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) > 1 && s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		s = unquoted
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return err
	}
	*v = flexInt(n)
	return nil
}

// flexBool is a boolean sidecar field that may also arrive as 0/1.
type flexBool bool

func (v *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch s {
	case "true", "1":
		*v = true
	case "false", "0":
		*v = false
	default:
		return fmt.Errorf("cannot parse %q as bool", s)
	}
	return nil
}

// sidecar is the JSON metadata accompanying a test vector.
type sidecar struct {
	SF             *flexInt  `json:"sf"`
	BW             *flexInt  `json:"bw"`
	SampleRate     *flexInt  `json:"sample_rate"`
	SampRate       *flexInt  `json:"samp_rate"`
	CR             *flexInt  `json:"cr"`
	LDROMode       *flexBool `json:"ldro_mode"`
	ImplHeader     *flexBool `json:"impl_header"`
	ImplicitHeader *flexBool `json:"implicit_header"`
	CRC            *flexBool `json:"crc"`
	SyncWord       *flexInt  `json:"sync_word"`
	PayloadHex     string    `json:"payload_hex"`
}

// frameMeta is the effective configuration for one vector after merging
// the sidecar over the CLI defaults.
type frameMeta struct {
	path       string
	sf         int
	bw         int
	fs         int
	cr         int
	ldro       bool
	implicit   bool
	crc        bool
	sync       uint8
	payloadHex string
}

// loadMetadata merges a .json sidecar next to path (if any) over the
// fallback defaults.
func loadMetadata(path string, defaults frameMeta) (frameMeta, error) {
	meta := defaults
	meta.path = path

	jsonPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
	if !osutil.Exists(jsonPath) {
		return meta, nil
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return meta, err
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return meta, fmt.Errorf("parse %s: %w", jsonPath, err)
	}
	if sc.SF != nil {
		meta.sf = int(*sc.SF)
	}
	if sc.BW != nil {
		meta.bw = int(*sc.BW)
	}
	if sc.SampleRate != nil {
		meta.fs = int(*sc.SampleRate)
	}
	if sc.SampRate != nil {
		meta.fs = int(*sc.SampRate)
	}
	if sc.CR != nil {
		meta.cr = int(*sc.CR)
	}
	if sc.LDROMode != nil {
		meta.ldro = bool(*sc.LDROMode)
	}
	if sc.ImplHeader != nil {
		meta.implicit = bool(*sc.ImplHeader)
	}
	if sc.ImplicitHeader != nil {
		meta.implicit = bool(*sc.ImplicitHeader)
	}
	if sc.CRC != nil {
		meta.crc = bool(*sc.CRC)
	}
	if sc.SyncWord != nil {
		meta.sync = uint8(*sc.SyncWord)
	}
	meta.payloadHex = sc.PayloadHex
	return meta, nil
}

// frameSummary is the outcome of one vector.
type frameSummary struct {
	name         string
	success      bool
	payloadLen   int
	bytesEmitted int
}

// runFrame feeds one vector (preceded by gapSamples of zeros) through a
// fresh streaming receiver in fixed-size chunks.
func runFrame(meta frameMeta, emitBytes bool, chunk, gapSamples, gapSymbols int) (frameSummary, error) {
	params := lora.Params{
		SF:               meta.sf,
		BandwidthHz:      meta.bw,
		SampleRateHz:     meta.fs,
		LDROEnabled:      meta.ldro,
		SyncWord:         meta.sync,
		ImplicitHeader:   meta.implicit,
		ImplicitHasCRC:   meta.crc,
		ImplicitCR:       meta.cr,
		EmitPayloadBytes: emitBytes,
	}
	var wantPayload []byte
	if meta.payloadHex != "" {
		decoded, err := hex.DecodeString(meta.payloadHex)
		if err != nil {
			return frameSummary{}, fmt.Errorf("invalid payload_hex in sidecar for %s: %w", meta.path, err)
		}
		wantPayload = decoded
	}
	if meta.implicit {
		// The air frame carries no length field in implicit mode; the
		// sidecar payload is the only source for it.
		if len(wantPayload) == 0 {
			return frameSummary{}, fmt.Errorf("implicit vector %s needs payload_hex in its sidecar", meta.path)
		}
		params.ImplicitPayloadLength = len(wantPayload)
	}

	receiver, err := lora.NewStreamingReceiver(params)
	if err != nil {
		return frameSummary{}, err
	}
	samples, err := lora.LoadCF32(meta.path)
	if err != nil {
		return frameSummary{}, err
	}

	summary := frameSummary{name: filepath.Base(meta.path)}
	frameDone := false
	frameError := false

	feed := func(span []complex64) {
		for _, ev := range receiver.PushSamples(span) {
			switch ev.Type {
			case lora.EventPayloadByte:
				summary.bytesEmitted++
			case lora.EventFrameDone:
				frameDone = true
				if ev.Result != nil {
					summary.payloadLen = len(ev.Result.Payload)
					summary.success = ev.Result.Success
					if summary.success && len(wantPayload) > 0 && !bytes.Equal(ev.Result.Payload, wantPayload) {
						log.Warn("payload mismatch against sidecar", "vector", summary.name)
						summary.success = false
					}
				}
			case lora.EventFrameError:
				frameDone = true
				frameError = true
			}
		}
	}
	feedChunked := func(span []complex64) {
		for ofs := 0; ofs < len(span) && !frameDone; ofs += chunk {
			end := ofs + chunk
			if end > len(span) {
				end = len(span)
			}
			feed(span[ofs:end])
		}
	}

	if gapSamples > 0 {
		feedChunked(make([]complex64, gapSamples))
	}
	feedChunked(samples)

	// Idle tail so decoders can flush a frame ending at the capture edge.
	if !frameDone {
		sps := (1 << uint(meta.sf)) * (meta.fs / meta.bw)
		flush := sps * gapSymbols
		if min := 2 * sps; flush < min {
			flush = min
		}
		feedChunked(make([]complex64, flush))
	}

	if !frameDone || frameError {
		summary.success = false
	}
	return summary, nil
}

func main() {
	sf := pflag.Int("sf", 7, "Fallback spreading factor")
	bw := pflag.Int("bw", 125000, "Fallback bandwidth in Hz")
	fs := pflag.Int("fs", 500000, "Fallback sample rate in Hz")
	cr := pflag.Int("cr", 1, "Fallback coding rate (1-4)")
	ldro := pflag.Int("ldro", 0, "Fallback LDRO flag (0|1)")
	syncWord := pflag.String("sync-word", "0x12", "Fallback sync word (decimal or 0x-prefixed)")
	emitBytes := pflag.Bool("emit-bytes", false, "Emit payload byte events")
	chunk := pflag.Int("chunk", 2048, "Chunk size in samples")
	gapSymbols := pflag.Int("gap-symbols", 8, "Idle symbols between frames")
	debug := pflag.Bool("debug", false, "Print extra diagnostics")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <vector1.cf32> <vector2.cf32> ...\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(2)
	}
	if *chunk < 1 {
		*chunk = 1
	}

	sync, err := strconv.ParseUint(*syncWord, 0, 8)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lora-stream: invalid sync word %q: %v\n", *syncWord, err)
		os.Exit(2)
	}
	defaults := frameMeta{
		sf:   *sf,
		bw:   *bw,
		fs:   *fs,
		cr:   *cr,
		ldro: *ldro != 0,
		crc:  true,
		sync: uint8(sync),
	}

	gapSamples := -1
	allOK := true
	okCount, failCount, totalBytes := 0, 0, 0

	for idx, input := range pflag.Args() {
		meta, err := loadMetadata(input, defaults)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lora-stream: %v\n", err)
			os.Exit(2)
		}
		if gapSamples < 0 {
			gapSamples = *gapSymbols * (1 << uint(meta.sf)) * (meta.fs / meta.bw)
		}
		gapBefore := 0
		if idx > 0 {
			gapBefore = gapSamples
		}

		summary, err := runFrame(meta, *emitBytes, *chunk, gapBefore, *gapSymbols)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lora-stream: %v\n", err)
			os.Exit(2)
		}

		yesNo := func(b bool) string {
			if b {
				return "yes"
			}
			return "no"
		}
		fmt.Printf("[frame %d] %s sf=%d bw=%d fs=%d cr=%d implicit=%s crc=%s -> success=%s payload_len=%d payload_bytes_events=%d\n",
			idx+1, summary.name, meta.sf, meta.bw, meta.fs, meta.cr,
			yesNo(meta.implicit), yesNo(meta.crc), yesNo(summary.success),
			summary.payloadLen, summary.bytesEmitted)

		allOK = allOK && summary.success
		totalBytes += summary.bytesEmitted
		if summary.success {
			okCount++
		} else {
			failCount++
		}
	}

	fmt.Printf("[summary] frames_ok=%d frames_failed=%d payload_bytes=%d\n", okCount, failCount, totalBytes)
	if !allOK {
		os.Exit(1)
	}
}
