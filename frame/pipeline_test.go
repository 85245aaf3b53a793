package frame

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewkiz/lora/internal/testsig"
)

// Reference parameters shared by the stage tests: SF7, 125 kHz bandwidth at
// 500 kHz sampling, CR 4/6, CRC on, explicit header.
const (
	refSF = 7
	refBW = 125000
	refFS = 500000
	refCR = 2
)

var refPayload = []byte("hello stupid world")

var (
	refOnce    sync.Once
	refSamples []complex64
)

// referenceFrame synthesizes the shared explicit-header test vector.
func referenceFrame(t testing.TB) []complex64 {
	refOnce.Do(func() {
		samples, err := testsig.Frame(testsig.Config{
			SF:           refSF,
			BandwidthHz:  refBW,
			SampleRateHz: refFS,
			CR:           refCR,
			HasCRC:       true,
			SyncWord:     0x12,
			Payload:      refPayload,
			TailSymbols:  2,
		})
		if err != nil {
			panic(err)
		}
		refSamples = samples
	})
	require.NotEmpty(t, refSamples)
	return refSamples
}

func TestPreambleDetectorShortInput(t *testing.T) {
	d, err := NewPreambleDetector(refSF, refBW, refFS)
	require.NoError(t, err)
	assert.Equal(t, 512, d.SamplesPerSymbol())

	// Anything shorter than one symbol cannot hold a chirp.
	assert.Nil(t, d.Detect(nil))
	assert.Nil(t, d.Detect(make([]complex64, 511)))
	assert.NotNil(t, d.Detect(make([]complex64, 512)))
}

func TestPreambleDetectorReference(t *testing.T) {
	samples := referenceFrame(t)
	d, err := NewPreambleDetector(refSF, refBW, refFS)
	require.NoError(t, err)

	det := d.Detect(samples)
	require.NotNil(t, det)
	assert.Equal(t, 0, det.Offset)
	assert.InDelta(t, 1.0, det.Metric, 1e-3)
}

func TestPreambleDetectorDelayedFrame(t *testing.T) {
	samples := referenceFrame(t)
	d, err := NewPreambleDetector(refSF, refBW, refFS)
	require.NoError(t, err)

	delayed := append(make([]complex64, 3*512), samples...)
	det := d.Detect(delayed)
	require.NotNil(t, det)
	// The eight preamble chirps all correlate equally; the tie-break
	// keeps the earliest, which is the true start.
	assert.Equal(t, 3*512, det.Offset)
	assert.InDelta(t, 1.0, det.Metric, 1e-3)
}

func TestSynchronizerReference(t *testing.T) {
	samples := referenceFrame(t)
	s, err := NewSynchronizer(refSF, refBW, refFS)
	require.NoError(t, err)

	syncRes := s.Synchronize(samples)
	require.NotNil(t, syncRes)
	assert.Equal(t, 0, syncRes.PreambleOffset)
	// The frame starts at sample zero with no rise padding, so the fine
	// timing estimate compensates exactly the assumed rise time.
	assert.Equal(t, -25, syncRes.POfsEst)
	// The -1 bin alignment bias maps to one fine bin (a quarter bin) of CFO.
	assert.InDelta(t, -244.140625, syncRes.CFOHz, 1e-3)
}

func TestSynchronizerAbsent(t *testing.T) {
	s, err := NewSynchronizer(refSF, refBW, refFS)
	require.NoError(t, err)

	assert.Nil(t, s.Synchronize(make([]complex64, 100)))
	// Silence never matches the preamble predicate.
	assert.Nil(t, s.Synchronize(make([]complex64, 16*512)))
}

func TestSyncWordDetectorReference(t *testing.T) {
	samples := referenceFrame(t)
	d, err := NewSyncWordDetector(refSF, refBW, refFS, 0x12)
	require.NoError(t, err)

	det := d.Analyze(samples, 0, 0)
	require.NotNil(t, det)
	assert.True(t, det.PreambleOK)
	assert.True(t, det.SyncOK)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0, 0, 8, 16}, det.SymbolBins)
	require.Len(t, det.Magnitudes, 10)
	for i := 0; i < 8; i++ {
		// Folding the oversampled chips keeps the preamble peak at the
		// full symbol energy.
		assert.InDelta(t, 512.0, det.Magnitudes[i], 1.0, "symbol %d", i)
	}
}

func TestSyncWordDetectorMismatch(t *testing.T) {
	samples := referenceFrame(t)
	d, err := NewSyncWordDetector(refSF, refBW, refFS, 0x34)
	require.NoError(t, err)

	det := d.Analyze(samples, 0, 0)
	require.NotNil(t, det)
	assert.True(t, det.PreambleOK)
	assert.False(t, det.SyncOK)
}

func TestSyncWordDetectorBounds(t *testing.T) {
	samples := referenceFrame(t)
	d, err := NewSyncWordDetector(refSF, refBW, refFS, 0x12)
	require.NoError(t, err)

	assert.Nil(t, d.Analyze(samples, -1, 0))
	assert.Nil(t, d.Analyze(samples[:5*512], 0, 0))
}

func TestHeaderDecoderReference(t *testing.T) {
	samples := referenceFrame(t)
	s, err := NewSynchronizer(refSF, refBW, refFS)
	require.NoError(t, err)
	syncRes := s.Synchronize(samples)
	require.NotNil(t, syncRes)

	d, err := NewHeaderDecoder(refSF, refBW, refFS)
	require.NoError(t, err)
	hdr := d.Decode(samples, syncRes)
	require.NotNil(t, hdr)

	assert.True(t, hdr.FCSOK)
	assert.Equal(t, len(refPayload), hdr.PayloadLength)
	assert.True(t, hdr.HasCRC)
	assert.Equal(t, refCR, hdr.CR)
	assert.Len(t, hdr.RawSymbols, 8)
	// SF7 headers carry exactly the twenty field bits.
	assert.Empty(t, hdr.PayloadHeaderBits)
}

func TestHeaderDecoderInsufficientSamples(t *testing.T) {
	samples := referenceFrame(t)
	d, err := NewHeaderDecoder(refSF, refBW, refFS)
	require.NoError(t, err)

	syncRes := &SyncResult{POfsEst: -25}
	assert.Nil(t, d.Decode(samples[:8*512], syncRes))
}

func TestPayloadDecoderReference(t *testing.T) {
	samples := referenceFrame(t)
	s, err := NewSynchronizer(refSF, refBW, refFS)
	require.NoError(t, err)
	syncRes := s.Synchronize(samples)
	require.NotNil(t, syncRes)

	hd, err := NewHeaderDecoder(refSF, refBW, refFS)
	require.NoError(t, err)
	hdr := hd.Decode(samples, syncRes)
	require.NotNil(t, hdr)
	require.True(t, hdr.FCSOK)

	pd, err := NewPayloadDecoder(refSF, refBW, refFS)
	require.NoError(t, err)
	payload := pd.Decode(samples, syncRes, hdr, false)
	require.NotNil(t, payload)

	assert.True(t, payload.CRCOK)
	assert.Equal(t, refPayload, []byte(payload.Bytes))
	assert.Len(t, payload.RawSymbols, pd.SymbolCount(hdr, false))
}

func TestPayloadDecoderRejectsInvalidHeader(t *testing.T) {
	samples := referenceFrame(t)
	pd, err := NewPayloadDecoder(refSF, refBW, refFS)
	require.NoError(t, err)

	syncRes := &SyncResult{POfsEst: -25}
	assert.Nil(t, pd.Decode(samples, syncRes, &Header{FCSOK: false, PayloadLength: 18, CR: 2}, false))
	assert.Nil(t, pd.Decode(samples, syncRes, &Header{FCSOK: true, PayloadLength: 0, CR: 2}, false))
}

func TestPayloadSymbolCount(t *testing.T) {
	pd, err := NewPayloadDecoder(refSF, refBW, refFS)
	require.NoError(t, err)

	golden := []struct {
		name string
		hdr  Header
		ldro bool
		want int
	}{
		{
			name: "explicit cr2 crc len18",
			hdr:  Header{PayloadLength: 18, HasCRC: true, CR: 2},
			want: 36,
		},
		{
			name: "explicit cr2 crc len18 ldro",
			hdr:  Header{PayloadLength: 18, HasCRC: true, CR: 2},
			ldro: true,
			want: 48,
		},
		{
			name: "implicit cr1 crc len11",
			hdr:  Header{Implicit: true, PayloadLength: 11, HasCRC: true, CR: 1},
			want: 15,
		},
		{
			name: "explicit cr1 nocrc len1",
			hdr:  Header{PayloadLength: 1, CR: 1},
			want: 5,
		},
	}
	for _, g := range golden {
		t.Run(g.name, func(t *testing.T) {
			assert.Equal(t, g.want, pd.SymbolCount(&g.hdr, g.ldro))
		})
	}
}

func TestOffsetHelpers(t *testing.T) {
	// Nrise=25 plus 12.25 symbols of 512 samples.
	assert.Equal(t, 25+12*512+128, HeaderOffsetSamples(refSF, refBW, refFS))
	assert.Equal(t, 25+12*512+128+8*512, PayloadOffsetSamples(refSF, refBW, refFS))
}
