package lora_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewkiz/lora"
)

// encodeCF32 serializes samples as interleaved little-endian float32 IQ.
func encodeCF32(samples []complex64) []byte {
	buf := make([]byte, 0, 8*len(samples))
	for _, s := range samples {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(real(s)))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(imag(s)))
	}
	return buf
}

func TestReadCF32RoundTrip(t *testing.T) {
	want := []complex64{
		complex(1, 0),
		complex(0.70819056, -0.70602125),
		complex(-0.5, 0.25),
	}
	got, err := lora.ReadCF32(bytes.NewReader(encodeCF32(want)))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadCF32Empty(t *testing.T) {
	got, err := lora.ReadCF32(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadCF32Unaligned(t *testing.T) {
	_, err := lora.ReadCF32(bytes.NewReader(make([]byte, 13)))
	assert.Error(t, err)
}

func TestLoadCF32(t *testing.T) {
	want := []complex64{complex(0.25, -0.75), complex(-1, 1)}
	path := filepath.Join(t.TempDir(), "capture.cf32")
	require.NoError(t, os.WriteFile(path, encodeCF32(want), 0o644))

	got, err := lora.LoadCF32(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadCF32UnalignedSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cf32")
	require.NoError(t, os.WriteFile(path, make([]byte, 12), 0o644))

	_, err := lora.LoadCF32(path)
	assert.Error(t, err)
}

func TestLoadCF32Missing(t *testing.T) {
	_, err := lora.LoadCF32(filepath.Join(t.TempDir(), "nope.cf32"))
	assert.Error(t, err)
}
