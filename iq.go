package lora

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// LoadCF32 reads a raw IQ capture from path: interleaved little-endian
// float32 pairs (I then Q) with no header. The file size must be a multiple
// of eight bytes.
func LoadCF32(path string) ([]complex64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "lora.LoadCF32: failed to open IQ file %q", path)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "lora.LoadCF32: failed to stat IQ file %q", path)
	}
	if fi.Size()%8 != 0 {
		return nil, errors.Errorf("lora.LoadCF32: IQ file size is not aligned to complex64 samples; %q has %d bytes", path, fi.Size())
	}

	samples, err := ReadCF32(f)
	if err != nil {
		return nil, errors.Wrapf(err, "lora.LoadCF32: failed to read IQ data from %q", path)
	}
	return samples, nil
}

// ReadCF32 decodes interleaved little-endian float32 IQ pairs from r until
// EOF. A trailing partial sample is an error.
func ReadCF32(r io.Reader) ([]complex64, error) {
	var samples []complex64
	buf := make([]byte, 8*4096)
	for {
		n, err := io.ReadFull(r, buf)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			if n%8 != 0 {
				return nil, errors.Errorf("lora.ReadCF32: trailing %d bytes do not form a complex64 sample", n%8)
			}
		} else if err != nil {
			return nil, errors.WithStack(err)
		}
		for i := 0; i+8 <= n; i += 8 {
			re := math.Float32frombits(binary.LittleEndian.Uint32(buf[i:]))
			im := math.Float32frombits(binary.LittleEndian.Uint32(buf[i+4:]))
			samples = append(samples, complex(re, im))
		}
		if err == io.ErrUnexpectedEOF {
			break
		}
	}
	return samples, nil
}
