// lora-iq2wav converts raw cf32 IQ captures to stereo WAV files for
// inspection in audio tools: the I channel maps to the left channel and
// the Q channel to the right, scaled to 16-bit PCM.
package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/spf13/pflag"

	"github.com/mewkiz/lora"
)

func main() {
	fs := pflag.Int("fs", 500000, "Sample rate in Hz recorded in the WAV header")
	force := pflag.BoolP("force", "f", false, "Force overwrite of existing WAV files")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <capture1.cf32> ...\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(2)
	}
	for _, path := range pflag.Args() {
		if err := iq2wav(path, *fs, *force); err != nil {
			fmt.Fprintf(os.Stderr, "lora-iq2wav: %v\n", err)
			os.Exit(2)
		}
	}
}

// iq2wav converts the capture at path to a sibling .wav file.
func iq2wav(path string, sampleRate int, force bool) error {
	samples, err := lora.LoadCF32(path)
	if err != nil {
		return err
	}

	wavPath := pathutil.TrimExt(path) + ".wav"
	if !force {
		if osutil.Exists(wavPath) {
			return fmt.Errorf("the file %q exists already", wavPath)
		}
	}
	fw, err := os.Create(wavPath)
	if err != nil {
		return err
	}
	defer fw.Close()

	enc := wav.NewEncoder(fw, sampleRate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           make([]int, 0, 2*len(samples)),
		SourceBitDepth: 16,
	}
	clip := func(v float32) int {
		scaled := int(v * 32767)
		if scaled > 32767 {
			return 32767
		}
		if scaled < -32768 {
			return -32768
		}
		return scaled
	}
	for _, s := range samples {
		buf.Data = append(buf.Data, clip(real(s)), clip(imag(s)))
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
