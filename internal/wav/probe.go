package wav

import (
	"fmt"
	"io"
	"os"

	gowav "github.com/go-audio/wav"
)

// Probe validates path independently of ReadHeader using the go-audio
// decoder. It fails with ErrUnsupported for anything that is not 16-bit PCM
// or whose data chunk does not start right after a 44-byte header.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("could not open file: %w", err)
	}
	defer f.Close()

	d := gowav.NewDecoder(f)
	if !d.IsValidFile() {
		return Info{}, fmt.Errorf("%w: %s is not a valid WAV file", ErrUnsupported, path)
	}

	info := Info{
		SampleRate:  int(d.SampleRate),
		NumChannels: int(d.NumChans),
		BitDepth:    int(d.BitDepth),
		AudioFormat: int(d.WavAudioFormat),
	}
	if info.AudioFormat != 1 {
		return info, fmt.Errorf("%w: audio format %d is not PCM", ErrUnsupported, info.AudioFormat)
	}
	if info.BitDepth != 16 {
		return info, fmt.Errorf("%w: %d-bit audio, want 16-bit", ErrUnsupported, info.BitDepth)
	}

	if err := d.FwdToPCM(); err != nil {
		return info, fmt.Errorf("%w: no data chunk: %v", ErrUnsupported, err)
	}
	info.PCMLen = d.PCMLen()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return info, fmt.Errorf("error rewinding file: %w", err)
	}
	h, err := ReadHeader(f)
	if err != nil {
		return info, err
	}
	if string(h.Subchunk2ID[:]) != "data" || int64(h.Subchunk2Size) != info.PCMLen {
		return info, fmt.Errorf("%w: data chunk does not follow a %d-byte header", ErrUnsupported, HeaderSize)
	}

	return info, nil
}
