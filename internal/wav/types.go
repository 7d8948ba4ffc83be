package wav

import "time"

// HeaderSize is the size of the canonical header; the data region starts
// right after it.
const HeaderSize = 44

// Header represents the canonical 44-byte RIFF/WAVE header
type Header struct {
	// RIFF header
	ChunkID   [4]byte // "RIFF"
	ChunkSize uint32  // 36 + Subchunk2Size
	Format    [4]byte // "WAVE"

	// fmt sub-chunk
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16  // 1 for mono, 2 for stereo
	SampleRate    uint32  // e.g., 44100
	ByteRate      uint32  // SampleRate * NumChannels * BitsPerSample/8
	BlockAlign    uint16  // NumChannels * BitsPerSample/8
	BitsPerSample uint16  // 16

	// data sub-chunk
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // bytes of sample data that follow
}

// Info summarizes a probed file
type Info struct {
	SampleRate  int
	NumChannels int
	BitDepth    int
	AudioFormat int
	PCMLen      int64 // bytes in the data chunk
}

// Duration is the playing time of the data chunk
func (i Info) Duration() time.Duration {
	bytesPerFrame := int64(i.BitDepth / 8 * i.NumChannels)
	if bytesPerFrame == 0 || i.SampleRate == 0 {
		return 0
	}
	frames := i.PCMLen / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(i.SampleRate)
}
