package flac

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Converter handles converting recovered WAV files to FLAC
type Converter struct {
	ffmpegPath string
	debug      bool
	keepWAV    bool
}

// NewConverter creates a new FLAC converter
func NewConverter(debug, keepWAV bool) (*Converter, error) {
	// Find ffmpeg in the system
	ffmpegPath, err := findFFmpeg()
	if err != nil {
		return nil, err
	}

	return &Converter{
		ffmpegPath: ffmpegPath,
		debug:      debug,
		keepWAV:    keepWAV,
	}, nil
}

// findFFmpeg locates the ffmpeg binary on the system
func findFFmpeg() (string, error) {
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	// Check common installation locations based on OS
	var commonPaths []string
	switch runtime.GOOS {
	case "windows":
		commonPaths = []string{
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		commonPaths = []string{
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/opt/local/bin/ffmpeg",
		}
	default:
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/ffmpeg/bin/ffmpeg",
		}
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("ffmpeg not found. Please install ffmpeg to use the FLAC conversion feature")
}

// FlacName returns the FLAC path written for wavFile
func FlacName(wavFile string) string {
	return strings.TrimSuffix(wavFile, ".wav") + ".flac"
}

// stream builds the ffmpeg invocation for one file
func stream(wavFile, flacFile string) *ffmpeg.Stream {
	return ffmpeg.Input(wavFile).
		Output(flacFile, ffmpeg.KwArgs{
			"c:a":               "flac", // Use FLAC codec
			"compression_level": 8,      // Maximum compression
		}).
		OverWriteOutput()
}

// ConvertToFlac converts a recovered WAV file to FLAC and returns the new
// path. Transformed files hold 8-byte values behind a 16-bit header and
// would not survive lossless re-encoding, so only recovered files belong
// here.
func (c *Converter) ConvertToFlac(wavFile string) (string, error) {
	// Check if input file exists
	if _, err := os.Stat(wavFile); os.IsNotExist(err) {
		return "", fmt.Errorf("input file does not exist: %s", wavFile)
	}

	flacFile := FlacName(wavFile)
	// Compile resolves "ffmpeg" on PATH, which misses the fallback locations
	cmd := exec.Command(c.ffmpegPath, stream(wavFile, flacFile).GetArgs()...)

	// If debug mode is on, show the ffmpeg output
	if c.debug {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		fmt.Printf("Running: %s\n", cmd.String())
	} else {
		cmd.Stdout = nil
		cmd.Stderr = nil
	}

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error converting to FLAC: %w", err)
	}

	if !c.keepWAV {
		if err := os.Remove(wavFile); err != nil {
			return flacFile, fmt.Errorf("error removing original WAV file: %w", err)
		}
	}

	return flacFile, nil
}
