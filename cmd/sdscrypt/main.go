package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattetti/sdscrypt/internal/analysis"
	"github.com/mattetti/sdscrypt/internal/converter"
	"github.com/mattetti/sdscrypt/internal/flac"
	"github.com/mattetti/sdscrypt/internal/noise"
	"github.com/mattetti/sdscrypt/internal/wav"
)

var (
	inputPath  string
	outputPath string
	mode       string
	noiseName  string
	key        int
	debugMode  bool
	lenient    bool
	analyze    bool
	flacMode   bool
	keepWAV    bool
	version    bool
)

func init() {
	flag.StringVar(&inputPath, "i", "", "Input WAV file (required)")
	flag.StringVar(&outputPath, "o", "", "Output directory (defaults to the input's directory)")
	flag.StringVar(&mode, "mode", "both", "What to do: both, encrypt or decrypt")
	flag.IntVar(&key, "key", 1, "Key seeding the noise generator (same value for both directions)")
	flag.StringVar(&noiseName, "noise", string(noise.KindSubtractive), "Noise generator: subtractive or pcg")
	flag.BoolVar(&debugMode, "d", false, "Debug mode")
	flag.BoolVar(&lenient, "lenient", false, "Write silence for unrecoverable samples instead of aborting")
	flag.BoolVar(&analyze, "analyze", false, "Print signal statistics of the input and output files")
	flag.BoolVar(&flacMode, "flac", false, "Convert the decrypted file to FLAC (requires ffmpeg)")
	flag.BoolVar(&keepWAV, "keep", false, "Keep the decrypted WAV file after FLAC conversion")
	flag.BoolVar(&version, "version", false, "Display version information")
}

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	// Display version if requested
	if version {
		fmt.Printf("sdscrypt version %s\n", VERSION)
		os.Exit(0)
	}

	if inputPath == "" {
		fmt.Println("Error: Input path is required. Use the -i flag.")
		printUsage()
		os.Exit(1)
	}
	if !strings.EqualFold(filepath.Ext(inputPath), ".wav") {
		fmt.Println("Error: Please supply a WAV file.")
		os.Exit(1)
	}
	if key < math.MinInt32 || key > math.MaxInt32 {
		fmt.Printf("Error: key %d does not fit in 32 bits\n", key)
		os.Exit(1)
	}
	kind, err := noise.ParseKind(noiseName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Set default output path if not provided
	if outputPath == "" {
		outputPath = filepath.Dir(inputPath)
	}

	if debugMode {
		fmt.Printf("DEBUG MODE: %t, MODE: %s, NOISE: %s, LENIENT: %t\n", debugMode, mode, kind, lenient)
	}

	if err := printInfo(inputPath); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	conv := converter.NewConverter(converter.Options{
		Debug:   debugMode,
		Noise:   kind,
		Lenient: lenient,
	})

	encPath := derivedPath(inputPath, outputPath, "encrypted")
	decPath := derivedPath(inputPath, outputPath, "decrypted")

	var outputs []string
	switch mode {
	case "both":
		enc, dec, err := conv.RoundTrip(inputPath, encPath, decPath, int32(key))
		if err == nil || dec.Path != "" {
			report("encrypting", enc)
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		report("decrypting", dec)
		outputs = []string{encPath, decPath}
	case "encrypt":
		enc, err := conv.EncryptFile(inputPath, encPath, int32(key))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		report("encrypting", enc)
		outputs = []string{encPath}
		decPath = ""
	case "decrypt":
		dec, err := conv.DecryptFile(inputPath, decPath, int32(key))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		report("decrypting", dec)
		outputs = []string{decPath}
	default:
		fmt.Printf("Error: unknown mode %q\n", mode)
		printUsage()
		os.Exit(1)
	}

	if analyze {
		printAnalysis(inputPath)
		for _, out := range outputs {
			printAnalysis(out)
		}
	}

	// Convert WAV to FLAC if requested
	if flacMode && decPath != "" {
		convertToFlac(decPath)
	}
}

// derivedPath names an output after the input: "song.wav" becomes
// "song (encrypted).wav". An existing " (encrypted)" marker is replaced.
func derivedPath(input, outputDir, tag string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	for _, marker := range []string{" (encrypted)", " (decrypted)"} {
		name = strings.TrimSuffix(name, marker)
	}
	return filepath.Join(outputDir, fmt.Sprintf("%s (%s).wav", name, tag))
}

// printInfo outputs some basic info about a WAV file
func printInfo(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	h, err := wav.ReadHeader(f)
	if err != nil {
		return err
	}

	fmt.Printf("File name: %s\n", path)
	fmt.Printf("Number of channels: %d\n", h.NumChannels)
	fmt.Printf("Sample rate: %d\n", h.SampleRate)
	fmt.Printf("Bytes per second: %d\n", h.ByteRate)
	fmt.Printf("Bytes per sample: %d\n", h.BlockAlign)
	fmt.Printf("Bits per sample: %d\n", h.BitsPerSample)
	fmt.Printf("Size of data (bytes): %d\n", h.Subchunk2Size)
	fmt.Printf("Size of chunk (data size + 36 bytes): %d\n", h.ChunkSize)
	fmt.Printf("Sound duration: %s\n\n", formatDuration(h.Duration()))
	return nil
}

// formatDuration renders d as mm:ss.ss
func formatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	seconds := (d - time.Duration(minutes)*time.Minute).Seconds()
	return fmt.Sprintf("%02d:%05.2f", minutes, seconds)
}

func report(verb string, res converter.Result) {
	if res.Path == "" {
		return
	}
	fmt.Printf("Finished %s %d samples in %.2f seconds -> %s\n", verb, res.Samples, res.Elapsed.Seconds(), res.Path)
	if len(res.Faults) > 0 {
		fmt.Printf("%d samples could not be recovered and were written as silence\n", len(res.Faults))
		for i, f := range res.Faults {
			if i == 5 && !debugMode {
				fmt.Printf("  ... and %d more\n", len(res.Faults)-i)
				break
			}
			fmt.Printf("  %v\n", &f)
		}
	}
}

// printAnalysis prints signal statistics of a file's data region. Files
// named "... (encrypted).wav" are read as 8-byte values.
func printAnalysis(path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error opening %s for analysis: %v\n", path, err)
		return
	}
	defer f.Close()

	var samples []float64
	if strings.Contains(filepath.Base(path), "(encrypted)") {
		if _, err = wav.ReadHeader(f); err == nil {
			samples, err = analysis.ReadFloat64(f, 1<<20)
		}
	} else {
		samples, err = analysis.LoadPCM(f)
	}
	if err != nil {
		fmt.Printf("Error analyzing %s: %v\n", path, err)
		return
	}

	r := analysis.Analyze(samples)
	fmt.Printf("%s: %d samples, mean %.5f, std dev %.5f, range [%.5f, %.5f], spectral flatness %.4f\n",
		filepath.Base(path), r.Samples, r.Mean, r.StdDev, r.Min, r.Max, r.Flatness)
}

// convertToFlac converts the decrypted WAV file to FLAC
func convertToFlac(wavFile string) {
	flacConverter, err := flac.NewConverter(debugMode, keepWAV)
	if err != nil {
		fmt.Printf("Error initializing FLAC converter: %v\n", err)
		fmt.Println("The decrypted file was not converted to FLAC.")
		return
	}

	startTime := time.Now()
	flacFile, err := flacConverter.ConvertToFlac(wavFile)
	if err != nil {
		fmt.Printf("Error converting to FLAC: %v\n", err)
		return
	}

	fmt.Printf("FLAC conversion of %s completed in %.2f seconds.\n", filepath.Base(flacFile), time.Since(startTime).Seconds())
}

func printUsage() {
	fmt.Println("Usage: sdscrypt -i <file.wav> [options]")
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println("\nExamples:")
	fmt.Println("  sdscrypt -i song.wav                                # Encrypt, then decrypt with key 1")
	fmt.Println("  sdscrypt -i song.wav -mode encrypt -key 7           # Only write song (encrypted).wav")
	fmt.Println("  sdscrypt -i \"song (encrypted).wav\" -mode decrypt -key 7")
	fmt.Println("  sdscrypt -i song.wav -analyze -flac                 # Report statistics, export FLAC")
}
