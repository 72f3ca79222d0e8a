package converter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format represents a file format
type Format string

const (
	FormatTune    Format = "tune"
	FormatDP      Format = "dp"
	FormatMIDI    Format = "midi"
	FormatWAV     Format = "wav"
	FormatUnknown Format = "unknown"
)

// Extension returns the default file extension for a format
func (f Format) Extension() string {
	switch f {
	case FormatTune:
		return ".txt"
	case FormatDP:
		return ".lmp"
	case FormatMIDI:
		return ".mid"
	case FormatWAV:
		return ".wav"
	default:
		return ""
	}
}

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".tune":
		return FormatTune
	case ".lmp", ".dp":
		return FormatDP
	case ".mid", ".midi":
		return FormatMIDI
	case ".wav":
		return FormatWAV
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	if string(data[:4]) == "RIFF" {
		return FormatWAV
	}

	// Lumps start with two zero bytes, which never occur in tune text
	if data[0] == 0 && data[1] == 0 {
		return FormatDP
	}

	if utf8.Valid(data) {
		return FormatTune
	}

	return FormatUnknown
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	inputFormat := DetectFormat(inputPath)
	outputFormat := DetectFormat(outputPath)

	// Read input
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}

	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	outputData, err := c.Convert(data, inputFormat, outputFormat)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	// Write output
	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// Convert converts data between formats
func (c *Converter) Convert(data []byte, from, to Format) ([]byte, error) {
	if from == FormatTune {
		tune, err := ReadTune(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		switch to {
		case FormatDP:
			return c.TuneToDP(tune)
		case FormatMIDI:
			return c.TuneToMIDI(tune)
		case FormatWAV:
			return c.TuneToWAV(tune, c.wav)
		}
	}

	switch {
	case from == FormatDP && to == FormatMIDI:
		return c.DPToMIDI(data)
	case from == FormatDP && to == FormatWAV:
		return c.DPToWAV(data, c.wav)
	case from == FormatMIDI && to == FormatDP:
		return c.MIDIToDP(data)
	case from == FormatMIDI && to == FormatWAV:
		fx, err := NewMIDIConverter().ParseMIDI(data)
		if err != nil {
			return nil, err
		}
		return GenerateWAV(fx, c.wav)
	}

	return nil, fmt.Errorf("unsupported conversion: %s to %s", from, to)
}

// WriteDP converts a tune and writes the lump in a single write. Nothing
// is written if the tune fails to parse.
func (c *Converter) WriteDP(w io.Writer, tune string) error {
	data, err := c.TuneToDP(tune)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write lump: %w", err)
	}
	return nil
}

// TuneToDP converts a tune to lump data
func (c *Converter) TuneToDP(tune string) ([]byte, error) {
	fx, err := ConvertTune(tune)
	if err != nil {
		return nil, err
	}
	return NewLumpConverter(c.device).GenerateLump(fx)
}

// TuneToMIDI converts a tune to MIDI data
func (c *Converter) TuneToMIDI(tune string) ([]byte, error) {
	fx, err := ConvertTune(tune)
	if err != nil {
		return nil, err
	}
	return c.midiConverter().GenerateMIDI(fx)
}

// TuneToWAV renders a tune to WAV data
func (c *Converter) TuneToWAV(tune string, opts WAVOptions) ([]byte, error) {
	fx, err := ConvertTune(tune)
	if err != nil {
		return nil, err
	}
	return GenerateWAV(fx, opts)
}

// DPToMIDI converts lump data to MIDI format
func (c *Converter) DPToMIDI(lumpData []byte) ([]byte, error) {
	fx, err := NewLumpConverter(c.device).ParseLump(lumpData)
	if err != nil {
		return nil, err
	}
	return c.midiConverter().GenerateMIDI(fx)
}

// DPToWAV renders lump data to WAV format
func (c *Converter) DPToWAV(lumpData []byte, opts WAVOptions) ([]byte, error) {
	fx, err := NewLumpConverter(c.device).ParseLump(lumpData)
	if err != nil {
		return nil, err
	}
	return GenerateWAV(fx, opts)
}

// MIDIToDP converts MIDI data to lump data
func (c *Converter) MIDIToDP(midiData []byte) ([]byte, error) {
	fx, err := NewMIDIConverter().ParseMIDI(midiData)
	if err != nil {
		return nil, err
	}
	return NewLumpConverter(c.device).GenerateLump(fx)
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"tune -> dp",
		"tune -> midi",
		"tune -> wav",
		"dp -> midi",
		"dp -> wav",
		"midi -> dp",
		"midi -> wav",
	}
}
