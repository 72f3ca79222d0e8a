package converter

import (
	"errors"
	"fmt"
	"os"
)

// Lump layout
const (
	LumpHeaderSize = 4
	MaxLumpSamples = 0xFFFF
)

// LumpConverter handles sound lump parsing and generation
type LumpConverter struct {
	device Device
}

// NewLumpConverter creates a new lump converter
func NewLumpConverter(device Device) *LumpConverter {
	return &LumpConverter{device: device}
}

// ParseLumpFile reads a lump file and returns its sound effect
func (l *LumpConverter) ParseLumpFile(filename string) (*SoundEffect, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read lump file: %w", err)
	}
	return l.ParseLump(data)
}

// ParseLump parses lump data and returns its sound effect
func (l *LumpConverter) ParseLump(data []byte) (*SoundEffect, error) {
	if l.device == nil {
		return nil, errors.New("no device configured")
	}

	if err := l.ValidateLump(data); err != nil {
		return nil, err
	}

	return l.device.ParseLump(data)
}

// GenerateLump creates lump data from a sound effect
func (l *LumpConverter) GenerateLump(fx *SoundEffect) ([]byte, error) {
	if l.device == nil {
		return nil, errors.New("no device configured")
	}
	return l.device.GenerateLump(fx)
}

// WriteLumpFile writes lump data to a file
func (l *LumpConverter) WriteLumpFile(fx *SoundEffect, filename string) error {
	data, err := l.GenerateLump(fx)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// ValidateLump validates the lump header and declared length
func (l *LumpConverter) ValidateLump(data []byte) error {
	if len(data) < LumpHeaderSize {
		return fmt.Errorf("%w: got %d bytes, need at least %d", ErrLumpTooShort, len(data), LumpHeaderSize)
	}

	if data[0] != 0 || data[1] != 0 {
		return fmt.Errorf("%w: reserved bytes are %02X %02X", ErrBadLumpHeader, data[0], data[1])
	}

	if n := LumpSampleCount(data); len(data) < LumpHeaderSize+n {
		return fmt.Errorf("%w: header declares %d samples, found %d", ErrLumpTruncated, n, len(data)-LumpHeaderSize)
	}

	return nil
}

// LumpSampleCount reads the little-endian sample count from a lump header
func LumpSampleCount(data []byte) int {
	if len(data) < LumpHeaderSize {
		return 0
	}
	return int(data[3])<<8 | int(data[2])
}
