// Package devices provides device-specific lump handlers
package devices

import (
	"errors"
	"fmt"

	"github.com/james-see/tune2dp/pkg/converter"
)

// PC speaker lump constants
const (
	PCSpeakerID   = "dp"
	CountOffset   = 2
	SamplesOffset = converter.LumpHeaderSize
)

// PCSpeaker implements the Device interface for Doom's PC speaker
// sound effects (DP* lumps)
type PCSpeaker struct{}

// NewPCSpeaker creates a new PC speaker device handler
func NewPCSpeaker() *PCSpeaker {
	return &PCSpeaker{}
}

// Name returns the device name
func (p *PCSpeaker) Name() string {
	return "Doom PC Speaker"
}

// ID returns the device ID
func (p *PCSpeaker) ID() string {
	return PCSpeakerID
}

// Extension returns the lump file extension
func (p *PCSpeaker) Extension() string {
	return converter.FormatDP.Extension()
}

// ParseLump parses a DP lump into a sound effect.
//
// Layout: two reserved zero bytes, a little-endian sample count, then
// one pitch byte per tick. Bytes past the declared count are ignored.
func (p *PCSpeaker) ParseLump(data []byte) (*converter.SoundEffect, error) {
	if len(data) < converter.LumpHeaderSize {
		return nil, converter.ErrLumpTooShort
	}

	if data[0] != 0 || data[1] != 0 {
		return nil, converter.ErrBadLumpHeader
	}

	n := converter.LumpSampleCount(data)
	if len(data) < SamplesOffset+n {
		return nil, fmt.Errorf("%w: expected %d samples, got %d", converter.ErrLumpTruncated, n, len(data)-SamplesOffset)
	}

	fx := &converter.SoundEffect{Samples: make([]int, n)}
	for i, b := range data[SamplesOffset : SamplesOffset+n] {
		fx.Samples[i] = int(b)
	}

	return fx, nil
}

// GenerateLump generates DP lump data from a sound effect. The count is
// truncated to 16 bits and every sample to its low byte.
func (p *PCSpeaker) GenerateLump(fx *converter.SoundEffect) ([]byte, error) {
	if fx == nil {
		return nil, errors.New("nil sound effect")
	}

	n := len(fx.Samples)
	data := make([]byte, SamplesOffset+n)

	// Reserved
	data[0] = 0x00
	data[1] = 0x00

	// Sample count
	data[CountOffset] = byte(n & 0xFF)
	data[CountOffset+1] = byte((n >> 8) & 0xFF)

	for i, s := range fx.Samples {
		data[SamplesOffset+i] = byte(s)
	}

	return data, nil
}
