// Package converter turns tune notation into Doom PC speaker sound effects
package converter

import "time"

// TickRate is the PC speaker driver's playback rate in ticks per second
const TickRate = 140

// Segment represents a single parsed tune segment
type Segment struct {
	Raw       string // Segment text as it appeared in the tune (lowercased)
	Note      string // Note token ("c", "g+", "r", ...)
	BasePitch int    // Table value before octave shift (0 for rests)
	Octave    int    // Octave in effect for this segment
	Pitch     int    // Effective pitch written for every tick
	Duration  int    // Duration digits as written
	Dotted    bool   // Segment contains a '.'
	Ticks     int    // Number of ticks this segment expands to
}

// IsRest reports whether the segment is a rest
func (s Segment) IsRest() bool {
	return s.Note == "r"
}

// SoundEffect is the expanded per-tick pitch sequence
type SoundEffect struct {
	Samples []int
}

// Run is a group of consecutive equal samples
type Run struct {
	Value  int
	Length int
}

// Len returns the number of ticks in the sound effect
func (fx *SoundEffect) Len() int {
	return len(fx.Samples)
}

// Duration returns the playback time at TickRate
func (fx *SoundEffect) Duration() time.Duration {
	return time.Duration(len(fx.Samples)) * time.Second / TickRate
}

// Runs groups the sample stream into runs of equal values, the way the
// player consumes it
func (fx *SoundEffect) Runs() []Run {
	var runs []Run
	for _, s := range fx.Samples {
		if n := len(runs); n > 0 && runs[n-1].Value == s {
			runs[n-1].Length++
			continue
		}
		runs = append(runs, Run{Value: s, Length: 1})
	}
	return runs
}

// Device interface for target driver lump handling
type Device interface {
	Name() string
	ID() string
	Extension() string
	ParseLump(data []byte) (*SoundEffect, error)
	GenerateLump(fx *SoundEffect) ([]byte, error)
}

// Converter handles format conversions
type Converter struct {
	device   Device
	wav      WAVOptions
	velocity uint8
}

// New creates a new Converter with the specified device
func New(device Device) *Converter {
	return &Converter{device: device}
}

// GetDevice returns the current device
func (c *Converter) GetDevice() Device {
	return c.device
}

// SetDevice sets the device for conversion
func (c *Converter) SetDevice(device Device) {
	c.device = device
}

// SetWAVOptions sets the rendering options used by Convert
func (c *Converter) SetWAVOptions(opts WAVOptions) {
	c.wav = opts
}

// SetVelocity sets the note velocity used for MIDI output; 0 keeps the default
func (c *Converter) SetVelocity(velocity uint8) {
	c.velocity = velocity
}

func (c *Converter) midiConverter() *MIDIConverter {
	m := NewMIDIConverter()
	if c.velocity > 0 {
		m.SetVelocity(c.velocity)
	}
	return m
}
