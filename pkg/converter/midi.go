package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDIConverter handles MIDI file parsing and generation
type MIDIConverter struct {
	ticksPerQuarter uint16
	tempo           float64
	channel         uint8
	velocity        uint8
}

// NewMIDIConverter creates a new MIDI converter. The defaults make one
// MIDI tick last exactly one speaker tick.
func NewMIDIConverter() *MIDIConverter {
	return &MIDIConverter{
		ticksPerQuarter: TickRate,
		tempo:           60.0,
		channel:         0,
		velocity:        100,
	}
}

// SetVelocity sets the note-on velocity used by GenerateMIDI
func (m *MIDIConverter) SetVelocity(velocity uint8) {
	if velocity > 127 {
		velocity = 127
	}
	m.velocity = velocity
}

// ParseMIDIFile reads a MIDI file and extracts a sound effect
func (m *MIDIConverter) ParseMIDIFile(filename string) (*SoundEffect, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return m.ParseMIDI(data)
}

// ParseMIDI parses MIDI data into a sound effect. Tempo changes are
// followed across the file. The speaker is monophonic, so the highest
// sounding note wins on every tick.
func (m *MIDIConverter) ParseMIDI(data []byte) (*SoundEffect, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse MIDI: %v", ErrInvalidMIDI, err)
	}

	resolution := float64(m.ticksPerQuarter)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		resolution = float64(mt.Resolution())
	}

	type noteEvent struct {
		tick  int64
		pitch int
		on    bool
	}

	type tempoChange struct {
		tick          int64
		microsPerBeat float64
	}

	var events []noteEvent
	var tempos []tempoChange
	var lastTick int64

	for _, track := range s.Tracks {
		var currentTick int64
		for _, ev := range track {
			currentTick += int64(ev.Delta)
			if currentTick > lastTick {
				lastTick = currentTick
			}
			msg := ev.Message

			// Tempo meta message (FF 51 03 tt tt tt)
			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				microsecondsPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if microsecondsPerBeat > 0 {
					tempos = append(tempos, tempoChange{tick: currentTick, microsPerBeat: float64(microsecondsPerBeat)})
				}
				continue
			}

			if len(msg) < 3 {
				continue
			}

			status := msg[0] & 0xF0
			noteNum := msg[1]
			velocity := msg[2]

			on := status == 0x90 && velocity > 0
			off := status == 0x80 || (status == 0x90 && velocity == 0)
			if !on && !off {
				continue
			}

			pitch, ok := MIDINoteToPitch(noteNum)
			if !ok {
				return nil, fmt.Errorf("%w: note %d is outside the speaker range", ErrInvalidMIDI, noteNum)
			}

			events = append(events, noteEvent{tick: currentTick, pitch: pitch, on: on})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})
	sort.SliceStable(tempos, func(i, j int) bool {
		return tempos[i].tick < tempos[j].tick
	})

	// speakerTick converts a MIDI tick to speaker ticks through the tempo map
	speakerTick := func(tick int64) int {
		micros := 60000000.0 / m.tempo
		var last int64
		var elapsed float64
		for _, tc := range tempos {
			if tc.tick >= tick {
				break
			}
			elapsed += float64(tc.tick-last) * micros / resolution
			last, micros = tc.tick, tc.microsPerBeat
		}
		elapsed += float64(tick-last) * micros / resolution
		return int(elapsed*TickRate/1e6 + 0.5)
	}

	fx := &SoundEffect{}
	active := make(map[int]int)
	fill := func(tick int64) {
		target := speakerTick(tick)
		highest := 0
		for pitch, count := range active {
			if count > 0 && pitch > highest {
				highest = pitch
			}
		}
		for len(fx.Samples) < target {
			fx.Samples = append(fx.Samples, highest)
		}
	}

	for _, ev := range events {
		fill(ev.tick)
		if ev.on {
			active[ev.pitch]++
		} else if active[ev.pitch] > 0 {
			active[ev.pitch]--
		}
	}
	fill(lastTick)

	if len(fx.Samples) > MaxLumpSamples {
		return nil, fmt.Errorf("%w: MIDI data spans %d ticks, lump holds at most %d", ErrInvalidMIDI, len(fx.Samples), MaxLumpSamples)
	}

	return fx, nil
}

// GenerateMIDI creates MIDI data from a sound effect
func (m *MIDIConverter) GenerateMIDI(fx *SoundEffect) ([]byte, error) {
	if fx == nil {
		return nil, errors.New("nil sound effect")
	}

	tempo := m.tempo
	if tempo <= 0 {
		tempo = 60.0
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var track smf.Track

	microsecondsPerBeat := uint32(60000000.0 / tempo)
	tempoData := smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	})
	track.Add(0, tempoData)

	// MIDI ticks per speaker tick
	scale := float64(m.ticksPerQuarter) * tempo / 60.0 / TickRate

	var pos, emitted int
	for _, run := range fx.Runs() {
		start := uint32(float64(pos)*scale + 0.5)
		pos += run.Length
		end := uint32(float64(pos)*scale + 0.5)

		note, ok := PitchToMIDINote(run.Value)
		if !ok {
			continue
		}

		track.Add(start-uint32(emitted), midi.NoteOn(m.channel, note, m.velocity))
		track.Add(end-start, midi.NoteOff(m.channel, note))
		emitted = int(end)
	}

	// Pad trailing rests so the file lasts as long as the effect
	if total := uint32(float64(pos)*scale + 0.5); total > uint32(emitted) {
		track.Add(total-uint32(emitted), smf.Message([]byte{0xFF, 0x06, 0x00}))
	}

	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteMIDIFile writes MIDI data to a file
func (m *MIDIConverter) WriteMIDIFile(fx *SoundEffect, filename string) error {
	data, err := m.GenerateMIDI(fx)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
