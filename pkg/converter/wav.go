package converter

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/arl/blip"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV rendering defaults
const (
	DefaultSampleRate = 44100
	DefaultVolume     = 0.25
	wavBitDepth       = 16
	wavPCMFormat      = 1
)

// WAVOptions controls square wave rendering
type WAVOptions struct {
	SampleRate int
	Volume     float64 // 0..1 of full scale
}

func (o WAVOptions) withDefaults() WAVOptions {
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Volume <= 0 || o.Volume > 1 {
		o.Volume = DefaultVolume
	}
	return o
}

// pitClock is the PC's programmable interval timer input clock, which
// drives the speaker
const pitClock = 1193182

// squareWave emits band-limited edges into a blip buffer. Time is in
// clocks relative to the start of the current frame.
type squareWave struct {
	time   float64
	period float64 // clocks per half cycle
	phase  int
	volume int
	amp    int
}

func (sq *squareWave) run(bl *blip.Buffer, clocks int) {
	if sq.volume == 0 {
		if sq.amp != 0 {
			bl.AddDelta(0, int32(-sq.amp))
			sq.amp = 0
		}
		sq.time = 0
		return
	}

	for ; sq.time < float64(clocks); sq.time += sq.period {
		delta := sq.phase*sq.volume - sq.amp
		sq.amp += delta
		bl.AddDelta(uint64(sq.time), int32(delta))
		sq.phase = -sq.phase
	}
}

// RenderWAV renders a sound effect as a mono 16-bit square wave, one
// tone per tick at TickRate
func RenderWAV(w io.WriteSeeker, fx *SoundEffect, opts WAVOptions) error {
	if fx == nil {
		return errors.New("nil sound effect")
	}
	opts = opts.withDefaults()

	clocksPerTick := pitClock / TickRate
	frames := len(fx.Samples) * opts.SampleRate / TickRate

	bl := blip.NewBuffer(opts.SampleRate / 10)
	bl.SetRates(float64(clocksPerTick*TickRate), float64(opts.SampleRate))

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: opts.SampleRate},
		Data:           make([]int, 0, frames),
		SourceBitDepth: wavBitDepth,
	}

	sq := &squareWave{phase: 1}
	amplitude := int(opts.Volume * math.MaxInt16)
	temp := make([]int16, 512)

	for _, pitch := range fx.Samples {
		sq.volume = 0
		if hz, ok := Frequency(pitch); ok {
			sq.volume = amplitude
			sq.period = float64(clocksPerTick*TickRate) / hz / 2
		}

		sq.run(bl, clocksPerTick)
		bl.EndFrame(clocksPerTick)
		if sq.volume != 0 {
			sq.time -= float64(clocksPerTick)
		}

		for bl.SamplesAvailable() > 0 {
			n := bl.ReadSamples(temp, len(temp), blip.Mono)
			for _, v := range temp[:n] {
				buf.Data = append(buf.Data, int(v))
			}
		}
	}

	// The buffer holds back a few samples for its filter
	for len(buf.Data) < frames {
		buf.Data = append(buf.Data, 0)
	}
	buf.Data = buf.Data[:frames]

	enc := wav.NewEncoder(w, opts.SampleRate, wavBitDepth, 1, wavPCMFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}

	return nil
}

// WriteWAVFile renders a sound effect to a WAV file
func WriteWAVFile(fx *SoundEffect, filename string, opts WAVOptions) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return RenderWAV(f, fx, opts)
}

// GenerateWAV renders a sound effect to WAV bytes. The encoder needs to
// seek back to patch the header, so the data goes through a temp file.
func GenerateWAV(fx *SoundEffect, opts WAVOptions) ([]byte, error) {
	f, err := os.CreateTemp("", "tune2dp-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	if err := RenderWAV(f, fx, opts); err != nil {
		return nil, err
	}

	return os.ReadFile(f.Name())
}
