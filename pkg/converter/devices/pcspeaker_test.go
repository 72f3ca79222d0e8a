package devices

import (
	"bytes"
	"errors"
	"testing"

	"github.com/james-see/tune2dp/pkg/converter"
)

func TestPCSpeakerName(t *testing.T) {
	dev := NewPCSpeaker()
	if dev.Name() != "Doom PC Speaker" {
		t.Errorf("Name() = %q, want %q", dev.Name(), "Doom PC Speaker")
	}
	if dev.ID() != PCSpeakerID {
		t.Errorf("ID() = %q, want %q", dev.ID(), PCSpeakerID)
	}
	if dev.Extension() != ".lmp" {
		t.Errorf("Extension() = %q, want %q", dev.Extension(), ".lmp")
	}
}

func repeat(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestTuneToDP(t *testing.T) {
	conv := converter.New(NewPCSpeaker())

	tests := []struct {
		tune     string
		expected []byte
	}{
		{"c4", append([]byte{0x00, 0x00, 0x2D, 0x00}, repeat(0x27, 45)...)},
		{"r4", append([]byte{0x00, 0x00, 0x2D, 0x00}, repeat(0x00, 45)...)},
		{">c4", append([]byte{0x00, 0x00, 0x2D, 0x00}, repeat(63, 45)...)},
		{"C4", append([]byte{0x00, 0x00, 0x2D, 0x00}, repeat(0x27, 45)...)},
		{"", []byte{0x00, 0x00, 0x00, 0x00}},
		{"c1/c1", append([]byte{0x00, 0x00, 0x68, 0x01}, repeat(0x27, 360)...)},
	}

	for _, tt := range tests {
		t.Run(tt.tune, func(t *testing.T) {
			data, err := conv.TuneToDP(tt.tune)
			if err != nil {
				t.Fatalf("TuneToDP(%q) error = %v", tt.tune, err)
			}
			if !bytes.Equal(data, tt.expected) {
				t.Errorf("TuneToDP(%q) = % X, want % X", tt.tune, data, tt.expected)
			}
		})
	}
}

func TestTuneToDPErrors(t *testing.T) {
	conv := converter.New(NewPCSpeaker())

	tests := []struct {
		tune string
		want error
	}{
		{"z4", converter.ErrUnrecognizedSegment},
		{"c", converter.ErrMissingDuration},
		{"c4/d0", converter.ErrZeroDuration},
		{"c4/e+4", converter.ErrUnrecognizedNote},
	}

	for _, tt := range tests {
		t.Run(tt.tune, func(t *testing.T) {
			var buf bytes.Buffer
			err := conv.WriteDP(&buf, tt.tune)
			if !errors.Is(err, tt.want) {
				t.Fatalf("WriteDP(%q) error = %v, want %v", tt.tune, err, tt.want)
			}
			if buf.Len() != 0 {
				t.Errorf("WriteDP(%q) produced %d bytes, want none", tt.tune, buf.Len())
			}
		})
	}
}

func TestGenerateLumpTruncation(t *testing.T) {
	dev := NewPCSpeaker()

	// Four octaves up: 39 + 96 = 135; eight: 39 + 192 = 231; eleven: 303
	fx := &converter.SoundEffect{Samples: []int{135, 231, 303, -41}}
	data, err := dev.GenerateLump(fx)
	if err != nil {
		t.Fatalf("GenerateLump() error = %v", err)
	}

	expected := []byte{0x00, 0x00, 0x04, 0x00, 135, 231, 303 - 256, 256 - 41}
	if !bytes.Equal(data, expected) {
		t.Errorf("GenerateLump() = % X, want % X", data, expected)
	}
}

func TestGenerateLumpCountTruncation(t *testing.T) {
	dev := NewPCSpeaker()

	n := 0x10000 + 5
	data, err := dev.GenerateLump(&converter.SoundEffect{Samples: make([]int, n)})
	if err != nil {
		t.Fatalf("GenerateLump() error = %v", err)
	}

	if len(data) != converter.LumpHeaderSize+n {
		t.Errorf("lump length = %d, want %d", len(data), converter.LumpHeaderSize+n)
	}
	if data[2] != 0x05 || data[3] != 0x00 {
		t.Errorf("count field = %02X %02X, want 05 00", data[2], data[3])
	}
}

func TestLumpLengthProperty(t *testing.T) {
	conv := converter.New(NewPCSpeaker())

	tunes := []string{
		"c4/d4/e4/f4/g2",
		"<a-8/a8/a+8/b-8/b8/>c8/c+8/d-8/d8/d+8/e-8/e8/f8/f+8/g-8/g8/g+8",
		"r1./c1./r1./c1./r1./c1.",
		"c64/d96/e270/f271",
	}

	for _, tune := range tunes {
		segments, err := converter.ParseTune(tune)
		if err != nil {
			t.Fatalf("ParseTune(%q) error = %v", tune, err)
		}
		n := 0
		for _, seg := range segments {
			n += seg.Ticks
		}

		data, err := conv.TuneToDP(tune)
		if err != nil {
			t.Fatalf("TuneToDP(%q) error = %v", tune, err)
		}

		if len(data) != converter.LumpHeaderSize+n {
			t.Errorf("TuneToDP(%q) length = %d, want %d", tune, len(data), converter.LumpHeaderSize+n)
		}
		if got := converter.LumpSampleCount(data); got != n&0xFFFF {
			t.Errorf("TuneToDP(%q) count = %d, want %d", tune, got, n&0xFFFF)
		}
	}
}

func TestParseLump(t *testing.T) {
	dev := NewPCSpeaker()

	fx, err := dev.ParseLump([]byte{0x00, 0x00, 0x03, 0x00, 0x27, 0x27, 0x00, 0xFF})
	if err != nil {
		t.Fatalf("ParseLump() error = %v", err)
	}

	expected := []int{0x27, 0x27, 0x00}
	if len(fx.Samples) != len(expected) {
		t.Fatalf("ParseLump() samples = %v, want %v", fx.Samples, expected)
	}
	for i, v := range expected {
		if fx.Samples[i] != v {
			t.Errorf("sample %d = %d, want %d", i, fx.Samples[i], v)
		}
	}
}

func TestParseLumpErrors(t *testing.T) {
	dev := NewPCSpeaker()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"too short", []byte{0x00, 0x00, 0x01}, converter.ErrLumpTooShort},
		{"bad header", []byte{0x00, 0x01, 0x00, 0x00}, converter.ErrBadLumpHeader},
		{"truncated", []byte{0x00, 0x00, 0x02, 0x00, 0x27}, converter.ErrLumpTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dev.ParseLump(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseLump() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLumpRoundTrip(t *testing.T) {
	conv := converter.New(NewPCSpeaker())

	data, err := conv.TuneToDP("c8/r8/>e4./<<g-16")
	if err != nil {
		t.Fatalf("TuneToDP() error = %v", err)
	}

	fx, err := converter.NewLumpConverter(conv.GetDevice()).ParseLump(data)
	if err != nil {
		t.Fatalf("ParseLump() error = %v", err)
	}

	again, err := conv.GetDevice().GenerateLump(fx)
	if err != nil {
		t.Fatalf("GenerateLump() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("lump changed after parse and regenerate")
	}
}

func TestDPToMIDIAndWAV(t *testing.T) {
	conv := converter.New(NewPCSpeaker())

	data, err := conv.TuneToDP("c4/e4/g4")
	if err != nil {
		t.Fatal(err)
	}

	mid, err := conv.DPToMIDI(data)
	if err != nil {
		t.Fatalf("DPToMIDI() error = %v", err)
	}
	if converter.DetectFormatFromContent(mid) != converter.FormatMIDI {
		t.Error("DPToMIDI() output is not MIDI")
	}

	back, err := conv.MIDIToDP(mid)
	if err != nil {
		t.Fatalf("MIDIToDP() error = %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Errorf("MIDIToDP(DPToMIDI()) = % X, want % X", back, data)
	}

	wavData, err := conv.DPToWAV(data, converter.WAVOptions{})
	if err != nil {
		t.Fatalf("DPToWAV() error = %v", err)
	}
	if converter.DetectFormatFromContent(wavData) != converter.FormatWAV {
		t.Error("DPToWAV() output is not WAV")
	}
}
