package converter

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestWriteWAVFile(t *testing.T) {
	fx, err := ConvertTune("c4/r4")
	if err != nil {
		t.Fatalf("ConvertTune() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "beep.wav")
	if err := WriteWAVFile(fx, path, WAVOptions{SampleRate: 14000}); err != nil {
		t.Fatalf("WriteWAVFile() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("rendered file is not a valid WAV")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}

	if dec.SampleRate != 14000 {
		t.Errorf("SampleRate = %d, want 14000", dec.SampleRate)
	}
	if dec.NumChans != 1 {
		t.Errorf("NumChans = %d, want 1", dec.NumChans)
	}

	framesPerTick := 14000 / TickRate
	if len(buf.Data) != fx.Len()*framesPerTick {
		t.Fatalf("frames = %d, want %d", len(buf.Data), fx.Len()*framesPerTick)
	}

	amplitude := int(DefaultVolume * math.MaxInt16)
	half := len(buf.Data) / 2
	tone, rest := buf.Data[:half], buf.Data[half:]

	// Tone half swings near full amplitude at roughly the note's frequency
	peak, crossings := 0, 0
	for i, v := range tone {
		if abs(v) > peak {
			peak = abs(v)
		}
		if i > 0 && (tone[i-1] < 0) != (v < 0) {
			crossings++
		}
	}
	if peak < amplitude/2 {
		t.Errorf("tone peak = %d, want at least %d", peak, amplitude/2)
	}

	hz, _ := Frequency(39)
	seconds := float64(len(tone)) / 14000
	want := int(2 * hz * seconds)
	if crossings < want*9/10 || crossings > want*11/10 {
		t.Errorf("tone zero crossings = %d, want about %d", crossings, want)
	}

	// Rest half settles to silence once the last edge rings out
	for i, v := range rest[len(rest)/2:] {
		if abs(v) > amplitude/50 {
			t.Fatalf("rest frame %d = %d, want near 0", len(rest)/2+i, v)
		}
	}
}

func TestRenderWAVSilence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiet.wav")
	if err := WriteWAVFile(&SoundEffect{Samples: []int{0, 0, 0, 200}}, path, WAVOptions{SampleRate: 14000}); err != nil {
		t.Fatalf("WriteWAVFile() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}

	if len(buf.Data) != 4*100 {
		t.Fatalf("frames = %d, want %d", len(buf.Data), 4*100)
	}
	for i, v := range buf.Data {
		if v != 0 {
			t.Fatalf("frame %d = %d, want 0", i, v)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestGenerateWAV(t *testing.T) {
	data, err := GenerateWAV(&SoundEffect{Samples: []int{33, 33, 0}}, WAVOptions{})
	if err != nil {
		t.Fatalf("GenerateWAV() error = %v", err)
	}
	if DetectFormatFromContent(data) != FormatWAV {
		t.Errorf("GenerateWAV() output not detected as WAV")
	}
}

func TestRenderWAVNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nil.wav")
	if err := WriteWAVFile(nil, path, WAVOptions{}); err == nil {
		t.Error("WriteWAVFile(nil) should fail")
	}
}
