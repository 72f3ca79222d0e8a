package converter

import "math"

// Frequencies maps the driver's pitch index to a tone in Hz. Index 0 is
// silence; two indices make one semitone and index 33 is A4.
var Frequencies = [96]float64{
	0, 175.00, 180.02, 185.01, 190.02, 196.02, 202.02, 208.01, 214.02, 220.02,
	226.02, 233.04, 240.02, 247.03, 254.03, 262.00, 269.03, 277.03, 285.04,
	294.03, 302.07, 311.04, 320.05, 330.06, 339.06, 349.08, 359.06, 370.09,
	381.08, 392.10, 403.10, 415.01, 427.05, 440.12, 453.16, 466.08, 480.15,
	494.07, 508.16, 523.09, 539.16, 554.19, 571.17, 587.19, 604.14, 622.09,
	640.11, 659.21, 679.10, 698.17, 719.21, 740.18, 762.41, 784.47, 807.29,
	831.48, 855.32, 880.57, 906.67, 932.17, 960.69, 988.55, 1017.20, 1046.64,
	1077.85, 1109.93, 1141.79, 1175.54, 1210.12, 1244.19, 1281.61, 1318.43,
	1357.42, 1397.16, 1439.30, 1480.37, 1523.85, 1569.97, 1614.58, 1661.81,
	1711.87, 1762.45, 1813.34, 1864.34, 1921.38, 1975.46, 2036.14, 2093.29,
	2157.64, 2217.80, 2285.78, 2353.41, 2420.24, 2490.98, 2565.97, 2639.77,
}

// Reference points linking pitch indices to MIDI note numbers
const (
	pitchA4 = 33
	midiA4  = 69
)

// Frequency returns the tone for a pitch as the driver plays it. The
// pitch is truncated to a byte first, as in the lump. ok is false for
// silence and for pitches past the end of the table.
func Frequency(pitch int) (hz float64, ok bool) {
	p := int(uint8(pitch))
	if p == 0 || p >= len(Frequencies) {
		return 0, false
	}
	return Frequencies[p], true
}

// PitchToMIDINote maps a sounding pitch index to the nearest MIDI note
func PitchToMIDINote(pitch int) (uint8, bool) {
	if _, ok := Frequency(pitch); !ok {
		return 0, false
	}
	p := int(uint8(pitch))
	note := midiA4 + int(math.Round(float64(p-pitchA4)/2))
	if note < 0 || note > 127 {
		return 0, false
	}
	return uint8(note), true
}

// MIDINoteToPitch maps a MIDI note to the driver's pitch index
func MIDINoteToPitch(note uint8) (int, bool) {
	p := pitchA4 + 2*(int(note)-midiA4)
	if p <= 0 || p >= len(Frequencies) {
		return 0, false
	}
	return p, true
}
