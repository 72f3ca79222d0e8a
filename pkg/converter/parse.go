package converter

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Tick budgets per whole note; a duration digit divides them
const (
	plainTicks  = 90 * 2
	dottedTicks = 90 * 3
)

// OctaveStep is the pitch offset of one octave shift
const OctaveStep = 24

// SegmentSeparator splits a tune into segments
const SegmentSeparator = "/"

// BasePitches maps note tokens to the driver's pitch index. Rests are
// not listed and always play as 0.
var BasePitches = map[string]int{
	"a-": 31,
	"a":  33,
	"a+": 35,
	"b-": 35,
	"b":  37,
	"c":  39,
	"c+": 41,
	"d-": 41,
	"d":  43,
	"d+": 45,
	"e-": 45,
	"e":  47,
	"f":  49,
	"f+": 51,
	"g-": 51,
	"g":  53,
	"g+": 55,
}

var (
	noteRe     = regexp.MustCompile(`[abcdefgr][-+]?`)
	durationRe = regexp.MustCompile(`[0-9]+`)
)

// ParseTune splits a tune into segments and parses each one, carrying
// the octave from segment to segment. Empty segments are dropped.
func ParseTune(tune string) ([]Segment, error) {
	octave := 0
	var segments []Segment

	for i, raw := range strings.Split(strings.ToLower(tune), SegmentSeparator) {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		seg, err := ParseSegment(raw, octave)
		if err != nil {
			var segErr *SegmentError
			if errors.As(err, &segErr) {
				segErr.Index = i
			}
			return nil, err
		}
		octave = seg.Octave
		segments = append(segments, seg)
	}

	return segments, nil
}

// ParseSegment parses one segment given the octave in effect before it.
// The returned Segment's Octave includes any shifts the segment applies.
func ParseSegment(raw string, octave int) (Segment, error) {
	raw = strings.ToLower(raw)
	seg := Segment{Raw: raw, Octave: octave}

	// Both markers may be present; each applies independently.
	if strings.Contains(raw, "<") {
		seg.Octave--
	}
	if strings.Contains(raw, ">") {
		seg.Octave++
	}

	seg.Note = noteRe.FindString(raw)
	if seg.Note == "" {
		return Segment{}, &SegmentError{Segment: raw, Err: ErrUnrecognizedSegment}
	}

	if !seg.IsRest() {
		base, ok := BasePitches[seg.Note]
		if !ok {
			return Segment{}, &SegmentError{Segment: raw, Token: seg.Note, Err: ErrUnrecognizedNote}
		}
		seg.BasePitch = base
		seg.Pitch = base + seg.Octave*OctaveStep
	}

	digits := durationRe.FindString(raw)
	if digits == "" {
		return Segment{}, &SegmentError{Segment: raw, Err: ErrMissingDuration}
	}

	budget := plainTicks
	if strings.Contains(raw, ".") {
		seg.Dotted = true
		budget = dottedTicks
	}

	duration, err := strconv.Atoi(digits)
	switch {
	case errors.Is(err, strconv.ErrRange):
		// Longer than any tick budget: plays for zero ticks.
		seg.Duration = int(^uint(0) >> 1)
		seg.Ticks = 0
	case err != nil:
		return Segment{}, &SegmentError{Segment: raw, Err: ErrMissingDuration}
	case duration == 0:
		return Segment{}, &SegmentError{Segment: raw, Err: ErrZeroDuration}
	default:
		seg.Duration = duration
		seg.Ticks = budget / duration
	}

	return seg, nil
}

// Expand lays out each segment's pitch once per tick, in order
func Expand(segments []Segment) *SoundEffect {
	total := 0
	for _, seg := range segments {
		total += seg.Ticks
	}

	fx := &SoundEffect{Samples: make([]int, 0, total)}
	for _, seg := range segments {
		for i := 0; i < seg.Ticks; i++ {
			fx.Samples = append(fx.Samples, seg.Pitch)
		}
	}
	return fx
}

// ConvertTune parses a tune and expands it into a sound effect
func ConvertTune(tune string) (*SoundEffect, error) {
	segments, err := ParseTune(tune)
	if err != nil {
		return nil, err
	}
	return Expand(segments), nil
}
