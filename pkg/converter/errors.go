package converter

import (
	"errors"
	"fmt"
)

// Tune parse errors
var (
	ErrUnrecognizedSegment = errors.New("unknown note")
	ErrUnrecognizedNote    = errors.New("unrecognized note token")
	ErrMissingDuration     = errors.New("no duration given")
	ErrZeroDuration        = errors.New("zero duration")
)

// Lump errors
var (
	ErrLumpTooShort  = errors.New("lump data too short")
	ErrBadLumpHeader = errors.New("not a PC speaker sound lump")
	ErrLumpTruncated = errors.New("lump ended abruptly")
)

// ErrInvalidMIDI reports MIDI input that cannot become a sound effect
var ErrInvalidMIDI = errors.New("invalid MIDI input")

// SegmentError reports which segment of a tune failed to parse
type SegmentError struct {
	Index   int    // Zero-based position after splitting on '/'
	Segment string // Offending segment text
	Token   string // Note token, when the note itself was rejected
	Err     error
}

func (e *SegmentError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("segment %d %q: %v %q", e.Index, e.Segment, e.Err, e.Token)
	}
	return fmt.Sprintf("segment %d %q: %v", e.Index, e.Segment, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}
