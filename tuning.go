package synth

import (
	"errors"
	"fmt"
	"math"
)

var ErrUnknownTuning = errors.New("synth: unknown tuning")

// DefaultTonic is the reference pitch, A4.
const DefaultTonic = 440.0

type Tuning int32

const (
	Just Tuning = iota
	Equal
)

func (t Tuning) String() string {
	switch t {
	case Just:
		return "just"
	case Equal:
		return "equal"
	}
	return fmt.Sprintf("Tuning(%d)", int32(t))
}

func ParseTuning(s string) (Tuning, error) {
	switch s {
	case "just":
		return Just, nil
	case "equal":
		return Equal, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownTuning, s)
}

// An Interval is a position on the 5-limit lattice: a number of octaves,
// perfect fifths and major thirds above the tonic.
type Interval struct {
	Octaves, Fifths, Thirds int
}

func (iv Interval) Semitones() int {
	return 12*iv.Octaves + 7*iv.Fifths + 4*iv.Thirds
}

func Pitch(t Tuning, tonic float64, iv Interval) float64 {
	switch t {
	case Equal:
		return tonic * math.Pow(2, float64(iv.Semitones())/12)
	case Just:
		return tonic * math.Pow(2, float64(iv.Octaves)) * math.Pow(1.5, float64(iv.Fifths)) * math.Pow(1.25, float64(iv.Thirds))
	}
	panic(fmt.Sprintf("synth.Pitch: %v", t))
}

// chromatic spells each step of the octave with the simplest 5-limit ratio.
var chromatic = [12]Interval{
	{0, 0, 0},   // 1/1
	{1, -1, -1}, // 16/15
	{-1, 2, 0},  // 9/8
	{0, 1, -1},  // 6/5
	{0, 0, 1},   // 5/4
	{1, -1, 0},  // 4/3
	{-1, 2, 1},  // 45/32
	{0, 1, 0},   // 3/2
	{1, 0, -1},  // 8/5
	{1, -1, 1},  // 5/3
	{0, 2, -1},  // 9/5
	{0, 1, 1},   // 15/8
}

// Semitone returns the interval n equal-tempered semitones above the tonic,
// spelled so that its just pitch is the usual 5-limit ratio.
func Semitone(n int) Interval {
	oct, step := n/12, n%12
	if step < 0 {
		oct--
		step += 12
	}
	iv := chromatic[step]
	iv.Octaves += oct
	return iv
}
