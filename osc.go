package synth

import (
	"errors"
	"fmt"
	"math"
)

var ErrUnknownWaveform = errors.New("synth: unknown waveform")

// A Waveform maps a frequency and an elapsed time to a sample in [-1, 1].
type Waveform func(freq, seconds float64) float64

func Sine(freq, seconds float64) float64 {
	return math.Sin(2 * math.Pi * freq * seconds)
}

func Saw(freq, seconds float64) float64 {
	_, phase := math.Modf(freq * seconds)
	if phase < 0 {
		phase++
	}
	return 2*phase - 1
}

func Square(freq, seconds float64) float64 {
	if Saw(freq, seconds) < 0 {
		return 1
	}
	return -1
}

func Triangle(freq, seconds float64) float64 {
	return 1 - 2*math.Abs(Saw(freq, seconds))
}

var waveforms = map[string]Waveform{
	"sine":     Sine,
	"saw":      Saw,
	"square":   Square,
	"triangle": Triangle,
}

func ParseWaveform(name string) (Waveform, error) {
	if w, ok := waveforms[name]; ok {
		return w, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownWaveform, name)
}
