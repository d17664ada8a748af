package synth

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/ktye/fft"
)

// Render plays g on a fresh clock for the given number of frames, away from
// any device, and returns the samples.  g must already be initialised for p,
// as it is once passed to Engine.Instrument.  Render returns nil for a
// non-positive frame count.
func Render(g Generator, p Params, frames int) []float64 {
	if frames <= 0 {
		return nil
	}
	v := newVoice(0, nil, g, p)
	buf := make([]float32, min(frames, max(p.BufferSize, 1)))
	out := make([]float64, 0, frames)
	for len(out) < frames {
		b := buf[:min(len(buf), frames-len(out))]
		v.Process([][]float32{b})
		for _, x := range b {
			out = append(out, float64(x))
		}
	}
	return out
}

// A Spectrum is the magnitude spectrum of a Hann-windowed signal.
type Spectrum struct {
	SampleRate float64
	Mag        []float64
	size       int
}

// NewSpectrum analyses the longest power-of-two prefix of x.
func NewSpectrum(x []float64, sampleRate float64) (*Spectrum, error) {
	size := 1
	for size*2 <= len(x) {
		size *= 2
	}
	if size < 4 {
		return nil, errors.New("synth: too few samples to analyse")
	}
	f, err := fft.New(size)
	if err != nil {
		return nil, err
	}
	buf := make([]complex128, size)
	for i := range buf {
		w := (1 - math.Cos(2*math.Pi*float64(i)/float64(size))) / 2
		buf[i] = complex(x[i]*w, 0)
	}
	buf = f.Transform(buf)
	mag := make([]float64, size/2)
	for i := range mag {
		mag[i] = cmplx.Abs(buf[i])
	}
	return &Spectrum{SampleRate: sampleRate, Mag: mag, size: size}, nil
}

func (s *Spectrum) BinFreq(i float64) float64 { return i * s.SampleRate / float64(s.size) }

// Peak returns the frequency of the strongest component, refined by parabolic
// interpolation of the log magnitude around the strongest bin.
func (s *Spectrum) Peak() float64 {
	k := 1
	for i := 2; i < len(s.Mag)-1; i++ {
		if s.Mag[i] > s.Mag[k] {
			k = i
		}
	}
	a, b, c := math.Log(s.Mag[k-1]+1e-12), math.Log(s.Mag[k]+1e-12), math.Log(s.Mag[k+1]+1e-12)
	d := 0.0
	if den := a - 2*b + c; den != 0 {
		d = (a - c) / (2 * den)
	}
	return s.BinFreq(float64(k) + d)
}

func PeakFrequency(x []float64, sampleRate float64) (float64, error) {
	s, err := NewSpectrum(x, sampleRate)
	if err != nil {
		return 0, err
	}
	return s.Peak(), nil
}
