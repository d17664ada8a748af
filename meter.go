package synth

import "math"

// AmpMeter tracks the RMS amplitude of a signal over a sliding window.
type AmpMeter struct {
	windowSize float64
	buf        []float64
	i          int
	sum        float64
}

func NewAmpMeter(windowSize float64) *AmpMeter {
	return &AmpMeter{windowSize: windowSize}
}

func (a *AmpMeter) InitAudio(p Params) {
	a.buf = make([]float64, max(1, int(p.SampleRate*a.windowSize)))
	a.i = 0
	a.sum = 0
}

func (a *AmpMeter) Add(x float64) float64 {
	a.sum -= a.buf[a.i]
	a.buf[a.i] = x * x
	a.sum += a.buf[a.i]
	a.i++
	if a.i == len(a.buf) {
		a.i = 0
		// resum once per window so rounding error cannot accumulate
		a.sum = 0
		for _, y := range a.buf {
			a.sum += y
		}
	}
	return a.Amplitude()
}

func (a *AmpMeter) Amplitude() float64 {
	return math.Sqrt(math.Max(0, a.sum) / float64(len(a.buf)))
}
