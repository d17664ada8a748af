package synth

// A Generator produces one sample per call, ideally near [-1, 1].  Generate
// is called on the audio goroutine and must not block, allocate or retain c.
type Generator interface {
	Generate(c *Context) float64
}

type GeneratorFunc func(c *Context) float64

func (f GeneratorFunc) Generate(c *Context) float64 { return f(c) }

// A Shape is an amplitude contour over a voice's lifetime.  Ramp and
// *Envelope are Shapes.
type Shape interface {
	At(seconds float64) float64
}

// A Tone is a single waveform, optionally shaped by an envelope.
type Tone struct {
	Wave Waveform
	Freq float64
	Gain float64
	Env  Shape
}

func NewTone(freq float64) *Tone {
	return &Tone{Wave: Sine, Freq: freq, Gain: 1}
}

func (t *Tone) Generate(c *Context) float64 {
	s := c.Seconds()
	x := t.Gain * t.Wave(t.Freq, s)
	if t.Env != nil {
		x *= t.Env.At(s)
	}
	return x
}

// A Chord sums sines at the given intervals above Tonic in a fixed tuning.
type Chord struct {
	Tuning    Tuning
	Tonic     float64
	Intervals []Interval
	freqs     []float64
}

func NewChord(t Tuning, tonic float64, intervals ...Interval) *Chord {
	c := &Chord{Tuning: t, Tonic: tonic, Intervals: intervals}
	c.tune()
	return c
}

// InitAudio tunes a Chord built as a literal.  A Chord that is already tuned
// is left alone.
func (c *Chord) InitAudio(Params) {
	if c.freqs == nil {
		c.tune()
	}
}

func (c *Chord) tune() {
	c.freqs = make([]float64, len(c.Intervals))
	for i, iv := range c.Intervals {
		c.freqs[i] = Pitch(c.Tuning, c.Tonic, iv)
	}
}

func (c *Chord) Generate(ctx *Context) float64 {
	s := ctx.Seconds()
	x := 0.0
	for _, f := range c.freqs {
		x += Sine(f, s)
	}
	return x
}

// Mix sums its generators.
type Mix []Generator

func (m Mix) Generate(c *Context) float64 {
	x := 0.0
	for _, g := range m {
		x += g.Generate(c)
	}
	return x
}
