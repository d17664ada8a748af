package synth

import (
	"math"
	"sync/atomic"
)

// Seconds converts a sample count to elapsed time at the given rate.
func Seconds(n uint64, sampleRate float64) float64 {
	return float64(n) / sampleRate
}

// A Clock counts the samples a voice has produced since it started.  It is
// advanced only by the goroutine rendering the voice; any goroutine may read it.
type Clock struct {
	rate float64
	n    atomic.Uint64
}

func (c *Clock) InitAudio(p Params) { c.rate = p.SampleRate }

func (c *Clock) Sample() uint64      { return c.n.Load() }
func (c *Clock) Seconds() float64    { return Seconds(c.n.Load(), c.rate) }
func (c *Clock) SampleRate() float64 { return c.rate }
func (c *Clock) advance(n int)       { c.n.Add(uint64(n)) }

// Context is the view of a voice's clock handed to a Generator.  It is only
// valid for the duration of the Generate call it was passed to.
type Context struct {
	rate   float64
	sample uint64
}

func (c *Context) Sample() uint64      { return c.sample }
func (c *Context) SampleRate() float64 { return c.rate }
func (c *Context) Seconds() float64    { return Seconds(c.sample, c.rate) }

func (c *Context) Sine(freq float64) float64 {
	return math.Sin(2 * math.Pi * freq * c.Seconds())
}
