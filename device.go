package synth

import (
	"math"
	"sync"
	"sync/atomic"
)

// A Device delivers audio to an output.  Connected Processors are asked to
// fill blocks of at most Params().BufferSize frames, one slice per channel.
type Device interface {
	Params() Params
	Connect(p Processor) Connection
	Close() error
}

type Processor interface {
	Process(out [][]float32)
}

type Connection interface {
	Disconnect()
}

// A Bus mixes its connected Processors into one output.  Backends call
// Process from their audio callback; Process never locks or allocates.  A Bus
// with no backend is itself a Device, driven by whoever calls Process.
type Bus struct {
	params  Params
	mu      sync.Mutex
	conns   atomic.Pointer[[]*busConn]
	limiter *Limiter
	meter   *AmpMeter
	level   atomic.Uint64
}

type busConn struct {
	bus  *Bus
	proc Processor
	buf  [][]float32
	view [][]float32
}

func NewBus(p Params) (*Bus, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := &Bus{params: p, meter: NewAmpMeter(.3)}
	if p.Limit > 0 {
		b.limiter = NewLimiter(p.Limit, .01, .5)
	}
	Init(b.meter, p)
	if b.limiter != nil {
		Init(b.limiter, p)
	}
	b.conns.Store(new([]*busConn))
	return b, nil
}

func (b *Bus) Params() Params { return b.params }
func (b *Bus) Close() error   { return nil }

// Level is the RMS amplitude of the most recent output.
func (b *Bus) Level() float64 { return math.Float64frombits(b.level.Load()) }

func (b *Bus) Connect(p Processor) Connection {
	c := &busConn{bus: b, proc: p, buf: make([][]float32, b.params.Channels), view: make([][]float32, b.params.Channels)}
	for i := range c.buf {
		c.buf[i] = make([]float32, b.params.BufferSize)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	old := *b.conns.Load()
	conns := make([]*busConn, len(old), len(old)+1)
	copy(conns, old)
	conns = append(conns, c)
	b.conns.Store(&conns)
	return c
}

func (c *busConn) Disconnect() {
	b := c.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	old := *b.conns.Load()
	conns := make([]*busConn, 0, len(old))
	for _, x := range old {
		if x != c {
			conns = append(conns, x)
		}
	}
	b.conns.Store(&conns)
}

// Connections reports how many Processors are connected.
func (b *Bus) Connections() int { return len(*b.conns.Load()) }

// Process fills out with the mix of all connected Processors.  Blocks longer
// than BufferSize are rendered in BufferSize chunks.
func (b *Bus) Process(out [][]float32) {
	if len(out) == 0 {
		return
	}
	for _, ch := range out {
		for i := range ch {
			ch[i] = 0
		}
	}
	conns := *b.conns.Load()
	frames := len(out[0])
	for start := 0; start < frames; start += b.params.BufferSize {
		n := min(frames-start, b.params.BufferSize)
		for _, c := range conns {
			chans := min(len(out), len(c.buf))
			view := c.view[:chans]
			for i := range view {
				view[i] = c.buf[i][:n]
			}
			c.proc.Process(view)
			for i, ch := range view {
				dst := out[i][start : start+n]
				for j, x := range ch {
					dst[j] += x
				}
			}
		}
	}
	if m := b.params.Channels; len(out) > m {
		for _, ch := range out[m:] {
			copy(ch, out[m-1])
		}
	}
	b.finish(out)
}

func (b *Bus) finish(out [][]float32) {
	for i := range out[0] {
		x := float64(out[0][i])
		if b.limiter != nil {
			g := float32(b.limiter.Gain(x))
			for _, ch := range out {
				ch[i] *= g
			}
			x = float64(out[0][i])
		}
		b.meter.Add(x)
	}
	b.level.Store(math.Float64bits(b.meter.Amplitude()))
}
