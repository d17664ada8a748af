package synth

import "sync/atomic"

type VoiceID uint64

// A Voice renders one Generator to a device connection on its own clock.
type Voice struct {
	id      VoiceID
	factory *Factory
	gen     Generator
	clock   Clock
	ctx     Context
	conn    Connection
	running atomic.Bool
}

func newVoice(id VoiceID, f *Factory, g Generator, p Params) *Voice {
	v := &Voice{id: id, factory: f, gen: g}
	v.clock.InitAudio(p)
	v.ctx.rate = p.SampleRate
	return v
}

func (v *Voice) ID() VoiceID          { return v.id }
func (v *Voice) Factory() *Factory    { return v.factory }
func (v *Voice) Clock() *Clock        { return &v.clock }
func (v *Voice) Running() bool        { return v.running.Load() }
func (v *Voice) Seconds() float64     { return v.clock.Seconds() }
func (v *Voice) Generator() Generator { return v.gen }

func (v *Voice) start(d Device) {
	v.conn = d.Connect(v)
	v.running.Store(true)
}

func (v *Voice) stop() {
	if v.running.Swap(false) {
		v.conn.Disconnect()
	}
}

// Process renders len(out[0]) frames.  Frame i of every channel is the
// generator's value at the same clock reading, and the clock advances by
// exactly the number of frames however many channels there are.
func (v *Voice) Process(out [][]float32) {
	if len(out) == 0 {
		return
	}
	first := out[0]
	base := v.clock.Sample()
	for i := range first {
		v.ctx.sample = base + uint64(i)
		first[i] = float32(v.gen.Generate(&v.ctx))
	}
	for _, ch := range out[1:] {
		copy(ch, first)
	}
	v.clock.advance(len(first))
}
