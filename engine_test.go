package synth

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

func newTestEngine(t testing.TB, p Params) (*Engine, *Bus) {
	t.Helper()
	bus, err := NewBus(p)
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(bus)
	if err != nil {
		t.Fatal(err)
	}
	return e, bus
}

func render(b *Bus, frames int) [][]float32 {
	out := make([][]float32, b.Params().Channels)
	for i := range out {
		out[i] = make([]float32, frames)
	}
	b.Process(out)
	return out
}

var silence = GeneratorFunc(func(*Context) float64 { return 0 })

func TestNew(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}
	e, _ := newTestEngine(t, Params{SampleRate: 44100, Channels: 2, BufferSize: 512})
	if e.SampleRate() != 44100 {
		t.Errorf("sample rate %d", e.SampleRate())
	}
}

func TestSpawn_distinctIDs(t *testing.T) {
	e, bus := newTestEngine(t, DefaultParams)
	f := e.Instrument(silence)
	a, b := f.Spawn(), f.Spawn()
	if a == b {
		t.Fatalf("ids not distinct: %d", a)
	}
	if ids := e.Voices(); len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Errorf("voices %v", ids)
	}
	if bus.Connections() != 2 {
		t.Errorf("%d connections", bus.Connections())
	}
}

func TestStopByID_leavesOtherClock(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams)
	bus := e.Device().(*Bus)
	f := e.Instrument(silence)
	a := f.Spawn()
	render(bus, 100)
	b := f.Spawn()
	render(bus, 50)

	va, _ := e.Voice(a)
	vb, _ := e.Voice(b)
	if va.Clock().Sample() != 150 || vb.Clock().Sample() != 50 {
		t.Fatalf("clocks %d, %d", va.Clock().Sample(), vb.Clock().Sample())
	}

	e.StopByID(a)
	if va.Running() {
		t.Error("stopped voice still running")
	}
	if _, ok := e.Voice(a); ok {
		t.Error("stopped voice still present")
	}
	render(bus, 25)
	if va.Clock().Sample() != 150 {
		t.Errorf("stopped voice advanced to %d", va.Clock().Sample())
	}
	if vb.Clock().Sample() != 75 {
		t.Errorf("remaining voice at %d, expected 75", vb.Clock().Sample())
	}

	e.StopByID(a)
	e.StopByID(12345)
	if ids := e.Voices(); len(ids) != 1 || ids[0] != b {
		t.Errorf("voices %v", ids)
	}
}

func TestStopAll_idsNotReused(t *testing.T) {
	e, bus := newTestEngine(t, DefaultParams)
	f := e.Instrument(silence)
	var maxID VoiceID
	for i := 0; i < 5; i++ {
		maxID = f.Spawn()
	}
	e.StopAll()
	if len(e.Voices()) != 0 || bus.Connections() != 0 {
		t.Fatalf("voices %v, %d connections", e.Voices(), bus.Connections())
	}
	if id := e.Instrument(silence).Spawn(); id <= maxID {
		t.Errorf("id %d reused, max issued %d", id, maxID)
	}
	e.StopAll()
	e.StopAll()
}

func TestStopByFactory(t *testing.T) {
	e, bus := newTestEngine(t, DefaultParams)
	f1, f2 := e.Instrument(silence), e.Instrument(silence)
	a1, b1 := f1.Spawn(), f2.Spawn()
	a2, b2 := f1.Spawn(), f2.Spawn()

	e.StopByFactory(f1)
	ids := e.Voices()
	if len(ids) != 2 || ids[0] != b1 || ids[1] != b2 {
		t.Errorf("voices %v, expected [%d %d]", ids, b1, b2)
	}
	for _, id := range []VoiceID{a1, a2} {
		if _, ok := e.Voice(id); ok {
			t.Errorf("voice %d survived", id)
		}
	}
	if bus.Connections() != 2 {
		t.Errorf("%d connections", bus.Connections())
	}

	e.StopByFactory(f1)
	if len(e.Voices()) != 2 {
		t.Error("second stop removed voices")
	}
	e.StopByFactory(f2)
	if len(e.Voices()) != 0 {
		t.Errorf("voices %v", e.Voices())
	}
}

func TestStop_noFurtherSamples(t *testing.T) {
	e, bus := newTestEngine(t, DefaultParams)
	calls := 0
	id := e.Instrument(GeneratorFunc(func(*Context) float64 { calls++; return 1 })).Spawn()
	render(bus, 10)
	if calls != 10 {
		t.Fatalf("%d calls", calls)
	}
	e.StopByID(id)
	out := render(bus, 10)
	if calls != 10 {
		t.Errorf("generator called %d times after stop", calls-10)
	}
	for _, x := range out[0] {
		if x != 0 {
			t.Fatalf("output after stop: %v", out[0])
		}
	}
}

func TestEngine_sineScenario(t *testing.T) {
	e, bus := newTestEngine(t, Params{SampleRate: 44100, Channels: 1, BufferSize: 441})
	e.Instrument(GeneratorFunc(func(c *Context) float64 { return Sine(440, c.Seconds()) })).Spawn()
	out := render(bus, 4410)
	for _, i := range []int{0, 1, 100, 441, 2205, 4409} {
		want := math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
		if got := float64(out[0][i]); math.Abs(got-want) > 1e-6 {
			t.Errorf("frame %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestEngine_concurrentControl(t *testing.T) {
	e, bus := newTestEngine(t, Params{SampleRate: 8000, Channels: 1, BufferSize: 64})
	f := e.Instrument(GeneratorFunc(func(c *Context) float64 { return c.Sine(100) }))
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		out := [][]float32{make([]float32, 64)}
		for {
			select {
			case <-done:
				return
			default:
				bus.Process(out)
			}
		}
	}()
	for i := 0; i < 200; i++ {
		id := f.Spawn()
		switch i % 3 {
		case 0:
			e.StopByID(id)
		case 1:
			e.StopByFactory(f)
		default:
			e.StopAll()
		}
	}
	close(done)
	wg.Wait()
	if len(e.Voices()) != 0 || bus.Connections() != 0 {
		t.Errorf("voices %v, %d connections", e.Voices(), bus.Connections())
	}
}

func TestEngine_reinstrumentWhilePlaying(t *testing.T) {
	e, bus := newTestEngine(t, Params{SampleRate: 8000, Channels: 1, BufferSize: 64})
	c := NewChord(Just, 200, Interval{}, Interval{Thirds: 1})
	first := e.Instrument(c)
	first.Spawn()
	freqs := &c.freqs[0]
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		out := [][]float32{make([]float32, 64)}
		for {
			select {
			case <-done:
				return
			default:
				bus.Process(out)
			}
		}
	}()
	for i := 0; i < 200; i++ {
		if f := e.Instrument(c); f == first {
			t.Fatal("expected a distinct factory")
		} else {
			f.Spawn()
		}
		time.Sleep(100 * time.Microsecond)
	}
	close(done)
	wg.Wait()
	if &c.freqs[0] != freqs {
		t.Error("chord retuned while playing")
	}
	if n := len(e.Voices()); n != 201 {
		t.Errorf("%d voices", n)
	}
}

func TestEngine_Close(t *testing.T) {
	e, bus := newTestEngine(t, DefaultParams)
	e.Instrument(silence).Spawn()
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if bus.Connections() != 0 {
		t.Error("voices still connected after Close")
	}
}
