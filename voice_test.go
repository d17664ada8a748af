package synth

import "testing"

type sampleRecorder struct {
	samples []uint64
}

func (r *sampleRecorder) Generate(c *Context) float64 {
	r.samples = append(r.samples, c.Sample())
	return float64(c.Sample())
}

func TestVoice_Process_multichannel(t *testing.T) {
	p := Params{SampleRate: 1000, Channels: 3, BufferSize: 8}
	rec := &sampleRecorder{}
	v := newVoice(0, nil, rec, p)
	out := [][]float32{make([]float32, 8), make([]float32, 8), make([]float32, 8)}

	for block := 0; block < 3; block++ {
		v.Process(out)
		for i := 0; i < 8; i++ {
			want := float32(block*8 + i)
			for c := range out {
				if out[c][i] != want {
					t.Errorf("block %d channel %d frame %d: expected %v, got %v", block, c, i, want, out[c][i])
				}
			}
		}
		if got := v.Clock().Sample(); got != uint64(8*(block+1)) {
			t.Errorf("clock after block %d: %d", block, got)
		}
	}
	if len(rec.samples) != 24 {
		t.Errorf("generator called %d times", len(rec.samples))
	}
	for i, s := range rec.samples {
		if s != uint64(i) {
			t.Fatalf("call %d saw sample %d", i, s)
		}
	}
	if got := v.Seconds(); got != .024 {
		t.Errorf("seconds %v", got)
	}
}

func TestVoice_Process_variableBlocks(t *testing.T) {
	p := Params{SampleRate: 1000, Channels: 1, BufferSize: 16}
	v := newVoice(0, nil, &sampleRecorder{}, p)
	n := 0
	for _, size := range []int{1, 16, 3, 7, 16} {
		out := [][]float32{make([]float32, size)}
		v.Process(out)
		if out[0][0] != float32(n) || out[0][size-1] != float32(n+size-1) {
			t.Errorf("block of %d starting at %d: %v", size, n, out[0])
		}
		n += size
	}
	if v.Clock().Sample() != uint64(n) {
		t.Errorf("clock %d, expected %d", v.Clock().Sample(), n)
	}
}

func TestBus_chunksLargeBuffers(t *testing.T) {
	e, bus := newTestEngine(t, Params{SampleRate: 1000, Channels: 2, BufferSize: 16})
	rec := &sampleRecorder{}
	id := e.Instrument(rec).Spawn()
	out := render(bus, 100)
	for i := 0; i < 100; i++ {
		if out[0][i] != float32(i) || out[1][i] != float32(i) {
			t.Fatalf("frame %d: %v %v", i, out[0][i], out[1][i])
		}
	}
	v, _ := e.Voice(id)
	if v.Clock().Sample() != 100 {
		t.Errorf("clock %d", v.Clock().Sample())
	}
}

func BenchmarkVoice_Process(b *testing.B) {
	p := Params{SampleRate: 96000, Channels: 2, BufferSize: 1024}
	v := newVoice(0, nil, NewChord(Equal, 440, Interval{}, Interval{0, 1, 0}, Interval{0, 0, 1}), p)
	out := [][]float32{make([]float32, 1024), make([]float32, 1024)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.Process(out)
	}
}
