package synth

import (
	"errors"
	"reflect"
	"sort"
	"sync"
)

var ErrNoDevice = errors.New("synth: no device")

// An Engine owns a device and the voices playing on it.  Voice ids are issued
// from a counter that is never reset, so an id is never reused.
type Engine struct {
	dev    Device
	params Params

	mu     sync.Mutex
	voices map[VoiceID]*Voice
	nextID VoiceID
	inited map[Generator]bool
}

func New(dev Device) (*Engine, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	p := dev.Params()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{dev: dev, params: p, voices: map[VoiceID]*Voice{}, inited: map[Generator]bool{}}, nil
}

func (e *Engine) Device() Device  { return e.dev }
func (e *Engine) Params() Params  { return e.params }
func (e *Engine) SampleRate() int { return int(e.params.SampleRate) }

// A Factory spawns voices of one generator.  Its pointer identity groups the
// voices it spawned for StopByFactory.
type Factory struct {
	engine *Engine
	gen    Generator
}

// Instrument registers g and returns a factory for voices that play it.  All
// voices of the factory share g, so g's state must be safe to read from the
// audio goroutine.  g is initialised the first time it is instrumented only;
// instrumenting it again never touches state that live voices are reading.
func (e *Engine) Instrument(g Generator) *Factory {
	e.mu.Lock()
	defer e.mu.Unlock()
	if g != nil && reflect.TypeOf(g).Comparable() {
		if !e.inited[g] {
			Init(g, e.params)
			e.inited[g] = true
		}
	} else {
		Init(g, e.params)
	}
	return &Factory{engine: e, gen: g}
}

func (f *Factory) Generator() Generator { return f.gen }

// Spawn starts a new voice and returns its id.
func (f *Factory) Spawn() VoiceID {
	e := f.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	v := newVoice(id, f, f.gen, e.params)
	e.voices[id] = v
	v.start(e.dev)
	return id
}

func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, v := range e.voices {
		v.stop()
	}
	e.voices = map[VoiceID]*Voice{}
}

func (e *Engine) StopByID(id VoiceID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.voices[id]; ok {
		v.stop()
		delete(e.voices, id)
	}
}

func (e *Engine) StopByFactory(f *Factory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, v := range e.voices {
		if v.factory == f {
			v.stop()
			delete(e.voices, id)
		}
	}
}

func (e *Engine) Voice(id VoiceID) (*Voice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.voices[id]
	return v, ok
}

// Voices returns the ids of the live voices in ascending order.
func (e *Engine) Voices() []VoiceID {
	e.mu.Lock()
	ids := make([]VoiceID, 0, len(e.voices))
	for id := range e.voices {
		ids = append(ids, id)
	}
	e.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (e *Engine) Close() error {
	e.StopAll()
	return e.dev.Close()
}
