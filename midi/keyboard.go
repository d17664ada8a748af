// Package midi plays synth instruments from a MIDI keyboard.
package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/gordonklaus/synth"
)

// A Keyboard spawns a voice from the factory bound to a key when the key goes
// down and stops that voice when it comes up.
type Keyboard struct {
	engine *synth.Engine

	mu       sync.Mutex
	bindings map[uint8]*synth.Factory
	held     map[uint8]synth.VoiceID
	stopFunc func()
}

func NewKeyboard(e *synth.Engine) *Keyboard {
	return &Keyboard{
		engine:   e,
		bindings: map[uint8]*synth.Factory{},
		held:     map[uint8]synth.VoiceID{},
	}
}

func (k *Keyboard) Bind(key uint8, f *synth.Factory) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.bindings[key] = f
}

// BindChromatic binds keys lo through hi to sine tones, with key root sounding
// at tonic and the other keys spelled by synth.Semitone in tuning t.
func (k *Keyboard) BindChromatic(lo, hi, root uint8, t synth.Tuning, tonic float64) {
	for key := int(lo); key <= int(hi); key++ {
		freq := synth.Pitch(t, tonic, synth.Semitone(key-int(root)))
		k.Bind(uint8(key), k.engine.Instrument(synth.NewTone(freq)))
	}
}

// Handle applies one MIDI message.  Messages other than note on and note off
// are ignored, as are keys with no binding.
func (k *Keyboard) Handle(msg gomidi.Message) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		k.mu.Lock()
		defer k.mu.Unlock()
		f, ok := k.bindings[key]
		if !ok {
			return
		}
		if id, ok := k.held[key]; ok {
			k.engine.StopByID(id)
		}
		k.held[key] = f.Spawn()
	case msg.GetNoteEnd(&ch, &key):
		k.mu.Lock()
		defer k.mu.Unlock()
		if id, ok := k.held[key]; ok {
			k.engine.StopByID(id)
			delete(k.held, key)
		}
	}
}

// Held returns the voice sounding for key, if any.
func (k *Keyboard) Held(key uint8) (synth.VoiceID, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	id, ok := k.held[key]
	return id, ok
}

func (k *Keyboard) Listen(in drivers.In) error {
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		k.Handle(msg)
	})
	if err != nil {
		return fmt.Errorf("midi: listen to %s: %w", in, err)
	}
	k.mu.Lock()
	k.stopFunc = stop
	k.mu.Unlock()
	return nil
}

// ListenTo finds the input port with the given name and listens to it.
func (k *Keyboard) ListenTo(port string) error {
	in, err := gomidi.FindInPort(port)
	if err != nil {
		return fmt.Errorf("midi: %w", err)
	}
	return k.Listen(in)
}

func (k *Keyboard) Close() {
	k.mu.Lock()
	stop := k.stopFunc
	k.stopFunc = nil
	for key, id := range k.held {
		k.engine.StopByID(id)
		delete(k.held, key)
	}
	k.mu.Unlock()
	if stop != nil {
		stop()
	}
}
