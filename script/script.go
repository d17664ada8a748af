// Package script drives a synth.Engine from Lua.
//
// A Host installs a global table named synth:
//
//	f = synth.chord{{0,0,0},{0,1,0},{0,0,1}}   -- factory, equal tuning
//	id = f()                                   -- start a voice
//	sw = synth.switchable{{0,0,0},{0,0,1}}
//	sw:play(); sw:toggle()
//	synth.stop(id); synth.stop(f); synth.stop()
package script

import (
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/gordonklaus/synth"
	"github.com/gordonklaus/synth/midi"
)

const (
	factoryType    = "synth.factory"
	switchableType = "synth.switchable"
)

type Host struct {
	L        *lua.LState
	engine   *synth.Engine
	keyboard *midi.Keyboard
	out      io.Writer
}

func New(e *synth.Engine, out io.Writer) *Host {
	h := &Host{L: lua.NewState(), engine: e, out: out}
	h.install()
	return h
}

// AttachKeyboard makes synth.bind available to scripts.
func (h *Host) AttachKeyboard(k *midi.Keyboard) { h.keyboard = k }

func (h *Host) Close() { h.L.Close() }

func (h *Host) Exec(src string) error      { return h.L.DoString(src) }
func (h *Host) ExecFile(path string) error { return h.L.DoFile(path) }

func (h *Host) install() {
	L := h.L

	mt := L.NewTypeMetatable(factoryType)
	L.SetField(mt, "__call", L.NewFunction(h.spawn))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(fmt.Sprintf("factory: %p", checkFactory(L, 1))))
		return 1
	}))

	mt = L.NewTypeMetatable(switchableType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"play":       h.switchablePlay,
		"toggle":     h.switchableToggle,
		"tuning":     h.switchableTuning,
		"instrument": h.switchableInstrument,
	}))

	L.SetGlobal("synth", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"rate":       h.rate,
		"tone":       h.tone,
		"pluck":      h.pluck,
		"chord":      h.chord,
		"switchable": h.switchable,
		"stop":       h.stop,
		"voices":     h.voices,
		"pitch":      h.pitch,
		"peak":       h.peak,
		"level":      h.level,
		"bind":       h.bind,
	}))
	L.SetGlobal("print", L.NewFunction(h.print))
}

func (h *Host) print(L *lua.LState) int {
	args := make([]string, L.GetTop())
	for i := range args {
		args[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	fmt.Fprintln(h.out, strings.Join(args, "\t"))
	return 0
}

func (h *Host) pushFactory(f *synth.Factory) {
	ud := h.L.NewUserData()
	ud.Value = f
	h.L.SetMetatable(ud, h.L.GetTypeMetatable(factoryType))
	h.L.Push(ud)
}

func checkFactory(L *lua.LState, n int) *synth.Factory {
	switch x := L.CheckUserData(n).Value.(type) {
	case *synth.Factory:
		return x
	case *synth.Switchable:
		return x.Factory()
	}
	L.ArgError(n, "factory expected")
	return nil
}

func checkSwitchable(L *lua.LState, n int) *synth.Switchable {
	if s, ok := L.CheckUserData(n).Value.(*synth.Switchable); ok {
		return s
	}
	L.ArgError(n, "switchable expected")
	return nil
}

func checkInterval(L *lua.LState, t *lua.LTable) synth.Interval {
	var v [3]int
	for i := range v {
		switch x := t.RawGetInt(i + 1).(type) {
		case lua.LNumber:
			v[i] = int(x)
		case *lua.LNilType:
		default:
			L.RaiseError("interval component %d is a %s", i+1, x.Type())
		}
	}
	return synth.Interval{Octaves: v[0], Fifths: v[1], Thirds: v[2]}
}

func checkIntervals(L *lua.LState, n int) []synth.Interval {
	t := L.CheckTable(n)
	ivs := make([]synth.Interval, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		iv, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.ArgError(n, fmt.Sprintf("interval %d is not a table", i))
		}
		ivs = append(ivs, checkInterval(L, iv))
	}
	return ivs
}

func checkTuning(L *lua.LState, n int, def string) synth.Tuning {
	t, err := synth.ParseTuning(L.OptString(n, def))
	if err != nil {
		L.RaiseError("%v", err)
	}
	return t
}

func checkWaveform(L *lua.LState, n int) synth.Waveform {
	w, err := synth.ParseWaveform(L.OptString(n, "sine"))
	if err != nil {
		L.RaiseError("%v", err)
	}
	return w
}

func (h *Host) spawn(L *lua.LState) int {
	L.Push(lua.LNumber(checkFactory(L, 1).Spawn()))
	return 1
}

func (h *Host) rate(L *lua.LState) int {
	L.Push(lua.LNumber(h.engine.SampleRate()))
	return 1
}

func (h *Host) tone(L *lua.LState) int {
	t := synth.NewTone(float64(L.CheckNumber(1)))
	t.Wave = checkWaveform(L, 2)
	h.pushFactory(h.engine.Instrument(t))
	return 1
}

func (h *Host) pluck(L *lua.LState) int {
	t := synth.NewTone(float64(L.CheckNumber(1)))
	r, err := synth.NewRamp(1, 0, float64(L.CheckNumber(2)))
	if err != nil {
		L.RaiseError("%v", err)
	}
	t.Env = r
	t.Wave = checkWaveform(L, 3)
	h.pushFactory(h.engine.Instrument(t))
	return 1
}

func (h *Host) chord(L *lua.LState) int {
	ivs := checkIntervals(L, 1)
	t := checkTuning(L, 2, "equal")
	tonic := float64(L.OptNumber(3, synth.DefaultTonic))
	h.pushFactory(h.engine.Instrument(synth.NewChord(t, tonic, ivs...)))
	return 1
}

func (h *Host) switchable(L *lua.LState) int {
	s := synth.NewSwitchable(h.engine, checkIntervals(L, 1)...)
	ud := L.NewUserData()
	ud.Value = s
	L.SetMetatable(ud, L.GetTypeMetatable(switchableType))
	L.Push(ud)
	return 1
}

func (h *Host) switchablePlay(L *lua.LState) int {
	L.Push(lua.LNumber(checkSwitchable(L, 1).Spawn()))
	return 1
}

func (h *Host) switchableToggle(L *lua.LState) int {
	L.Push(lua.LString(checkSwitchable(L, 1).Toggle().String()))
	return 1
}

func (h *Host) switchableTuning(L *lua.LState) int {
	L.Push(lua.LString(checkSwitchable(L, 1).Tuning().String()))
	return 1
}

func (h *Host) switchableInstrument(L *lua.LState) int {
	h.pushFactory(checkSwitchable(L, 1).Factory())
	return 1
}

// stop takes no argument, a voice id, or a factory.
func (h *Host) stop(L *lua.LState) int {
	if L.GetTop() == 0 {
		h.engine.StopAll()
		return 0
	}
	switch x := L.Get(1).(type) {
	case lua.LNumber:
		h.engine.StopByID(synth.VoiceID(x))
	case *lua.LUserData:
		h.engine.StopByFactory(checkFactory(L, 1))
	default:
		L.ArgError(1, "voice id or factory expected")
	}
	return 0
}

func (h *Host) voices(L *lua.LState) int {
	t := L.NewTable()
	for i, id := range h.engine.Voices() {
		t.RawSetInt(i+1, lua.LNumber(id))
	}
	L.Push(t)
	return 1
}

func (h *Host) pitch(L *lua.LState) int {
	t := checkTuning(L, 1, "")
	iv := synth.Interval{Octaves: L.CheckInt(2), Fifths: L.CheckInt(3), Thirds: L.CheckInt(4)}
	tonic := float64(L.OptNumber(5, synth.DefaultTonic))
	L.Push(lua.LNumber(synth.Pitch(t, tonic, iv)))
	return 1
}

// peak renders a factory's generator offline and returns its dominant
// frequency.
func (h *Host) peak(L *lua.LState) int {
	f := checkFactory(L, 1)
	p := h.engine.Params()
	seconds := float64(L.OptNumber(2, 0.5))
	if !(seconds > 0) {
		L.ArgError(2, "duration must be positive")
	}
	frames := int(seconds * p.SampleRate)
	freq, err := synth.PeakFrequency(synth.Render(f.Generator(), p, frames), p.SampleRate)
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LNumber(freq))
	return 1
}

func (h *Host) level(L *lua.LState) int {
	m, ok := h.engine.Device().(interface{ Level() float64 })
	if !ok {
		L.RaiseError("device has no level meter")
	}
	L.Push(lua.LNumber(m.Level()))
	return 1
}

func (h *Host) bind(L *lua.LState) int {
	if h.keyboard == nil {
		L.RaiseError("no MIDI keyboard attached")
	}
	key := L.CheckInt(1)
	if key < 0 || key > 127 {
		L.ArgError(1, "key out of range")
	}
	h.keyboard.Bind(uint8(key), checkFactory(L, 2))
	return 0
}
