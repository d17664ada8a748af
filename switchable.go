package synth

import "sync/atomic"

// A Switchable plays a fixed set of intervals in a tuning that can be
// switched between just and equal temperament while it sounds.
type Switchable struct {
	tonic     float64
	intervals []Interval
	tuning    atomic.Int32
	factory   *Factory
}

func NewSwitchable(e *Engine, intervals ...Interval) *Switchable {
	s := &Switchable{tonic: DefaultTonic, intervals: append([]Interval(nil), intervals...)}
	s.tuning.Store(int32(Just))
	s.factory = e.Instrument(s)
	return s
}

func (s *Switchable) Factory() *Factory { return s.factory }
func (s *Switchable) Spawn() VoiceID    { return s.factory.Spawn() }
func (s *Switchable) Tuning() Tuning    { return Tuning(s.tuning.Load()) }

func (s *Switchable) Intervals() []Interval {
	return append([]Interval(nil), s.intervals...)
}

// Toggle switches between just and equal tuning and returns the new tuning.
// Voices pick it up from their next sample.
func (s *Switchable) Toggle() Tuning {
	for {
		old := s.tuning.Load()
		next := Just
		if Tuning(old) == Just {
			next = Equal
		}
		if s.tuning.CompareAndSwap(old, int32(next)) {
			return next
		}
	}
}

func (s *Switchable) Generate(c *Context) float64 {
	t := Tuning(s.tuning.Load())
	sec := c.Seconds()
	x := 0.0
	for _, iv := range s.intervals {
		x += Sine(Pitch(t, s.tonic, iv), sec)
	}
	return x
}
