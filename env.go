package synth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDuration = errors.New("synth: envelope duration must be positive")
	ErrControlPoints   = errors.New("synth: control points out of order")
)

// A Ramp moves linearly from Start to End over Duration seconds and then
// holds End.
type Ramp struct {
	Start, End, Duration float64
}

func NewRamp(start, end, duration float64) (Ramp, error) {
	if !(duration > 0) {
		return Ramp{}, fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}
	return Ramp{start, end, duration}, nil
}

func (r Ramp) At(seconds float64) float64 {
	if seconds >= r.Duration {
		return r.End
	}
	return r.Start + (r.End-r.Start)/r.Duration*seconds
}

type ControlPoint struct {
	Time, Value float64
}

// An Envelope is a piecewise-linear function of time through its control
// points, starting from 0 at time 0.  Two points with the same time mark a
// discontinuity.
type Envelope struct {
	points []ControlPoint
}

func NewEnvelope(points ...ControlPoint) (*Envelope, error) {
	prev := ControlPoint{}
	for i, p := range points {
		if p.Time < prev.Time {
			return nil, fmt.Errorf("%w: point %d at %v precedes %v", ErrControlPoints, i, p.Time, prev.Time)
		}
		prev = p
	}
	return &Envelope{points: append([]ControlPoint(nil), points...)}, nil
}

// NewAttackRelease rises to 1 over attack, holds, and falls to 0 over release.
func NewAttackRelease(attack, hold, release float64) (*Envelope, error) {
	if !(attack > 0) || !(release > 0) || hold < 0 {
		return nil, fmt.Errorf("%w: attack %v, hold %v, release %v", ErrInvalidDuration, attack, hold, release)
	}
	return NewEnvelope(
		ControlPoint{attack, 1},
		ControlPoint{attack + hold, 1},
		ControlPoint{attack + hold + release, 0},
	)
}

func (e *Envelope) Duration() float64 {
	if len(e.points) == 0 {
		return 0
	}
	return e.points[len(e.points)-1].Time
}

func (e *Envelope) At(seconds float64) float64 {
	if seconds < 0 {
		seconds = 0
	}
	prev := ControlPoint{}
	for _, p := range e.points {
		if seconds < p.Time {
			r := Ramp{prev.Value, p.Value, p.Time - prev.Time}
			return r.At(seconds - prev.Time)
		}
		prev = p
	}
	return prev.Value
}

func (e *Envelope) Done(seconds float64) bool {
	return seconds >= e.Duration()
}
