package synth

import (
	"errors"
	"math"
	"testing"
)

func TestRamp(t *testing.T) {
	r, err := NewRamp(1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	for s := 0.0; s < 1; s += .01 {
		if got := r.At(s); math.Abs(got-(1-s)) > 1e-12 {
			t.Errorf("At(%v): expected %v, got %v", s, 1-s, got)
		}
	}
	for _, s := range []float64{1, 1.0001, 2, 1e9} {
		if got := r.At(s); got != 0 {
			t.Errorf("At(%v): expected exactly 0, got %v", s, got)
		}
	}
}

func TestRamp_flat(t *testing.T) {
	for _, a := range []float64{-1, 0, .25, 3} {
		for _, d := range []float64{.001, 1, 10} {
			r, err := NewRamp(a, a, d)
			if err != nil {
				t.Fatal(err)
			}
			for _, s := range []float64{0, d / 2, d, 2 * d} {
				if got := r.At(s); got != a {
					t.Errorf("ramp(%v, %v, %v) at %v = %v", a, a, d, s, got)
				}
			}
		}
	}
}

func TestNewRamp_invalidDuration(t *testing.T) {
	for _, d := range []float64{0, -1, math.NaN()} {
		if _, err := NewRamp(0, 1, d); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("duration %v: expected ErrInvalidDuration, got %v", d, err)
		}
	}
}

func TestEnvelope(t *testing.T) {
	e, err := NewEnvelope(ControlPoint{1, 1}, ControlPoint{2, 1}, ControlPoint{2, .5}, ControlPoint{3, 0})
	if err != nil {
		t.Fatal(err)
	}
	for s, want := range map[float64]float64{
		-1:   0,
		0:    0,
		.5:   .5,
		1:    1,
		1.5:  1,
		1.99: 1,
		2:    .5,
		2.5:  .25,
		3:    0,
		10:   0,
	} {
		if got := e.At(s); math.Abs(got-want) > 1e-12 {
			t.Errorf("At(%v): expected %v, got %v", s, want, got)
		}
	}
	if e.Duration() != 3 || e.Done(2.9) || !e.Done(3) {
		t.Errorf("duration %v", e.Duration())
	}
}

func TestEnvelope_outOfOrder(t *testing.T) {
	if _, err := NewEnvelope(ControlPoint{1, 1}, ControlPoint{.5, 0}); !errors.Is(err, ErrControlPoints) {
		t.Errorf("expected ErrControlPoints, got %v", err)
	}
	if _, err := NewEnvelope(ControlPoint{-1, 1}); !errors.Is(err, ErrControlPoints) {
		t.Errorf("expected ErrControlPoints, got %v", err)
	}
}

func TestNewAttackRelease(t *testing.T) {
	e, err := NewAttackRelease(.1, .2, .5)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.At(.05); math.Abs(got-.5) > 1e-12 {
		t.Errorf("attack midpoint %v", got)
	}
	if got := e.At(.25); got != 1 {
		t.Errorf("hold %v", got)
	}
	if got := e.At(.55); math.Abs(got-.5) > 1e-12 {
		t.Errorf("release midpoint %v", got)
	}
	if _, err := NewAttackRelease(0, 1, 1); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
}

func BenchmarkEnvelope(b *testing.B) {
	e, _ := NewAttackRelease(.1, 1, 2)
	for i := 0; i < b.N; i++ {
		e.At(float64(i%96000) / 32000)
	}
}
