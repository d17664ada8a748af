package synth

import "math"

// A soft limiter.  The RMS amplitude of the output (averaged over the attack
// time) approaches the supplied limit; peaks may still exceed it.  Gain only
// ever attenuates.
type Limiter struct {
	limit, attack, decay float64
	down, up             float64
	amp                  float64
	rms                  *AmpMeter
}

func NewLimiter(limit, attack, decay float64) *Limiter {
	return &Limiter{limit: limit, attack: attack, decay: decay, rms: NewAmpMeter(attack)}
}

func (l *Limiter) InitAudio(p Params) {
	l.down = -1 / (l.attack * p.SampleRate)
	l.up = 1 / (l.decay * p.SampleRate)
	l.amp = 0
	l.rms.InitAudio(p)
}

// Gain returns the gain to apply to x.
func (l *Limiter) Gain(x float64) float64 {
	gain := math.Exp2(l.amp)
	y := l.rms.Add(gain*x) / l.limit
	if y > 1 {
		l.amp += l.down
	} else if l.amp < 0 {
		l.amp = math.Min(0, l.amp+l.up)
	}
	return gain
}

func (l *Limiter) Limit(x float64) float64 {
	return l.Gain(x) * x
}
