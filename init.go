package synth

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

var ErrBadParams = errors.New("synth: bad params")

type Initer interface {
	InitAudio(Params)
}

// Params are fixed for the lifetime of a device.  SampleRate is a whole number
// of frames per second.  BufferSize is the largest block a Processor is asked
// to fill at once; Limit, if positive, enables the master limiter on the
// device bus.
type Params struct {
	SampleRate float64
	Channels   int
	BufferSize int
	Limit      float64
}

var DefaultParams = Params{SampleRate: 44100, Channels: 1, BufferSize: 1024}

func (p *Params) InitAudio(q Params) { *p = q }

func (p Params) Validate() error {
	switch {
	case !(p.SampleRate > 0) || math.IsInf(p.SampleRate, 1) || p.SampleRate != math.Trunc(p.SampleRate):
		return fmt.Errorf("%w: sample rate %v is not a positive whole number", ErrBadParams, p.SampleRate)
	case p.Channels < 1:
		return fmt.Errorf("%w: %d channels", ErrBadParams, p.Channels)
	case p.BufferSize < 1:
		return fmt.Errorf("%w: buffer size %d", ErrBadParams, p.BufferSize)
	case p.Limit < 0:
		return fmt.Errorf("%w: limit %v", ErrBadParams, p.Limit)
	}
	return nil
}

// Init walks x and calls InitAudio on every Initer it reaches, descending
// into struct fields and slice elements that are not Initers themselves.
func Init(x interface{}, p Params) {
	if err := initVal(reflect.ValueOf(x), p); err != nil {
		panic("synth.Init: " + err.Error())
	}
}

var initerType = reflect.TypeOf(new(Initer)).Elem()

func initVal(v reflect.Value, p Params) (err error) {
	if !v.IsValid() || v.Kind() == reflect.Ptr && v.IsNil() || !v.CanInterface() {
		return
	}

	v = reflect.Indirect(v)
	if v.CanAddr() && v.Type().Name() != "" && v.Kind() != reflect.Interface {
		v = v.Addr()
	}
	if x, ok := v.Interface().(Initer); ok {
		x.InitAudio(p)
		return
	}

	defer func() {
		if err != nil {
			err = fmt.Errorf("%s\n\t%#v", err, v)
		}
	}()
	if t := v.Type(); t.Kind() != reflect.Ptr && reflect.PtrTo(t).Implements(initerType) {
		return fmt.Errorf("%s does not implement synth.Initer but *%s does.\nInit stack:", t, t)
	}

	v = reflect.Indirect(v)
	switch v.Kind() {
	case reflect.Interface:
		return initVal(v.Elem(), p)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err = initVal(v.Field(i), p); err != nil {
				return
			}
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if err = initVal(v.Index(i), p); err != nil {
				return
			}
		}
	}

	return
}
