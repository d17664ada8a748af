// Package portaudio plays a synth.Bus on the default PortAudio output device.
package portaudio

import (
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"

	"github.com/gordonklaus/synth"
)

type Device struct {
	*synth.Bus
	stream *portaudio.Stream
}

func Open(p synth.Params) (*Device, error) {
	bus, err := synth.NewBus(p)
	if err != nil {
		return nil, err
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	d := &Device{Bus: bus}
	d.stream, err = portaudio.OpenDefaultStream(0, p.Channels, p.SampleRate, p.BufferSize, d.process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio: open stream: %w", err)
	}
	if err := d.stream.Start(); err != nil {
		d.stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio: start stream: %w", err)
	}
	return d, nil
}

func (d *Device) process(out [][]float32) { d.Bus.Process(out) }

func (d *Device) Close() error {
	if err := d.stream.Stop(); err != nil {
		log.Println("portaudio: stop stream:", err)
	}
	err := d.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
