// Package wav renders a synth.Bus offline into a 16-bit PCM WAV file.
package wav

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/gordonklaus/synth"
)

const bitDepth = 16

// Device has no clock of its own; time only passes inside Render.
type Device struct {
	*synth.Bus
}

func Open(p synth.Params) (*Device, error) {
	bus, err := synth.NewBus(p)
	if err != nil {
		return nil, err
	}
	return &Device{bus}, nil
}

// Render pulls frames from the bus and writes them to w as a WAV file.
func (d *Device) Render(w io.WriteSeeker, frames int) error {
	p := d.Params()
	enc := wav.NewEncoder(w, int(p.SampleRate), bitDepth, p.Channels, 1)

	planar := make([][]float32, p.Channels)
	for i := range planar {
		planar[i] = make([]float32, p.BufferSize)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: p.Channels, SampleRate: int(p.SampleRate)},
		Data:           make([]int, p.BufferSize*p.Channels),
		SourceBitDepth: bitDepth,
	}
	view := make([][]float32, p.Channels)
	for done := 0; done < frames; {
		n := min(p.BufferSize, frames-done)
		for i := range planar {
			view[i] = planar[i][:n]
		}
		d.Bus.Process(view)
		buf.Data = buf.Data[:n*p.Channels]
		for i := 0; i < n; i++ {
			for c, ch := range view {
				buf.Data[i*p.Channels+c] = toPCM(ch[i])
			}
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
		done += n
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

func toPCM(x float32) int {
	const full = 1<<(bitDepth-1) - 1
	return int(math.Round(full * math.Max(-1, math.Min(1, float64(x)))))
}
