// Package oto plays a synth.Bus through an Oto v3 context.
package oto

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/gordonklaus/synth"
)

// Device is an io.Reader over the bus output; Oto pulls interleaved
// little-endian float32 frames from it on its own goroutine.
type Device struct {
	*synth.Bus
	ctx    *oto.Context
	player *oto.Player
	planar [][]float32
	view   [][]float32
}

func Open(p synth.Params) (*Device, error) {
	if p.Channels > 2 {
		return nil, fmt.Errorf("oto: %d channels, at most 2 supported", p.Channels)
	}
	bus, err := synth.NewBus(p)
	if err != nil {
		return nil, err
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(p.SampleRate),
		ChannelCount: p.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(float64(p.BufferSize) / p.SampleRate * float64(time.Second)),
	})
	if err != nil {
		return nil, fmt.Errorf("oto: %w", err)
	}
	<-ready

	d := &Device{Bus: bus, ctx: ctx}
	d.grow(p.BufferSize)
	d.player = ctx.NewPlayer(d)
	d.player.Play()
	return d, nil
}

func (d *Device) grow(frames int) {
	if len(d.planar) > 0 && len(d.planar[0]) >= frames {
		return
	}
	d.planar = make([][]float32, d.Params().Channels)
	d.view = make([][]float32, len(d.planar))
	for i := range d.planar {
		d.planar[i] = make([]float32, frames)
	}
}

func (d *Device) Read(p []byte) (int, error) {
	chans := d.Params().Channels
	frames := len(p) / (4 * chans)
	if frames == 0 {
		return 0, nil
	}
	// Oto settles on one read size after the first few calls, so this
	// only allocates while it warms up.
	d.grow(frames)
	for i, ch := range d.planar {
		d.view[i] = ch[:frames]
	}
	d.Bus.Process(d.view)
	interleave(p, d.view)
	return frames * 4 * chans, nil
}

func interleave(p []byte, planar [][]float32) {
	chans := len(planar)
	for i := range planar[0] {
		for c, ch := range planar {
			binary.LittleEndian.PutUint32(p[4*(i*chans+c):], math.Float32bits(ch[i]))
		}
	}
}

// Close stops playback.  It is not safe for concurrent use; closing twice is a
// no-op.
func (d *Device) Close() error {
	if d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	return err
}
