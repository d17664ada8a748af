// Intervals plays a major triad, then holds a major third whose tuning
// flips between just and equal temperament once a second, so the beating of
// the equal-tempered third can be heard against the pure one.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/gordonklaus/synth"
	"github.com/gordonklaus/synth/portaudio"
)

func main() {
	log.SetFlags(0)
	flips := flag.Int("flips", 10, "number of tuning changes")
	flag.Parse()

	dev, err := portaudio.Open(synth.Params{SampleRate: 48000, Channels: 1, BufferSize: 256, Limit: .3})
	if err != nil {
		log.Fatal(err)
	}
	e, err := synth.New(dev)
	if err != nil {
		log.Fatal(err)
	}
	defer e.Close()

	foo := e.Instrument(synth.NewChord(synth.Equal, synth.DefaultTonic,
		synth.Interval{},
		synth.Interval{Fifths: 1},
		synth.Interval{Thirds: 1},
	))
	foo.Spawn()
	time.Sleep(2 * time.Second)
	e.StopByFactory(foo)

	third := synth.NewSwitchable(e, synth.Interval{}, synth.Interval{Thirds: 1})
	id := third.Spawn()
	for i := 0; i < *flips; i++ {
		log.Println(third.Tuning())
		time.Sleep(time.Second)
		third.Toggle()
	}
	e.StopByID(id)
}
