// Command synth plays instruments defined and controlled from Lua.
//
// Lines typed at the prompt are run as Lua; see package script for the
// synth table.  With -backend wav, the startup script is rendered to a file
// and the command exits.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/term"

	"github.com/gordonklaus/synth"
	"github.com/gordonklaus/synth/midi"
	"github.com/gordonklaus/synth/oto"
	"github.com/gordonklaus/synth/portaudio"
	"github.com/gordonklaus/synth/script"
	"github.com/gordonklaus/synth/wav"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("synth: ")

	backend := flag.String("backend", "portaudio", "audio output: portaudio, oto or wav")
	rate := flag.Float64("rate", synth.DefaultParams.SampleRate, "sample rate in Hz")
	channels := flag.Int("channels", synth.DefaultParams.Channels, "output channels")
	buffer := flag.Int("buffer", synth.DefaultParams.BufferSize, "frames per buffer")
	limit := flag.Float64("limit", 0, "master limiter RMS target; 0 disables the limiter")
	scriptPath := flag.String("script", "", "Lua script to run at startup")
	midiPort := flag.String("midi", "", "MIDI input port to play from")
	tuning := flag.String("tuning", "equal", "tuning of the MIDI keyboard: just or equal")
	out := flag.String("out", "synth.wav", "output file for -backend wav")
	duration := flag.Duration("duration", 5*time.Second, "length rendered by -backend wav")
	flag.Parse()

	p := synth.Params{SampleRate: *rate, Channels: *channels, BufferSize: *buffer, Limit: *limit}
	if err := run(*backend, p, *scriptPath, *midiPort, *tuning, *out, *duration); err != nil {
		log.Fatal(err)
	}
}

func run(backend string, p synth.Params, scriptPath, midiPort, tuning, out string, duration time.Duration) error {
	dev, err := openDevice(backend, p)
	if err != nil {
		return err
	}
	e, err := synth.New(dev)
	if err != nil {
		dev.Close()
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			log.Println(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := backend != "wav" && term.IsTerminal(int(os.Stdin.Fd()))
	var console io.Writer = os.Stdout
	var t *term.Terminal
	if interactive {
		fd := int(os.Stdin.Fd())
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		defer term.Restore(fd, old)
		t = term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}, "> ")
		console = t
	}

	h := script.New(e, console)
	defer h.Close()

	if midiPort != "" {
		tu, err := synth.ParseTuning(tuning)
		if err != nil {
			return err
		}
		k := midi.NewKeyboard(e)
		k.BindChromatic(21, 108, 69, tu, synth.DefaultTonic)
		h.AttachKeyboard(k)
		if err := k.ListenTo(midiPort); err != nil {
			return err
		}
		defer gomidi.CloseDriver()
		defer k.Close()
	}

	if scriptPath != "" {
		if err := h.ExecFile(scriptPath); err != nil {
			return err
		}
	}

	if w, ok := dev.(*wav.Device); ok {
		return render(w, out, int(duration.Seconds()*p.SampleRate))
	}
	if interactive {
		return repl(t, h)
	}
	return feed(ctx, os.Stdin, h)
}

func openDevice(backend string, p synth.Params) (synth.Device, error) {
	switch backend {
	case "portaudio":
		return portaudio.Open(p)
	case "oto":
		return oto.Open(p)
	case "wav":
		return wav.Open(p)
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

func render(d *wav.Device, path string, frames int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Render(f, frames); err != nil {
		f.Close()
		return err
	}
	log.Printf("wrote %d frames to %s", frames, path)
	return f.Close()
}

func repl(t *term.Terminal, h *script.Host) error {
	for {
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.TrimSpace(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		if err := h.Exec(line); err != nil {
			fmt.Fprintln(t, err)
		}
	}
}

// feed runs each line of r as Lua and then keeps playing until ctx is done.
func feed(ctx context.Context, r io.Reader, h *script.Host) error {
	s := bufio.NewScanner(r)
	for s.Scan() {
		if err := h.Exec(s.Text()); err != nil {
			log.Println(err)
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}
