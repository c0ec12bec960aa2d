// Command test-capture is a manual check of the microphone and hotkey.
// It records one session and writes it as a WAV file without running the
// rest of the pipeline.
//
// Usage:
//
//	go run ./cmd/test-capture [-mode hold|toggle] [-out capture.wav]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chaz8081/heritage-collector/internal/audio"
	"github.com/chaz8081/heritage-collector/internal/hotkey"
)

func main() {
	mode := flag.String("mode", "toggle", "hotkey mode: hold or toggle")
	out := flag.String("out", "capture.wav", "output WAV path")
	rate := flag.Uint("rate", 16000, "sample rate")
	flag.Parse()

	keys := []string{"ctrl", "shift", "r"}

	recorder, err := audio.NewRecorder(uint32(*rate), 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recorder: %v\n", err)
		os.Exit(1)
	}
	defer recorder.Close()

	listener := hotkey.NewListener(keys, *mode)
	go listener.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Listening for Ctrl+Shift+R in %q mode. Ctrl+C to exit.\n", *mode)

	var (
		buf     audio.Buffer
		capErr  error
		started bool
	)
	err = hotkey.Session(ctx, listener.Events(),
		func() {
			if err := recorder.Start(); err != nil {
				capErr = err
				return
			}
			started = true
			fmt.Println("  [START] recording...")
		},
		func() {
			if started {
				buf, capErr = recorder.Capture()
			}
			fmt.Println("  [STOP]")
		},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nsession: %v\n", err)
		os.Exit(1)
	}
	if !started || capErr != nil {
		if errors.Is(capErr, audio.ErrNoAudioCaptured) {
			fmt.Println("No audio captured; check microphone permissions.")
		} else {
			fmt.Fprintf(os.Stderr, "capture: %v\n", capErr)
		}
		os.Exit(1)
	}

	if err := audio.SaveWAV(buf, *out); err != nil {
		fmt.Fprintf(os.Stderr, "save: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%s, %dHz)\n", *out, buf.Duration().Round(10*time.Millisecond), buf.SampleRate)
	// Exit directly to avoid gohook's C cleanup crash.
	os.Exit(0)
}
