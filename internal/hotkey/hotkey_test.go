package hotkey

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStateHold(t *testing.T) {
	s := &state{mode: "hold"}

	if ev, ok := s.press(); !ok || ev.Type != EventStart {
		t.Fatalf("press() = %v, %v, want start", ev, ok)
	}
	if _, ok := s.press(); ok {
		t.Error("key repeat while held should not emit")
	}
	if ev, ok := s.release(); !ok || ev.Type != EventStop {
		t.Errorf("release() = %v, %v, want stop", ev, ok)
	}
	if _, ok := s.release(); ok {
		t.Error("second release should not emit")
	}
}

func TestStateToggle(t *testing.T) {
	s := &state{mode: "toggle"}

	want := []EventType{EventStart, EventStop, EventStart}
	for i, w := range want {
		ev, ok := s.press()
		if !ok || ev.Type != w {
			t.Errorf("press #%d = %v, %v, want %v", i+1, ev.Type, ok, w)
		}
		if _, ok := s.release(); ok {
			t.Errorf("release #%d should not emit in toggle mode", i+1)
		}
	}
}

func TestSession(t *testing.T) {
	events := make(chan Event, 4)
	events <- Event{Type: EventStop} // ignored before start
	events <- Event{Type: EventStart}
	events <- Event{Type: EventStart} // ignored while running
	events <- Event{Type: EventStop}

	var calls []string
	err := Session(context.Background(), events,
		func() { calls = append(calls, "start") },
		func() { calls = append(calls, "stop") },
	)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if len(calls) != 2 || calls[0] != "start" || calls[1] != "stop" {
		t.Errorf("calls = %v, want [start stop]", calls)
	}
}

func TestSessionClosed(t *testing.T) {
	events := make(chan Event)
	close(events)
	if err := Session(context.Background(), events, func() {}, func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Session() error = %v, want ErrClosed", err)
	}
}

func TestSessionCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := Session(ctx, make(chan Event), func() {}, func() {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Session() error = %v, want deadline exceeded", err)
	}
}
