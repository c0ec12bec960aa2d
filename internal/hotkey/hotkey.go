// Package hotkey turns a global key combination into start/stop signals
// for a live capture session. In "hold" mode the capture runs while the
// keys are held; in "toggle" mode one press starts it and the next stops it.
package hotkey

import (
	"context"
	"errors"
	"sync"

	hook "github.com/robotn/gohook"
)

// EventType indicates whether capture should start or stop.
type EventType int

const (
	EventStart EventType = iota
	EventStop
)

func (t EventType) String() string {
	if t == EventStart {
		return "start"
	}
	return "stop"
}

// Event is emitted on the channel returned by Events.
type Event struct {
	Type EventType
}

// ErrClosed is returned by Session when the listener stops first.
var ErrClosed = errors.New("hotkey: listener closed")

// state maps raw key presses to capture events.
type state struct {
	mu     sync.Mutex
	mode   string
	active bool
}

// press handles a key-down of the combination.
func (s *state) press() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == "toggle" && s.active {
		s.active = false
		return Event{Type: EventStop}, true
	}
	if s.active {
		// Key repeat while holding.
		return Event{}, false
	}
	s.active = true
	return Event{Type: EventStart}, true
}

// release handles a key-up of the combination. Only hold mode reacts.
func (s *state) release() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != "hold" || !s.active {
		return Event{}, false
	}
	s.active = false
	return Event{Type: EventStop}, true
}

// Listener manages a global hotkey and emits start/stop events.
type Listener struct {
	keys  []string
	state *state
	ch    chan Event
	done  chan struct{}
	once  sync.Once
}

// NewListener creates a Listener for keys (lowercase names such as
// "ctrl", "shift", "r") in "hold" or "toggle" mode.
func NewListener(keys []string, mode string) *Listener {
	return &Listener{
		keys:  keys,
		state: &state{mode: mode},
		ch:    make(chan Event, 16),
		done:  make(chan struct{}),
	}
}

// Events returns the event channel. It is closed when the listener stops.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

func (l *Listener) send(e Event, ok bool) {
	if !ok {
		return
	}
	select {
	case l.ch <- e:
	default: // never block the hook goroutine
	}
}

// Start listens for the hotkey until Stop is called. It blocks; run it in
// a goroutine.
func (l *Listener) Start() {
	hook.Register(hook.KeyDown, l.keys, func(hook.Event) {
		l.send(l.state.press())
	})
	hook.Register(hook.KeyUp, l.keys, func(hook.Event) {
		l.send(l.state.release())
	})

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// Stop terminates the listener. It is safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}

// Session waits for one start/stop pair, calling onStart and onStop as
// they arrive.
func Session(ctx context.Context, events <-chan Event, onStart, onStop func()) error {
	started := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrClosed
			}
			switch {
			case ev.Type == EventStart && !started:
				started = true
				onStart()
			case ev.Type == EventStop && started:
				onStop()
				return nil
			}
		}
	}
}
