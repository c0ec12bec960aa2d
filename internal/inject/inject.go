// Package inject delivers the result of a live recording to the desktop,
// either on the clipboard or typed into the active application.
package inject

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// desktop is the subset of robotgo the injector uses.
type desktop interface {
	Type(text string)
	WriteClipboard(text string) error
}

type robotDesktop struct{}

func (robotDesktop) Type(text string) { robotgo.Type(text) }

func (robotDesktop) WriteClipboard(text string) error { return robotgo.WriteAll(text) }

// Injector hands text to the desktop using the configured method.
type Injector struct {
	method string // "none", "clipboard" or "type"
	desk   desktop
}

// NewInjector creates an Injector for method.
func NewInjector(method string) (*Injector, error) {
	switch method {
	case "none", "clipboard", "type":
	default:
		return nil, fmt.Errorf("inject: unknown method %q", method)
	}
	return &Injector{method: method, desk: robotDesktop{}}, nil
}

// Enabled reports whether Inject does anything.
func (inj *Injector) Enabled() bool {
	return inj.method != "none"
}

// Inject sends text to the desktop. Empty text is ignored.
func (inj *Injector) Inject(text string) error {
	if text == "" {
		return nil
	}

	switch inj.method {
	case "clipboard":
		if err := inj.desk.WriteClipboard(text); err != nil {
			return fmt.Errorf("inject: write to clipboard: %w", err)
		}
	case "type":
		// Keystrokes preserve the clipboard but are slow for long stories.
		inj.desk.Type(text)
	}
	return nil
}
