package inject

import (
	"errors"
	"testing"
)

type fakeDesktop struct {
	typed     string
	clipboard string
	err       error
}

func (f *fakeDesktop) Type(text string) { f.typed = text }

func (f *fakeDesktop) WriteClipboard(text string) error {
	if f.err != nil {
		return f.err
	}
	f.clipboard = text
	return nil
}

func newTestInjector(t *testing.T, method string, d *fakeDesktop) *Injector {
	t.Helper()
	inj, err := NewInjector(method)
	if err != nil {
		t.Fatalf("NewInjector(%q) error = %v", method, err)
	}
	inj.desk = d
	return inj
}

func TestInjectClipboard(t *testing.T) {
	d := &fakeDesktop{}
	inj := newTestInjector(t, "clipboard", d)

	if err := inj.Inject("My grandmother's village"); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if d.clipboard != "My grandmother's village" || d.typed != "" {
		t.Errorf("clipboard = %q typed = %q", d.clipboard, d.typed)
	}
}

func TestInjectClipboardError(t *testing.T) {
	d := &fakeDesktop{err: errors.New("no display")}
	inj := newTestInjector(t, "clipboard", d)

	if err := inj.Inject("x"); err == nil {
		t.Error("Inject() should surface clipboard errors")
	}
}

func TestInjectType(t *testing.T) {
	d := &fakeDesktop{}
	inj := newTestInjector(t, "type", d)

	if err := inj.Inject("hello"); err != nil {
		t.Fatal(err)
	}
	if d.typed != "hello" {
		t.Errorf("typed = %q, want %q", d.typed, "hello")
	}
}

func TestInjectNoneAndEmpty(t *testing.T) {
	d := &fakeDesktop{}
	none := newTestInjector(t, "none", d)
	if none.Enabled() {
		t.Error("none injector should be disabled")
	}
	if err := none.Inject("hello"); err != nil {
		t.Fatal(err)
	}

	typ := newTestInjector(t, "type", d)
	if err := typ.Inject(""); err != nil {
		t.Fatal(err)
	}
	if d.typed != "" || d.clipboard != "" {
		t.Errorf("nothing should be delivered, got typed=%q clipboard=%q", d.typed, d.clipboard)
	}
}

func TestNewInjectorUnknownMethod(t *testing.T) {
	if _, err := NewInjector("paste"); err == nil {
		t.Error("NewInjector(\"paste\") should fail")
	}
}
