package langdetect

import (
	"errors"
	"testing"
)

func TestDetectEmptyText(t *testing.T) {
	d, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"", " ", "\t\n", "   \r\n  "} {
		if _, err := d.Detect(text); !errors.Is(err, ErrEmptyText) {
			t.Errorf("Detect(%q) error = %v, want ErrEmptyText", text, err)
		}
	}
}

func TestDetectLanguages(t *testing.T) {
	d, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "english",
			text: "My grandmother told us stories about the village where she grew up, near the river and the old temple.",
			want: "en",
		},
		{
			name: "hindi",
			text: "मेरी दादी हमें उस गाँव की कहानियाँ सुनाती थीं जहाँ वह बड़ी हुई थीं, नदी और पुराने मंदिर के पास।",
			want: "hi",
		},
		{
			name: "telugu",
			text: "మా అమ్మమ్మ ఆమె పెరిగిన గ్రామం గురించి మాకు కథలు చెప్పేది.",
			want: "te",
		},
		{
			name: "tamil",
			text: "என் பாட்டி அவர் வளர்ந்த கிராமத்தைப் பற்றி எங்களுக்கு கதைகள் சொல்வார்.",
			want: "ta",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Detect(tt.text)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	d, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	text := "Bonjour tout le monde, ceci est une histoire de famille."
	first, err := d.Detect(text)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		got, err := d.Detect(text)
		if err != nil || got != first {
			t.Fatalf("Detect() run %d = %q, %v; want %q", i, got, err, first)
		}
	}
}

func TestNewWhitelist(t *testing.T) {
	d, err := New([]string{"en", "HI"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, err := d.Detect("This is clearly an English sentence about family history.")
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got != "en" {
		t.Errorf("Detect() = %q, want %q", got, "en")
	}
}

func TestNewWhitelistUnknownCode(t *testing.T) {
	if _, err := New([]string{"xx"}); err == nil {
		t.Error("New() with unknown code should return error")
	}
}
