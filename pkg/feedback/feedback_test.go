package feedback

import (
	"testing"
	"time"
)

func TestPatternDuration(t *testing.T) {
	tests := []struct {
		name     string
		pattern  Pattern
		expected time.Duration
	}{
		{"success", Success, 340 * time.Millisecond},
		{"error", Error, 580 * time.Millisecond},
		{"lockout", Lockout, 1400 * time.Millisecond},
		{"reject", Reject, 80 * time.Millisecond},
		{"empty", Pattern{}, 0},
	}

	for _, tt := range tests {
		if got := tt.pattern.Duration(); got != tt.expected {
			t.Errorf("%s: Duration() = %s, want %s", tt.name, got, tt.expected)
		}
	}
}

func TestPatternsAreDistinct(t *testing.T) {
	// Each outcome must be audibly distinguishable: success rises,
	// error falls, lockout repeats a low note.
	if Success[0].Freq >= Success[1].Freq {
		t.Errorf("success pattern does not rise: %v", Success)
	}
	if Error[0].Freq <= Error[1].Freq {
		t.Errorf("error pattern does not fall: %v", Error)
	}
	for i, s := range Lockout {
		if s.Freq != Lockout[0].Freq {
			t.Errorf("lockout step %d frequency %d, want %d", i, s.Freq, Lockout[0].Freq)
		}
	}
}

func TestLedString(t *testing.T) {
	tests := []struct {
		led      Led
		expected string
	}{
		{LedOff, "off"},
		{LedGranted, "granted"},
		{LedDenied, "denied"},
	}

	for _, tt := range tests {
		if got := tt.led.String(); got != tt.expected {
			t.Errorf("Led(%d).String() = %q, want %q", tt.led, got, tt.expected)
		}
	}
}
