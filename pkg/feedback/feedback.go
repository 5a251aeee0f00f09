// Package feedback defines the LED states and buzzer tone patterns used
// to signal authentication outcomes.
package feedback

import "time"

// Led identifies the LED state on the front panel.
type Led int

const (
	LedOff Led = iota
	LedGranted
	LedDenied
)

func (l Led) String() string {
	switch l {
	case LedGranted:
		return "granted"
	case LedDenied:
		return "denied"
	default:
		return "off"
	}
}

// ToneStep is one element of a buzzer pattern: play Freq for Duration,
// then stay quiet for Pause before the next step.
type ToneStep struct {
	Freq     int // Hz
	Duration time.Duration
	Pause    time.Duration
}

// Pattern is a fixed sequence of tone steps. Patterns carry no state;
// playing one twice produces the same sound twice.
type Pattern []ToneStep

// The three named outcome patterns, tuned for a small piezo buzzer.
var (
	Success = Pattern{
		{Freq: 1200, Duration: 120 * time.Millisecond, Pause: 40 * time.Millisecond},
		{Freq: 1600, Duration: 180 * time.Millisecond},
	}
	Error = Pattern{
		{Freq: 400, Duration: 200 * time.Millisecond, Pause: 80 * time.Millisecond},
		{Freq: 300, Duration: 300 * time.Millisecond},
	}
	Lockout = Pattern{
		{Freq: 250, Duration: 400 * time.Millisecond, Pause: 100 * time.Millisecond},
		{Freq: 250, Duration: 400 * time.Millisecond, Pause: 100 * time.Millisecond},
		{Freq: 250, Duration: 400 * time.Millisecond},
	}

	// Reject is the single short blip for a key pressed into a full
	// buffer.
	Reject = Pattern{
		{Freq: 400, Duration: 80 * time.Millisecond},
	}
)

// Duration returns the total wall time the pattern occupies, including
// inter-step pauses.
func (p Pattern) Duration() time.Duration {
	var d time.Duration
	for _, s := range p {
		d += s.Duration + s.Pause
	}
	return d
}

// Buzzer plays single tones. Tone starts a note and returns immediately;
// Quiet stops it. Sequencing is the caller's job.
type Buzzer interface {
	Tone(freq int, d time.Duration)
	Quiet()
}

// Panel sets the LED state. Setting the current state again is a no-op.
type Panel interface {
	SetLed(Led)
}
