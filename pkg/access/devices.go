package access

import (
	"context"
	"time"

	"github.com/zain311005/smart-door-lock/pkg/feedback"
)

// MotionSensor samples the presence signal. Read has no side effects.
type MotionSensor interface {
	Read() bool
}

// Keypad produces at most one key per poll. ok=false means no key was
// pressed since the last poll; that is a normal result, not an error.
type Keypad interface {
	Poll() (k Key, ok bool)
}

// Display is the two-line status surface. The controller treats it as
// write-only.
type Display interface {
	ShowLines(line1, line2 string)
	// ShowMasked renders entry progress: filled mask characters out of
	// total positions, never the characters themselves.
	ShowMasked(filled, total int)
	// ShowCountdown renders the remaining lockout seconds.
	ShowCountdown(seconds int)
}

// Door is the latch actuator as seen by the controller: retarget, then
// step once per cadence until done.
type Door interface {
	StartOpen()
	StartClose()
	Step(ctx context.Context) (done bool, err error)
	Moving() bool
	Open() bool
	Percent() float64
	Cadence() time.Duration
}

// Devices bundles the hardware capabilities injected into the controller.
type Devices struct {
	Motion  MotionSensor
	Keypad  Keypad
	Display Display
	Door    Door
	Buzzer  feedback.Buzzer
	Panel   feedback.Panel
}
