// Package access implements the authentication state machine and the
// control loop that ties the keypad, motion sensor, display, feedback
// and door actuator together.
package access

// State is the controller's authentication state. Exactly one state is
// active at a time and only the controller mutates it.
type State int

const (
	Idle State = iota
	Entry
	Granted
	Denied
	Locked
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Entry:
		return "entry"
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}

// Key is a single character from the matrix keypad.
type Key byte

// The two control keys on the 4x4 keypad.
const (
	KeySubmit Key = '#'
	KeyCancel Key = '*'
)

// ValidKey reports whether k is a character the keypad can produce:
// digits 0-9, letters A-D, or one of the two control keys.
func ValidKey(k Key) bool {
	switch {
	case k >= '0' && k <= '9':
		return true
	case k >= 'A' && k <= 'D':
		return true
	case k == KeySubmit || k == KeyCancel:
		return true
	}
	return false
}
