// Package doorlock is an access controller for a servo-driven door latch.
//
// A matrix keypad, a motion sensor, a two-line display, an LED pair and a
// buzzer are driven by a single-threaded control loop: motion wakes the
// controller, a fixed-length code is collected from the keypad, and a
// correct code swings the latch servo open and closed again with audio
// and visual feedback. Wrong codes are counted and eventually trip a
// temporary lockout.
//
// # Usage
//
// First, run setup to detect the latch servo and record its open and
// closed positions:
//
//	doorlock setup
//
// Then start the controller:
//
//	doorlock run
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/doorlock: CLI with setup and run commands
//   - pkg/access: authentication state machine and control loop
//   - pkg/door: latch actuator and servo drive
//   - pkg/feedback: LED states and buzzer tone patterns
//   - pkg/sim: simulated hardware for running without a servo
package doorlock
