// Package door drives the latch mechanism between its closed and open
// positions via bounded incremental steps.
package door

import (
	"context"
	"time"
)

// Drive writes raw positions to the latch mechanism.
type Drive interface {
	// SetPosition commands the mechanism to a raw position.
	SetPosition(ctx context.Context, pos int) error
	// Position reads the current raw position.
	Position(ctx context.Context) (int, error)
}

// Travel holds the raw reference positions for the two reachable targets.
type Travel struct {
	ClosedPos int `mapstructure:"closed_pos" json:"closed_pos"`
	OpenPos   int `mapstructure:"open_pos" json:"open_pos"`
}

// Percent converts a raw position to travel percent: 0 at closed,
// 100 at open.
func (t Travel) Percent(raw int) float64 {
	span := float64(t.OpenPos - t.ClosedPos)
	if span == 0 {
		return 0
	}
	return float64(raw-t.ClosedPos) / span * 100
}

// Actuator interpolates the latch between closed and open. One Step call
// advances at most StepSize raw counts toward the target, so a full swing
// takes a bounded number of steps at the configured cadence. The final
// write always lands exactly on the target position.
type Actuator struct {
	drive    Drive
	travel   Travel
	stepSize int
	cadence  time.Duration

	pos    int
	target int
}

// NewActuator creates an actuator assumed to start at the closed position.
// The caller should have driven the mechanism closed before handing it over.
func NewActuator(drive Drive, travel Travel, stepSize int, cadence time.Duration) *Actuator {
	if stepSize <= 0 {
		stepSize = 20
	}
	if cadence <= 0 {
		cadence = 20 * time.Millisecond
	}
	return &Actuator{
		drive:    drive,
		travel:   travel,
		stepSize: stepSize,
		cadence:  cadence,
		pos:      travel.ClosedPos,
		target:   travel.ClosedPos,
	}
}

// StartOpen retargets the actuator at the open position.
func (a *Actuator) StartOpen() { a.target = a.travel.OpenPos }

// StartClose retargets the actuator at the closed position.
func (a *Actuator) StartClose() { a.target = a.travel.ClosedPos }

// Moving reports whether the actuator has not yet reached its target.
func (a *Actuator) Moving() bool { return a.pos != a.target }

// Open reports whether the latch currently sits at the open position.
func (a *Actuator) Open() bool { return a.pos == a.travel.OpenPos && !a.Moving() }

// Position returns the last commanded raw position.
func (a *Actuator) Position() int { return a.pos }

// Percent returns the last commanded position as travel percent.
func (a *Actuator) Percent() float64 { return a.travel.Percent(a.pos) }

// Cadence returns the interval between steps.
func (a *Actuator) Cadence() time.Duration { return a.cadence }

// Step advances one increment toward the target and reports whether the
// target has been reached. Already at target, it writes nothing and
// returns done immediately. A drive error leaves the position unchanged
// so the same increment is retried on the next step.
func (a *Actuator) Step(ctx context.Context) (done bool, err error) {
	if a.pos == a.target {
		return true, nil
	}

	next := a.pos
	if a.target > a.pos {
		next += a.stepSize
		if next > a.target {
			next = a.target
		}
	} else {
		next -= a.stepSize
		if next < a.target {
			next = a.target
		}
	}

	if err := a.drive.SetPosition(ctx, next); err != nil {
		return false, err
	}
	a.pos = next
	return a.pos == a.target, nil
}
