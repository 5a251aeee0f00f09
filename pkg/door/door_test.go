package door

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingDrive struct {
	writes []int
	fail   bool
}

func (d *recordingDrive) SetPosition(_ context.Context, pos int) error {
	if d.fail {
		return errors.New("bus timeout")
	}
	d.writes = append(d.writes, pos)
	return nil
}

func (d *recordingDrive) Position(_ context.Context) (int, error) {
	if len(d.writes) == 0 {
		return 0, nil
	}
	return d.writes[len(d.writes)-1], nil
}

var testTravel = Travel{ClosedPos: 1000, OpenPos: 3000}

func TestActuatorStepsToTargetExactly(t *testing.T) {
	drive := &recordingDrive{}
	a := NewActuator(drive, testTravel, 300, 20*time.Millisecond)
	ctx := context.Background()

	a.StartOpen()

	for steps := 0; ; steps++ {
		if steps > 100 {
			t.Fatal("actuator never reached target")
		}
		done, err := a.Step(ctx)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if done {
			break
		}
	}

	// 2000 counts at 300 per step: 6 full steps and a 200-count remainder.
	want := []int{1300, 1600, 1900, 2200, 2500, 2800, 3000}
	if len(drive.writes) != len(want) {
		t.Fatalf("writes = %v, want %v", drive.writes, want)
	}
	for i := range want {
		if drive.writes[i] != want[i] {
			t.Fatalf("writes[%d] = %d, want %d", i, drive.writes[i], want[i])
		}
	}
	if !a.Open() {
		t.Error("Open() = false at open position")
	}
}

func TestActuatorMonotonicProgress(t *testing.T) {
	drive := &recordingDrive{}
	a := NewActuator(drive, testTravel, 170, 20*time.Millisecond)
	ctx := context.Background()

	a.StartOpen()
	for done := false; !done; {
		done, _ = a.Step(ctx)
	}
	for i := 1; i < len(drive.writes); i++ {
		if drive.writes[i] <= drive.writes[i-1] {
			t.Fatalf("opening not monotonic: %v", drive.writes)
		}
	}

	openWrites := len(drive.writes)
	a.StartClose()
	for done := false; !done; {
		done, _ = a.Step(ctx)
	}
	for i := openWrites + 1; i < len(drive.writes); i++ {
		if drive.writes[i] >= drive.writes[i-1] {
			t.Fatalf("closing not monotonic: %v", drive.writes[openWrites:])
		}
	}
	if got := drive.writes[len(drive.writes)-1]; got != testTravel.ClosedPos {
		t.Fatalf("final position = %d, want %d", got, testTravel.ClosedPos)
	}
}

func TestActuatorIdempotentAtTarget(t *testing.T) {
	drive := &recordingDrive{}
	a := NewActuator(drive, testTravel, 300, 20*time.Millisecond)
	ctx := context.Background()

	// Already closed: closing again writes nothing.
	a.StartClose()
	done, err := a.Step(ctx)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !done {
		t.Fatal("Step not done at target")
	}
	if len(drive.writes) != 0 {
		t.Fatalf("writes = %v, want none", drive.writes)
	}
	if a.Moving() {
		t.Error("Moving() = true at target")
	}
}

func TestActuatorRetriesAfterDriveError(t *testing.T) {
	drive := &recordingDrive{fail: true}
	a := NewActuator(drive, testTravel, 300, 20*time.Millisecond)
	ctx := context.Background()

	a.StartOpen()
	if _, err := a.Step(ctx); err == nil {
		t.Fatal("Step succeeded with failing drive")
	}
	if a.Position() != testTravel.ClosedPos {
		t.Fatalf("position advanced past a failed write: %d", a.Position())
	}

	// Same increment goes through once the bus recovers.
	drive.fail = false
	if _, err := a.Step(ctx); err != nil {
		t.Fatalf("Step after recovery: %v", err)
	}
	if len(drive.writes) != 1 || drive.writes[0] != 1300 {
		t.Fatalf("writes = %v, want [1300]", drive.writes)
	}
}

func TestTravelPercent(t *testing.T) {
	tests := []struct {
		raw      int
		expected float64
	}{
		{1000, 0},
		{3000, 100},
		{2000, 50},
		{1500, 25},
	}

	for _, tt := range tests {
		if got := testTravel.Percent(tt.raw); got != tt.expected {
			t.Errorf("Percent(%d) = %f, want %f", tt.raw, got, tt.expected)
		}
	}

	// Degenerate travel must not divide by zero.
	flat := Travel{ClosedPos: 500, OpenPos: 500}
	if got := flat.Percent(500); got != 0 {
		t.Errorf("flat Percent = %f, want 0", got)
	}
}

func TestTravelPercentInverted(t *testing.T) {
	// Latches mounted mirrored have open below closed; percent still
	// runs 0 at closed to 100 at open.
	inv := Travel{ClosedPos: 3000, OpenPos: 1000}
	if got := inv.Percent(3000); got != 0 {
		t.Errorf("Percent(closed) = %f, want 0", got)
	}
	if got := inv.Percent(1000); got != 100 {
		t.Errorf("Percent(open) = %f, want 100", got)
	}
}
