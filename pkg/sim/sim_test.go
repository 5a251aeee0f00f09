package sim

import (
	"context"
	"testing"
	"time"

	"github.com/zain311005/smart-door-lock/pkg/access"
)

func TestKeypadQueuesOneKeyPerPoll(t *testing.T) {
	k := NewKeypad()

	k.Press(access.Key('1'))
	k.Press(access.Key('2'))

	if got, ok := k.Poll(); !ok || got != '1' {
		t.Fatalf("Poll() = %q, %v; want '1', true", got, ok)
	}
	if got, ok := k.Poll(); !ok || got != '2' {
		t.Fatalf("Poll() = %q, %v; want '2', true", got, ok)
	}
	if _, ok := k.Poll(); ok {
		t.Fatal("Poll() on empty keypad returned a key")
	}
}

func TestKeypadDropsInvalidKeys(t *testing.T) {
	k := NewKeypad()

	k.Press(access.Key('x'))
	k.Press(access.Key(' '))

	if _, ok := k.Poll(); ok {
		t.Fatal("invalid key was queued")
	}
}

func TestMotionHoldWindow(t *testing.T) {
	m := NewMotion(50 * time.Millisecond)

	if m.Read() {
		t.Fatal("motion high before trigger")
	}
	m.Trigger()
	if !m.Read() {
		t.Fatal("motion low right after trigger")
	}
	time.Sleep(80 * time.Millisecond)
	if m.Read() {
		t.Fatal("motion still high after hold window")
	}
}

func TestDisplayMaskedNeverShowsCharacters(t *testing.T) {
	d := NewDisplay()

	d.ShowMasked(3, 8)
	_, line2 := d.Lines()
	if line2 != "***_____" {
		t.Fatalf("masked line = %q, want %q", line2, "***_____")
	}

	d.ShowMasked(0, 8)
	if _, l2 := d.Lines(); l2 != "________" {
		t.Fatalf("masked line = %q, want %q", l2, "________")
	}
}

func TestDriveRemembersPosition(t *testing.T) {
	d := NewDrive(1000)

	pos, err := d.Position(context.Background())
	if err != nil || pos != 1000 {
		t.Fatalf("Position() = %d, %v; want 1000, nil", pos, err)
	}

	if err := d.SetPosition(context.Background(), 2500); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	pos, _ = d.Position(context.Background())
	if pos != 2500 {
		t.Fatalf("Position() = %d, want 2500", pos)
	}
}
