package door

import (
	"context"
	"fmt"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// ServoDrive is a Drive backed by a single Feetech servo on a serial bus.
type ServoDrive struct {
	bus   *feetech.Bus
	servo *feetech.Servo
}

// NewServoDrive opens the serial bus and attaches to the latch servo with
// the given ID, probing the bus to discover its model.
func NewServoDrive(ctx context.Context, port string, id int) (*ServoDrive, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	found, err := bus.Scan(ctx, id, id)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("scan bus: %w", err)
	}
	if len(found) == 0 {
		bus.Close()
		return nil, fmt.Errorf("no servo with ID %d on %s", id, port)
	}

	servo := feetech.NewServo(bus, found[0].ID, found[0].Model)

	return &ServoDrive{bus: bus, servo: servo}, nil
}

// Enable enables torque on the latch servo.
func (d *ServoDrive) Enable(ctx context.Context) error {
	return d.servo.Enable(ctx)
}

// Disable disables torque so the latch can be moved by hand.
func (d *ServoDrive) Disable(ctx context.Context) error {
	return d.servo.Disable(ctx)
}

// SetPosition writes a raw position to the servo.
func (d *ServoDrive) SetPosition(ctx context.Context, pos int) error {
	if err := d.servo.SetPosition(ctx, pos); err != nil {
		return fmt.Errorf("write position: %w", err)
	}
	return nil
}

// Position reads the current raw position from the servo.
func (d *ServoDrive) Position(ctx context.Context) (int, error) {
	pos, err := d.servo.Position(ctx)
	if err != nil {
		return 0, fmt.Errorf("read position: %w", err)
	}
	return pos, nil
}

// Close closes the bus connection.
func (d *ServoDrive) Close() error {
	return d.bus.Close()
}
