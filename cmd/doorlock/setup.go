package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/zain311005/smart-door-lock/pkg/access"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Doorlock Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		os.Exit(1)
	}

	// Step 1: find the latch servo
	latch := scanForLatch()
	cfg.Servo.Port = latch.port
	cfg.Servo.ID = latch.id

	// Step 2: record the travel by moving the latch by hand
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Recording Latch Travel ━━━"))
	fmt.Println()
	recordTravel(latch, cfg)

	// Step 3: choose the code
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Choosing the Code ━━━"))
	fmt.Println()
	cfg.Secret = chooseSecret(cfg.Secret)

	if err := saveConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", DefaultConfigFile)
	fmt.Println()
	fmt.Println("Start the controller with: " + headerStyle.Render("doorlock run"))

	return nil
}

type latchInfo struct {
	port string
	id   int
	bus  *feetech.Bus
	srv  *feetech.Servo
}

// scanForLatch probes every serial port for Feetech servos and asks the
// user to pick one when more than a single candidate turns up.
func scanForLatch() *latchInfo {
	fmt.Println("Scanning for the latch servo...")
	fmt.Println()

	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
		os.Exit(1)
	}

	var found []*latchInfo

	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)

		bus, err := feetech.NewBus(feetech.BusConfig{
			Port:     port,
			BaudRate: 1_000_000,
			Protocol: feetech.ProtocolSTS,
			Timeout:  100 * time.Millisecond,
		})
		if err != nil {
			cancel()
			continue
		}

		servos, err := bus.Scan(ctx, 1, 16)
		cancel()

		if err != nil || len(servos) == 0 {
			bus.Close()
			continue
		}

		for _, s := range servos {
			fmt.Printf("  Found servo ID %d on %s\n", s.ID, port)
			found = append(found, &latchInfo{
				port: port,
				id:   s.ID,
				bus:  bus,
				srv:  feetech.NewServo(bus, s.ID, s.Model),
			})
		}
	}

	if len(found) == 0 {
		fmt.Println("No servos found.")
		fmt.Println("Make sure the latch servo is connected and powered on.")
		os.Exit(1)
	}

	if len(found) == 1 {
		return found[0]
	}

	var choice string
	options := make([]huh.Option[string], 0, len(found))
	for i, l := range found {
		options = append(options, huh.NewOption(
			fmt.Sprintf("%s (servo ID %d)", l.port, l.id),
			fmt.Sprintf("%d", i),
		))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which servo drives the door latch?").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		os.Exit(1)
	}

	for i, l := range found {
		if choice == fmt.Sprintf("%d", i) {
			return l
		}
	}
	return found[0]
}

// recordTravel captures the closed and open reference positions by letting
// the user move the unpowered latch by hand.
func recordTravel(latch *latchInfo, cfg *AppConfig) {
	defer latch.bus.Close()

	ctx := context.Background()

	// Torque off so the latch can be moved freely.
	if err := latch.srv.Disable(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error disabling servo: %v\n", err)
		os.Exit(1)
	}

	cfg.Servo.ClosedPos = capturePosition(ctx, latch, "CLOSED (latched)")
	cfg.Servo.OpenPos = capturePosition(ctx, latch, "OPEN (released)")

	// Leave the mechanism in a known state: powered and closed.
	if err := latch.srv.Enable(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error enabling servo: %v\n", err)
		os.Exit(1)
	}
	latch.srv.SetPosition(ctx, cfg.Servo.ClosedPos)
	time.Sleep(500 * time.Millisecond)

	fmt.Printf("  Closed: %d  Open: %d\n", cfg.Servo.ClosedPos, cfg.Servo.OpenPos)
}

func capturePosition(ctx context.Context, latch *latchInfo, target string) int {
	var done bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Move the latch by hand to %s", target)).
				Description("Torque is off; press enter when it is in place").
				Value(&done),
		),
	)
	if err := form.Run(); err != nil {
		os.Exit(1)
	}

	pos, err := latch.srv.Position(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading position: %v\n", err)
		os.Exit(1)
	}
	return pos
}

// chooseSecret prompts for the access code until a valid one is entered.
func chooseSecret(current string) string {
	for {
		secret := current
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Access code").
					Description("Keypad characters only: digits 0-9 and letters A-D").
					Value(&secret),
			),
		)
		if err := form.Run(); err != nil {
			os.Exit(1)
		}

		secret = strings.ToUpper(strings.TrimSpace(secret))
		if validSecret(secret) {
			return secret
		}
		fmt.Println("Invalid code: use at least 4 characters from 0-9 and A-D.")
	}
}

func validSecret(s string) bool {
	if len(s) < 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		k := access.Key(s[i])
		if !access.ValidKey(k) || k == access.KeySubmit || k == access.KeyCancel {
			return false
		}
	}
	return true
}
