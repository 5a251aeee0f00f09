package access

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/zain311005/smart-door-lock/internal/logger"
	"github.com/zain311005/smart-door-lock/pkg/feedback"
)

// Config holds the controller parameters, resolved at startup and
// immutable afterwards. The required code length is the length of Secret.
type Config struct {
	Secret          string
	IdleTimeout     time.Duration
	LockoutDuration time.Duration
	MaxAttempts     int
	HoldOpen        time.Duration
	Hz              int
}

// Snapshot is the controller state published to observers after each tick.
type Snapshot struct {
	State         State
	Filled        int
	CodeLen       int
	Attempts      int
	DoorPercent   float64
	LockRemaining int // seconds, nonzero only while locked
	Timestamp     time.Time
}

// Controller runs the authentication state machine. All mutable state
// (buffer, attempt counter, deadline) is owned by the control loop; no
// other goroutine touches it.
type Controller struct {
	cfg   Config
	dev   Devices
	log   *logger.Logger
	sched scheduler

	state    State
	buffer   []byte
	attempts int
	// deadline means "entry abandoned at" while in Entry and
	// "lockout ends at" while in Locked.
	deadline      time.Time
	lastCountdown int

	mu      sync.Mutex
	running bool
	stateCh chan Snapshot
	logCh   chan string
}

// New validates the configuration and creates a controller.
func New(cfg Config, dev Devices, log *logger.Logger) (*Controller, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("empty secret")
	}
	for i := 0; i < len(cfg.Secret); i++ {
		k := Key(cfg.Secret[i])
		if !ValidKey(k) || k == KeySubmit || k == KeyCancel {
			return nil, fmt.Errorf("secret contains invalid key %q", cfg.Secret[i])
		}
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 10 * time.Second
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.HoldOpen <= 0 {
		cfg.HoldOpen = 3 * time.Second
	}
	if cfg.Hz <= 0 {
		cfg.Hz = 20
	}
	if dev.Motion == nil || dev.Keypad == nil || dev.Display == nil ||
		dev.Door == nil || dev.Buzzer == nil || dev.Panel == nil {
		return nil, fmt.Errorf("all devices are required")
	}

	return &Controller{
		cfg:     cfg,
		dev:     dev,
		log:     log,
		buffer:  make([]byte, 0, len(cfg.Secret)),
		stateCh: make(chan Snapshot, 1),
		logCh:   make(chan string, 10),
	}, nil
}

// States returns a channel that receives a snapshot after every tick.
func (c *Controller) States() <-chan Snapshot {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the control loop frequency.
func (c *Controller) Hz() int {
	return c.cfg.Hz
}

// Run executes the control loop until ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.enterIdle("")
	c.logf("controller started at %d Hz, code length %d", c.cfg.Hz, len(c.cfg.Secret))

	ticker := time.NewTicker(time.Second / time.Duration(c.cfg.Hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logf("controller stopped")
			return ctx.Err()
		case now := <-ticker.C:
			c.step(ctx, now)
		}
	}
}

// step is one tick of the control loop: advance pending side effects,
// then evaluate exactly one of {key event, elapsed-time check} for the
// current state. A key arriving in the same tick as a timeout expiry is
// processed first, because a key press refreshes the deadline.
func (c *Controller) step(ctx context.Context, now time.Time) {
	c.sched.advance(now)

	switch c.state {
	case Idle:
		// Stray presses from before motion was seen must not leak
		// into the next entry.
		c.dev.Keypad.Poll()
		if c.dev.Motion.Read() {
			c.logf("motion detected")
			c.enterEntry(now)
		}

	case Entry:
		if k, ok := c.dev.Keypad.Poll(); ok {
			c.handleEntryKey(ctx, now, k)
		} else if now.After(c.deadline) {
			c.logf("entry timed out")
			c.enterIdle("Timed out")
		}

	case Granted, Denied:
		// A grant/deny sequence is in progress. Input is polled so the
		// keypad does not back up, but it is dropped, not queued.
		c.dev.Keypad.Poll()

	case Locked:
		c.dev.Keypad.Poll()
		if now.Before(c.deadline) {
			if r := remainingSeconds(c.deadline, now); r != c.lastCountdown {
				c.lastCountdown = r
				c.dev.Display.ShowCountdown(r)
			}
		} else {
			c.attempts = 0
			c.dev.Panel.SetLed(feedback.LedOff)
			c.logf("lockout expired")
			c.enterIdle("Unlocked")
		}
	}

	c.sendState(c.snapshot(now))
}

func (c *Controller) handleEntryKey(ctx context.Context, now time.Time, k Key) {
	n := len(c.cfg.Secret)

	switch k {
	case KeyCancel:
		c.dev.Panel.SetLed(feedback.LedOff)
		if c.dev.Door.Open() {
			c.closeDoor(ctx, now, nil)
		}
		c.logf("entry cancelled")
		c.enterIdle("Cancelled")

	case KeySubmit:
		if len(c.buffer) < n {
			// A premature submit is a UX nudge, not a failed attempt:
			// the buffer survives and nothing is counted.
			c.dev.Display.ShowLines("Too short", "")
			c.dev.Display.ShowMasked(len(c.buffer), n)
			c.deadline = now.Add(c.cfg.IdleTimeout)
			return
		}
		if subtle.ConstantTimeCompare(c.buffer, []byte(c.cfg.Secret)) == 1 {
			c.enterGranted(ctx, now)
		} else {
			c.enterDenied(now)
		}

	default:
		if len(c.buffer) == n {
			// Full buffer rejects further characters with a single blip.
			c.playPattern(now, feedback.Reject, nil)
			return
		}
		c.buffer = append(c.buffer, byte(k))
		c.dev.Display.ShowMasked(len(c.buffer), n)
		c.deadline = now.Add(c.cfg.IdleTimeout)
	}
}

func (c *Controller) enterIdle(msg string) {
	c.state = Idle
	c.buffer = c.buffer[:0]
	if msg == "" {
		msg = "Door secured"
	}
	c.dev.Display.ShowLines(msg, "Awaiting motion")
}

func (c *Controller) enterEntry(now time.Time) {
	c.state = Entry
	c.buffer = c.buffer[:0]
	c.deadline = now.Add(c.cfg.IdleTimeout)
	c.dev.Display.ShowLines("Enter code:", "")
	c.dev.Display.ShowMasked(0, len(c.cfg.Secret))
}

func (c *Controller) enterGranted(ctx context.Context, now time.Time) {
	c.state = Granted
	c.buffer = c.buffer[:0]
	c.attempts = 0
	c.dev.Panel.SetLed(feedback.LedGranted)
	c.dev.Display.ShowLines("Access granted", "Welcome")
	c.logf("access granted")

	c.playPattern(now, feedback.Success, func(now time.Time) {
		c.openDoor(ctx, now, func(now time.Time) {
			c.sched.at(now.Add(c.cfg.HoldOpen), func(now time.Time) {
				c.closeDoor(ctx, now, func(now time.Time) {
					c.dev.Panel.SetLed(feedback.LedOff)
					c.enterIdle("")
				})
			})
		})
	})
}

func (c *Controller) enterDenied(now time.Time) {
	c.state = Denied
	c.buffer = c.buffer[:0]
	c.dev.Panel.SetLed(feedback.LedDenied)
	c.dev.Display.ShowLines("Access denied", "")
	c.logf("access denied, attempt %d of %d", c.attempts+1, c.cfg.MaxAttempts)

	c.playPattern(now, feedback.Error, func(now time.Time) {
		c.attempts++
		if c.attempts >= c.cfg.MaxAttempts {
			c.enterLocked(now)
			return
		}
		c.dev.Panel.SetLed(feedback.LedOff)
		c.enterEntry(now)
	})
}

func (c *Controller) enterLocked(now time.Time) {
	c.state = Locked
	c.deadline = now.Add(c.cfg.LockoutDuration)
	c.lastCountdown = -1 // force the first countdown render
	c.dev.Display.ShowLines("Locked out", "")
	c.logf("locked out for %s after %d failed attempts", c.cfg.LockoutDuration, c.attempts)
	c.playPattern(now, feedback.Lockout, nil)
}

// playPattern schedules the steps of a tone pattern and calls then when
// the last step has finished sounding.
func (c *Controller) playPattern(now time.Time, p feedback.Pattern, then func(now time.Time)) {
	var play func(i int, now time.Time)
	play = func(i int, now time.Time) {
		if i >= len(p) {
			if then != nil {
				then(now)
			}
			return
		}
		s := p[i]
		c.dev.Buzzer.Tone(s.Freq, s.Duration)
		c.sched.at(now.Add(s.Duration), func(now time.Time) {
			c.dev.Buzzer.Quiet()
			if s.Pause > 0 {
				c.sched.at(now.Add(s.Pause), func(now time.Time) {
					play(i+1, now)
				})
			} else {
				play(i+1, now)
			}
		})
	}
	play(0, now)
}

func (c *Controller) openDoor(ctx context.Context, now time.Time, then func(now time.Time)) {
	c.dev.Door.StartOpen()
	c.stepDoor(ctx, now, then)
}

func (c *Controller) closeDoor(ctx context.Context, now time.Time, then func(now time.Time)) {
	c.dev.Door.StartClose()
	c.stepDoor(ctx, now, then)
}

// stepDoor advances the actuator one increment and re-arms itself until
// the target is reached. A drive error is logged and the increment is
// retried on the next cadence.
func (c *Controller) stepDoor(ctx context.Context, now time.Time, then func(now time.Time)) {
	done, err := c.dev.Door.Step(ctx)
	if err != nil {
		c.logf("door step: %v", err)
	}
	if done {
		if then != nil {
			then(now)
		}
		return
	}
	c.sched.at(now.Add(c.dev.Door.Cadence()), func(now time.Time) {
		c.stepDoor(ctx, now, then)
	})
}

func (c *Controller) snapshot(now time.Time) Snapshot {
	s := Snapshot{
		State:       c.state,
		Filled:      len(c.buffer),
		CodeLen:     len(c.cfg.Secret),
		Attempts:    c.attempts,
		DoorPercent: c.dev.Door.Percent(),
		Timestamp:   now,
	}
	if c.state == Locked && now.Before(c.deadline) {
		s.LockRemaining = remainingSeconds(c.deadline, now)
	}
	return s
}

func (c *Controller) sendState(s Snapshot) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

func (c *Controller) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.log != nil {
		c.log.Infow(msg, "state", c.state.String())
	}
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// remainingSeconds rounds the time left until deadline up to whole seconds.
func remainingSeconds(deadline, now time.Time) int {
	d := deadline.Sub(now)
	return int((d + time.Second - 1) / time.Second)
}
