// Package sim provides in-memory stand-ins for the door hardware so the
// controller can run on a desk without a servo, keypad or PIR sensor.
package sim

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zain311005/smart-door-lock/pkg/access"
	"github.com/zain311005/smart-door-lock/pkg/feedback"
)

// Keypad buffers pressed keys and hands them out one per poll.
type Keypad struct {
	keys chan access.Key
}

func NewKeypad() *Keypad {
	return &Keypad{keys: make(chan access.Key, 16)}
}

// Press queues a key. Invalid characters and overflow presses are dropped,
// the same way a scan matrix misses chatter it cannot latch.
func (k *Keypad) Press(key access.Key) {
	if !access.ValidKey(key) {
		return
	}
	select {
	case k.keys <- key:
	default:
	}
}

func (k *Keypad) Poll() (access.Key, bool) {
	select {
	case key := <-k.keys:
		return key, true
	default:
		return 0, false
	}
}

// Motion mimics a PIR sensor: a trigger holds the output high for a
// fixed window, then it drops again.
type Motion struct {
	mu    sync.Mutex
	until time.Time
	hold  time.Duration
}

func NewMotion(hold time.Duration) *Motion {
	if hold <= 0 {
		hold = 2 * time.Second
	}
	return &Motion{hold: hold}
}

// Trigger raises the presence signal for the hold window.
func (m *Motion) Trigger() {
	m.mu.Lock()
	m.until = time.Now().Add(m.hold)
	m.mu.Unlock()
}

func (m *Motion) Read() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Now().Before(m.until)
}

// Display is a 16x2 character LCD stand-in.
type Display struct {
	mu           sync.Mutex
	line1, line2 string
}

func NewDisplay() *Display {
	return &Display{}
}

func (d *Display) ShowLines(line1, line2 string) {
	d.mu.Lock()
	d.line1, d.line2 = line1, line2
	d.mu.Unlock()
}

func (d *Display) ShowMasked(filled, total int) {
	d.mu.Lock()
	d.line2 = strings.Repeat("*", filled) + strings.Repeat("_", total-filled)
	d.mu.Unlock()
}

func (d *Display) ShowCountdown(seconds int) {
	d.mu.Lock()
	d.line2 = "Wait " + strconv.Itoa(seconds) + "s"
	d.mu.Unlock()
}

// Lines returns the current display contents.
func (d *Display) Lines() (string, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.line1, d.line2
}

// Drive is a door.Drive that just remembers the commanded position.
type Drive struct {
	mu  sync.Mutex
	pos int
}

func NewDrive(pos int) *Drive {
	return &Drive{pos: pos}
}

func (d *Drive) SetPosition(_ context.Context, pos int) error {
	d.mu.Lock()
	d.pos = pos
	d.mu.Unlock()
	return nil
}

func (d *Drive) Position(_ context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pos, nil
}

// Buzzer records the current tone so a UI can show it.
type Buzzer struct {
	mu    sync.Mutex
	freq  int
	until time.Time
}

func NewBuzzer() *Buzzer {
	return &Buzzer{}
}

func (b *Buzzer) Tone(freq int, d time.Duration) {
	b.mu.Lock()
	b.freq = freq
	b.until = time.Now().Add(d)
	b.mu.Unlock()
}

func (b *Buzzer) Quiet() {
	b.mu.Lock()
	b.until = time.Time{}
	b.mu.Unlock()
}

// Sounding returns the active tone frequency, if any.
func (b *Buzzer) Sounding() (freq int, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if time.Now().Before(b.until) {
		return b.freq, true
	}
	return 0, false
}

// Panel holds the LED state.
type Panel struct {
	mu  sync.Mutex
	led feedback.Led
}

func NewPanel() *Panel {
	return &Panel{}
}

func (p *Panel) SetLed(l feedback.Led) {
	p.mu.Lock()
	p.led = l
	p.mu.Unlock()
}

// Led returns the current LED state.
func (p *Panel) Led() feedback.Led {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.led
}
