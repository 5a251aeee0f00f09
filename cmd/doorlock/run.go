package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/zain311005/smart-door-lock/internal/logger"
	"github.com/zain311005/smart-door-lock/pkg/access"
	"github.com/zain311005/smart-door-lock/pkg/door"
	"github.com/zain311005/smart-door-lock/pkg/feedback"
	"github.com/zain311005/smart-door-lock/pkg/sim"
)

type RunCommand struct {
	Sim     bool   `long:"sim" description:"Run against a simulated latch instead of the servo"`
	LogFile string `long:"log" default:"doorlock.log" description:"Structured log file (the TUI owns the terminal)"`
}

const (
	headerHeight = 2 // title + blank line
	panelHeight  = 6 // LCD + status rows
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// State badge colors, one per authentication state.
var stateColors = map[access.State]string{
	access.Idle:    "241", // gray
	access.Entry:   "226", // yellow
	access.Granted: "46",  // green
	access.Denied:  "196", // red
	access.Locked:  "201", // magenta
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	lcdStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("33")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// deskDevices bundles the simulated front panel (and whatever drives the
// latch) so the TUI can render it.
type deskDevices struct {
	keypad  *sim.Keypad
	motion  *sim.Motion
	display *sim.Display
	buzzer  *sim.Buzzer
	panel   *sim.Panel
	latch   *door.Actuator
}

type runModel struct {
	ctrl        *access.Controller
	desk        *deskDevices
	chart       *streamlinechart.Model
	width       int      // terminal width
	height      int      // terminal height
	logs        []string // last N log messages
	quitting    bool
	snap        access.Snapshot
	lastPercent float64 // previous chart sample to detect movement
	havePercent bool
}

func (m *runModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the controller
type stateMsg access.Snapshot
type logMsg string

func waitForState(ctrl *access.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *access.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *runModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 12 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - panelHeight - footerHeight - borderSize
	if height < 6 {
		height = 6
	}
	return width, height
}

func (m *runModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialRunModel(ctrl *access.Controller, desk *deskDevices) runModel {
	chart := streamlinechart.New(80, 12,
		streamlinechart.WithYRange(0, 100),
	)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	chart.SetDataSetStyles("door", runes.ThinLineStyle, style)

	return runModel{
		ctrl:  ctrl,
		desk:  desk,
		chart: &chart,
	}
}

func (m runModel) Init() tea.Cmd {
	// Start listening for state and log updates
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
	)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch s := msg.String(); s {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "m":
			m.desk.motion.Trigger()
		case "enter":
			m.desk.keypad.Press(access.KeySubmit)
		case "esc":
			m.desk.keypad.Press(access.KeyCancel)
		default:
			if len(s) == 1 {
				k := access.Key(strings.ToUpper(s)[0])
				if access.ValidKey(k) {
					m.desk.keypad.Press(k)
				}
			}
		}
		return m, nil

	case stateMsg:
		m.snap = access.Snapshot(msg)
		// Only feed the chart while the door moves (freeze when parked)
		if !m.havePercent || m.snap.DoorPercent != m.lastPercent {
			m.chart.PushDataSet("door", m.snap.DoorPercent)
			m.chart.DrawAll()
			m.lastPercent = m.snap.DoorPercent
			m.havePercent = true
		}
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m runModel) View() string {
	if m.quitting {
		return "Controller stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Doorlock"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.ctrl.Hz()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// LCD and status row
	line1, line2 := m.desk.display.Lines()
	lcd := lcdStyle.Render(fmt.Sprintf("%-16s\n%-16s", line1, line2))
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lcd, "  ", m.renderStatus()))
	sb.WriteString("\n")

	// Door travel chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Key legend
	sb.WriteString(statusStyle.Render("m motion  0-9/a-d keys  enter/# submit  esc/* cancel  q quit"))
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'm' to simulate motion")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (m runModel) renderStatus() string {
	var rows []string

	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(stateColors[m.snap.State])).
		Render(strings.ToUpper(m.snap.State.String()))
	rows = append(rows, "state  "+badge)

	led := m.desk.panel.Led()
	ledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	switch led {
	case feedback.LedGranted:
		ledStyle = ledStyle.Foreground(lipgloss.Color("46"))
	case feedback.LedDenied:
		ledStyle = ledStyle.Foreground(lipgloss.Color("196"))
	}
	rows = append(rows, "led    "+ledStyle.Render("● "+led.String()))

	if freq, on := m.desk.buzzer.Sounding(); on {
		rows = append(rows, fmt.Sprintf("tone   %d Hz", freq))
	} else {
		rows = append(rows, "tone   -")
	}

	rows = append(rows, fmt.Sprintf("door   %.0f%%", m.snap.DoorPercent))
	rows = append(rows, fmt.Sprintf("tries  %d", m.snap.Attempts))
	if m.snap.LockRemaining > 0 {
		rows = append(rows, fmt.Sprintf("wait   %ds", m.snap.LockRemaining))
	}

	return strings.Join(rows, "\n")
}

func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		os.Exit(1)
	}

	zlog, err := logger.NewFileLogger(c.LogFile, logger.InfoLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}

	desk := &deskDevices{
		keypad:  sim.NewKeypad(),
		motion:  sim.NewMotion(2 * time.Second),
		display: sim.NewDisplay(),
		buzzer:  sim.NewBuzzer(),
		panel:   sim.NewPanel(),
	}

	// Pick the latch drive: real servo, or the simulator.
	var drive door.Drive
	if c.Sim || cfg.Servo.Port == "" {
		drive = sim.NewDrive(cfg.Servo.ClosedPos)
	} else {
		initCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		srv, err := door.NewServoDrive(initCtx, cfg.Servo.Port, cfg.Servo.ID)
		if err != nil {
			cancel()
			fmt.Fprintf(os.Stderr, "Error opening servo: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'doorlock setup' first, or use --sim.")
			os.Exit(1)
		}
		// Start from the closed reference position.
		if err := srv.Enable(initCtx); err != nil {
			zlog.Warnw("enable servo", "err", err)
		}
		if err := srv.SetPosition(initCtx, cfg.Servo.ClosedPos); err != nil {
			zlog.Warnw("drive to closed", "err", err)
		}
		cancel()
		defer srv.Close()
		drive = srv
	}

	desk.latch = door.NewActuator(
		drive,
		cfg.travel(),
		cfg.Servo.Step,
		time.Duration(cfg.Servo.CadenceMs)*time.Millisecond,
	)

	ctrl, err := access.New(cfg.accessConfig(), access.Devices{
		Motion:  desk.motion,
		Keypad:  desk.keypad,
		Display: desk.display,
		Door:    desk.latch,
		Buzzer:  desk.buzzer,
		Panel:   desk.panel,
	}, zlog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating controller: %v\n", err)
		os.Exit(1)
	}

	// Start controller in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := ctrl.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Controller error: %v", err)
		}
	}()

	// Run TUI
	p := tea.NewProgram(initialRunModel(ctrl, desk), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	return nil
}
