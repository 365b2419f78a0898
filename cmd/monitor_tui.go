// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusM1Input = iota
	focusM2Input
	focusApply
	focusStop
	focusCount
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// monitorModel is the Bubble Tea model for the monitor TUI
type monitorModel struct {
	rc       *roboclaw.Roboclaw
	connInfo string
	interval time.Duration
	limits   roboclaw.Limits

	// Telemetry
	telemetry *roboclaw.Telemetry
	lastRead  time.Time
	anomalies []roboclaw.ValidationError
	polled    bool
	linkOK    bool

	// Control
	dutyInputs   [2]textinput.Model
	focusedField int

	// UI state
	log      eventLog
	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type pollMsg time.Time

type telemetryMsg struct {
	telemetry roboclaw.Telemetry
	err       error
}

type commandResultMsg struct {
	description string
	err         error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func newDutyInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "0%"
	ti.CharLimit = 7
	ti.Width = 8
	return ti
}

func initialMonitorModel(rc *roboclaw.Roboclaw, connInfo string, interval time.Duration) monitorModel {
	m := monitorModel{
		rc:           rc,
		connInfo:     connInfo,
		interval:     interval,
		limits:       roboclaw.DefaultLimits,
		dutyInputs:   [2]textinput.Model{newDutyInput(), newDutyInput()},
		focusedField: focusM1Input,
		log:          newEventLog(100),
		width:        80,
		height:       24,
	}
	m.dutyInputs[0].Focus()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m monitorModel) Init() tea.Cmd {
	return readTelemetryCmd(m.rc)
}

// readTelemetryCmd reads one snapshot off the UI goroutine
func readTelemetryCmd(rc *roboclaw.Roboclaw) tea.Cmd {
	return func() tea.Msg {
		t, err := rc.ReadTelemetry()
		return telemetryMsg{telemetry: t, err: err}
	}
}

func (m monitorModel) pollCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case pollMsg:
		return m, readTelemetryCmd(m.rc)

	case telemetryMsg:
		m.processTelemetry(msg)
		return m, m.pollCmd()

	case commandResultMsg:
		if msg.err != nil {
			m.log.add(fmt.Sprintf("%s failed: %v", msg.description, msg.err), true)
		} else {
			m.log.add(msg.description, false)
		}
	}

	return m, nil
}

func (m monitorModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		return m.cycleFocus(1), nil

	case "shift+tab":
		return m.cycleFocus(-1), nil

	case "esc":
		return m, m.stopCmd()

	case "enter":
		if m.focusedField == focusStop {
			return m, m.stopCmd()
		}
		cmd := m.applyCmd()
		return m, cmd
	}

	// Pass through to focused input
	if m.focusedField == focusM1Input || m.focusedField == focusM2Input {
		var cmd tea.Cmd
		m.dutyInputs[m.focusedField], cmd = m.dutyInputs[m.focusedField].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m monitorModel) cycleFocus(delta int) monitorModel {
	m.focusedField = (m.focusedField + delta + focusCount) % focusCount
	for i := range m.dutyInputs {
		if i == m.focusedField {
			m.dutyInputs[i].Focus()
		} else {
			m.dutyInputs[i].Blur()
		}
	}
	return m
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

// dutyValue returns the parsed duty of input i, using the placeholder when
// the input is empty
func (m monitorModel) dutyValue(i int) (int16, error) {
	val := m.dutyInputs[i].Value()
	if val == "" {
		val = m.dutyInputs[i].Placeholder
	}
	return parseDuty(val)
}

func (m *monitorModel) applyCmd() tea.Cmd {
	var duties [2]int16
	for i := range duties {
		d, err := m.dutyValue(i)
		if err != nil {
			m.log.add(fmt.Sprintf("M%d: %v", i+1, err), true)
			return nil
		}
		duties[i] = d
	}

	rc := m.rc
	return func() tea.Msg {
		err := rc.DutyM1M2(duties[0], duties[1])
		return commandResultMsg{
			description: fmt.Sprintf("Duty M1=%s M2=%s", roboclaw.FormatDuty(duties[0]), roboclaw.FormatDuty(duties[1])),
			err:         err,
		}
	}
}

func (m monitorModel) stopCmd() tea.Cmd {
	rc := m.rc
	return func() tea.Msg {
		return commandResultMsg{description: "Stop", err: rc.Stop()}
	}
}

//////////////////////////////////////////////////////////////
// Data Processing
//////////////////////////////////////////////////////////////

func (m *monitorModel) processTelemetry(msg telemetryMsg) {
	first := !m.polled
	m.polled = true

	if msg.err != nil {
		if m.linkOK || first {
			m.log.add(fmt.Sprintf("Telemetry read failed: %v", msg.err), true)
		}
		m.linkOK = false
		return
	}

	if !m.linkOK {
		m.log.add("Link up", false)
	}
	m.linkOK = true

	t := msg.telemetry
	m.telemetry = &t
	m.lastRead = time.Now()

	// Log anomalies as they appear
	anomalies := roboclaw.ValidateTelemetry(t, m.limits)
	for _, a := range anomalies {
		if !containsAnomaly(m.anomalies, a) {
			m.log.add(a.Message, a.Type == roboclaw.AnomalyStatusError)
		}
	}
	m.anomalies = anomalies
}

func containsAnomaly(list []roboclaw.ValidationError, a roboclaw.ValidationError) bool {
	for _, e := range list {
		if e.Type == a.Type && e.Message == a.Message {
			return true
		}
	}
	return false
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m monitorModel) View() string {
	if m.quitting {
		return "Stopping motors...\n"
	}

	st := newTUIStyles()
	var s strings.Builder

	// Header
	s.WriteString(st.title.Render("CLAWSTAT MONITOR"))
	s.WriteString(" ")
	s.WriteString(st.header.Render(fmt.Sprintf("| %s | 0x%02X | q=quit Tab=switch Esc=stop",
		m.connInfo, uint8(m.rc.Address()))))
	s.WriteString("\n\n")

	switch {
	case !m.polled:
		s.WriteString(st.warning.Render("⏳ Waiting for telemetry..."))
	case !m.linkOK:
		s.WriteString(st.err.Render("✗ No answer"))
	default:
		s.WriteString(st.value.Render("✓ Link up"))
		s.WriteString(st.header.Render(fmt.Sprintf(" (last read %s)", m.lastRead.Format("15:04:05.000"))))
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderTelemetry(st))
	s.WriteString("\n")
	s.WriteString(m.renderControlPanel(st))
	s.WriteString("\n")

	stats := m.rc.Dispatcher().Statistics()
	s.WriteString(st.box.Width(m.width - 4).Render(renderStatistics(st, stats)))
	s.WriteString("\n")

	s.WriteString(st.label.Render("EVENTS"))
	s.WriteString("\n")
	s.WriteString(renderEventLog(st, m.log, m.height-30, m.width))

	return s.String()
}

func (m monitorModel) renderTelemetry(st tuiStyles) string {
	var b strings.Builder
	b.WriteString(st.label.Render("TELEMETRY"))
	b.WriteString("\n")

	t := m.telemetry
	if t == nil {
		b.WriteString("No telemetry data")
		return st.box.Width(m.width - 4).Render(b.String())
	}

	row := func(label, m1, m2 string) {
		fmt.Fprintf(&b, "%s %s  %s\n",
			st.label.Render(fmt.Sprintf("%-9s", label)),
			st.value.Render(fmt.Sprintf("M1 %-16s", m1)),
			st.value.Render("M2 "+m2))
	}
	row("Encoder:", fmt.Sprintf("%d", t.EncoderM1.Value), fmt.Sprintf("%d", t.EncoderM2.Value))
	row("Speed:", fmt.Sprintf("%d pps", t.SpeedM1.Value), fmt.Sprintf("%d pps", t.SpeedM2.Value))
	row("PWM:", roboclaw.FormatDuty(t.PWMM1), roboclaw.FormatDuty(t.PWMM2))
	row("Current:", fmt.Sprintf("%.2f A", t.CurrentM1), fmt.Sprintf("%.2f A", t.CurrentM2))

	fmt.Fprintf(&b, "%s %s  %s %s  %s %s\n",
		st.label.Render("Main:"), st.value.Render(fmt.Sprintf("%.1f V", t.MainBattery)),
		st.label.Render("Logic:"), st.value.Render(fmt.Sprintf("%.1f V", t.LogicBattery)),
		st.label.Render("Temp:"), st.value.Render(fmt.Sprintf("%.1f°C", t.Temperature)),
	)

	status := st.value.Render(t.Status.String())
	if t.Status.IsError() {
		status = st.err.Render(t.Status.String())
	} else if t.Status != roboclaw.StatusNormal {
		status = st.warning.Render(t.Status.String())
	}
	fmt.Fprintf(&b, "%s %s", st.label.Render("Status:"), status)

	return st.box.Width(m.width - 4).Render(b.String())
}

func (m monitorModel) renderControlPanel(st tuiStyles) string {
	var b strings.Builder
	b.WriteString(st.label.Render("CONTROL"))
	b.WriteString("\n")

	for i := range m.dutyInputs {
		b.WriteString(st.label.Render(fmt.Sprintf("M%d duty: ", i+1)))
		if m.focusedField == i {
			b.WriteString(m.dutyInputs[i].View())
		} else {
			val := m.dutyInputs[i].Value()
			if val == "" {
				val = m.dutyInputs[i].Placeholder
			}
			b.WriteString(fmt.Sprintf("[%s]", val))
		}
		b.WriteString("   ")
	}
	b.WriteString("\n\n")

	for _, btn := range []struct {
		field int
		text  string
	}{
		{focusApply, "[ Apply ]"},
		{focusStop, "[ Stop ]"},
	} {
		if m.focusedField == btn.field {
			b.WriteString(st.focusedButton.Render(btn.text))
		} else {
			b.WriteString(st.button.Render(btn.text))
		}
		b.WriteString("  ")
	}

	box := st.box
	if m.focusedField != focusApply && m.focusedField != focusStop {
		box = st.focusedBox
	}
	return box.Width(m.width - 4).Render(b.String())
}
