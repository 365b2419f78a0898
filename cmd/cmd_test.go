// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
	"github.com/Thermoquad/roboclaw/pkg/transport"
)

// ============================================================
// Argument Parsing Tests
// ============================================================

func TestParseDuty(t *testing.T) {
	tests := []struct {
		input string
		want  int16
	}{
		{"0", 0},
		{"16384", 16384},
		{"-32767", -32767},
		{"0x100", 256},
		{"100%", 32767},
		{"-100%", -32767},
		{"50%", 16384},
		{" 0% ", 0},
	}

	for _, tt := range tests {
		got, err := parseDuty(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		require.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseDuty_Errors(t *testing.T) {
	for _, input := range []string{"", "fast", "32768", "-32768", "101%", "-100.5%", "x%"} {
		_, err := parseDuty(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestParseSevenBit(t *testing.T) {
	v, err := parseSevenBit("64")
	require.NoError(t, err)
	require.Equal(t, uint8(64), v)

	v, err = parseSevenBit("127")
	require.NoError(t, err)
	require.Equal(t, uint8(127), v)

	for _, input := range []string{"128", "-1", "255", "abc"} {
		_, err := parseSevenBit(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestParseEEPROMAddress(t *testing.T) {
	addr, err := parseEEPROMAddress("0x10")
	require.NoError(t, err)
	require.Equal(t, uint8(0x10), addr)

	_, err = parseEEPROMAddress("256")
	require.Error(t, err)
}

// ============================================================
// TUI Helper Tests
// ============================================================

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{59 * time.Second, "59 seconds"},
		{61 * time.Second, "1 minute and 1 second"},
		{time.Hour + 2*time.Minute + 5*time.Second, "1 hour, 2 minutes, and 5 seconds"},
		{2 * 24 * time.Hour, "2 days"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, formatElapsed(tt.d), "duration %s", tt.d)
	}
}

func TestEventLog_KeepsNewest(t *testing.T) {
	log := newEventLog(3)
	for i := 0; i < 5; i++ {
		log.add(fmt.Sprintf("event %d", i), i%2 == 0)
	}

	require.Len(t, log.entries, 3)
	require.Equal(t, "event 2", log.entries[0].message)
	require.Equal(t, "event 4", log.entries[2].message)
	require.True(t, log.entries[2].isError)

	tail := log.tail(2)
	require.Len(t, tail, 2)
	require.Equal(t, "event 3", tail[0].message)
	require.Len(t, log.tail(10), 3)
}

// ============================================================
// Connection Tests
// ============================================================

// withSimulatedLink points the connection flags at the simulator
func withSimulatedLink(t *testing.T) {
	t.Helper()
	prevSimulate, prevAddress, prevTimeout, prevRetries := simulate, deviceAddress, readTimeout, retries
	t.Cleanup(func() {
		simulate, deviceAddress, readTimeout, retries = prevSimulate, prevAddress, prevTimeout, prevRetries
	})

	simulate = true
	deviceAddress = 0x81
	readTimeout = 10 * time.Millisecond
	retries = 2
}

func TestOpenDriver_Simulated(t *testing.T) {
	withSimulatedLink(t)

	rc, stream, err := OpenDriver()
	require.NoError(t, err)
	defer stream.Close()

	require.Equal(t, roboclaw.Address(0x81), rc.Address())
	require.Equal(t, "Simulator", stream.Name())
	require.Equal(t, 2, rc.Dispatcher().Retries())

	version, err := rc.ReadVersion()
	require.NoError(t, err)
	require.Equal(t, "USB Roboclaw 2x15a v4.1.34", version)
}

func TestOpenDriver_RejectsInvalidAddress(t *testing.T) {
	withSimulatedLink(t)

	for _, addr := range []uint8{0, 0x7F, 0x88} {
		deviceAddress = addr
		_, _, err := OpenDriver()
		require.ErrorContains(t, err, "invalid --address", "address 0x%02X", addr)
	}
}

func TestOpenTransport_RequiresTarget(t *testing.T) {
	prevSimulate, prevPort, prevURL := simulate, portName, wsURL
	t.Cleanup(func() { simulate, portName, wsURL = prevSimulate, prevPort, prevURL })

	simulate, portName, wsURL = false, "", ""
	_, err := OpenTransport()
	require.Error(t, err)
}

func TestOpenTransport_UnknownBackend(t *testing.T) {
	prevSimulate, prevPort, prevURL, prevBackend := simulate, portName, wsURL, serialBackend
	t.Cleanup(func() { simulate, portName, wsURL, serialBackend = prevSimulate, prevPort, prevURL, prevBackend })

	simulate, portName, wsURL, serialBackend = false, "/dev/null", "", "usb"
	_, err := OpenTransport()
	require.ErrorContains(t, err, "unknown serial backend")
}

// ============================================================
// Monitor Model Tests
// ============================================================

func newMonitorTest(t *testing.T, driverAddress roboclaw.Address) (monitorModel, *transport.Simulator) {
	t.Helper()
	sim := transport.NewSimulator(0x80)
	rc, err := roboclaw.New(transport.NewStream(sim, "sim"), roboclaw.Config{
		Address: driverAddress,
		Timeout: 5 * time.Millisecond,
		Retries: 2,
	})
	require.NoError(t, err)
	return initialMonitorModel(rc, "sim", time.Second), sim
}

func update(t *testing.T, m monitorModel, msg tea.Msg) (monitorModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(monitorModel)
	require.True(t, ok)
	return mm, cmd
}

func TestMonitor_Telemetry(t *testing.T) {
	m, _ := newMonitorTest(t, 0x80)

	msg := m.Init()()
	require.IsType(t, telemetryMsg{}, msg)

	m, cmd := update(t, m, msg)
	require.NotNil(t, cmd, "next poll must be scheduled")
	require.True(t, m.polled)
	require.True(t, m.linkOK)
	require.NotNil(t, m.telemetry)
	require.Equal(t, 24.0, m.telemetry.MainBattery)
	require.Equal(t, roboclaw.Status(roboclaw.StatusNormal), m.telemetry.Status)
	require.Empty(t, m.anomalies)

	require.Contains(t, m.View(), "CLAWSTAT MONITOR")
}

func TestMonitor_LinkFailureLoggedOnce(t *testing.T) {
	// Nothing answers at 0x81.
	m, _ := newMonitorTest(t, 0x81)

	for i := 0; i < 2; i++ {
		msg := readTelemetryCmd(m.rc)()
		m, _ = update(t, m, msg)
	}

	require.False(t, m.linkOK)
	require.Nil(t, m.telemetry)
	require.Len(t, m.log.entries, 1)
	require.True(t, m.log.entries[0].isError)
}

func TestMonitor_ApplyAndStop(t *testing.T) {
	m, sim := newMonitorTest(t, 0x80)

	m.dutyInputs[0].SetValue("50%")
	m.dutyInputs[1].SetValue("-100")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	result := cmd()
	require.Equal(t, commandResultMsg{description: "Duty M1=+50.0% M2=-0.3%"}, result)
	require.Equal(t, [2]int16{16384, -100}, sim.Device(0x80).Duty)

	m, _ = update(t, m, result)
	require.Len(t, m.log.entries, 1)
	require.False(t, m.log.entries[0].isError)

	// Tab through both inputs and Apply to reach Stop
	for i := 0; i < 3; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	require.Equal(t, focusStop, m.focusedField)

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, commandResultMsg{description: "Stop"}, cmd())
	require.Equal(t, [2]int16{0, 0}, sim.Device(0x80).Duty)
}

func TestMonitor_InvalidDutyNotSent(t *testing.T) {
	m, sim := newMonitorTest(t, 0x80)

	m.dutyInputs[0].SetValue("fast")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Len(t, m.log.entries, 1)
	require.True(t, m.log.entries[0].isError)
	require.Empty(t, sim.Received())
}

func TestMonitor_FocusWraps(t *testing.T) {
	m, _ := newMonitorTest(t, 0x80)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, focusStop, m.focusedField)
	require.False(t, m.dutyInputs[0].Focused())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusM1Input, m.focusedField)
	require.True(t, m.dutyInputs[0].Focused())
}
