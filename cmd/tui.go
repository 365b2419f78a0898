// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

// Event log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// eventLog keeps the most recent entries
type eventLog struct {
	entries []errorLogEntry
	max     int
}

func newEventLog(limit int) eventLog {
	return eventLog{entries: make([]errorLogEntry, 0), max: limit}
}

func (l *eventLog) add(message string, isError bool) {
	l.entries = append(l.entries, errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	// Keep only last N entries
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// tail returns up to n of the newest entries
func (l eventLog) tail(n int) []errorLogEntry {
	if n >= len(l.entries) {
		return l.entries
	}
	return l.entries[len(l.entries)-n:]
}

// tuiStyles is the shared palette of the terminal UIs
type tuiStyles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	label      lipgloss.Style
	value      lipgloss.Style
	err        lipgloss.Style
	warning    lipgloss.Style
	box        lipgloss.Style
	focusedBox lipgloss.Style

	button        lipgloss.Style
	focusedButton lipgloss.Style
}

func newTUIStyles() tuiStyles {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	button := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("12")).
		Padding(0, 2)

	return tuiStyles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		value:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		err:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warning:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		box:        box,
		focusedBox: box.BorderForeground(lipgloss.Color("12")),

		button:        button,
		focusedButton: button.Background(lipgloss.Color("10")),
	}
}

// formatElapsed formats a duration as e.g. "1 hour, 2 minutes, and 5 seconds"
func formatElapsed(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds <= 0 {
		return "0 seconds"
	}

	units := []struct {
		name string
		size int64
	}{
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
		{"second", 1},
	}

	parts := []string{}
	for _, u := range units {
		n := seconds / u.size
		seconds %= u.size
		switch {
		case n == 1:
			parts = append(parts, "1 "+u.name)
		case n > 1:
			parts = append(parts, fmt.Sprintf("%d %ss", n, u.name))
		}
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

// renderStatistics renders the dispatcher counters
func renderStatistics(st tuiStyles, stats roboclaw.Statistics) string {
	var successPercent, retryPercent float64
	if stats.Calls > 0 {
		successPercent = float64(stats.Succeeded) * 100.0 / float64(stats.Calls)
	}
	if stats.Attempts > 0 {
		retryPercent = float64(stats.Retries) * 100.0 / float64(stats.Attempts)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		st.label.Render("Calls:"), st.value.Render(fmt.Sprintf("%d", stats.Calls)),
		st.label.Render("OK:"), st.value.Render(fmt.Sprintf("%d (%.1f%%)", stats.Succeeded, successPercent)),
		st.label.Render("Failed:"), func() string {
			if stats.Failed > 0 {
				return st.err.Render(fmt.Sprintf("%d", stats.Failed))
			}
			return st.value.Render("0")
		}(),
	)
	fmt.Fprintf(&b, "%s %s   %s %s\n",
		st.label.Render("Attempts:"), st.value.Render(fmt.Sprintf("%d", stats.Attempts)),
		st.label.Render("Retries:"), st.value.Render(fmt.Sprintf("%d (%.1f%%)", stats.Retries, retryPercent)),
	)

	if stats.AttemptErrors() > 0 {
		fmt.Fprintf(&b, "%s %s (%s: %d, %s: %d, %s: %d, %s: %d)\n",
			st.label.Render("Attempt errors:"), st.err.Render(fmt.Sprintf("%d", stats.AttemptErrors())),
			st.header.Render("checksum"), stats.ChecksumErrors,
			st.header.Render("short"), stats.ShortReads,
			st.header.Render("timeout"), stats.Timeouts,
			st.header.Render("transport"), stats.TransportErrors,
		)
	}

	fmt.Fprintf(&b, "%s %s   %s %s",
		st.label.Render("Call Rate:"), st.value.Render(fmt.Sprintf("%.1f calls/s", stats.CallRate)),
		st.label.Render("Error Rate:"), func() string {
			if stats.ErrorRate > 0 {
				return st.err.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate))
			}
			return st.value.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate))
		}(),
	)

	return b.String()
}

// renderEventLog renders the newest entries that fit in height lines
func renderEventLog(st tuiStyles, log eventLog, height, width int) string {
	if height < 5 {
		height = 5
	}

	var b strings.Builder
	entries := log.tail(height)
	if len(entries) == 0 {
		b.WriteString(st.header.Render("  (no events yet)"))
	}
	for _, entry := range entries {
		timestamp := entry.timestamp.Format("15:04:05.000")
		if entry.isError {
			fmt.Fprintf(&b, "%s %s\n", st.header.Render(timestamp), st.err.Render("✗ "+entry.message))
		} else {
			fmt.Fprintf(&b, "%s %s\n", st.header.Render(timestamp), st.warning.Render("ℹ "+entry.message))
		}
	}

	return st.box.Width(width - 4).Render(b.String())
}

//////////////////////////////////////////////////////////////
// Link Test TUI
//////////////////////////////////////////////////////////////

// Messages
type tickMsg time.Time

type linkResultMsg struct {
	command string
	latency time.Duration
	err     error
}

type linkModel struct {
	connInfo      string
	query         string
	statsInterval int
	rc            *roboclaw.Roboclaw
	log           eventLog
	started       time.Time
	lastLatency   time.Duration
	width         int
	height        int
	quitting      bool
}

func initialLinkModel(rc *roboclaw.Roboclaw, connInfo, query string, statsInterval int) linkModel {
	return linkModel{
		connInfo:      connInfo,
		query:         query,
		statsInterval: statsInterval,
		rc:            rc,
		log:           newEventLog(100),
		started:       time.Now(),
		width:         80,
		height:        24,
	}
}

func (m linkModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m linkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.rc.Dispatcher().ResetStatistics()
			m.started = time.Now()
			m.log.add("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.statsInterval > 0 && int(time.Since(m.started).Seconds())%m.statsInterval == 0 {
			stats := m.rc.Dispatcher().Statistics()
			m.log.add(fmt.Sprintf("%d calls, %d retries, %d failed", stats.Calls, stats.Retries, stats.Failed), false)
		}
		return m, tickCmd()

	case linkResultMsg:
		m.lastLatency = msg.latency
		if msg.err != nil {
			m.log.add(fmt.Sprintf("%s: %v", msg.command, msg.err), true)
		}
	}

	return m, nil
}

func (m linkModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	st := newTUIStyles()
	stats := m.rc.Dispatcher().Statistics()

	// Header
	var s strings.Builder
	s.WriteString(st.title.Render("CLAWSTAT - LINK TEST"))
	s.WriteString("\n")
	s.WriteString(st.header.Render(fmt.Sprintf("%s | Address: 0x%02X | Query: %s | r=reset q=quit",
		m.connInfo, uint8(m.rc.Address()), m.query)))
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("%s %s   %s %s\n\n",
		st.label.Render("Running:"), st.value.Render(formatElapsed(time.Since(m.started))),
		st.label.Render("Last call:"), st.value.Render(m.lastLatency.Round(time.Microsecond).String()),
	))

	s.WriteString(st.box.Render(renderStatistics(st, stats)))
	s.WriteString("\n\n")

	s.WriteString(st.label.Render("Recent Events:"))
	s.WriteString("\n")
	s.WriteString(renderEventLog(st, m.log, m.height-15, m.width))

	return s.String()
}
