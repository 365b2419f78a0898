// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var monitorInterval time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive TUI for monitoring and driving a controller",
	Long: `Monitor and drive a RoboClaw via an interactive terminal UI.

Features:
  - Live telemetry (encoders, speed, PWM, current, voltages, temperature)
  - Status flags and limit checks
  - Duty entry for both motors
  - Dispatcher statistics
  - Event logging

Tab switches between the duty inputs and the buttons. Enter applies the
duties. Both motors are stopped when the monitor exits.

Supports serial, WebSocket and simulated connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 250*time.Millisecond, "Telemetry poll interval")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	m := initialMonitorModel(rc, stream.Name(), monitorInterval)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, runErr := p.Run()

	// Never leave the motors running
	if err := rc.Stop(); err != nil {
		glog.Warningf("monitor: stop on exit: %v", err)
		fmt.Printf("Warning: failed to stop motors: %v\n", err)
	}

	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}
