// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"flag"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
	"github.com/Thermoquad/roboclaw/pkg/transport"
)

var (
	// Serial connection flags
	portName      string
	baudRate      int
	serialBackend string

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Driver flags
	deviceAddress uint8
	readTimeout   time.Duration
	retries       int
	simulate      bool
)

var rootCmd = &cobra.Command{
	Use:   "clawstat",
	Short: "RoboClaw packet serial tool",
	Long: `Clawstat - A CLI tool for driving and inspecting RoboClaw motor controllers
over packet serial.

Provides commands for probing the firmware, reading telemetry, driving motors,
tuning PID gains, editing EEPROM words and measuring link quality.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 38400] [--backend bugst|tarm]
  WebSocket: --url ws://host/path [--username user]
  Simulated: --simulate

For WebSocket authentication, the password is read from the CLAWSTAT_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", transport.DefaultBaudRate, "Baud rate (serial only)")
	rootCmd.PersistentFlags().StringVar(&serialBackend, "backend", backendBugst, "Serial backend (bugst or tarm)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Driver flags
	rootCmd.PersistentFlags().Uint8VarP(&deviceAddress, "address", "a", uint8(roboclaw.AddressDefault), "Controller address (0x80-0x87)")
	rootCmd.PersistentFlags().DurationVar(&readTimeout, "timeout", roboclaw.DefaultTimeout, "Response timeout per attempt")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", roboclaw.DefaultRetries, "Send attempts per command")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Talk to an in-process simulated controller")

	// glog registers -v, -logtostderr and friends on the standard flag set
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// Execute runs the root command
func Execute() error {
	// glog expects the standard flag set to be marked as parsed
	_ = flag.CommandLine.Parse(nil)
	return rootCmd.Execute()
}
