// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Test connection by reading the firmware version",
	Long: `Ask the controller for its firmware version string.

The request is retried according to --retries and --timeout. Useful for
checking wiring, baud rate and address before running anything else.

Exit codes:
  0 - Version received
  1 - No valid answer after all retries
  2 - Connection error`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	rc, stream, err := OpenDriver()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer stream.Close()

	fmt.Printf("Clawstat - Version Probe\n")
	fmt.Printf("Connection: %s\n", stream.Name())
	fmt.Printf("Address: 0x%02X, timeout %s, %d attempts\n\n", uint8(rc.Address()), readTimeout, retries)

	version, err := rc.ReadVersion()
	if err != nil {
		var exhausted *roboclaw.RetryExhaustedError
		if errors.As(err, &exhausted) {
			fmt.Fprintf(os.Stderr, "NO ANSWER: %v\n", err)
			stream.Close()
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stream.Close()
		os.Exit(2)
	}

	stats := rc.Dispatcher().Statistics()
	fmt.Printf("SUCCESS: %s\n", version)
	fmt.Printf("  Attempts: %d\n", stats.Attempts)
	return nil
}
