// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

var (
	readInterval time.Duration
	readValidate bool
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Display controller telemetry in human-readable format",
	Long: `Read encoders, speeds, PWM, currents, voltages, temperature and status.

With --interval the snapshot is repeated until interrupted. With --validate
each snapshot is checked against the default battery, current and
temperature limits and anomalies are highlighted.`,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().DurationVar(&readInterval, "interval", 0, "Repeat every interval (0 reads once)")
	readCmd.Flags().BoolVar(&readValidate, "validate", true, "Check telemetry against default limits")
}

func runRead(cmd *cobra.Command, args []string) error {
	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Printf("Clawstat - Telemetry\n")
	fmt.Printf("Connection: %s\n", stream.Name())
	if readInterval > 0 {
		fmt.Printf("Press Ctrl+C to exit\n")
	}
	fmt.Println()

	if readInterval <= 0 {
		return readOnce(rc)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ticker := time.NewTicker(readInterval)
	defer ticker.Stop()

	for {
		if err := readOnce(rc); err != nil {
			// A missed snapshot is reported and the loop carries on
			glog.Warningf("read: %v", err)
			fmt.Printf("[%s] \033[1;31mREAD ERROR:\033[0m %v\n\n", time.Now().Format("15:04:05.000"), err)
		}

		select {
		case <-ctx.Done():
			fmt.Println()
			printStatistics(rc)
			return nil
		case <-ticker.C:
		}
	}
}

// readOnce prints one telemetry snapshot
func readOnce(rc *roboclaw.Roboclaw) error {
	t, err := rc.ReadTelemetry()
	if err != nil {
		return err
	}

	fmt.Printf("[%s] Controller 0x%02X\n", time.Now().Format("15:04:05.000"), uint8(rc.Address()))
	fmt.Print(roboclaw.FormatTelemetry(t))

	if readValidate {
		printValidationErrors(roboclaw.ValidateTelemetry(t, roboclaw.DefaultLimits))
	}
	fmt.Println()
	return nil
}

// printValidationErrors prints telemetry anomalies in highlighted format
func printValidationErrors(errs []roboclaw.ValidationError) {
	for i, err := range errs {
		switch err.Type {
		case roboclaw.AnomalyStatusError:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
		default:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
		}
	}
}
