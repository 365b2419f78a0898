// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

var (
	pidMotor int
	pidGains roboclaw.VelocityPID
	pidSave  bool
)

var pidCmd = &cobra.Command{
	Use:   "pid",
	Short: "Read or tune velocity PID gains",
}

var pidGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the velocity PID gains of both motors",
	Args:  cobra.NoArgs,
	RunE:  runPIDGet,
}

var pidSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the velocity PID gains of one motor",
	Long: `Set the velocity PID gains of one motor.

Gains are sent in 16.16 fixed point. QPPS is the motor's top speed in
encoder pulses per second. Use --save to persist the settings to EEPROM.`,
	Args: cobra.NoArgs,
	RunE: runPIDSet,
}

func init() {
	rootCmd.AddCommand(pidCmd)
	pidCmd.AddCommand(pidGetCmd, pidSetCmd)

	pidSetCmd.Flags().IntVarP(&pidMotor, "motor", "m", 1, "Motor (1 or 2)")
	pidSetCmd.Flags().Float64Var(&pidGains.P, "p", 0, "Proportional gain")
	pidSetCmd.Flags().Float64Var(&pidGains.I, "i", 0, "Integral gain")
	pidSetCmd.Flags().Float64Var(&pidGains.D, "d", 0, "Derivative gain")
	pidSetCmd.Flags().Uint32Var(&pidGains.QPPS, "qpps", 0, "Top speed in pulses/s")
	pidSetCmd.Flags().BoolVar(&pidSave, "save", false, "Write settings to EEPROM afterwards")
}

func printPID(motor int, pid roboclaw.VelocityPID) {
	fmt.Printf("M%d: P=%.4f I=%.4f D=%.4f QPPS=%d\n", motor, pid.P, pid.I, pid.D, pid.QPPS)
}

func runPIDGet(cmd *cobra.Command, args []string) error {
	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	m1, err := rc.ReadVelocityPIDM1()
	if err != nil {
		return err
	}
	m2, err := rc.ReadVelocityPIDM2()
	if err != nil {
		return err
	}

	printPID(1, m1)
	printPID(2, m2)
	return nil
}

func runPIDSet(cmd *cobra.Command, args []string) error {
	set := map[int]func(*roboclaw.Roboclaw, roboclaw.VelocityPID) error{
		1: (*roboclaw.Roboclaw).SetVelocityPIDM1,
		2: (*roboclaw.Roboclaw).SetVelocityPIDM2,
	}[pidMotor]
	if set == nil {
		return fmt.Errorf("invalid motor %d: must be 1 or 2", pidMotor)
	}

	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := set(rc, pidGains); err != nil {
		return err
	}
	printPID(pidMotor, pidGains)

	if pidSave {
		if err := rc.WriteSettings(); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		fmt.Println("Settings written to EEPROM")
	}
	return nil
}
