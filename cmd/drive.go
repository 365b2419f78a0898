// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

var (
	dutyAccel      uint32
	speedAccel     uint32
	positionAccel  uint32
	positionSpeed  uint32
	positionDecel  uint32
	driveImmediate bool
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Send motion commands",
	Long: `Drive the motors of one controller.

Duty values are raw (-32767..32767) or percentages ("50%", "-25.5%").
Speeds and positions are in encoder pulses (per second).`,
}

var driveDutyCmd = &cobra.Command{
	Use:   "duty <m1> [m2]",
	Short: "Set PWM duty for one or both motors",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDriveDuty,
}

var driveSpeedCmd = &cobra.Command{
	Use:   "speed <m1> <m2>",
	Short: "Set closed-loop speed for both motors",
	Args:  cobra.ExactArgs(2),
	RunE:  runDriveSpeed,
}

var driveMixedCmd = &cobra.Command{
	Use:   "mixed <drive> <turn>",
	Short: "Mixed-mode 7-bit drive and turn (64 is stop)",
	Args:  cobra.ExactArgs(2),
	RunE:  runDriveMixed,
}

var drivePositionCmd = &cobra.Command{
	Use:   "position <m1> <m2>",
	Short: "Move both motors to absolute encoder positions",
	Args:  cobra.ExactArgs(2),
	RunE:  runDrivePosition,
}

var driveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Set both motors to zero duty",
	Args:  cobra.NoArgs,
	RunE:  runDriveStop,
}

func init() {
	rootCmd.AddCommand(driveCmd)
	driveCmd.AddCommand(driveDutyCmd, driveSpeedCmd, driveMixedCmd, drivePositionCmd, driveStopCmd)

	driveDutyCmd.Flags().Uint32Var(&dutyAccel, "accel", 0, "Duty ramp per second (0 applies immediately)")
	driveSpeedCmd.Flags().Uint32Var(&speedAccel, "accel", 0, "Acceleration in pulses/s² (0 uses the default)")
	drivePositionCmd.Flags().Uint32Var(&positionAccel, "accel", 10000, "Acceleration in pulses/s²")
	drivePositionCmd.Flags().Uint32Var(&positionSpeed, "speed", 5000, "Cruise speed in pulses/s")
	drivePositionCmd.Flags().Uint32Var(&positionDecel, "decel", 10000, "Deceleration in pulses/s²")
	drivePositionCmd.Flags().BoolVar(&driveImmediate, "immediate", true, "Replace buffered commands instead of queueing")
}

// parseDuty parses a raw duty value or a percentage of full scale
func parseDuty(s string) (int16, error) {
	s = strings.TrimSpace(s)
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		p, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duty %q", s)
		}
		if p < -100 || p > 100 {
			return 0, fmt.Errorf("duty %q out of range -100%%..100%%", s)
		}
		return int16(math.Round(p * 32767 / 100)), nil
	}

	v, err := strconv.ParseInt(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid duty %q: %w", s, err)
	}
	if v < -32767 {
		return 0, fmt.Errorf("duty %q out of range -32767..32767", s)
	}
	return int16(v), nil
}

// parseSevenBit parses a 0..127 compatibility command value
func parseSevenBit(s string) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil || v > 127 {
		return 0, fmt.Errorf("invalid value %q: must be 0..127", s)
	}
	return uint8(v), nil
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return int32(v), nil
}

func runDriveDuty(cmd *cobra.Command, args []string) error {
	duties := make([]int16, len(args))
	for i, a := range args {
		d, err := parseDuty(a)
		if err != nil {
			return err
		}
		duties[i] = d
	}

	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	switch {
	case len(duties) == 1 && dutyAccel == 0:
		err = rc.DutyM1(duties[0])
	case len(duties) == 1:
		err = rc.DutyAccelM1(duties[0], dutyAccel)
	case dutyAccel == 0:
		err = rc.DutyM1M2(duties[0], duties[1])
	default:
		err = rc.DutyAccelM1M2(duties[0], dutyAccel, duties[1], dutyAccel)
	}
	if err != nil {
		return err
	}

	for i, d := range duties {
		fmt.Printf("M%d duty: %s\n", i+1, roboclaw.FormatDuty(d))
	}
	return nil
}

func runDriveSpeed(cmd *cobra.Command, args []string) error {
	m1, err := parseInt32(args[0])
	if err != nil {
		return err
	}
	m2, err := parseInt32(args[1])
	if err != nil {
		return err
	}

	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	if speedAccel == 0 {
		err = rc.SpeedM1M2(m1, m2)
	} else {
		err = rc.SpeedAccelM1M2(speedAccel, m1, m2)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Speed: M1=%d pps  M2=%d pps\n", m1, m2)
	return nil
}

func runDriveMixed(cmd *cobra.Command, args []string) error {
	drive, err := parseSevenBit(args[0])
	if err != nil {
		return err
	}
	turn, err := parseSevenBit(args[1])
	if err != nil {
		return err
	}

	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := rc.ForwardBackwardMixed(drive); err != nil {
		return err
	}
	if err := rc.LeftRightMixed(turn); err != nil {
		return err
	}

	fmt.Printf("Mixed: drive=%d turn=%d\n", drive, turn)
	return nil
}

func runDrivePosition(cmd *cobra.Command, args []string) error {
	p1, err := parseInt32(args[0])
	if err != nil {
		return err
	}
	p2, err := parseInt32(args[1])
	if err != nil {
		return err
	}

	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	move := roboclaw.PositionMove{Accel: positionAccel, Speed: positionSpeed, Decel: positionDecel}
	m1, m2 := move, move
	m1.Position = p1
	m2.Position = p2
	if err := rc.SpeedAccelDecelPositionM1M2(m1, m2, driveImmediate); err != nil {
		return err
	}

	fmt.Printf("Position: M1=%d  M2=%d\n", p1, p2)
	return nil
}

func runDriveStop(cmd *cobra.Command, args []string) error {
	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := rc.Stop(); err != nil {
		return err
	}
	fmt.Println("Stopped")
	return nil
}
