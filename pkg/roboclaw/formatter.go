// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"fmt"
	"strings"
)

// Status is the 32-bit controller status word
type Status uint32

// statusNames lists the flags in bit order
var statusNames = []struct {
	bit  Status
	name string
}{
	{StatusEStop, "E_STOP"},
	{StatusTempError, "TEMP_ERROR"},
	{StatusTemp2Error, "TEMP2_ERROR"},
	{StatusMainHighError, "MAIN_VOLTAGE_HIGH"},
	{StatusLogicHighError, "LOGIC_VOLTAGE_HIGH"},
	{StatusLogicLowError, "LOGIC_VOLTAGE_LOW"},
	{StatusM1DriverFault, "M1_DRIVER_FAULT"},
	{StatusM2DriverFault, "M2_DRIVER_FAULT"},
	{StatusM1SpeedError, "M1_SPEED_ERROR"},
	{StatusM2SpeedError, "M2_SPEED_ERROR"},
	{StatusM1PositionError, "M1_POSITION_ERROR"},
	{StatusM2PositionError, "M2_POSITION_ERROR"},
	{StatusM1CurrentError, "M1_CURRENT_ERROR"},
	{StatusM2CurrentError, "M2_CURRENT_ERROR"},
	{StatusM1OverCurrentWarn, "M1_OVERCURRENT_WARNING"},
	{StatusM2OverCurrentWarn, "M2_OVERCURRENT_WARNING"},
	{StatusMainHighWarn, "MAIN_VOLTAGE_HIGH_WARNING"},
	{StatusMainLowWarn, "MAIN_VOLTAGE_LOW_WARNING"},
	{StatusTempWarn, "TEMP_WARNING"},
	{StatusTemp2Warn, "TEMP2_WARNING"},
	{StatusS4Triggered, "S4_TRIGGERED"},
	{StatusS5Triggered, "S5_TRIGGERED"},
	{StatusSpeedErrorLimit, "SPEED_ERROR_LIMIT"},
	{StatusPositionErrorLimit, "POSITION_ERROR_LIMIT"},
}

// errorMask covers the flags that stop the motors
const errorMask Status = 0x0000FFFF

// Has reports whether every bit in flag is set
func (s Status) Has(flag Status) bool {
	return s&flag == flag && flag != 0
}

// IsError reports whether any error flag (lower 16 bits) is set
func (s Status) IsError() bool {
	return s&errorMask != 0
}

// Flags returns the names of the set flags in bit order
func (s Status) Flags() []string {
	var flags []string
	for _, n := range statusNames {
		if s&n.bit != 0 {
			flags = append(flags, n.name)
		}
	}
	return flags
}

// String returns "NORMAL" or the set flags joined by '|'
func (s Status) String() string {
	if s == StatusNormal {
		return "NORMAL"
	}
	flags := s.Flags()
	if len(flags) == 0 {
		return fmt.Sprintf("UNKNOWN(0x%08X)", uint32(s))
	}
	return strings.Join(flags, "|")
}

// FormatCommand returns the human-readable name for a command code
func FormatCommand(cmd Command) string {
	if spec, ok := Lookup(cmd); ok {
		return spec.Name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(cmd))
}

// FormatEncoderStatus describes an encoder status byte
func FormatEncoderStatus(status uint8) string {
	var parts []string
	if status&EncoderBackward != 0 {
		parts = append(parts, "backward")
	} else {
		parts = append(parts, "forward")
	}
	if status&EncoderUnderflow != 0 {
		parts = append(parts, "underflow")
	}
	if status&EncoderOverflow != 0 {
		parts = append(parts, "overflow")
	}
	return strings.Join(parts, ",")
}

// FormatBuffer describes a buffer depth value
func FormatBuffer(depth uint8) string {
	if depth == BufferEmpty {
		return "empty"
	}
	return fmt.Sprintf("%d queued", depth)
}

// FormatDuty converts a duty value to a percentage string
func FormatDuty(duty int16) string {
	return fmt.Sprintf("%+.1f%%", float64(duty)*100/32767)
}

// FormatTelemetry formats a telemetry snapshot into a human-readable block
func FormatTelemetry(t Telemetry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Encoders:   M1=%d (%s)  M2=%d (%s)\n",
		t.EncoderM1.Value, FormatEncoderStatus(t.EncoderM1.Status),
		t.EncoderM2.Value, FormatEncoderStatus(t.EncoderM2.Status))
	fmt.Fprintf(&b, "  Speed:      M1=%d pps  M2=%d pps\n", t.SpeedM1.Value, t.SpeedM2.Value)
	fmt.Fprintf(&b, "  PWM:        M1=%s  M2=%s\n", FormatDuty(t.PWMM1), FormatDuty(t.PWMM2))
	fmt.Fprintf(&b, "  Current:    M1=%.2f A  M2=%.2f A\n", t.CurrentM1, t.CurrentM2)
	fmt.Fprintf(&b, "  Battery:    main=%.1f V  logic=%.1f V\n", t.MainBattery, t.LogicBattery)
	fmt.Fprintf(&b, "  Temp:       %.1f°C\n", t.Temperature)
	fmt.Fprintf(&b, "  Status:     %s\n", t.Status)
	return b.String()
}

// FormatSpec describes a catalog entry, e.g. for command listings
func FormatSpec(spec *CommandSpec) string {
	args := make([]string, len(spec.Args))
	for i, f := range spec.Args {
		args[i] = f.Name + ":" + f.Kind.String()
	}

	var reply string
	switch spec.ReplyKind {
	case ReplyAck:
		reply = fmt.Sprintf("ack 0x%02X", spec.AckValue)
	case ReplyString:
		reply = "string"
	default:
		fields := make([]string, len(spec.Reply))
		for i, f := range spec.Reply {
			fields[i] = f.Name + ":" + f.Kind.String()
		}
		reply = strings.Join(fields, ", ")
	}

	return fmt.Sprintf("%3d %-34s %-9s (%s) -> %s",
		uint8(spec.Code), spec.Name, spec.Category, strings.Join(args, ", "), reply)
}
