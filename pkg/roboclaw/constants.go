// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package roboclaw implements the RoboClaw packet serial protocol.
//
// Every request is framed as [address, command, arguments..., crcHi, crcLo].
// Write commands are acknowledged with a single 0xFF byte; read commands
// answer with a fixed-size payload followed by a CRC computed over the
// request address, the command and the payload. This package provides the
// checksum engine, the packet codec, a retrying command dispatcher and a
// typed driver with one method per supported command.
package roboclaw

import "time"

// Address selects a controller on a shared packet serial bus.
type Address uint8

// Valid packet serial addresses
const (
	AddressMin     Address = 0x80
	AddressMax     Address = 0x87
	AddressDefault         = AddressMin
)

// Valid reports whether a is inside the packet serial address range.
func (a Address) Valid() bool {
	return a >= AddressMin && a <= AddressMax
}

// Protocol constants
const (
	AckByte          = 0xFF
	CRCSize          = 2
	MaxVersionLength = 48

	// WriteSettingsKey must accompany a write-settings-to-EEPROM request.
	WriteSettingsKey = 0xE22EAB7A
)

// CRC-16 configuration (XModem variant used by the controller firmware)
const (
	crcPolynomial = 0x1021
	crcInitial    = 0x0000
)

// Driver defaults
const (
	DefaultRetries = 3
	DefaultTimeout = 100 * time.Millisecond
)

// Command is a packet serial command code.
type Command uint8

// Compatibility commands
const (
	CmdM1Forward       Command = 0
	CmdM1Backward      Command = 1
	CmdSetMinMainBatt  Command = 2
	CmdSetMaxMainBatt  Command = 3
	CmdM2Forward       Command = 4
	CmdM2Backward      Command = 5
	CmdM17Bit          Command = 6
	CmdM27Bit          Command = 7
	CmdMixedForward    Command = 8
	CmdMixedBackward   Command = 9
	CmdMixedRight      Command = 10
	CmdMixedLeft       Command = 11
	CmdMixedFB         Command = 12
	CmdMixedLR         Command = 13
	CmdSetMinLogicBatt Command = 26
	CmdSetMaxLogicBatt Command = 27
)

// Encoder and telemetry commands
const (
	CmdGetM1Enc       Command = 16
	CmdGetM2Enc       Command = 17
	CmdGetM1Speed     Command = 18
	CmdGetM2Speed     Command = 19
	CmdResetEnc       Command = 20
	CmdGetVersion     Command = 21
	CmdSetM1EncCount  Command = 22
	CmdSetM2EncCount  Command = 23
	CmdGetMainBatt    Command = 24
	CmdGetLogicBatt   Command = 25
	CmdGetM1RawSpeed  Command = 30
	CmdGetM2RawSpeed  Command = 31
	CmdGetBuffers     Command = 47
	CmdGetPWMs        Command = 48
	CmdGetCurrents    Command = 49
	CmdGetEncoders    Command = 78
	CmdGetRawSpeeds   Command = 79
	CmdGetTemp        Command = 82
	CmdGetTemp2       Command = 83
	CmdGetStatus      Command = 90
	CmdGetEncoderMode Command = 91
)

// Motion commands
const (
	CmdM1Duty                  Command = 32
	CmdM2Duty                  Command = 33
	CmdMixedDuty               Command = 34
	CmdM1Speed                 Command = 35
	CmdM2Speed                 Command = 36
	CmdMixedSpeed              Command = 37
	CmdM1SpeedAccel            Command = 38
	CmdM2SpeedAccel            Command = 39
	CmdMixedSpeedAccel         Command = 40
	CmdM1SpeedDist             Command = 41
	CmdM2SpeedDist             Command = 42
	CmdMixedSpeedDist          Command = 43
	CmdM1SpeedAccelDist        Command = 44
	CmdM2SpeedAccelDist        Command = 45
	CmdMixedSpeedAccelDist     Command = 46
	CmdMixedSpeed2Accel        Command = 50
	CmdMixedSpeed2AccelDist    Command = 51
	CmdM1DutyAccel             Command = 52
	CmdM2DutyAccel             Command = 53
	CmdMixedDutyAccel          Command = 54
	CmdM1SpeedAccelDecelPos    Command = 65
	CmdM2SpeedAccelDecelPos    Command = 66
	CmdMixedSpeedAccelDecelPos Command = 67
)

// Configuration commands
const (
	CmdSetM1PID          Command = 28
	CmdSetM2PID          Command = 29
	CmdReadM1PID         Command = 55
	CmdReadM2PID         Command = 56
	CmdSetMainVoltages   Command = 57
	CmdSetLogicVoltages  Command = 58
	CmdGetMainVoltages   Command = 59
	CmdGetLogicVoltages  Command = 60
	CmdSetM1PosPID       Command = 61
	CmdSetM2PosPID       Command = 62
	CmdReadM1PosPID      Command = 63
	CmdReadM2PosPID      Command = 64
	CmdSetM1DefaultAccel Command = 68
	CmdSetM2DefaultAccel Command = 69
	CmdSetPinFunctions   Command = 74
	CmdGetPinFunctions   Command = 75
	CmdSetDeadband       Command = 76
	CmdGetDeadband       Command = 77
	CmdRestoreDefaults   Command = 80
	CmdSetM1EncoderMode  Command = 92
	CmdSetM2EncoderMode  Command = 93
	CmdWriteSettings     Command = 94
	CmdReadSettings      Command = 95
	CmdSetConfig         Command = 98
	CmdGetConfig         Command = 99
	CmdSetM1MaxCurrent   Command = 133
	CmdSetM2MaxCurrent   Command = 134
	CmdGetM1MaxCurrent   Command = 135
	CmdGetM2MaxCurrent   Command = 136
	CmdSetPWMMode        Command = 148
	CmdGetPWMMode        Command = 149
	CmdReadEEPROM        Command = 252
	CmdWriteEEPROM       Command = 253
)

// Encoder status bits (encoder count and speed queries)
const (
	EncoderUnderflow = 0x01
	EncoderBackward  = 0x02
	EncoderOverflow  = 0x04
)

// Buffer status values returned by the buffer depth query
const (
	BufferEmpty = 0x80
)

// Buffer flags for queued motion commands
const (
	BufferQueue     = 0
	BufferImmediate = 1
)

// Controller status bits (32-bit status query)
const (
	StatusNormal             = 0x00000000
	StatusEStop              = 0x00000001
	StatusTempError          = 0x00000002
	StatusTemp2Error         = 0x00000004
	StatusMainHighError      = 0x00000008
	StatusLogicHighError     = 0x00000010
	StatusLogicLowError      = 0x00000020
	StatusM1DriverFault      = 0x00000040
	StatusM2DriverFault      = 0x00000080
	StatusM1SpeedError       = 0x00000100
	StatusM2SpeedError       = 0x00000200
	StatusM1PositionError    = 0x00000400
	StatusM2PositionError    = 0x00000800
	StatusM1CurrentError     = 0x00001000
	StatusM2CurrentError     = 0x00002000
	StatusM1OverCurrentWarn  = 0x00010000
	StatusM2OverCurrentWarn  = 0x00020000
	StatusMainHighWarn       = 0x00040000
	StatusMainLowWarn        = 0x00080000
	StatusTempWarn           = 0x00100000
	StatusTemp2Warn          = 0x00200000
	StatusS4Triggered        = 0x00400000
	StatusS5Triggered        = 0x00800000
	StatusSpeedErrorLimit    = 0x01000000
	StatusPositionErrorLimit = 0x02000000
)
