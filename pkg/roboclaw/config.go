// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"math"
)

// Fixed-point scales used by the PID registers
const (
	velocityPIDScale = 65536 // 16.16
	positionPIDScale = 1024
)

// Legacy voltage limits accepted by the compatibility commands
const (
	LegacyMinVoltage = 6.0
	LegacyMaxVoltage = 34.0
)

// LegacyMinVoltageValue converts a minimum battery voltage to the byte used
// by the compatibility commands: (V-6)*5.
func LegacyMinVoltageValue(volts float64) int64 {
	return int64(math.Round((volts - LegacyMinVoltage) * 5))
}

// LegacyMaxVoltageValue converts a maximum battery voltage: V*5.12.
func LegacyMaxVoltageValue(volts float64) int64 {
	return int64(math.Round(volts * 5.12))
}

// SetMinMainBatteryLegacy sets the main battery cutoff in volts
func (r *Roboclaw) SetMinMainBatteryLegacy(volts float64) error {
	return r.write(CmdSetMinMainBatt, LegacyMinVoltageValue(volts))
}

// SetMaxMainBatteryLegacy sets the main battery over-voltage limit in volts
func (r *Roboclaw) SetMaxMainBatteryLegacy(volts float64) error {
	return r.write(CmdSetMaxMainBatt, LegacyMaxVoltageValue(volts))
}

// SetMinLogicBatteryLegacy sets the logic battery cutoff in volts
func (r *Roboclaw) SetMinLogicBatteryLegacy(volts float64) error {
	return r.write(CmdSetMinLogicBatt, LegacyMinVoltageValue(volts))
}

// SetMaxLogicBatteryLegacy sets the logic battery over-voltage limit in volts
func (r *Roboclaw) SetMaxLogicBatteryLegacy(volts float64) error {
	return r.write(CmdSetMaxLogicBatt, LegacyMaxVoltageValue(volts))
}

// VelocityPID holds velocity controller gains and the encoder pulses per
// second at full speed
type VelocityPID struct {
	P    float64
	I    float64
	D    float64
	QPPS uint32
}

// PositionPID holds position controller gains and limits
type PositionPID struct {
	P           float64
	I           float64
	D           float64
	MaxI        uint32
	Deadzone    uint32
	MinPosition int32
	MaxPosition int32
}

func toFixed(v float64, scale float64) int64 {
	return int64(math.Round(v * scale))
}

func fromFixed(v int64, scale float64) float64 {
	return float64(v) / scale
}

// SetVelocityPIDM1 writes the motor 1 velocity PID
func (r *Roboclaw) SetVelocityPIDM1(pid VelocityPID) error {
	return r.setVelocityPID(CmdSetM1PID, pid)
}

// SetVelocityPIDM2 writes the motor 2 velocity PID
func (r *Roboclaw) SetVelocityPIDM2(pid VelocityPID) error {
	return r.setVelocityPID(CmdSetM2PID, pid)
}

// The set commands take D first; the read commands return P first.
func (r *Roboclaw) setVelocityPID(cmd Command, pid VelocityPID) error {
	return r.write(cmd,
		toFixed(pid.D, velocityPIDScale),
		toFixed(pid.P, velocityPIDScale),
		toFixed(pid.I, velocityPIDScale),
		int64(pid.QPPS))
}

// ReadVelocityPIDM1 reads the motor 1 velocity PID
func (r *Roboclaw) ReadVelocityPIDM1() (VelocityPID, error) {
	return r.readVelocityPID(CmdReadM1PID)
}

// ReadVelocityPIDM2 reads the motor 2 velocity PID
func (r *Roboclaw) ReadVelocityPIDM2() (VelocityPID, error) {
	return r.readVelocityPID(CmdReadM2PID)
}

func (r *Roboclaw) readVelocityPID(cmd Command) (VelocityPID, error) {
	v, err := r.read(cmd)
	if err != nil {
		return VelocityPID{}, err
	}
	return VelocityPID{
		P:    fromFixed(v[0], velocityPIDScale),
		I:    fromFixed(v[1], velocityPIDScale),
		D:    fromFixed(v[2], velocityPIDScale),
		QPPS: uint32(v[3]),
	}, nil
}

// SetPositionPIDM1 writes the motor 1 position PID
func (r *Roboclaw) SetPositionPIDM1(pid PositionPID) error {
	return r.setPositionPID(CmdSetM1PosPID, pid)
}

// SetPositionPIDM2 writes the motor 2 position PID
func (r *Roboclaw) SetPositionPIDM2(pid PositionPID) error {
	return r.setPositionPID(CmdSetM2PosPID, pid)
}

func (r *Roboclaw) setPositionPID(cmd Command, pid PositionPID) error {
	return r.write(cmd,
		toFixed(pid.D, positionPIDScale),
		toFixed(pid.P, positionPIDScale),
		toFixed(pid.I, positionPIDScale),
		int64(pid.MaxI),
		int64(pid.Deadzone),
		int64(pid.MinPosition),
		int64(pid.MaxPosition))
}

// ReadPositionPIDM1 reads the motor 1 position PID
func (r *Roboclaw) ReadPositionPIDM1() (PositionPID, error) {
	return r.readPositionPID(CmdReadM1PosPID)
}

// ReadPositionPIDM2 reads the motor 2 position PID
func (r *Roboclaw) ReadPositionPIDM2() (PositionPID, error) {
	return r.readPositionPID(CmdReadM2PosPID)
}

func (r *Roboclaw) readPositionPID(cmd Command) (PositionPID, error) {
	v, err := r.read(cmd)
	if err != nil {
		return PositionPID{}, err
	}
	return PositionPID{
		P:           fromFixed(v[0], positionPIDScale),
		I:           fromFixed(v[1], positionPIDScale),
		D:           fromFixed(v[2], positionPIDScale),
		MaxI:        uint32(v[3]),
		Deadzone:    uint32(v[4]),
		MinPosition: int32(v[5]),
		MaxPosition: int32(v[6]),
	}, nil
}

// VoltageRange is a pair of battery limits in volts
type VoltageRange struct {
	Min float64
	Max float64
}

func tenths(v float64) int64 {
	return int64(math.Round(v * 10))
}

// SetMainVoltages sets the main battery limits
func (r *Roboclaw) SetMainVoltages(limits VoltageRange) error {
	return r.write(CmdSetMainVoltages, tenths(limits.Min), tenths(limits.Max))
}

// SetLogicVoltages sets the logic battery limits
func (r *Roboclaw) SetLogicVoltages(limits VoltageRange) error {
	return r.write(CmdSetLogicVoltages, tenths(limits.Min), tenths(limits.Max))
}

// ReadMainVoltages reads the main battery limits
func (r *Roboclaw) ReadMainVoltages() (VoltageRange, error) {
	return r.readVoltages(CmdGetMainVoltages)
}

// ReadLogicVoltages reads the logic battery limits
func (r *Roboclaw) ReadLogicVoltages() (VoltageRange, error) {
	return r.readVoltages(CmdGetLogicVoltages)
}

func (r *Roboclaw) readVoltages(cmd Command) (VoltageRange, error) {
	v, err := r.read(cmd)
	if err != nil {
		return VoltageRange{}, err
	}
	return VoltageRange{Min: float64(v[0]) / 10, Max: float64(v[1]) / 10}, nil
}

// SetDefaultAccelM1 sets the acceleration used by duty commands on motor 1
func (r *Roboclaw) SetDefaultAccelM1(accel uint32) error {
	return r.write(CmdSetM1DefaultAccel, int64(accel))
}

// SetDefaultAccelM2 sets the acceleration used by duty commands on motor 2
func (r *Roboclaw) SetDefaultAccelM2(accel uint32) error {
	return r.write(CmdSetM2DefaultAccel, int64(accel))
}

// PinFunctions are the S3, S4 and S5 pin modes
type PinFunctions struct {
	S3 uint8
	S4 uint8
	S5 uint8
}

// SetPinFunctions sets the S3, S4 and S5 pin modes
func (r *Roboclaw) SetPinFunctions(p PinFunctions) error {
	return r.write(CmdSetPinFunctions, int64(p.S3), int64(p.S4), int64(p.S5))
}

// ReadPinFunctions reads the S3, S4 and S5 pin modes
func (r *Roboclaw) ReadPinFunctions() (PinFunctions, error) {
	v, err := r.read(CmdGetPinFunctions)
	if err != nil {
		return PinFunctions{}, err
	}
	return PinFunctions{S3: uint8(v[0]), S4: uint8(v[1]), S5: uint8(v[2])}, nil
}

// SetDeadband sets the RC/analog reverse and forward deadband
func (r *Roboclaw) SetDeadband(reverse, forward uint8) error {
	return r.write(CmdSetDeadband, int64(reverse), int64(forward))
}

// ReadDeadband reads the RC/analog deadband
func (r *Roboclaw) ReadDeadband() (reverse, forward uint8, err error) {
	v, err := r.read(CmdGetDeadband)
	if err != nil {
		return 0, 0, err
	}
	return uint8(v[0]), uint8(v[1]), nil
}

// RestoreDefaults resets the controller to factory settings
func (r *Roboclaw) RestoreDefaults() error {
	return r.write(CmdRestoreDefaults)
}

// SetEncoderModeM1 sets the motor 1 encoder mode
func (r *Roboclaw) SetEncoderModeM1(mode uint8) error {
	return r.write(CmdSetM1EncoderMode, int64(mode))
}

// SetEncoderModeM2 sets the motor 2 encoder mode
func (r *Roboclaw) SetEncoderModeM2(mode uint8) error {
	return r.write(CmdSetM2EncoderMode, int64(mode))
}

// ReadEncoderModes reads both encoder modes
func (r *Roboclaw) ReadEncoderModes() (m1, m2 uint8, err error) {
	v, err := r.read(CmdGetEncoderMode)
	if err != nil {
		return 0, 0, err
	}
	return uint8(v[0]), uint8(v[1]), nil
}

// WriteSettings stores the active settings in EEPROM
func (r *Roboclaw) WriteSettings() error {
	return r.write(CmdWriteSettings, WriteSettingsKey)
}

// ReadSettings reads the settings word
func (r *Roboclaw) ReadSettings() (uint16, error) {
	v, err := r.read(CmdReadSettings)
	if err != nil {
		return 0, err
	}
	return uint16(v[0]), nil
}

// SetConfig writes the standard configuration word
func (r *Roboclaw) SetConfig(config uint16) error {
	return r.write(CmdSetConfig, int64(config))
}

// ReadConfig reads the standard configuration word
func (r *Roboclaw) ReadConfig() (uint16, error) {
	v, err := r.read(CmdGetConfig)
	if err != nil {
		return 0, err
	}
	return uint16(v[0]), nil
}

// SetMaxCurrentM1 sets the motor 1 current limit in amps
func (r *Roboclaw) SetMaxCurrentM1(amps float64) error {
	return r.write(CmdSetM1MaxCurrent, centiamps(amps), 0)
}

// SetMaxCurrentM2 sets the motor 2 current limit in amps
func (r *Roboclaw) SetMaxCurrentM2(amps float64) error {
	return r.write(CmdSetM2MaxCurrent, centiamps(amps), 0)
}

// ReadMaxCurrentM1 reads the motor 1 current limit in amps
func (r *Roboclaw) ReadMaxCurrentM1() (float64, error) {
	return r.readMaxCurrent(CmdGetM1MaxCurrent)
}

// ReadMaxCurrentM2 reads the motor 2 current limit in amps
func (r *Roboclaw) ReadMaxCurrentM2() (float64, error) {
	return r.readMaxCurrent(CmdGetM2MaxCurrent)
}

func (r *Roboclaw) readMaxCurrent(cmd Command) (float64, error) {
	v, err := r.read(cmd)
	if err != nil {
		return 0, err
	}
	return float64(v[0]) / 100, nil
}

func centiamps(amps float64) int64 {
	return int64(math.Round(amps * 100))
}

// PWM drive modes
const (
	PWMLockedAntiphase = 0
	PWMSignMagnitude   = 1
)

// SetPWMMode selects the PWM drive mode
func (r *Roboclaw) SetPWMMode(mode uint8) error {
	return r.write(CmdSetPWMMode, int64(mode))
}

// ReadPWMMode reads the PWM drive mode
func (r *Roboclaw) ReadPWMMode() (uint8, error) {
	v, err := r.read(CmdGetPWMMode)
	if err != nil {
		return 0, err
	}
	return uint8(v[0]), nil
}

// ReadEEPROM reads one 16-bit word of user EEPROM
func (r *Roboclaw) ReadEEPROM(address uint8) (uint16, error) {
	v, err := r.read(CmdReadEEPROM, int64(address))
	if err != nil {
		return 0, err
	}
	return uint16(v[0]), nil
}

// WriteEEPROM writes one 16-bit word of user EEPROM
func (r *Roboclaw) WriteEEPROM(address uint8, value uint16) error {
	return r.write(CmdWriteEEPROM, int64(address), int64(value))
}
