// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

// Compatibility commands take 7-bit values: 0 stops, 127 is full power.
// The forward/backward variants treat 64 as stop.

// ForwardM1 drives motor 1 forward
func (r *Roboclaw) ForwardM1(value uint8) error {
	return r.write(CmdM1Forward, int64(value))
}

// BackwardM1 drives motor 1 backward
func (r *Roboclaw) BackwardM1(value uint8) error {
	return r.write(CmdM1Backward, int64(value))
}

// ForwardM2 drives motor 2 forward
func (r *Roboclaw) ForwardM2(value uint8) error {
	return r.write(CmdM2Forward, int64(value))
}

// BackwardM2 drives motor 2 backward
func (r *Roboclaw) BackwardM2(value uint8) error {
	return r.write(CmdM2Backward, int64(value))
}

// ForwardBackwardM1 drives motor 1 with 0 full reverse, 64 stop, 127 full forward
func (r *Roboclaw) ForwardBackwardM1(value uint8) error {
	return r.write(CmdM17Bit, int64(value))
}

// ForwardBackwardM2 drives motor 2 with 0 full reverse, 64 stop, 127 full forward
func (r *Roboclaw) ForwardBackwardM2(value uint8) error {
	return r.write(CmdM27Bit, int64(value))
}

// ForwardMixed drives forward in mix mode
func (r *Roboclaw) ForwardMixed(value uint8) error {
	return r.write(CmdMixedForward, int64(value))
}

// BackwardMixed drives backward in mix mode
func (r *Roboclaw) BackwardMixed(value uint8) error {
	return r.write(CmdMixedBackward, int64(value))
}

// TurnRightMixed turns right in mix mode
func (r *Roboclaw) TurnRightMixed(value uint8) error {
	return r.write(CmdMixedRight, int64(value))
}

// TurnLeftMixed turns left in mix mode
func (r *Roboclaw) TurnLeftMixed(value uint8) error {
	return r.write(CmdMixedLeft, int64(value))
}

// ForwardBackwardMixed drives in mix mode with 64 as stop
func (r *Roboclaw) ForwardBackwardMixed(value uint8) error {
	return r.write(CmdMixedFB, int64(value))
}

// LeftRightMixed turns in mix mode with 64 as stop
func (r *Roboclaw) LeftRightMixed(value uint8) error {
	return r.write(CmdMixedLR, int64(value))
}

// DutyM1 drives motor 1 with a signed duty cycle (±32767 is ±100%)
func (r *Roboclaw) DutyM1(duty int16) error {
	return r.write(CmdM1Duty, int64(duty))
}

// DutyM2 drives motor 2 with a signed duty cycle
func (r *Roboclaw) DutyM2(duty int16) error {
	return r.write(CmdM2Duty, int64(duty))
}

// DutyM1M2 drives both motors with signed duty cycles
func (r *Roboclaw) DutyM1M2(m1, m2 int16) error {
	return r.write(CmdMixedDuty, int64(m1), int64(m2))
}

// DutyAccelM1 ramps motor 1 to duty at accel
func (r *Roboclaw) DutyAccelM1(duty int16, accel uint32) error {
	return r.write(CmdM1DutyAccel, int64(duty), int64(accel))
}

// DutyAccelM2 ramps motor 2 to duty at accel
func (r *Roboclaw) DutyAccelM2(duty int16, accel uint32) error {
	return r.write(CmdM2DutyAccel, int64(duty), int64(accel))
}

// DutyAccelM1M2 ramps both motors
func (r *Roboclaw) DutyAccelM1M2(duty1 int16, accel1 uint32, duty2 int16, accel2 uint32) error {
	return r.write(CmdMixedDutyAccel, int64(duty1), int64(accel1), int64(duty2), int64(accel2))
}

// SpeedM1 drives motor 1 at a signed speed in encoder pulses per second
func (r *Roboclaw) SpeedM1(speed int32) error {
	return r.write(CmdM1Speed, int64(speed))
}

// SpeedM2 drives motor 2 at a signed speed
func (r *Roboclaw) SpeedM2(speed int32) error {
	return r.write(CmdM2Speed, int64(speed))
}

// SpeedM1M2 drives both motors at signed speeds
func (r *Roboclaw) SpeedM1M2(m1, m2 int32) error {
	return r.write(CmdMixedSpeed, int64(m1), int64(m2))
}

// SpeedAccelM1 accelerates motor 1 to speed
func (r *Roboclaw) SpeedAccelM1(accel uint32, speed int32) error {
	return r.write(CmdM1SpeedAccel, int64(accel), int64(speed))
}

// SpeedAccelM2 accelerates motor 2 to speed
func (r *Roboclaw) SpeedAccelM2(accel uint32, speed int32) error {
	return r.write(CmdM2SpeedAccel, int64(accel), int64(speed))
}

// SpeedAccelM1M2 accelerates both motors with a shared acceleration
func (r *Roboclaw) SpeedAccelM1M2(accel uint32, m1, m2 int32) error {
	return r.write(CmdMixedSpeedAccel, int64(accel), int64(m1), int64(m2))
}

// SpeedAccel2M1M2 accelerates both motors with individual accelerations
func (r *Roboclaw) SpeedAccel2M1M2(accel1 uint32, speed1 int32, accel2 uint32, speed2 int32) error {
	return r.write(CmdMixedSpeed2Accel, int64(accel1), int64(speed1), int64(accel2), int64(speed2))
}

// DistanceMove is one motor's part of a speed+distance command
type DistanceMove struct {
	Accel    uint32 // ignored by commands without acceleration
	Speed    int32
	Distance uint32
}

// SpeedDistanceM1 drives motor 1 for distance pulses. When immediate is
// false the command is queued behind the motor's buffered commands.
func (r *Roboclaw) SpeedDistanceM1(speed int32, distance uint32, immediate bool) error {
	return r.write(CmdM1SpeedDist, int64(speed), int64(distance), bufferFlag(immediate))
}

// SpeedDistanceM2 drives motor 2 for distance pulses
func (r *Roboclaw) SpeedDistanceM2(speed int32, distance uint32, immediate bool) error {
	return r.write(CmdM2SpeedDist, int64(speed), int64(distance), bufferFlag(immediate))
}

// SpeedDistanceM1M2 drives both motors for a distance
func (r *Roboclaw) SpeedDistanceM1M2(m1, m2 DistanceMove, immediate bool) error {
	return r.write(CmdMixedSpeedDist,
		int64(m1.Speed), int64(m1.Distance),
		int64(m2.Speed), int64(m2.Distance),
		bufferFlag(immediate))
}

// SpeedAccelDistanceM1 accelerates motor 1 to speed and drives distance pulses
func (r *Roboclaw) SpeedAccelDistanceM1(accel uint32, speed int32, distance uint32, immediate bool) error {
	return r.write(CmdM1SpeedAccelDist, int64(accel), int64(speed), int64(distance), bufferFlag(immediate))
}

// SpeedAccelDistanceM2 accelerates motor 2 to speed and drives distance pulses
func (r *Roboclaw) SpeedAccelDistanceM2(accel uint32, speed int32, distance uint32, immediate bool) error {
	return r.write(CmdM2SpeedAccelDist, int64(accel), int64(speed), int64(distance), bufferFlag(immediate))
}

// SpeedAccelDistanceM1M2 drives both motors with a shared acceleration
func (r *Roboclaw) SpeedAccelDistanceM1M2(accel uint32, m1, m2 DistanceMove, immediate bool) error {
	return r.write(CmdMixedSpeedAccelDist,
		int64(accel),
		int64(m1.Speed), int64(m1.Distance),
		int64(m2.Speed), int64(m2.Distance),
		bufferFlag(immediate))
}

// SpeedAccelDistance2M1M2 drives both motors with individual accelerations
func (r *Roboclaw) SpeedAccelDistance2M1M2(m1, m2 DistanceMove, immediate bool) error {
	return r.write(CmdMixedSpeed2AccelDist,
		int64(m1.Accel), int64(m1.Speed), int64(m1.Distance),
		int64(m2.Accel), int64(m2.Speed), int64(m2.Distance),
		bufferFlag(immediate))
}

// PositionMove is one motor's part of a position command
type PositionMove struct {
	Accel    uint32
	Speed    uint32
	Decel    uint32
	Position int32
}

// SpeedAccelDecelPositionM1 moves motor 1 to an absolute encoder position
func (r *Roboclaw) SpeedAccelDecelPositionM1(m PositionMove, immediate bool) error {
	return r.write(CmdM1SpeedAccelDecelPos,
		int64(m.Accel), int64(m.Speed), int64(m.Decel), int64(m.Position), bufferFlag(immediate))
}

// SpeedAccelDecelPositionM2 moves motor 2 to an absolute encoder position
func (r *Roboclaw) SpeedAccelDecelPositionM2(m PositionMove, immediate bool) error {
	return r.write(CmdM2SpeedAccelDecelPos,
		int64(m.Accel), int64(m.Speed), int64(m.Decel), int64(m.Position), bufferFlag(immediate))
}

// SpeedAccelDecelPositionM1M2 moves both motors to absolute positions
func (r *Roboclaw) SpeedAccelDecelPositionM1M2(m1, m2 PositionMove, immediate bool) error {
	return r.write(CmdMixedSpeedAccelDecelPos,
		int64(m1.Accel), int64(m1.Speed), int64(m1.Decel), int64(m1.Position),
		int64(m2.Accel), int64(m2.Speed), int64(m2.Decel), int64(m2.Position),
		bufferFlag(immediate))
}

// Stop sets both motors to zero duty
func (r *Roboclaw) Stop() error {
	return r.DutyM1M2(0, 0)
}
