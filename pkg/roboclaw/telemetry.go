// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

// EncoderReading is an encoder count or speed with its status byte
type EncoderReading struct {
	Value  int32
	Status uint8
}

// Underflow reports a counter underflow since the last read
func (e EncoderReading) Underflow() bool { return e.Status&EncoderUnderflow != 0 }

// Backward reports the motor is turning backward
func (e EncoderReading) Backward() bool { return e.Status&EncoderBackward != 0 }

// Overflow reports a counter overflow since the last read
func (e EncoderReading) Overflow() bool { return e.Status&EncoderOverflow != 0 }

func encoderReading(v []int64) EncoderReading {
	return EncoderReading{Value: int32(v[0]), Status: uint8(v[1])}
}

// ReadEncoderM1 reads the motor 1 encoder count
func (r *Roboclaw) ReadEncoderM1() (EncoderReading, error) {
	v, err := r.read(CmdGetM1Enc)
	if err != nil {
		return EncoderReading{}, err
	}
	return encoderReading(v), nil
}

// ReadEncoderM2 reads the motor 2 encoder count
func (r *Roboclaw) ReadEncoderM2() (EncoderReading, error) {
	v, err := r.read(CmdGetM2Enc)
	if err != nil {
		return EncoderReading{}, err
	}
	return encoderReading(v), nil
}

// ReadSpeedM1 reads the filtered motor 1 speed in pulses per second
func (r *Roboclaw) ReadSpeedM1() (EncoderReading, error) {
	v, err := r.read(CmdGetM1Speed)
	if err != nil {
		return EncoderReading{}, err
	}
	return encoderReading(v), nil
}

// ReadSpeedM2 reads the filtered motor 2 speed in pulses per second
func (r *Roboclaw) ReadSpeedM2() (EncoderReading, error) {
	v, err := r.read(CmdGetM2Speed)
	if err != nil {
		return EncoderReading{}, err
	}
	return encoderReading(v), nil
}

// ReadRawSpeedM1 reads the unfiltered motor 1 speed
func (r *Roboclaw) ReadRawSpeedM1() (EncoderReading, error) {
	v, err := r.read(CmdGetM1RawSpeed)
	if err != nil {
		return EncoderReading{}, err
	}
	return encoderReading(v), nil
}

// ReadRawSpeedM2 reads the unfiltered motor 2 speed
func (r *Roboclaw) ReadRawSpeedM2() (EncoderReading, error) {
	v, err := r.read(CmdGetM2RawSpeed)
	if err != nil {
		return EncoderReading{}, err
	}
	return encoderReading(v), nil
}

// ReadEncoders reads both encoder counts
func (r *Roboclaw) ReadEncoders() (m1, m2 int32, err error) {
	v, err := r.read(CmdGetEncoders)
	if err != nil {
		return 0, 0, err
	}
	return int32(v[0]), int32(v[1]), nil
}

// ReadRawSpeeds reads both unfiltered speeds
func (r *Roboclaw) ReadRawSpeeds() (m1, m2 int32, err error) {
	v, err := r.read(CmdGetRawSpeeds)
	if err != nil {
		return 0, 0, err
	}
	return int32(v[0]), int32(v[1]), nil
}

// ResetEncoders zeroes both quadrature encoder counters
func (r *Roboclaw) ResetEncoders() error {
	return r.write(CmdResetEnc)
}

// SetEncoderM1 sets the motor 1 encoder register
func (r *Roboclaw) SetEncoderM1(count int32) error {
	return r.write(CmdSetM1EncCount, int64(count))
}

// SetEncoderM2 sets the motor 2 encoder register
func (r *Roboclaw) SetEncoderM2(count int32) error {
	return r.write(CmdSetM2EncCount, int64(count))
}

// ReadVersion reads the firmware version string
func (r *Roboclaw) ReadVersion() (string, error) {
	res, err := r.exec(mustLookup(CmdGetVersion))
	if err != nil {
		return "", err
	}
	return res.Version, nil
}

// ReadMainBatteryVoltage reads the main battery voltage in volts
func (r *Roboclaw) ReadMainBatteryVoltage() (float64, error) {
	v, err := r.read(CmdGetMainBatt)
	if err != nil {
		return 0, err
	}
	return float64(v[0]) / 10, nil
}

// ReadLogicBatteryVoltage reads the logic battery voltage in volts
func (r *Roboclaw) ReadLogicBatteryVoltage() (float64, error) {
	v, err := r.read(CmdGetLogicBatt)
	if err != nil {
		return 0, err
	}
	return float64(v[0]) / 10, nil
}

// ReadBuffers reads how many commands are queued per motor. BufferEmpty
// means the buffer is empty and the last command finished.
func (r *Roboclaw) ReadBuffers() (m1, m2 uint8, err error) {
	v, err := r.read(CmdGetBuffers)
	if err != nil {
		return 0, 0, err
	}
	return uint8(v[0]), uint8(v[1]), nil
}

// ReadPWMs reads the current PWM outputs (±32767)
func (r *Roboclaw) ReadPWMs() (m1, m2 int16, err error) {
	v, err := r.read(CmdGetPWMs)
	if err != nil {
		return 0, 0, err
	}
	return int16(v[0]), int16(v[1]), nil
}

// ReadCurrents reads both motor currents in amps
func (r *Roboclaw) ReadCurrents() (m1, m2 float64, err error) {
	v, err := r.read(CmdGetCurrents)
	if err != nil {
		return 0, 0, err
	}
	return float64(v[0]) / 100, float64(v[1]) / 100, nil
}

// ReadTemperature reads the board temperature in °C
func (r *Roboclaw) ReadTemperature() (float64, error) {
	v, err := r.read(CmdGetTemp)
	if err != nil {
		return 0, err
	}
	return float64(v[0]) / 10, nil
}

// ReadTemperature2 reads the second temperature sensor in °C
func (r *Roboclaw) ReadTemperature2() (float64, error) {
	v, err := r.read(CmdGetTemp2)
	if err != nil {
		return 0, err
	}
	return float64(v[0]) / 10, nil
}

// ReadStatus reads the controller error and warning flags
func (r *Roboclaw) ReadStatus() (Status, error) {
	v, err := r.read(CmdGetStatus)
	if err != nil {
		return 0, err
	}
	return Status(v[0]), nil
}

// Telemetry is a snapshot of the commonly monitored values
type Telemetry struct {
	EncoderM1    EncoderReading
	EncoderM2    EncoderReading
	SpeedM1      EncoderReading
	SpeedM2      EncoderReading
	PWMM1        int16
	PWMM2        int16
	CurrentM1    float64 // A
	CurrentM2    float64 // A
	MainBattery  float64 // V
	LogicBattery float64 // V
	Temperature  float64 // °C
	Status       Status
}

// ReadTelemetry reads a full telemetry snapshot. It stops at the first
// failed query and returns no partial snapshot.
func (r *Roboclaw) ReadTelemetry() (Telemetry, error) {
	t, err := r.readTelemetry()
	if err != nil {
		return Telemetry{}, err
	}
	return t, nil
}

func (r *Roboclaw) readTelemetry() (t Telemetry, err error) {
	if t.EncoderM1, err = r.ReadEncoderM1(); err != nil {
		return
	}
	if t.EncoderM2, err = r.ReadEncoderM2(); err != nil {
		return
	}
	if t.SpeedM1, err = r.ReadSpeedM1(); err != nil {
		return
	}
	if t.SpeedM2, err = r.ReadSpeedM2(); err != nil {
		return
	}
	if t.PWMM1, t.PWMM2, err = r.ReadPWMs(); err != nil {
		return
	}
	if t.CurrentM1, t.CurrentM2, err = r.ReadCurrents(); err != nil {
		return
	}
	if t.MainBattery, err = r.ReadMainBatteryVoltage(); err != nil {
		return
	}
	if t.LogicBattery, err = r.ReadLogicBatteryVoltage(); err != nil {
		return
	}
	if t.Temperature, err = r.ReadTemperature(); err != nil {
		return
	}
	t.Status, err = r.ReadStatus()
	return
}
