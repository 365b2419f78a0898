// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

func newSimDriver(t *testing.T, addresses ...roboclaw.Address) (*roboclaw.Roboclaw, *Simulator) {
	t.Helper()
	sim := NewSimulator(addresses...)
	rc, err := roboclaw.New(NewStream(sim, "sim"), roboclaw.Config{
		Address: addresses[0],
		Timeout: 5 * time.Millisecond,
		Retries: 3,
	})
	require.NoError(t, err)
	return rc, sim
}

func TestSimulator_Version(t *testing.T) {
	rc, _ := newSimDriver(t, 0x80)

	version, err := rc.ReadVersion()
	require.NoError(t, err)
	require.Equal(t, "USB Roboclaw 2x15a v4.1.34", version)
}

func TestSimulator_DutyReadback(t *testing.T) {
	rc, sim := newSimDriver(t, 0x80)

	require.NoError(t, rc.DutyM1M2(16384, -8192))
	m1, m2, err := rc.ReadPWMs()
	require.NoError(t, err)
	require.Equal(t, int16(16384), m1)
	require.Equal(t, int16(-8192), m2)

	require.NoError(t, rc.ForwardBackwardM2(127))
	require.Equal(t, int16(32767), sim.Device(0x80).Duty[1])
	require.NoError(t, rc.ForwardBackwardM2(0))
	require.Equal(t, int16(-32767), sim.Device(0x80).Duty[1])
	require.NoError(t, rc.ForwardBackwardM2(64))
	require.Equal(t, int16(0), sim.Device(0x80).Duty[1])
}

func TestSimulator_RegisterRoundTrip(t *testing.T) {
	rc, _ := newSimDriver(t, 0x80)

	pid := roboclaw.VelocityPID{P: 2.5, I: 0.125, D: 0.0625, QPPS: 12000}
	require.NoError(t, rc.SetVelocityPIDM2(pid))
	got, err := rc.ReadVelocityPIDM2()
	require.NoError(t, err)
	if diff := cmp.Diff(pid, got); diff != "" {
		t.Errorf("PID mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, rc.WriteEEPROM(9, 0xCAFE))
	word, err := rc.ReadEEPROM(9)
	require.NoError(t, err)
	require.Equal(t, uint16(0xCAFE), word)

	require.NoError(t, rc.SetEncoderModeM2(0x81))
	m1, m2, err := rc.ReadEncoderModes()
	require.NoError(t, err)
	require.Equal(t, uint8(0), m1)
	require.Equal(t, uint8(0x81), m2)
}

func TestSimulator_Telemetry(t *testing.T) {
	rc, sim := newSimDriver(t, 0x80)
	dev := sim.Device(0x80)
	dev.Currents = [2]int16{150, 20}
	dev.Status = roboclaw.StatusTempWarn

	require.NoError(t, rc.SpeedM1M2(-300, 300))
	require.NoError(t, rc.SetEncoderM1(-42))

	tel, err := rc.ReadTelemetry()
	require.NoError(t, err)
	require.Equal(t, int32(-42), tel.EncoderM1.Value)
	require.True(t, tel.EncoderM1.Backward())
	require.Equal(t, int32(300), tel.SpeedM2.Value)
	require.InDelta(t, 1.5, tel.CurrentM1, 1e-9)
	require.InDelta(t, 24.0, tel.MainBattery, 1e-9)
	require.InDelta(t, 25.0, tel.Temperature, 1e-9)
	require.Equal(t, roboclaw.Status(roboclaw.StatusTempWarn), tel.Status)

	anomalies := roboclaw.ValidateTelemetry(tel, roboclaw.DefaultLimits)
	require.Len(t, anomalies, 1)
	require.Equal(t, roboclaw.AnomalyStatusWarning, anomalies[0].Type)
}

func TestSimulator_RetriesDroppedAndCorrupted(t *testing.T) {
	rc, sim := newSimDriver(t, 0x80)

	sim.DropNext(1)
	sim.CorruptNext(1)
	v, err := rc.ReadMainBatteryVoltage()
	require.NoError(t, err)
	require.InDelta(t, 24.0, v, 1e-9)

	stats := rc.Dispatcher().Statistics()
	require.Equal(t, uint64(3), stats.Attempts)
	require.Equal(t, uint64(1), stats.Timeouts)
	require.Equal(t, uint64(1), stats.ChecksumErrors)
	require.Len(t, sim.Received(), 3)
}

func TestSimulator_AbsentAddress(t *testing.T) {
	rc, sim := newSimDriver(t, 0x80)
	other, err := rc.At(0x85)
	require.NoError(t, err)

	err = other.Stop()
	var exhausted *roboclaw.RetryExhaustedError
	require.True(t, errors.As(err, &exhausted))
	require.Equal(t, 3, exhausted.Attempts)
	require.ErrorIs(t, err, roboclaw.ErrTimeout)
	require.Empty(t, sim.Received())
}

func TestSimulator_MultipleAddresses(t *testing.T) {
	rc, sim := newSimDriver(t, 0x80, 0x81)
	kicker, err := rc.At(0x81)
	require.NoError(t, err)

	require.NoError(t, rc.ForwardM1(127))
	require.NoError(t, kicker.ForwardM1(64))

	received := sim.Received()
	require.Len(t, received, 2)
	require.Equal(t, roboclaw.Address(0x80), received[0].Address)
	require.Equal(t, roboclaw.Address(0x81), received[1].Address)
	require.Equal(t, []int64{64}, received[1].Values)
	require.Equal(t, int16(32767), sim.Device(0x80).Duty[0])
}

func TestSimulator_IgnoresBadCRC(t *testing.T) {
	sim := NewSimulator(0x80)
	s := NewStream(sim, "sim")

	_, err := s.Write([]byte{0x80, 0x00, 0x40, 0x73, 0x9F})
	require.NoError(t, err)
	data, timedOut, err := s.ReadFull(1, time.Millisecond)
	require.NoError(t, err)
	require.True(t, timedOut)
	require.Empty(t, data)

	_, err = s.Write([]byte{0x80, 0x00, 0x40, 0x73, 0x9E})
	require.NoError(t, err)
	data, timedOut, err = s.ReadFull(1, time.Millisecond)
	require.NoError(t, err)
	require.False(t, timedOut)
	require.Equal(t, []byte{roboclaw.AckByte}, data)
}
