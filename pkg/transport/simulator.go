// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

// SimDevice is the register state of one simulated controller
type SimDevice struct {
	Version      string
	MainBattery  uint16 // tenths of a volt
	LogicBattery uint16 // tenths of a volt
	Temperature  int16  // tenths of a degree
	Status       uint32
	Encoders     [2]int32
	Speeds       [2]int32
	Duty         [2]int16
	Currents     [2]int16 // 10 mA

	registers map[roboclaw.Command][]int64
	eeprom    map[uint8]uint16
}

// NewSimDevice returns a device with plausible idle readings
func NewSimDevice() *SimDevice {
	return &SimDevice{
		Version:      "USB Roboclaw 2x15a v4.1.34",
		MainBattery:  240,
		LogicBattery: 50,
		Temperature:  250,
		registers:    make(map[roboclaw.Command][]int64),
		eeprom:       make(map[uint8]uint16),
	}
}

// SimRequest is one request the simulator accepted
type SimRequest struct {
	Address roboclaw.Address
	Command roboclaw.Command
	Values  []int64
}

// registerAlias maps a set command to the query that reads it back, with
// the order in which the set arguments appear in the reply.
var registerAlias = map[roboclaw.Command]struct {
	get   roboclaw.Command
	order []int
}{
	roboclaw.CmdSetM1PID:         {roboclaw.CmdReadM1PID, []int{1, 2, 0, 3}},
	roboclaw.CmdSetM2PID:         {roboclaw.CmdReadM2PID, []int{1, 2, 0, 3}},
	roboclaw.CmdSetM1PosPID:      {roboclaw.CmdReadM1PosPID, []int{1, 2, 0, 3, 4, 5, 6}},
	roboclaw.CmdSetM2PosPID:      {roboclaw.CmdReadM2PosPID, []int{1, 2, 0, 3, 4, 5, 6}},
	roboclaw.CmdSetMainVoltages:  {roboclaw.CmdGetMainVoltages, []int{0, 1}},
	roboclaw.CmdSetLogicVoltages: {roboclaw.CmdGetLogicVoltages, []int{0, 1}},
	roboclaw.CmdSetPinFunctions:  {roboclaw.CmdGetPinFunctions, []int{0, 1, 2}},
	roboclaw.CmdSetDeadband:      {roboclaw.CmdGetDeadband, []int{0, 1}},
	roboclaw.CmdSetConfig:        {roboclaw.CmdGetConfig, []int{0}},
	roboclaw.CmdSetM1MaxCurrent:  {roboclaw.CmdGetM1MaxCurrent, []int{0, 1}},
	roboclaw.CmdSetM2MaxCurrent:  {roboclaw.CmdGetM2MaxCurrent, []int{0, 1}},
	roboclaw.CmdSetPWMMode:       {roboclaw.CmdGetPWMMode, []int{0}},
}

// Simulator is an in-memory Port that answers packet serial requests like
// a bus of controllers. Requests with a bad CRC, an unknown command or an
// absent address get no answer, as on a real bus.
type Simulator struct {
	mu      sync.Mutex
	devices map[roboclaw.Address]*SimDevice

	pending []byte
	output  []byte
	timeout time.Duration
	closed  bool

	received []SimRequest
	drop     int
	corrupt  int
}

// NewSimulator creates a simulator with one default device per address
func NewSimulator(addresses ...roboclaw.Address) *Simulator {
	s := &Simulator{devices: make(map[roboclaw.Address]*SimDevice)}
	for _, a := range addresses {
		s.devices[a] = NewSimDevice()
	}
	return s
}

// Device returns the state of the device at address, or nil
func (s *Simulator) Device(address roboclaw.Address) *SimDevice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devices[address]
}

// Received returns the accepted requests in arrival order
func (s *Simulator) Received() []SimRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SimRequest(nil), s.received...)
}

// DropNext leaves the next n valid requests unanswered
func (s *Simulator) DropNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drop = n
}

// CorruptNext flips a bit in the last byte of the next n answers
func (s *Simulator) CorruptNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt = n
}

func (s *Simulator) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	s.pending = append(s.pending, p...)
	s.parse()
	return len(p), nil
}

func (s *Simulator) Read(p []byte) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	if len(s.output) == 0 {
		// Answers are produced synchronously by Write; nothing more is coming.
		timeout := s.timeout
		s.mu.Unlock()
		time.Sleep(timeout)
		return 0, nil
	}
	defer s.mu.Unlock()

	n := copy(p, s.output)
	s.output = s.output[n:]
	return n, nil
}

func (s *Simulator) SetReadTimeout(t time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = t
	return nil
}

func (s *Simulator) ResetInputBuffer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = nil
	return nil
}

func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// parse consumes complete frames from pending
func (s *Simulator) parse() {
	for len(s.pending) >= 2 {
		spec, ok := roboclaw.Lookup(roboclaw.Command(s.pending[1]))
		if !ok {
			glog.Warningf("simulator: unknown command %d, discarding %d bytes", s.pending[1], len(s.pending))
			s.pending = nil
			return
		}
		size := spec.RequestLen()
		if len(s.pending) < size {
			return
		}

		frame := s.pending[:size]
		s.pending = s.pending[size:]
		s.handle(spec, frame)
	}
}

// handle answers one complete frame
func (s *Simulator) handle(spec *roboclaw.CommandSpec, frame []byte) {
	body := frame[:len(frame)-roboclaw.CRCSize]
	received := uint16(frame[len(frame)-2])<<8 | uint16(frame[len(frame)-1])
	if !roboclaw.Verify(body, received).Valid {
		return
	}

	address := roboclaw.Address(frame[0])
	dev, ok := s.devices[address]
	if !ok {
		return
	}

	values, err := roboclaw.DecodeFields(spec.Args, body[2:])
	if err != nil {
		return
	}
	req := roboclaw.NewRequest(address, spec.Code, body[2:])
	s.received = append(s.received, SimRequest{Address: address, Command: spec.Code, Values: values})

	if s.drop > 0 {
		s.drop--
		return
	}

	var answer []byte
	switch spec.ReplyKind {
	case roboclaw.ReplyAck:
		dev.apply(spec.Code, values)
		answer = []byte{spec.AckValue}
	case roboclaw.ReplyString:
		answer = withCRC(req, append([]byte(dev.Version+"\n"), 0))
	default:
		payload, err := roboclaw.EncodeArgs(&roboclaw.CommandSpec{Code: spec.Code, Args: spec.Reply}, dev.query(spec, values)...)
		if err != nil {
			glog.Warningf("simulator: %s register out of range: %v", spec.Name, err)
			return
		}
		answer = withCRC(req, payload)
	}

	if s.corrupt > 0 {
		s.corrupt--
		answer[len(answer)-1] ^= 0x01
	}
	s.output = append(s.output, answer...)
}

func withCRC(req roboclaw.Request, payload []byte) []byte {
	c := roboclaw.NewChecksum()
	c.Write(req.Header())
	c.Write(payload)
	crc := c.Sum16()
	return append(payload, byte(crc>>8), byte(crc))
}

// sevenBitDuty maps a compatibility command value to a duty cycle
func sevenBitDuty(cmd roboclaw.Command, v int64) int16 {
	switch cmd {
	case roboclaw.CmdM1Forward, roboclaw.CmdM2Forward:
		return int16(v * 32767 / 127)
	case roboclaw.CmdM1Backward, roboclaw.CmdM2Backward:
		return int16(-v * 32767 / 127)
	default:
		if v < 64 {
			return int16((v - 64) * 32767 / 64)
		}
		return int16((v - 64) * 32767 / 63)
	}
}

// apply updates the device state for a write command
func (d *SimDevice) apply(cmd roboclaw.Command, v []int64) {
	switch cmd {
	case roboclaw.CmdM1Forward, roboclaw.CmdM1Backward, roboclaw.CmdM17Bit:
		d.Duty[0] = sevenBitDuty(cmd, v[0])
	case roboclaw.CmdM2Forward, roboclaw.CmdM2Backward, roboclaw.CmdM27Bit:
		d.Duty[1] = sevenBitDuty(cmd, v[0])
	case roboclaw.CmdM1Duty, roboclaw.CmdM1DutyAccel:
		d.Duty[0] = int16(v[0])
	case roboclaw.CmdM2Duty, roboclaw.CmdM2DutyAccel:
		d.Duty[1] = int16(v[0])
	case roboclaw.CmdMixedDuty:
		d.Duty = [2]int16{int16(v[0]), int16(v[1])}
	case roboclaw.CmdMixedDutyAccel:
		d.Duty = [2]int16{int16(v[0]), int16(v[2])}
	case roboclaw.CmdM1Speed:
		d.Speeds[0] = int32(v[0])
	case roboclaw.CmdM2Speed:
		d.Speeds[1] = int32(v[0])
	case roboclaw.CmdMixedSpeed:
		d.Speeds = [2]int32{int32(v[0]), int32(v[1])}
	case roboclaw.CmdM1SpeedAccel:
		d.Speeds[0] = int32(v[1])
	case roboclaw.CmdM2SpeedAccel:
		d.Speeds[1] = int32(v[1])
	case roboclaw.CmdMixedSpeedAccel:
		d.Speeds = [2]int32{int32(v[1]), int32(v[2])}
	case roboclaw.CmdResetEnc:
		d.Encoders = [2]int32{}
	case roboclaw.CmdSetM1EncCount:
		d.Encoders[0] = int32(v[0])
	case roboclaw.CmdSetM2EncCount:
		d.Encoders[1] = int32(v[0])
	case roboclaw.CmdSetM1EncoderMode:
		d.setEncoderMode(0, v[0])
	case roboclaw.CmdSetM2EncoderMode:
		d.setEncoderMode(1, v[0])
	case roboclaw.CmdWriteEEPROM:
		d.eeprom[uint8(v[0])] = uint16(v[1])
	case roboclaw.CmdRestoreDefaults:
		d.registers = make(map[roboclaw.Command][]int64)
	default:
		if alias, ok := registerAlias[cmd]; ok {
			stored := make([]int64, len(alias.order))
			for i, src := range alias.order {
				stored[i] = v[src]
			}
			d.registers[alias.get] = stored
		}
	}
}

func (d *SimDevice) setEncoderMode(motor int, mode int64) {
	modes, ok := d.registers[roboclaw.CmdGetEncoderMode]
	if !ok {
		modes = []int64{0, 0}
	}
	modes[motor] = mode
	d.registers[roboclaw.CmdGetEncoderMode] = modes
}

func direction(v int32) int64 {
	if v < 0 {
		return roboclaw.EncoderBackward
	}
	return 0
}

// query returns the reply values for a data command
func (d *SimDevice) query(spec *roboclaw.CommandSpec, args []int64) []int64 {
	switch spec.Code {
	case roboclaw.CmdGetM1Enc:
		return []int64{int64(d.Encoders[0]), direction(d.Speeds[0])}
	case roboclaw.CmdGetM2Enc:
		return []int64{int64(d.Encoders[1]), direction(d.Speeds[1])}
	case roboclaw.CmdGetM1Speed, roboclaw.CmdGetM1RawSpeed:
		return []int64{int64(d.Speeds[0]), direction(d.Speeds[0])}
	case roboclaw.CmdGetM2Speed, roboclaw.CmdGetM2RawSpeed:
		return []int64{int64(d.Speeds[1]), direction(d.Speeds[1])}
	case roboclaw.CmdGetEncoders:
		return []int64{int64(d.Encoders[0]), int64(d.Encoders[1])}
	case roboclaw.CmdGetRawSpeeds:
		return []int64{int64(d.Speeds[0]), int64(d.Speeds[1])}
	case roboclaw.CmdGetMainBatt:
		return []int64{int64(d.MainBattery)}
	case roboclaw.CmdGetLogicBatt:
		return []int64{int64(d.LogicBattery)}
	case roboclaw.CmdGetTemp, roboclaw.CmdGetTemp2:
		return []int64{int64(d.Temperature)}
	case roboclaw.CmdGetStatus:
		return []int64{int64(d.Status)}
	case roboclaw.CmdGetPWMs:
		return []int64{int64(d.Duty[0]), int64(d.Duty[1])}
	case roboclaw.CmdGetCurrents:
		return []int64{int64(d.Currents[0]), int64(d.Currents[1])}
	case roboclaw.CmdGetBuffers:
		return []int64{roboclaw.BufferEmpty, roboclaw.BufferEmpty}
	case roboclaw.CmdReadEEPROM:
		return []int64{int64(d.eeprom[uint8(args[0])])}
	}

	if stored, ok := d.registers[spec.Code]; ok {
		return stored
	}
	return make([]int64, len(spec.Reply))
}
