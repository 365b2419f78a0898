// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"math"
	"sort"
)

// FieldKind is the wire encoding of one argument or response field.
// All multi-byte kinds are big-endian.
type FieldKind uint8

const (
	KindU8 FieldKind = iota
	KindI16
	KindU16
	KindI32
	KindU32
)

// Size returns the encoded width in bytes
func (k FieldKind) Size() int {
	switch k {
	case KindU8:
		return 1
	case KindI16, KindU16:
		return 2
	default:
		return 4
	}
}

// Bounds returns the representable range of the kind
func (k FieldKind) Bounds() (min, max int64) {
	switch k {
	case KindU8:
		return 0, math.MaxUint8
	case KindI16:
		return math.MinInt16, math.MaxInt16
	case KindU16:
		return 0, math.MaxUint16
	case KindI32:
		return math.MinInt32, math.MaxInt32
	default:
		return 0, math.MaxUint32
	}
}

// String returns the kind name
func (k FieldKind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindI16:
		return "i16"
	case KindU16:
		return "u16"
	case KindI32:
		return "i32"
	case KindU32:
		return "u32"
	default:
		return "unknown"
	}
}

// Field describes one argument or response value. Min and Max narrow the
// accepted range below what the kind can represent.
type Field struct {
	Name string
	Kind FieldKind
	Min  int64
	Max  int64
}

func field(name string, kind FieldKind) Field {
	min, max := kind.Bounds()
	return Field{Name: name, Kind: kind, Min: min, Max: max}
}

func ranged(name string, kind FieldKind, min, max int64) Field {
	return Field{Name: name, Kind: kind, Min: min, Max: max}
}

func u8(name string) Field  { return field(name, KindU8) }
func i16(name string) Field { return field(name, KindI16) }
func u16(name string) Field { return field(name, KindU16) }
func i32(name string) Field { return field(name, KindI32) }
func u32(name string) Field { return field(name, KindU32) }

// Argument fields shared by many commands
var (
	fieldValue7  = ranged("value", KindU8, 0, 127)
	fieldDuty    = ranged("duty", KindI16, -32767, 32767)
	fieldBuffer  = ranged("buffer", KindU8, BufferQueue, BufferImmediate)
	fieldEncMode = u8("mode")
)

// Shape is an ordered list of fields.
type Shape []Field

// Size returns the encoded byte count of the shape
func (s Shape) Size() int {
	n := 0
	for _, f := range s {
		n += f.Kind.Size()
	}
	return n
}

// ReplyKind selects how the response to a command is read and validated.
type ReplyKind uint8

const (
	// ReplyAck is a single acknowledgment byte without CRC.
	ReplyAck ReplyKind = iota
	// ReplyData is a fixed-size payload followed by a CRC.
	ReplyData
	// ReplyString is a NUL-terminated string of bounded length followed by a CRC.
	ReplyString
)

// Category groups catalog entries for display.
type Category uint8

const (
	CategoryMotion Category = iota
	CategoryTelemetry
	CategoryConfig
)

// String returns the category name
func (c Category) String() string {
	switch c {
	case CategoryMotion:
		return "motion"
	case CategoryTelemetry:
		return "telemetry"
	case CategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// CommandSpec is the declarative description of one supported command.
type CommandSpec struct {
	Code      Command
	Name      string
	Category  Category
	Args      Shape
	Reply     Shape
	ReplyKind ReplyKind
	// AckValue is the acknowledgment byte for ReplyAck commands.
	AckValue byte
}

// RequestLen returns the full request length including address and CRC
func (s *CommandSpec) RequestLen() int {
	return 2 + s.Args.Size() + CRCSize
}

// ResponseLen returns the number of bytes the controller answers with.
// For ReplyString it is the upper bound.
func (s *CommandSpec) ResponseLen() int {
	switch s.ReplyKind {
	case ReplyAck:
		return 1
	case ReplyString:
		return MaxVersionLength + CRCSize
	default:
		return s.Reply.Size() + CRCSize
	}
}

func ack(code Command, name string, cat Category, args ...Field) *CommandSpec {
	return &CommandSpec{Code: code, Name: name, Category: cat, Args: args, ReplyKind: ReplyAck, AckValue: AckByte}
}

func query(code Command, name string, cat Category, reply ...Field) *CommandSpec {
	return &CommandSpec{Code: code, Name: name, Category: cat, Reply: reply, ReplyKind: ReplyData}
}

var catalogEntries = []*CommandSpec{
	// Compatibility commands (7-bit values)
	ack(CmdM1Forward, "M1_FORWARD", CategoryMotion, fieldValue7),
	ack(CmdM1Backward, "M1_BACKWARD", CategoryMotion, fieldValue7),
	ack(CmdSetMinMainBatt, "SET_MIN_MAIN_BATTERY", CategoryConfig, ranged("value", KindU8, 0, 140)),
	ack(CmdSetMaxMainBatt, "SET_MAX_MAIN_BATTERY", CategoryConfig, ranged("value", KindU8, 30, 175)),
	ack(CmdM2Forward, "M2_FORWARD", CategoryMotion, fieldValue7),
	ack(CmdM2Backward, "M2_BACKWARD", CategoryMotion, fieldValue7),
	ack(CmdM17Bit, "M1_FORWARD_BACKWARD", CategoryMotion, fieldValue7),
	ack(CmdM27Bit, "M2_FORWARD_BACKWARD", CategoryMotion, fieldValue7),
	ack(CmdMixedForward, "MIXED_FORWARD", CategoryMotion, fieldValue7),
	ack(CmdMixedBackward, "MIXED_BACKWARD", CategoryMotion, fieldValue7),
	ack(CmdMixedRight, "MIXED_RIGHT", CategoryMotion, fieldValue7),
	ack(CmdMixedLeft, "MIXED_LEFT", CategoryMotion, fieldValue7),
	ack(CmdMixedFB, "MIXED_FORWARD_BACKWARD", CategoryMotion, fieldValue7),
	ack(CmdMixedLR, "MIXED_LEFT_RIGHT", CategoryMotion, fieldValue7),
	ack(CmdSetMinLogicBatt, "SET_MIN_LOGIC_BATTERY", CategoryConfig, ranged("value", KindU8, 0, 140)),
	ack(CmdSetMaxLogicBatt, "SET_MAX_LOGIC_BATTERY", CategoryConfig, ranged("value", KindU8, 30, 175)),

	// Encoders
	query(CmdGetM1Enc, "GET_M1_ENCODER", CategoryTelemetry, i32("count"), u8("status")),
	query(CmdGetM2Enc, "GET_M2_ENCODER", CategoryTelemetry, i32("count"), u8("status")),
	query(CmdGetM1Speed, "GET_M1_SPEED", CategoryTelemetry, i32("speed"), u8("status")),
	query(CmdGetM2Speed, "GET_M2_SPEED", CategoryTelemetry, i32("speed"), u8("status")),
	ack(CmdResetEnc, "RESET_ENCODERS", CategoryConfig),
	{Code: CmdGetVersion, Name: "GET_VERSION", Category: CategoryTelemetry, ReplyKind: ReplyString},
	ack(CmdSetM1EncCount, "SET_M1_ENCODER", CategoryConfig, i32("count")),
	ack(CmdSetM2EncCount, "SET_M2_ENCODER", CategoryConfig, i32("count")),
	query(CmdGetMainBatt, "GET_MAIN_BATTERY", CategoryTelemetry, u16("voltage")),
	query(CmdGetLogicBatt, "GET_LOGIC_BATTERY", CategoryTelemetry, u16("voltage")),
	query(CmdGetM1RawSpeed, "GET_M1_RAW_SPEED", CategoryTelemetry, i32("speed"), u8("status")),
	query(CmdGetM2RawSpeed, "GET_M2_RAW_SPEED", CategoryTelemetry, i32("speed"), u8("status")),
	query(CmdGetEncoders, "GET_ENCODERS", CategoryTelemetry, i32("m1"), i32("m2")),
	query(CmdGetRawSpeeds, "GET_RAW_SPEEDS", CategoryTelemetry, i32("m1"), i32("m2")),

	// Duty and speed
	ack(CmdM1Duty, "M1_DUTY", CategoryMotion, fieldDuty),
	ack(CmdM2Duty, "M2_DUTY", CategoryMotion, fieldDuty),
	ack(CmdMixedDuty, "MIXED_DUTY", CategoryMotion, ranged("m1_duty", KindI16, -32767, 32767), ranged("m2_duty", KindI16, -32767, 32767)),
	ack(CmdM1Speed, "M1_SPEED", CategoryMotion, i32("speed")),
	ack(CmdM2Speed, "M2_SPEED", CategoryMotion, i32("speed")),
	ack(CmdMixedSpeed, "MIXED_SPEED", CategoryMotion, i32("m1_speed"), i32("m2_speed")),
	ack(CmdM1SpeedAccel, "M1_SPEED_ACCEL", CategoryMotion, u32("accel"), i32("speed")),
	ack(CmdM2SpeedAccel, "M2_SPEED_ACCEL", CategoryMotion, u32("accel"), i32("speed")),
	ack(CmdMixedSpeedAccel, "MIXED_SPEED_ACCEL", CategoryMotion, u32("accel"), i32("m1_speed"), i32("m2_speed")),
	ack(CmdM1SpeedDist, "M1_SPEED_DISTANCE", CategoryMotion, i32("speed"), u32("distance"), fieldBuffer),
	ack(CmdM2SpeedDist, "M2_SPEED_DISTANCE", CategoryMotion, i32("speed"), u32("distance"), fieldBuffer),
	ack(CmdMixedSpeedDist, "MIXED_SPEED_DISTANCE", CategoryMotion,
		i32("m1_speed"), u32("m1_distance"), i32("m2_speed"), u32("m2_distance"), fieldBuffer),
	ack(CmdM1SpeedAccelDist, "M1_SPEED_ACCEL_DISTANCE", CategoryMotion, u32("accel"), i32("speed"), u32("distance"), fieldBuffer),
	ack(CmdM2SpeedAccelDist, "M2_SPEED_ACCEL_DISTANCE", CategoryMotion, u32("accel"), i32("speed"), u32("distance"), fieldBuffer),
	ack(CmdMixedSpeedAccelDist, "MIXED_SPEED_ACCEL_DISTANCE", CategoryMotion,
		u32("accel"), i32("m1_speed"), u32("m1_distance"), i32("m2_speed"), u32("m2_distance"), fieldBuffer),
	query(CmdGetBuffers, "GET_BUFFERS", CategoryTelemetry, u8("m1"), u8("m2")),
	query(CmdGetPWMs, "GET_PWMS", CategoryTelemetry, i16("m1"), i16("m2")),
	query(CmdGetCurrents, "GET_CURRENTS", CategoryTelemetry, i16("m1"), i16("m2")),
	ack(CmdMixedSpeed2Accel, "MIXED_SPEED_2_ACCEL", CategoryMotion,
		u32("m1_accel"), i32("m1_speed"), u32("m2_accel"), i32("m2_speed")),
	ack(CmdMixedSpeed2AccelDist, "MIXED_SPEED_2_ACCEL_DISTANCE", CategoryMotion,
		u32("m1_accel"), i32("m1_speed"), u32("m1_distance"), u32("m2_accel"), i32("m2_speed"), u32("m2_distance"), fieldBuffer),
	ack(CmdM1DutyAccel, "M1_DUTY_ACCEL", CategoryMotion, fieldDuty, u32("accel")),
	ack(CmdM2DutyAccel, "M2_DUTY_ACCEL", CategoryMotion, fieldDuty, u32("accel")),
	ack(CmdMixedDutyAccel, "MIXED_DUTY_ACCEL", CategoryMotion,
		ranged("m1_duty", KindI16, -32767, 32767), u32("m1_accel"), ranged("m2_duty", KindI16, -32767, 32767), u32("m2_accel")),
	ack(CmdM1SpeedAccelDecelPos, "M1_SPEED_ACCEL_DECEL_POSITION", CategoryMotion,
		u32("accel"), u32("speed"), u32("decel"), i32("position"), fieldBuffer),
	ack(CmdM2SpeedAccelDecelPos, "M2_SPEED_ACCEL_DECEL_POSITION", CategoryMotion,
		u32("accel"), u32("speed"), u32("decel"), i32("position"), fieldBuffer),
	ack(CmdMixedSpeedAccelDecelPos, "MIXED_SPEED_ACCEL_DECEL_POSITION", CategoryMotion,
		u32("m1_accel"), u32("m1_speed"), u32("m1_decel"), i32("m1_position"),
		u32("m2_accel"), u32("m2_speed"), u32("m2_decel"), i32("m2_position"), fieldBuffer),

	// PID and limits
	ack(CmdSetM1PID, "SET_M1_VELOCITY_PID", CategoryConfig, u32("d"), u32("p"), u32("i"), u32("qpps")),
	ack(CmdSetM2PID, "SET_M2_VELOCITY_PID", CategoryConfig, u32("d"), u32("p"), u32("i"), u32("qpps")),
	query(CmdReadM1PID, "READ_M1_VELOCITY_PID", CategoryConfig, u32("p"), u32("i"), u32("d"), u32("qpps")),
	query(CmdReadM2PID, "READ_M2_VELOCITY_PID", CategoryConfig, u32("p"), u32("i"), u32("d"), u32("qpps")),
	ack(CmdSetMainVoltages, "SET_MAIN_VOLTAGES", CategoryConfig, u16("min"), u16("max")),
	ack(CmdSetLogicVoltages, "SET_LOGIC_VOLTAGES", CategoryConfig, u16("min"), u16("max")),
	query(CmdGetMainVoltages, "GET_MAIN_VOLTAGES", CategoryConfig, u16("min"), u16("max")),
	query(CmdGetLogicVoltages, "GET_LOGIC_VOLTAGES", CategoryConfig, u16("min"), u16("max")),
	ack(CmdSetM1PosPID, "SET_M1_POSITION_PID", CategoryConfig,
		u32("d"), u32("p"), u32("i"), u32("max_i"), u32("deadzone"), i32("min_pos"), i32("max_pos")),
	ack(CmdSetM2PosPID, "SET_M2_POSITION_PID", CategoryConfig,
		u32("d"), u32("p"), u32("i"), u32("max_i"), u32("deadzone"), i32("min_pos"), i32("max_pos")),
	query(CmdReadM1PosPID, "READ_M1_POSITION_PID", CategoryConfig,
		u32("p"), u32("i"), u32("d"), u32("max_i"), u32("deadzone"), i32("min_pos"), i32("max_pos")),
	query(CmdReadM2PosPID, "READ_M2_POSITION_PID", CategoryConfig,
		u32("p"), u32("i"), u32("d"), u32("max_i"), u32("deadzone"), i32("min_pos"), i32("max_pos")),
	ack(CmdSetM1DefaultAccel, "SET_M1_DEFAULT_ACCEL", CategoryConfig, u32("accel")),
	ack(CmdSetM2DefaultAccel, "SET_M2_DEFAULT_ACCEL", CategoryConfig, u32("accel")),
	ack(CmdSetPinFunctions, "SET_PIN_FUNCTIONS", CategoryConfig, u8("s3"), u8("s4"), u8("s5")),
	query(CmdGetPinFunctions, "GET_PIN_FUNCTIONS", CategoryConfig, u8("s3"), u8("s4"), u8("s5")),
	ack(CmdSetDeadband, "SET_DEADBAND", CategoryConfig, u8("reverse"), u8("forward")),
	query(CmdGetDeadband, "GET_DEADBAND", CategoryConfig, u8("reverse"), u8("forward")),
	ack(CmdRestoreDefaults, "RESTORE_DEFAULTS", CategoryConfig),
	query(CmdGetTemp, "GET_TEMPERATURE", CategoryTelemetry, i16("temperature")),
	query(CmdGetTemp2, "GET_TEMPERATURE_2", CategoryTelemetry, i16("temperature")),
	query(CmdGetStatus, "GET_STATUS", CategoryTelemetry, u32("status")),
	query(CmdGetEncoderMode, "GET_ENCODER_MODES", CategoryConfig, u8("m1"), u8("m2")),
	ack(CmdSetM1EncoderMode, "SET_M1_ENCODER_MODE", CategoryConfig, fieldEncMode),
	ack(CmdSetM2EncoderMode, "SET_M2_ENCODER_MODE", CategoryConfig, fieldEncMode),
	ack(CmdWriteSettings, "WRITE_SETTINGS", CategoryConfig, ranged("key", KindU32, WriteSettingsKey, WriteSettingsKey)),
	query(CmdReadSettings, "READ_SETTINGS", CategoryConfig, u16("value")),
	ack(CmdSetConfig, "SET_CONFIG", CategoryConfig, u16("config")),
	query(CmdGetConfig, "GET_CONFIG", CategoryConfig, u16("config")),
	ack(CmdSetM1MaxCurrent, "SET_M1_MAX_CURRENT", CategoryConfig, u32("max"), u32("min")),
	ack(CmdSetM2MaxCurrent, "SET_M2_MAX_CURRENT", CategoryConfig, u32("max"), u32("min")),
	query(CmdGetM1MaxCurrent, "GET_M1_MAX_CURRENT", CategoryConfig, u32("max"), u32("min")),
	query(CmdGetM2MaxCurrent, "GET_M2_MAX_CURRENT", CategoryConfig, u32("max"), u32("min")),
	ack(CmdSetPWMMode, "SET_PWM_MODE", CategoryConfig, ranged("mode", KindU8, 0, 1)),
	query(CmdGetPWMMode, "GET_PWM_MODE", CategoryConfig, u8("mode")),

	// User EEPROM
	{Code: CmdReadEEPROM, Name: "READ_EEPROM", Category: CategoryConfig,
		Args: Shape{u8("ee_address")}, Reply: Shape{u16("value")}, ReplyKind: ReplyData},
	{Code: CmdWriteEEPROM, Name: "WRITE_EEPROM", Category: CategoryConfig,
		Args: Shape{u8("ee_address"), u16("value")}, ReplyKind: ReplyAck, AckValue: eepromAck},
}

// eepromAck acknowledges user EEPROM writes instead of AckByte.
const eepromAck = 0xAA

var catalog = func() map[Command]*CommandSpec {
	m := make(map[Command]*CommandSpec, len(catalogEntries))
	for _, spec := range catalogEntries {
		if _, dup := m[spec.Code]; dup {
			panic("roboclaw: duplicate catalog entry " + spec.Name)
		}
		m[spec.Code] = spec
	}
	return m
}()

// Lookup returns the catalog entry for cmd
func Lookup(cmd Command) (*CommandSpec, bool) {
	spec, ok := catalog[cmd]
	return spec, ok
}

// mustLookup is used by the driver for codes that are known to exist.
func mustLookup(cmd Command) *CommandSpec {
	spec, ok := catalog[cmd]
	if !ok {
		panic("roboclaw: command not in catalog")
	}
	return spec
}

// Catalog returns every supported command ordered by code
func Catalog() []*CommandSpec {
	specs := make([]*CommandSpec, len(catalogEntries))
	copy(specs, catalogEntries)
	sort.Slice(specs, func(i, j int) bool { return specs[i].Code < specs[j].Code })
	return specs
}
