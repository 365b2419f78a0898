// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package teleop drives a tank-steered robot from gamepad state sent over
// a WebSocket. Wheels are driven with the 7-bit forward/backward commands
// and an optional kicker motor follows the trigger difference.
package teleop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
)

// ControllerState is one gamepad sample. Stick axes use the 7-bit range
// (0..127, 64 centred); triggers are pressed (1) or released (0).
type ControllerState struct {
	RightStickY  int  `json:"right_stick_y"`
	LeftStickY   int  `json:"left_stick_y"`
	RightTrigger int  `json:"right_trigger"`
	LeftTrigger  int  `json:"left_trigger"`
	MotorKill    bool `json:"motor_kill,omitempty"`
}

// CBOR payload map keys
const (
	keyRightStickY = iota
	keyLeftStickY
	keyRightTrigger
	keyLeftTrigger
	keyMotorKill
)

var jsonKeys = []string{"right_stick_y", "left_stick_y", "right_trigger", "left_trigger"}

// DecodeJSON parses a JSON controller state. Values may be numbers or
// numeric strings, and the whole object may arrive as an escaped JSON
// string.
func DecodeJSON(data []byte) (ControllerState, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ControllerState{}, fmt.Errorf("empty JSON payload")
	}

	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return ControllerState{}, fmt.Errorf("failed to decode JSON string: %w", err)
		}
		data = []byte(inner)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ControllerState{}, fmt.Errorf("failed to decode JSON: %w", err)
	}

	var values [4]int
	for i, key := range jsonKeys {
		v, ok := raw[key]
		if !ok {
			return ControllerState{}, fmt.Errorf("missing %s", key)
		}
		n, err := toInt(v)
		if err != nil {
			return ControllerState{}, fmt.Errorf("%s: %w", key, err)
		}
		values[i] = n
	}

	state := ControllerState{
		RightStickY:  values[0],
		LeftStickY:   values[1],
		RightTrigger: values[2],
		LeftTrigger:  values[3],
	}
	if kill, ok := raw["motor_kill"].(bool); ok {
		state.MotorKill = kill
	}
	return state, nil
}

func toInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case float64:
		return int(val), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", val)
		}
		return int(f), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// DecodeCBOR parses a binary controller state: a CBOR map with integer
// keys 0 => right stick, 1 => left stick, 2 => right trigger,
// 3 => left trigger and optionally 4 => motor kill.
func DecodeCBOR(data []byte) (ControllerState, error) {
	if len(data) == 0 {
		return ControllerState{}, fmt.Errorf("empty CBOR payload")
	}

	var msg map[interface{}]interface{}
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return ControllerState{}, fmt.Errorf("failed to decode CBOR: %w", err)
	}

	m := make(map[int]interface{}, len(msg))
	for key, val := range msg {
		switch k := key.(type) {
		case uint64:
			m[int(k)] = val
		case int64:
			m[int(k)] = val
		default:
			return ControllerState{}, fmt.Errorf("expected integer map key, got %T", key)
		}
	}

	var values [4]int
	for i := range values {
		v, ok := getMapInt(m, keyRightStickY+i)
		if !ok {
			return ControllerState{}, fmt.Errorf("missing %s (key %d)", jsonKeys[i], i)
		}
		values[i] = int(v)
	}

	state := ControllerState{
		RightStickY:  values[0],
		LeftStickY:   values[1],
		RightTrigger: values[2],
		LeftTrigger:  values[3],
	}
	if kill, ok := m[keyMotorKill].(bool); ok {
		state.MotorKill = kill
	}
	return state, nil
}

// EncodeCBOR builds the binary form of a controller state
func EncodeCBOR(s ControllerState) ([]byte, error) {
	payload := map[int]interface{}{
		keyRightStickY:  int64(s.RightStickY),
		keyLeftStickY:   int64(s.LeftStickY),
		keyRightTrigger: int64(s.RightTrigger),
		keyLeftTrigger:  int64(s.LeftTrigger),
	}
	if s.MotorKill {
		payload[keyMotorKill] = true
	}
	return cbor.Marshal(payload)
}

// getMapInt extracts an integer from a decoded CBOR map
func getMapInt(m map[int]interface{}, key int) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case uint64:
		return int64(val), true
	case float64:
		return int64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
