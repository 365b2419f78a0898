// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package teleop

// Stop is the 7-bit forward/backward value that halts a motor
const Stop = 64

// Output is the motor command set derived from one controller state
type Output struct {
	Right uint8 // wheels M1
	Left  uint8 // wheels M2
	// Kicker is only meaningful when KickerChanged is set.
	Kicker        uint8
	KickerChanged bool
}

// Mixer maps controller states to tank drive. It remembers the previous
// state so the kicker is only commanded when the triggers change.
type Mixer struct {
	prev *ControllerState
}

// Mix computes the motor commands for s
func (m *Mixer) Mix(s ControllerState) Output {
	out := Output{
		Right: clamp7(s.RightStickY),
		Left:  clamp7(127 - s.LeftStickY),
	}

	if m.prev != nil && (s.RightTrigger != m.prev.RightTrigger || s.LeftTrigger != m.prev.LeftTrigger) {
		out.Kicker = clamp7(Stop + Stop*(s.LeftTrigger-s.RightTrigger))
		out.KickerChanged = true
	}

	prev := s
	m.prev = &prev
	return out
}

// Reset forgets the previous state
func (m *Mixer) Reset() {
	m.prev = nil
}

func clamp7(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 127:
		return 127
	default:
		return uint8(v)
	}
}
