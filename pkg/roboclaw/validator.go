// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import "fmt"

// AnomalyType represents different types of telemetry anomalies
type AnomalyType int

const (
	AnomalyStatusError AnomalyType = iota
	AnomalyStatusWarning
	AnomalyVoltage
	AnomalyCurrent
	AnomalyTemperature
	AnomalyEncoderWrap
)

// String returns the anomaly name
func (a AnomalyType) String() string {
	switch a {
	case AnomalyStatusError:
		return "STATUS_ERROR"
	case AnomalyStatusWarning:
		return "STATUS_WARNING"
	case AnomalyVoltage:
		return "VOLTAGE"
	case AnomalyCurrent:
		return "CURRENT"
	case AnomalyTemperature:
		return "TEMPERATURE"
	case AnomalyEncoderWrap:
		return "ENCODER_WRAP"
	default:
		return "UNKNOWN"
	}
}

// ValidationError represents a telemetry check failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// Limits bounds the telemetry values considered healthy
type Limits struct {
	MinMainBattery float64 // V
	MaxMainBattery float64 // V
	MaxCurrent     float64 // A, per motor
	MaxTemperature float64 // °C
}

// DefaultLimits matches the controller's factory voltage window and
// thermal warning point
var DefaultLimits = Limits{
	MinMainBattery: 6.0,
	MaxMainBattery: 34.0,
	MaxCurrent:     30.0,
	MaxTemperature: 85.0,
}

// ValidateTelemetry checks a snapshot against limits.
// Returns a slice of validation errors (empty if the snapshot is healthy)
func ValidateTelemetry(t Telemetry, limits Limits) []ValidationError {
	errors := []ValidationError{}

	if t.Status.IsError() {
		errors = append(errors, ValidationError{
			Type:    AnomalyStatusError,
			Message: fmt.Sprintf("Controller error: %s", t.Status),
			Details: map[string]interface{}{"status": uint32(t.Status)},
		})
	} else if t.Status != StatusNormal {
		errors = append(errors, ValidationError{
			Type:    AnomalyStatusWarning,
			Message: fmt.Sprintf("Controller warning: %s", t.Status),
			Details: map[string]interface{}{"status": uint32(t.Status)},
		})
	}

	if t.MainBattery < limits.MinMainBattery || t.MainBattery > limits.MaxMainBattery {
		errors = append(errors, ValidationError{
			Type:    AnomalyVoltage,
			Message: fmt.Sprintf("Main battery out of range (%.1f V, valid: %.1f to %.1f V)",
				t.MainBattery, limits.MinMainBattery, limits.MaxMainBattery),
			Details: map[string]interface{}{"value": t.MainBattery, "min": limits.MinMainBattery, "max": limits.MaxMainBattery},
		})
	}

	currents := []struct {
		motor string
		value float64
	}{{"M1", t.CurrentM1}, {"M2", t.CurrentM2}}
	for _, c := range currents {
		motor, current := c.motor, c.value
		if current > limits.MaxCurrent {
			errors = append(errors, ValidationError{
				Type:    AnomalyCurrent,
				Message: fmt.Sprintf("%s current %.2f A exceeds %.2f A", motor, current, limits.MaxCurrent),
				Details: map[string]interface{}{"motor": motor, "value": current, "max": limits.MaxCurrent},
			})
		}
	}

	if t.Temperature > limits.MaxTemperature {
		errors = append(errors, ValidationError{
			Type:    AnomalyTemperature,
			Message: fmt.Sprintf("Temperature %.1f°C exceeds %.1f°C", t.Temperature, limits.MaxTemperature),
			Details: map[string]interface{}{"value": t.Temperature, "max": limits.MaxTemperature},
		})
	}

	encoders := []struct {
		motor string
		enc   EncoderReading
	}{{"M1", t.EncoderM1}, {"M2", t.EncoderM2}}
	for _, e := range encoders {
		motor, enc := e.motor, e.enc
		if enc.Underflow() || enc.Overflow() {
			errors = append(errors, ValidationError{
				Type:    AnomalyEncoderWrap,
				Message: fmt.Sprintf("%s encoder wrapped (%s)", motor, FormatEncoderStatus(enc.Status)),
				Details: map[string]interface{}{"motor": motor, "status": enc.Status},
			})
		}
	}

	return errors
}
