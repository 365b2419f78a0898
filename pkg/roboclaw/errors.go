// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksum indicates a response of the right length whose CRC (or
	// acknowledgment byte) did not match.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrShortRead indicates the transport returned fewer bytes than the
	// command's response length without reporting a timeout.
	ErrShortRead = errors.New("short read")
	// ErrTimeout indicates the transport read timed out before the full
	// response arrived.
	ErrTimeout = errors.New("response timeout")
)

// EncodingError reports an argument outside the range of its wire field.
// It is never retried.
type EncodingError struct {
	Command Command
	Field   string
	Value   int64
	Min     int64
	Max     int64
}

// Error implements error.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: %s=%d out of range [%d, %d]",
		FormatCommand(e.Command), e.Field, e.Value, e.Min, e.Max)
}

// TransportError wraps a failure reported by the Transport.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RetryExhaustedError is returned when every attempt of a call failed.
// It wraps the error observed on the last attempt.
type RetryExhaustedError struct {
	Command  Command
	Address  Address
	Attempts int
	Err      error
}

// Error implements error.
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s @0x%02X failed after %d attempts: %v",
		FormatCommand(e.Command), uint8(e.Address), e.Attempts, e.Err)
}

// Unwrap returns the last attempt's error.
func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is one of the transient failures the
// dispatcher retries.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.Is(err, ErrChecksum) ||
		errors.Is(err, ErrShortRead) ||
		errors.Is(err, ErrTimeout) ||
		errors.As(err, &te)
}
