// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transport provides the byte links a roboclaw.Dispatcher talks
// through: local serial ports (go.bug.st/serial or tarm/serial), a
// WebSocket serial bridge and an in-memory controller simulator.
package transport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

// Port is a byte link whose reads give up after a settable timeout. A read
// that times out returns 0 bytes and a nil error.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// ErrClosed is returned when using a closed Stream
var ErrClosed = errors.New("transport closed")

// Stream adapts a Port to roboclaw.Transport
type Stream struct {
	port   Port
	name   string
	closed bool
}

var _ roboclaw.Transport = (*Stream)(nil)

// NewStream wraps port. The name is used in log and status messages.
func NewStream(port Port, name string) *Stream {
	return &Stream{port: port, name: name}
}

// Name returns the human-readable link description
func (s *Stream) Name() string {
	return s.name
}

// Write sends p
func (s *Stream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.port.Write(p)
}

// ReadFull collects n bytes or stops when timeout elapsed. The port timeout
// is re-armed with the remaining time before every read so the whole call
// is bounded by timeout.
func (s *Stream) ReadFull(n int, timeout time.Duration) ([]byte, bool, error) {
	if s.closed {
		return nil, false, ErrClosed
	}

	buf := make([]byte, n)
	got := 0
	deadline := time.Now().Add(timeout)

	for got < n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return buf[:got], true, nil
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return buf[:got], false, fmt.Errorf("set read timeout: %w", err)
		}

		m, err := s.port.Read(buf[got:])
		got += m
		if err != nil {
			return buf[:got], false, err
		}
	}

	return buf, false, nil
}

// FlushInput discards unread input
func (s *Stream) FlushInput() error {
	if s.closed {
		return ErrClosed
	}
	return s.port.ResetInputBuffer()
}

// Close closes the underlying port
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
