// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"errors"
	"fmt"
	"io"
	"time"

	tarm "github.com/tarm/serial"
)

// tarmPollInterval is the fixed read timeout the port is opened with.
// tarm/serial cannot change it after open and rounds to 100 ms on POSIX,
// so Stream keeps polling until its own deadline.
const tarmPollInterval = 100 * time.Millisecond

// tarmPort adapts *tarm.Port to Port
type tarmPort struct {
	port *tarm.Port
}

func (t *tarmPort) Read(p []byte) (int, error) {
	n, err := t.port.Read(p)
	// A VTIME expiry surfaces as EOF.
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

func (t *tarmPort) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *tarmPort) Close() error {
	return t.port.Close()
}

// SetReadTimeout is a no-op; reads poll at tarmPollInterval.
func (t *tarmPort) SetReadTimeout(time.Duration) error {
	return nil
}

func (t *tarmPort) ResetInputBuffer() error {
	return t.port.Flush()
}

// OpenTarm opens a local serial port with github.com/tarm/serial. It is the
// fallback backend for platforms where go.bug.st/serial misbehaves.
func OpenTarm(portName string, opts PortOptions) (*Stream, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	cfg := &tarm.Config{
		Name:        portName,
		Baud:        opts.BaudRate,
		ReadTimeout: tarmPollInterval,
		Size:        byte(opts.DataBits),
		Parity:      tarm.Parity(opts.Parity[0]),
		StopBits:    tarm.StopBits(opts.StopBits),
	}

	port, err := tarm.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return NewStream(&tarmPort{port: port}, fmt.Sprintf("Serial (tarm): %s @ %s", portName, opts)), nil
}
