// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"fmt"
	"time"
)

// Config holds the driver settings shared by every call
type Config struct {
	// Address is the default device address (AddressDefault when zero).
	Address Address
	// Timeout bounds each response read (DefaultTimeout when zero).
	Timeout time.Duration
	// Retries is the number of send attempts per call (DefaultRetries when zero).
	Retries int
}

// Roboclaw is the typed driver for one controller address. Views created
// with At share the same dispatcher and transport.
type Roboclaw struct {
	address    Address
	dispatcher *Dispatcher
}

// New creates a driver on t
func New(t Transport, cfg Config) (*Roboclaw, error) {
	if t == nil {
		return nil, fmt.Errorf("roboclaw: nil transport")
	}
	if cfg.Address == 0 {
		cfg.Address = AddressDefault
	}
	if !cfg.Address.Valid() {
		return nil, &EncodingError{
			Field: "address",
			Value: int64(cfg.Address),
			Min:   int64(AddressMin),
			Max:   int64(AddressMax),
		}
	}

	return &Roboclaw{
		address:    cfg.Address,
		dispatcher: NewDispatcher(t, cfg.Timeout, cfg.Retries),
	}, nil
}

// At returns a driver for another controller on the same bus
func (r *Roboclaw) At(address Address) (*Roboclaw, error) {
	if !address.Valid() {
		return nil, &EncodingError{
			Field: "address",
			Value: int64(address),
			Min:   int64(AddressMin),
			Max:   int64(AddressMax),
		}
	}
	return &Roboclaw{address: address, dispatcher: r.dispatcher}, nil
}

// Address returns the address this driver talks to
func (r *Roboclaw) Address() Address {
	return r.address
}

// Dispatcher returns the shared dispatcher
func (r *Roboclaw) Dispatcher() *Dispatcher {
	return r.dispatcher
}

// Call runs any catalog command with raw field values
func (r *Roboclaw) Call(cmd Command, values ...int64) (Result, error) {
	spec, ok := Lookup(cmd)
	if !ok {
		r.dispatcher.recordEncodingError()
		return Result{}, &EncodingError{Command: cmd, Field: "command", Value: int64(cmd)}
	}
	return r.exec(spec, values...)
}

// exec encodes and dispatches one call
func (r *Roboclaw) exec(spec *CommandSpec, values ...int64) (Result, error) {
	req, err := Encode(r.address, spec, values...)
	if err != nil {
		r.dispatcher.recordEncodingError()
		return Result{}, err
	}
	return r.dispatcher.Do(req, spec)
}

// write runs an acknowledged command
func (r *Roboclaw) write(cmd Command, values ...int64) error {
	_, err := r.exec(mustLookup(cmd), values...)
	return err
}

// read runs a data query and returns its decoded fields
func (r *Roboclaw) read(cmd Command, values ...int64) ([]int64, error) {
	res, err := r.exec(mustLookup(cmd), values...)
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}

func bufferFlag(immediate bool) int64 {
	if immediate {
		return BufferImmediate
	}
	return BufferQueue
}
