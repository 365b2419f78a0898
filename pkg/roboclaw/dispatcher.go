// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Dispatcher states
const (
	stateIdle = iota
	stateSending
	stateAwaitingResponse
	stateValidating
	stateSuccess
	stateRetry
	stateFailed
)

// Result is the validated outcome of one call
type Result struct {
	// Values holds the decoded response fields in catalog order.
	Values []int64
	// Version holds the decoded string of a ReplyString command.
	Version string
	// Attempts is the number of send attempts the call needed.
	Attempts int
}

// Dispatcher runs request/response exchanges over a Transport, retrying
// transient failures up to the retry budget. Exchanges are serialized.
type Dispatcher struct {
	transport Transport
	timeout   time.Duration
	retries   int

	// mu serializes exchanges on the transport
	mu sync.Mutex

	statsMu sync.Mutex
	stats   *Statistics
}

// NewDispatcher creates a dispatcher. Non-positive timeout or retries fall
// back to DefaultTimeout and DefaultRetries.
func NewDispatcher(t Transport, timeout time.Duration, retries int) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries <= 0 {
		retries = DefaultRetries
	}
	return &Dispatcher{
		transport: t,
		timeout:   timeout,
		retries:   retries,
		stats:     NewStatistics(),
	}
}

// Timeout returns the per-read timeout
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

// Retries returns the retry budget (attempts per call)
func (d *Dispatcher) Retries() int {
	return d.retries
}

// Statistics returns a snapshot of the dispatcher counters
func (d *Dispatcher) Statistics() Statistics {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	snapshot := *d.stats
	snapshot.CalculateRates()
	return snapshot
}

// ResetStatistics clears the dispatcher counters
func (d *Dispatcher) ResetStatistics() {
	d.updateStats(func(s *Statistics) { s.Reset() })
}

// updateStats applies fn to the counters. It never waits on an exchange.
func (d *Dispatcher) updateStats(fn func(s *Statistics)) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	fn(d.stats)
}

// recordEncodingError counts a call rejected before any attempt
func (d *Dispatcher) recordEncodingError() {
	d.updateStats(func(s *Statistics) { s.EncodingErrors++ })
}

// Do performs one logical call. The same request bytes are sent on every
// attempt. Only *RetryExhaustedError is returned on failure.
func (d *Dispatcher) Do(req Request, spec *CommandSpec) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.updateStats(func(s *Statistics) { s.Calls++ })
	wire := req.Bytes()

	var (
		state    = stateIdle
		attempts int
		raw      []byte
		timedOut bool
		lastErr  error
		result   Result
	)

	for {
		switch state {
		case stateIdle:
			state = stateSending

		case stateSending:
			attempts++
			d.updateStats(func(s *Statistics) { s.Attempts++ })
			if err := d.transport.FlushInput(); err != nil {
				lastErr = &TransportError{Op: "flush", Err: err}
				state = stateRetry
				continue
			}
			n, err := d.transport.Write(wire)
			if err == nil && n < len(wire) {
				err = io.ErrShortWrite
			}
			if err != nil {
				lastErr = &TransportError{Op: "write", Err: err}
				state = stateRetry
				continue
			}
			state = stateAwaitingResponse

		case stateAwaitingResponse:
			var err error
			raw, timedOut, err = d.receive(spec)
			if err != nil {
				lastErr = &TransportError{Op: "read", Err: err}
				state = stateRetry
				continue
			}
			if timedOut {
				lastErr = fmt.Errorf("%w after %v: got %d bytes", ErrTimeout, d.timeout, len(raw))
				state = stateRetry
				continue
			}
			state = stateValidating

		case stateValidating:
			result, lastErr = decodeResult(req, spec, raw)
			if lastErr != nil {
				state = stateRetry
			} else {
				state = stateSuccess
			}

		case stateRetry:
			d.updateStats(func(s *Statistics) { s.recordAttemptError(lastErr) })
			if glog.V(2) {
				glog.Infof("%s: attempt %d/%d failed: %v", req, attempts, d.retries, lastErr)
			}
			if attempts >= d.retries {
				state = stateFailed
				continue
			}
			d.updateStats(func(s *Statistics) { s.Retries++ })
			state = stateSending

		case stateSuccess:
			d.updateStats(func(s *Statistics) {
				s.Succeeded++
				s.LastUpdateTime = time.Now()
			})
			result.Attempts = attempts
			if glog.V(3) {
				glog.Infof("%s: ok after %d attempt(s)", req, attempts)
			}
			return result, nil

		case stateFailed:
			d.updateStats(func(s *Statistics) { s.Failed++ })
			glog.Warningf("%s: giving up after %d attempts: %v", req, attempts, lastErr)
			return Result{}, &RetryExhaustedError{
				Command:  req.Command(),
				Address:  req.Address(),
				Attempts: attempts,
				Err:      lastErr,
			}

		default:
			panic(fmt.Sprintf("roboclaw: invalid dispatcher state %d", state))
		}
	}
}

// receive reads the response for spec. Fixed-size replies are read in one
// bounded read; version strings are scanned byte by byte for the NUL
// terminator, never past MaxVersionLength, then the CRC is read.
func (d *Dispatcher) receive(spec *CommandSpec) ([]byte, bool, error) {
	if spec.ReplyKind != ReplyString {
		return d.readFull(spec.ResponseLen())
	}

	raw := make([]byte, 0, spec.ResponseLen())
	for len(raw) < MaxVersionLength {
		b, timedOut, err := d.readFull(1)
		raw = append(raw, b...)
		if err != nil || timedOut || len(b) == 0 {
			return raw, timedOut, err
		}
		if b[0] == 0 {
			break
		}
	}
	if len(raw) == MaxVersionLength && raw[len(raw)-1] != 0 {
		// No terminator: hand the bounded buffer to validation as is.
		return raw, false, nil
	}

	crc, timedOut, err := d.readFull(CRCSize)
	return append(raw, crc...), timedOut, err
}

// readFull performs one bounded read. A read that returned everything is
// never reported as timed out.
func (d *Dispatcher) readFull(n int) ([]byte, bool, error) {
	data, timedOut, err := d.transport.ReadFull(n, d.timeout)
	if len(data) >= n {
		timedOut = false
	}
	return data, timedOut, err
}

// decodeResult validates raw and maps it to a Result
func decodeResult(req Request, spec *CommandSpec, raw []byte) (Result, error) {
	switch spec.ReplyKind {
	case ReplyAck:
		return Result{}, DecodeAck(spec, raw)

	case ReplyString:
		version, err := DecodeVersion(req, raw)
		if err != nil {
			return Result{}, err
		}
		return Result{Version: version}, nil

	default:
		payload, err := DecodeResponse(req, spec, raw)
		if err != nil {
			return Result{}, err
		}
		values, err := DecodeFields(spec.Reply, payload)
		if err != nil {
			return Result{}, err
		}
		return Result{Values: values}, nil
	}
}
