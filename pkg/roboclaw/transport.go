// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import "time"

// Transport is the byte-level link to one or more controllers. Concrete
// implementations live in pkg/transport.
type Transport interface {
	// Write sends all of p, returning the number of bytes written.
	Write(p []byte) (int, error)
	// ReadFull blocks until n bytes arrived or timeout elapsed. It returns
	// whatever was collected and whether the timeout expired.
	ReadFull(n int, timeout time.Duration) (data []byte, timedOut bool, err error)
	// FlushInput discards stale buffered input before a new exchange.
	FlushInput() error
}
