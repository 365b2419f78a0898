// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"time"
)

// reply is the scripted device behaviour for one request
type reply struct {
	data []byte
	// short returns fewer bytes than asked without signalling a timeout,
	// like a port with an inter-byte gap timeout.
	short bool
	// writeErr fails the write instead of answering.
	writeErr error
	// readErr fails the read.
	readErr error
}

// fakeTransport answers each written request with the next scripted reply.
// Once the script is exhausted it stays silent, so reads time out.
type fakeTransport struct {
	replies []reply

	writes  [][]byte
	flushes int

	input   []byte
	current reply
}

func newFakeTransport(replies ...reply) *fakeTransport {
	return &fakeTransport{replies: replies}
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), p...))

	f.current = reply{}
	if len(f.replies) > 0 {
		f.current = f.replies[0]
		f.replies = f.replies[1:]
	}
	if f.current.writeErr != nil {
		return 0, f.current.writeErr
	}
	f.input = append(f.input, f.current.data...)
	return len(p), nil
}

func (f *fakeTransport) ReadFull(n int, timeout time.Duration) ([]byte, bool, error) {
	if f.current.readErr != nil {
		return nil, false, f.current.readErr
	}
	if len(f.input) >= n {
		data := f.input[:n]
		f.input = f.input[n:]
		return data, false, nil
	}
	data := f.input
	f.input = nil
	return data, !f.current.short, nil
}

func (f *fakeTransport) FlushInput() error {
	f.flushes++
	f.input = nil
	return nil
}

// ackReply is the standard write acknowledgment
func ackReply() reply {
	return reply{data: []byte{AckByte}}
}

// dataReply builds a correct response to req
func dataReply(req Request, payload []byte) reply {
	return reply{data: buildResponse(req, payload)}
}

// mustEncode builds a request or panics
func mustEncode(addr Address, cmd Command, values ...int64) Request {
	req, err := Encode(addr, mustLookup(cmd), values...)
	if err != nil {
		panic(err)
	}
	return req
}
