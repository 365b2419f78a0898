// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import "fmt"

// Request is the immutable descriptor of one call: the target address,
// the command and its encoded arguments. It is built once and replayed
// verbatim on every attempt.
type Request struct {
	address Address
	command Command
	args    []byte
}

// NewRequest creates a request from already encoded argument bytes
func NewRequest(address Address, command Command, args []byte) Request {
	return Request{
		address: address,
		command: command,
		args:    append([]byte(nil), args...),
	}
}

// Address returns the target device address
func (r Request) Address() Address {
	return r.address
}

// Command returns the command code
func (r Request) Command() Command {
	return r.command
}

// Args returns a copy of the encoded argument bytes
func (r Request) Args() []byte {
	return append([]byte(nil), r.args...)
}

// Header returns the address and command bytes that prefix both the
// request and the CRC of the response
func (r Request) Header() []byte {
	return []byte{byte(r.address), byte(r.command)}
}

// CRC returns the checksum over address, command and arguments
func (r Request) CRC() uint16 {
	c := NewChecksum()
	c.Write(r.Header())
	c.Write(r.args)
	return c.Sum16()
}

// Bytes returns the wire form of the request
func (r Request) Bytes() []byte {
	crc := r.CRC()
	buf := make([]byte, 0, 2+len(r.args)+CRCSize)
	buf = append(buf, r.Header()...)
	buf = append(buf, r.args...)
	return append(buf, byte(crc>>8), byte(crc&0xFF))
}

// String returns a short description for logs
func (r Request) String() string {
	return fmt.Sprintf("%s @0x%02X args=% X", FormatCommand(r.command), uint8(r.address), r.args)
}
