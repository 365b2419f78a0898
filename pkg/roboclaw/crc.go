// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

// Checksum is a running CRC-16 accumulator. Each packet uses a fresh one.
type Checksum struct {
	crc uint16
}

// NewChecksum creates a checksum accumulator in its initial state
func NewChecksum() *Checksum {
	return &Checksum{crc: crcInitial}
}

// Reset clears the accumulator
func (c *Checksum) Reset() {
	c.crc = crcInitial
}

// Update folds one byte into the accumulator
func (c *Checksum) Update(b byte) {
	c.crc ^= uint16(b) << 8
	for i := 0; i < 8; i++ {
		if c.crc&0x8000 != 0 {
			c.crc = (c.crc << 1) ^ crcPolynomial
		} else {
			c.crc <<= 1
		}
	}
}

// Write folds every byte of p into the accumulator. It never fails.
func (c *Checksum) Write(p []byte) (int, error) {
	for _, b := range p {
		c.Update(b)
	}
	return len(p), nil
}

// Sum16 returns the current accumulator value
func (c *Checksum) Sum16() uint16 {
	return c.crc
}

// CalculateCRC computes the packet serial CRC-16 for the given data
func CalculateCRC(data []byte) uint16 {
	c := NewChecksum()
	c.Write(data)
	return c.Sum16()
}

// Verification is the outcome of comparing a received checksum against the
// one computed locally.
type Verification struct {
	Computed uint16
	Received uint16
	Valid    bool
}

// Verify computes the CRC over data and compares it with received
func Verify(data []byte, received uint16) Verification {
	computed := CalculateCRC(data)
	return Verification{
		Computed: computed,
		Received: received,
		Valid:    computed == received,
	}
}
