// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================
// CRC Tests
// ============================================================

func TestCalculateCRC_Empty(t *testing.T) {
	crc := CalculateCRC([]byte{})
	if crc != crcInitial {
		t.Errorf("CRC of empty data should be initial value, got 0x%04X", crc)
	}
}

func TestCalculateCRC_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "ASCII '123456789'",
			data:     []byte("123456789"),
			expected: 0x31C3, // CRC-16/XMODEM check value
		},
		{
			name:     "M1 forward half speed",
			data:     []byte{0x80, 0x00, 0x40},
			expected: 0x739E,
		},
		{
			name:     "M1 duty -1",
			data:     []byte{0x80, 0x20, 0xFF, 0xFF},
			expected: 0x46F1,
		},
		{
			name:     "version request",
			data:     []byte{0x80, 0x15},
			expected: 0x590C,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crc := CalculateCRC(tt.data)
			if crc != tt.expected {
				t.Errorf("CRC mismatch: expected 0x%04X, got 0x%04X", tt.expected, crc)
			}
		})
	}
}

func TestCalculateCRC_Deterministic(t *testing.T) {
	data := []byte{0x80, 0x22, 0x40, 0x00, 0xC0, 0x00}
	crc1 := CalculateCRC(data)
	crc2 := CalculateCRC(data)
	if crc1 != crc2 {
		t.Errorf("CRC should be deterministic: 0x%04X != 0x%04X", crc1, crc2)
	}
}

func TestChecksum_IncrementalMatchesOneShot(t *testing.T) {
	data := []byte("123456789")

	c := NewChecksum()
	for _, b := range data[:4] {
		c.Update(b)
	}
	n, err := c.Write(data[4:])
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, CalculateCRC(data), c.Sum16())
}

func TestChecksum_Reset(t *testing.T) {
	c := NewChecksum()
	c.Write([]byte{0x01, 0x02, 0x03})
	require.NotEqual(t, uint16(crcInitial), c.Sum16())

	c.Reset()
	require.Equal(t, uint16(crcInitial), c.Sum16())

	c.Write([]byte("123456789"))
	require.Equal(t, uint16(0x31C3), c.Sum16())
}

func TestVerify(t *testing.T) {
	data := []byte{0x80, 0x00, 0x40}

	v := Verify(data, 0x739E)
	require.True(t, v.Valid)
	require.Equal(t, uint16(0x739E), v.Computed)
	require.Equal(t, uint16(0x739E), v.Received)

	v = Verify(data, 0x739F)
	require.False(t, v.Valid)
	require.Equal(t, uint16(0x739E), v.Computed)
	require.Equal(t, uint16(0x739F), v.Received)
}

// Any single bit flip in a packet must change its checksum.
func TestCalculateCRC_SingleBitFlip(t *testing.T) {
	data := []byte{0x80, 0x25, 0x00, 0x00, 0x03, 0xE8, 0xFF, 0xFF, 0xFC, 0x18}
	original := CalculateCRC(data)

	for i := range data {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), data...)
			corrupted[i] ^= 1 << bit
			if CalculateCRC(corrupted) == original {
				t.Errorf("flip of byte %d bit %d not detected", i, bit)
			}
		}
	}
}
