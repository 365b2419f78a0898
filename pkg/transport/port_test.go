// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chunkPort returns one scripted chunk per Read. An empty chunk is a read
// timeout.
type chunkPort struct {
	chunks   [][]byte
	readErr  error
	timeouts []time.Duration
	written  []byte
	resets   int
	closed   bool
}

func (c *chunkPort) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.readErr != nil {
			return 0, c.readErr
		}
		time.Sleep(c.timeouts[len(c.timeouts)-1])
		return 0, nil
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if len(c.chunks[0]) == 0 {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func (c *chunkPort) Write(p []byte) (int, error) {
	c.written = append(c.written, p...)
	return len(p), nil
}

func (c *chunkPort) Close() error {
	c.closed = true
	return nil
}

func (c *chunkPort) SetReadTimeout(t time.Duration) error {
	c.timeouts = append(c.timeouts, t)
	return nil
}

func (c *chunkPort) ResetInputBuffer() error {
	c.resets++
	c.chunks = nil
	return nil
}

func TestStream_ReadFullAssemblesChunks(t *testing.T) {
	port := &chunkPort{chunks: [][]byte{{0x01}, {0x02, 0x03}, {0x04, 0x05, 0x06}}}
	s := NewStream(port, "test")

	data, timedOut, err := s.ReadFull(5, time.Second)
	require.NoError(t, err)
	require.False(t, timedOut)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, data)

	// The remaining byte stays buffered for the next read.
	data, _, err = s.ReadFull(1, time.Second)
	require.NoError(t, err)
	require.Equal(t, []byte{0x06}, data)
}

func TestStream_ReadFullTimeout(t *testing.T) {
	port := &chunkPort{chunks: [][]byte{{0xAA, 0xBB}}}
	s := NewStream(port, "test")

	start := time.Now()
	data, timedOut, err := s.ReadFull(4, 20*time.Millisecond)
	require.NoError(t, err)
	require.True(t, timedOut)
	require.Equal(t, []byte{0xAA, 0xBB}, data)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	// Each read is armed with what is left of the deadline.
	require.GreaterOrEqual(t, len(port.timeouts), 2)
	for i := 1; i < len(port.timeouts); i++ {
		require.LessOrEqual(t, port.timeouts[i], port.timeouts[i-1])
	}
}

func TestStream_ReadError(t *testing.T) {
	boom := errors.New("unplugged")
	port := &chunkPort{chunks: [][]byte{{0x01}}, readErr: boom}
	s := NewStream(port, "test")

	data, timedOut, err := s.ReadFull(3, time.Second)
	require.ErrorIs(t, err, boom)
	require.False(t, timedOut)
	require.Equal(t, []byte{0x01}, data)
}

func TestStream_FlushAndClose(t *testing.T) {
	port := &chunkPort{chunks: [][]byte{{0x01}}}
	s := NewStream(port, "serial: test")
	require.Equal(t, "serial: test", s.Name())

	require.NoError(t, s.FlushInput())
	require.Equal(t, 1, port.resets)

	n, err := s.Write([]byte{0x80, 0x15})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []byte{0x80, 0x15}, port.written)

	require.NoError(t, s.Close())
	require.True(t, port.closed)
	require.NoError(t, s.Close())

	_, err = s.Write([]byte{0x00})
	require.ErrorIs(t, err, ErrClosed)
	_, _, err = s.ReadFull(1, time.Millisecond)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, s.FlushInput(), ErrClosed)
}
