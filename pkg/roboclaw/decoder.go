// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// DecodeAck validates a single-byte acknowledgment
func DecodeAck(spec *CommandSpec, raw []byte) error {
	if len(raw) < 1 {
		return fmt.Errorf("%w: no acknowledgment", ErrShortRead)
	}
	if raw[0] != spec.AckValue {
		return fmt.Errorf("%w: acknowledgment 0x%02X, expected 0x%02X", ErrChecksum, raw[0], spec.AckValue)
	}
	return nil
}

// DecodeResponse validates a fixed-size data response for req and returns
// its payload with the CRC stripped. The CRC covers the request address and
// command followed by the payload.
func DecodeResponse(req Request, spec *CommandSpec, raw []byte) ([]byte, error) {
	expected := spec.ResponseLen()
	if len(raw) < expected {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, len(raw), expected)
	}
	if len(raw) > expected {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrChecksum, len(raw), expected)
	}

	return verifyTrailer(req, raw)
}

// DecodeVersion validates a version response: a string terminated by a
// NUL byte within MaxVersionLength bytes, followed by the CRC. The returned
// string has the trailing line feed and NUL removed.
func DecodeVersion(req Request, raw []byte) (string, error) {
	end := bytes.IndexByte(raw, 0)
	if end < 0 || end >= MaxVersionLength {
		return "", fmt.Errorf("%w: version not terminated within %d bytes", ErrShortRead, MaxVersionLength)
	}
	if len(raw) < end+1+CRCSize {
		return "", fmt.Errorf("%w: version CRC missing", ErrShortRead)
	}
	if len(raw) > end+1+CRCSize {
		return "", fmt.Errorf("%w: %d trailing bytes after version", ErrChecksum, len(raw)-end-1-CRCSize)
	}

	payload, err := verifyTrailer(req, raw)
	if err != nil {
		return "", err
	}

	return string(bytes.TrimRight(payload[:end], "\r\n")), nil
}

// verifyTrailer checks the trailing CRC of raw and returns the payload
func verifyTrailer(req Request, raw []byte) ([]byte, error) {
	if len(raw) < CRCSize {
		return nil, fmt.Errorf("%w: CRC missing", ErrShortRead)
	}
	payload := raw[:len(raw)-CRCSize]
	received := binary.BigEndian.Uint16(raw[len(raw)-CRCSize:])

	c := NewChecksum()
	c.Write(req.Header())
	c.Write(payload)
	if c.Sum16() != received {
		return nil, fmt.Errorf("%w: expected 0x%04X, got 0x%04X", ErrChecksum, c.Sum16(), received)
	}

	return payload, nil
}

// VerifyResponse reports the checksum verification of a data response
// without decoding it
func VerifyResponse(req Request, raw []byte) Verification {
	if len(raw) < CRCSize {
		return Verification{}
	}
	data := append(req.Header(), raw[:len(raw)-CRCSize]...)
	return Verify(data, binary.BigEndian.Uint16(raw[len(raw)-CRCSize:]))
}

// DecodeFields deserializes payload according to shape. Signed kinds are
// sign-extended.
func DecodeFields(shape Shape, payload []byte) ([]int64, error) {
	if len(payload) != shape.Size() {
		return nil, fmt.Errorf("%w: payload %d bytes, shape needs %d", ErrShortRead, len(payload), shape.Size())
	}

	values := make([]int64, len(shape))
	offset := 0
	for i, f := range shape {
		values[i] = getField(payload[offset:], f.Kind)
		offset += f.Kind.Size()
	}
	return values, nil
}

// getField reads one value of the given kind from buf
func getField(buf []byte, kind FieldKind) int64 {
	switch kind {
	case KindU8:
		return int64(buf[0])
	case KindI16:
		return int64(int16(binary.BigEndian.Uint16(buf)))
	case KindU16:
		return int64(binary.BigEndian.Uint16(buf))
	case KindI32:
		return int64(int32(binary.BigEndian.Uint32(buf)))
	default:
		return int64(binary.BigEndian.Uint32(buf))
	}
}
