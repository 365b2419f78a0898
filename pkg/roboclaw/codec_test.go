// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// buildResponse appends the CRC over req's header and payload
func buildResponse(req Request, payload []byte) []byte {
	c := NewChecksum()
	c.Write(req.Header())
	c.Write(payload)
	crc := c.Sum16()
	out := append([]byte(nil), payload...)
	return append(out, byte(crc>>8), byte(crc&0xFF))
}

// sampleValues returns in-range values exercising both bounds of each field
func sampleValues(shape Shape, useMax bool) []int64 {
	values := make([]int64, len(shape))
	for i, f := range shape {
		if useMax {
			values[i] = f.Max
		} else {
			values[i] = f.Min
		}
	}
	return values
}

// ============================================================
// Encoder Tests
// ============================================================

func TestEncode_ForwardM1Vector(t *testing.T) {
	req, err := Encode(0x80, mustLookup(CmdM1Forward), 64)
	require.NoError(t, err)

	want := []byte{0x80, 0x00, 0x40, 0x73, 0x9E}
	if diff := cmp.Diff(want, req.Bytes()); diff != "" {
		t.Errorf("packet mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_SignedBigEndian(t *testing.T) {
	tests := []struct {
		name   string
		cmd    Command
		values []int64
		args   []byte
	}{
		{"duty -1", CmdM1Duty, []int64{-1}, []byte{0xFF, 0xFF}},
		{"duty max", CmdM1Duty, []int64{32767}, []byte{0x7F, 0xFF}},
		{"speed -1000", CmdM1Speed, []int64{-1000}, []byte{0xFF, 0xFF, 0xFC, 0x18}},
		{"mixed duty", CmdMixedDuty, []int64{0x4000, -0x4000}, []byte{0x40, 0x00, 0xC0, 0x00}},
		{"eeprom write", CmdWriteEEPROM, []int64{3, 0xBEEF}, []byte{0x03, 0xBE, 0xEF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Encode(0x80, mustLookup(tt.cmd), tt.values...)
			require.NoError(t, err)
			require.Equal(t, tt.args, req.Args())

			wire := req.Bytes()
			require.Len(t, wire, mustLookup(tt.cmd).RequestLen())
			require.Equal(t, byte(0x80), wire[0])
			require.Equal(t, byte(tt.cmd), wire[1])
		})
	}
}

func TestEncode_OutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		cmd    Command
		values []int64
		field  string
	}{
		{"7-bit above 127", CmdM1Forward, []int64{128}, "value"},
		{"duty below -32767", CmdM1Duty, []int64{-32768}, "duty"},
		{"u32 negative", CmdM1SpeedAccel, []int64{-1, 0}, "accel"},
		{"i32 overflow", CmdM1Speed, []int64{1 << 31}, "speed"},
		{"buffer flag", CmdM1SpeedDist, []int64{0, 0, 2}, "buffer"},
		{"settings key", CmdWriteSettings, []int64{0}, "key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(0x80, mustLookup(tt.cmd), tt.values...)
			var encErr *EncodingError
			require.True(t, errors.As(err, &encErr), "expected EncodingError, got %v", err)
			require.Equal(t, tt.field, encErr.Field)
			require.Equal(t, tt.cmd, encErr.Command)
			require.False(t, IsRetryable(err))
		})
	}
}

func TestEncode_ArgumentCount(t *testing.T) {
	_, err := Encode(0x80, mustLookup(CmdMixedDuty), 1)
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	require.Equal(t, "argument count", encErr.Field)
	require.Equal(t, int64(1), encErr.Value)
	require.Equal(t, int64(2), encErr.Min)
}

func TestEncode_InvalidAddress(t *testing.T) {
	for _, addr := range []Address{0x00, 0x7F, 0x88, 0xFF} {
		_, err := Encode(addr, mustLookup(CmdM1Forward), 0)
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr, "address 0x%02X", uint8(addr))
		require.Equal(t, "address", encErr.Field)
	}
}

func TestRequest_Immutable(t *testing.T) {
	args := []byte{0x40}
	req := NewRequest(0x80, CmdM1Forward, args)
	args[0] = 0x00

	got := req.Args()
	got[0] = 0x10

	require.Equal(t, []byte{0x80, 0x00, 0x40, 0x73, 0x9E}, req.Bytes())
}

// ============================================================
// Decoder Tests
// ============================================================

// Every catalog entry round-trips through the codec: encoded arguments are
// re-read with the same shape and a well-formed reply decodes to the values
// it was built from.
func TestCatalog_RoundTrip(t *testing.T) {
	for _, spec := range Catalog() {
		spec := spec
		t.Run(spec.Name, func(t *testing.T) {
			for _, useMax := range []bool{false, true} {
				values := sampleValues(spec.Args, useMax)
				req, err := Encode(0x82, spec, values...)
				require.NoError(t, err)
				require.Len(t, req.Bytes(), spec.RequestLen())

				args, err := DecodeFields(spec.Args, req.Args())
				require.NoError(t, err)
				if diff := cmp.Diff(values, args); diff != "" {
					t.Errorf("args mismatch (-want +got):\n%s", diff)
				}

				if spec.ReplyKind != ReplyData {
					continue
				}
				replyValues := sampleValues(spec.Reply, useMax)
				payload, err := EncodeArgs(&CommandSpec{Code: spec.Code, Args: spec.Reply}, replyValues...)
				require.NoError(t, err)

				raw := buildResponse(req, payload)
				require.Len(t, raw, spec.ResponseLen())

				got, err := DecodeResponse(req, spec, raw)
				require.NoError(t, err)
				decoded, err := DecodeFields(spec.Reply, got)
				require.NoError(t, err)
				if diff := cmp.Diff(replyValues, decoded); diff != "" {
					t.Errorf("reply mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestDecodeResponse_BitFlips(t *testing.T) {
	spec := mustLookup(CmdGetM1Enc)
	req, err := Encode(0x80, spec)
	require.NoError(t, err)

	raw := buildResponse(req, []byte{0x00, 0x00, 0x01, 0x00, 0x02})
	_, err = DecodeResponse(req, spec, raw)
	require.NoError(t, err)

	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), raw...)
			corrupted[i] ^= 1 << bit
			_, err := DecodeResponse(req, spec, corrupted)
			if !errors.Is(err, ErrChecksum) {
				t.Errorf("byte %d bit %d: expected ErrChecksum, got %v", i, bit, err)
			}
		}
	}
}

func TestDecodeResponse_Length(t *testing.T) {
	spec := mustLookup(CmdGetMainBatt)
	req, err := Encode(0x80, spec)
	require.NoError(t, err)
	raw := buildResponse(req, []byte{0x00, 0xF0})

	_, err = DecodeResponse(req, spec, raw[:len(raw)-1])
	require.ErrorIs(t, err, ErrShortRead)

	_, err = DecodeResponse(req, spec, append(raw, 0x00))
	require.ErrorIs(t, err, ErrChecksum)
}

func TestDecodeResponse_CRCCoversHeader(t *testing.T) {
	spec := mustLookup(CmdGetMainBatt)
	req80, _ := Encode(0x80, spec)
	req81, _ := Encode(0x81, spec)

	// A reply computed for another address must not validate.
	raw := buildResponse(req81, []byte{0x00, 0xF0})
	_, err := DecodeResponse(req80, spec, raw)
	require.ErrorIs(t, err, ErrChecksum)

	require.False(t, VerifyResponse(req80, raw).Valid)
	require.True(t, VerifyResponse(req81, raw).Valid)
}

func TestDecodeFields_SignExtension(t *testing.T) {
	shape := Shape{i16("a"), i32("b"), u16("c"), u32("d"), u8("e")}
	payload := []byte{
		0xFF, 0xFE,
		0x80, 0x00, 0x00, 0x00,
		0xFF, 0xFE,
		0xFF, 0xFF, 0xFF, 0xFF,
		0xAB,
	}

	values, err := DecodeFields(shape, payload)
	require.NoError(t, err)
	require.Equal(t, []int64{-2, -2147483648, 65534, 4294967295, 0xAB}, values)

	_, err = DecodeFields(shape, payload[:4])
	require.ErrorIs(t, err, ErrShortRead)
}

func TestDecodeAck(t *testing.T) {
	spec := mustLookup(CmdM1Duty)
	require.NoError(t, DecodeAck(spec, []byte{0xFF}))
	require.ErrorIs(t, DecodeAck(spec, []byte{0xFE}), ErrChecksum)
	require.ErrorIs(t, DecodeAck(spec, nil), ErrShortRead)

	eeprom := mustLookup(CmdWriteEEPROM)
	require.NoError(t, DecodeAck(eeprom, []byte{0xAA}))
	require.ErrorIs(t, DecodeAck(eeprom, []byte{0xFF}), ErrChecksum)
}

func TestDecodeVersion(t *testing.T) {
	req, err := Encode(0x80, mustLookup(CmdGetVersion))
	require.NoError(t, err)

	text := []byte("USB Roboclaw 2x7a v4.1.34\n\x00")

	t.Run("valid", func(t *testing.T) {
		version, err := DecodeVersion(req, buildResponse(req, text))
		require.NoError(t, err)
		require.Equal(t, "USB Roboclaw 2x7a v4.1.34", version)
	})

	t.Run("bad crc", func(t *testing.T) {
		raw := buildResponse(req, text)
		raw[len(raw)-1] ^= 0x01
		_, err := DecodeVersion(req, raw)
		require.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("missing crc", func(t *testing.T) {
		_, err := DecodeVersion(req, text)
		require.ErrorIs(t, err, ErrShortRead)
	})

	t.Run("unterminated", func(t *testing.T) {
		raw := make([]byte, MaxVersionLength)
		for i := range raw {
			raw[i] = 'x'
		}
		_, err := DecodeVersion(req, raw)
		require.ErrorIs(t, err, ErrShortRead)
	})

	t.Run("terminator past limit", func(t *testing.T) {
		long := make([]byte, MaxVersionLength+1)
		for i := range long {
			long[i] = 'x'
		}
		long[MaxVersionLength] = 0
		_, err := DecodeVersion(req, buildResponse(req, long))
		require.ErrorIs(t, err, ErrShortRead)
	})
}

// ============================================================
// Catalog Tests
// ============================================================

func TestCatalog_Sorted(t *testing.T) {
	specs := Catalog()
	require.NotEmpty(t, specs)
	for i := 1; i < len(specs); i++ {
		require.Less(t, uint8(specs[i-1].Code), uint8(specs[i].Code))
	}
}

func TestCatalog_ResponseLengths(t *testing.T) {
	tests := []struct {
		cmd    Command
		reqLen int
		resLen int
	}{
		{CmdM1Forward, 5, 1},
		{CmdGetM1Enc, 4, 7},
		{CmdGetMainBatt, 4, 4},
		{CmdGetStatus, 4, 6},
		{CmdGetVersion, 4, MaxVersionLength + CRCSize},
		{CmdMixedSpeedAccelDecelPos, 2 + 33 + 2, 1},
		{CmdReadEEPROM, 5, 4},
	}

	for _, tt := range tests {
		spec, ok := Lookup(tt.cmd)
		require.True(t, ok)
		require.Equal(t, tt.reqLen, spec.RequestLen(), spec.Name)
		require.Equal(t, tt.resLen, spec.ResponseLen(), spec.Name)
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Lookup(Command(0xEE))
	require.False(t, ok)
	require.Equal(t, "UNKNOWN(0xEE)", FormatCommand(0xEE))
	require.Equal(t, "M1_FORWARD", FormatCommand(CmdM1Forward))
}
