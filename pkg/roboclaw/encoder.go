// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package roboclaw

import "encoding/binary"

// Encode validates values against the command's argument shape and builds
// the request for address.
func Encode(address Address, spec *CommandSpec, values ...int64) (Request, error) {
	if !address.Valid() {
		return Request{}, &EncodingError{
			Command: spec.Code,
			Field:   "address",
			Value:   int64(address),
			Min:     int64(AddressMin),
			Max:     int64(AddressMax),
		}
	}

	args, err := EncodeArgs(spec, values...)
	if err != nil {
		return Request{}, err
	}

	return Request{address: address, command: spec.Code, args: args}, nil
}

// EncodeArgs serializes values big-endian in the widths declared by the
// command's argument shape. Signed fields use two's complement.
func EncodeArgs(spec *CommandSpec, values ...int64) ([]byte, error) {
	if len(values) != len(spec.Args) {
		return nil, &EncodingError{
			Command: spec.Code,
			Field:   "argument count",
			Value:   int64(len(values)),
			Min:     int64(len(spec.Args)),
			Max:     int64(len(spec.Args)),
		}
	}

	buf := make([]byte, spec.Args.Size())
	offset := 0
	for i, f := range spec.Args {
		v := values[i]
		if v < f.Min || v > f.Max {
			return nil, &EncodingError{
				Command: spec.Code,
				Field:   f.Name,
				Value:   v,
				Min:     f.Min,
				Max:     f.Max,
			}
		}
		putField(buf[offset:], f.Kind, v)
		offset += f.Kind.Size()
	}

	return buf, nil
}

// putField writes v into buf using the kind's width
func putField(buf []byte, kind FieldKind, v int64) {
	switch kind {
	case KindU8:
		buf[0] = byte(v)
	case KindI16, KindU16:
		binary.BigEndian.PutUint16(buf, uint16(v))
	default:
		binary.BigEndian.PutUint32(buf, uint32(v))
	}
}
