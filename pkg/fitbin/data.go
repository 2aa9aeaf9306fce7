// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitbin

import "math"

// DataMessage is one raw data record: the governing definition plus one
// raw value per field definition, in declaration order. A raw value is a
// typed scalar, a []interface{} of scalars when the field is a numeric
// array, or a string. Developer field payloads are kept as raw bytes.
type DataMessage struct {
	Definition      *DefinitionMessage
	Values          []interface{}
	DeveloperValues [][]byte
}

func (*DataMessage) record() {}

// RawValue returns the raw value of the field with the given profile
// field id, or false if the definition does not carry that field.
func (m *DataMessage) RawValue(fieldNum uint8) (interface{}, bool) {
	for i, fd := range m.Definition.Fields {
		if fd.Num == fieldNum {
			return m.Values[i], true
		}
	}
	return nil, false
}

// readDataMessage parses a regular data record against its definition.
// hdr is the already consumed record header byte. Endianness for every
// field comes from the definition's architecture byte.
func readDataMessage(s *Stream, def *DefinitionMessage, hdr byte) (*DataMessage, error) {
	start := s.Position() - 1
	if hdr&(maskCompressed|maskDefinition) != 0 {
		return nil, decoderErrorf(start, "record header 0x%02X is not a regular data record", hdr)
	}

	msg := &DataMessage{
		Definition: def,
		Values:     make([]interface{}, 0, len(def.Fields)),
	}

	for _, fd := range def.Fields {
		v, err := readFieldValue(s, fd, def)
		if err != nil {
			return nil, err
		}
		msg.Values = append(msg.Values, v)
	}

	for _, dd := range def.DeveloperFields {
		raw, err := s.ReadBytes(int(dd.Size))
		if err != nil {
			return nil, err
		}
		v := append([]byte(nil), raw...)
		if def.Arch == archBigEndian {
			for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
				v[i], v[j] = v[j], v[i]
			}
		}
		msg.DeveloperValues = append(msg.DeveloperValues, v)
	}

	return msg, nil
}

// readFieldValue consumes exactly fd.Size bytes and produces the raw
// value: a string, a single scalar, or an ordered scalar sequence.
func readFieldValue(s *Stream, fd FieldDefinition, def *DefinitionMessage) (interface{}, error) {
	if fd.BaseType.Kind == KindString {
		return s.ReadString(int(fd.Size))
	}

	if fd.Elements == 1 {
		return readScalar(s, fd.BaseType, def)
	}

	values := make([]interface{}, 0, fd.Elements)
	for i := 0; i < fd.Elements; i++ {
		v, err := readScalar(s, fd.BaseType, def)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// readScalar reinterprets the next BaseType.Size bytes as the host type
// under the definition's declared endianness.
func readScalar(s *Stream, bt *BaseType, def *DefinitionMessage) (interface{}, error) {
	b, err := s.ReadBytes(bt.Size)
	if err != nil {
		return nil, err
	}

	switch bt.Kind {
	case KindInt8:
		return int8(b[0]), nil
	case KindUint8, KindBytes:
		return b[0], nil
	case KindInt16:
		return int16(def.ByteOrder.Uint16(b)), nil
	case KindUint16:
		return def.ByteOrder.Uint16(b), nil
	case KindInt32:
		return int32(def.ByteOrder.Uint32(b)), nil
	case KindUint32:
		return def.ByteOrder.Uint32(b), nil
	case KindInt64:
		return int64(def.ByteOrder.Uint64(b)), nil
	case KindUint64:
		return def.ByteOrder.Uint64(b), nil
	case KindFloat32:
		return math.Float32frombits(def.ByteOrder.Uint32(b)), nil
	case KindFloat64:
		return math.Float64frombits(def.ByteOrder.Uint64(b)), nil
	}
	return nil, decoderErrorf(s.Position()-bt.Size, "unsupported base type %s (size %d)", bt.Name, bt.Size)
}
