// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitbin

import "encoding/binary"

// FieldDefinition declares one field of a definition message: the
// profile field id, the total wire size in bytes, and the base type.
// Elements is the array arity, Size / BaseType.Size.
type FieldDefinition struct {
	Num      uint8
	Size     uint8
	BaseType *BaseType
	Elements int
}

// DeveloperFieldDefinition declares one developer field. Developer
// fields are decoded opaquely as raw bytes; their semantics live in
// field_description messages this package does not interpret.
type DeveloperFieldDefinition struct {
	Num                uint8
	Size               uint8
	DeveloperDataIndex uint8
}

// DefinitionMessage binds a message schema to a local slot. Data records
// tagged with the same slot decode against it until a later definition
// replaces the binding.
type DefinitionMessage struct {
	LocalMesgNum    uint8
	GlobalMesgNum   uint16
	Arch            byte
	ByteOrder       binary.ByteOrder
	Fields          []FieldDefinition
	DeveloperFields []DeveloperFieldDefinition
}

func (*DefinitionMessage) record() {}

// WireSize returns the payload size in bytes of one data record
// governed by this definition, excluding the record header byte.
func (d *DefinitionMessage) WireSize() int {
	n := 0
	for _, f := range d.Fields {
		n += int(f.Size)
	}
	for _, f := range d.DeveloperFields {
		n += int(f.Size)
	}
	return n
}

// readDefinitionMessage parses a definition record. hdr is the already
// consumed record header byte; the cursor sits on the reserved byte.
func readDefinitionMessage(s *Stream, hdr byte) (*DefinitionMessage, error) {
	start := s.Position() - 1

	reserved, err := s.ReadByte()
	if err != nil {
		return nil, err
	}
	if reserved != 0 {
		return nil, decoderErrorf(start, "non-zero reserved byte 0x%02X in definition record", reserved)
	}

	arch, err := s.ReadByte()
	if err != nil {
		return nil, err
	}
	var bo binary.ByteOrder
	switch arch {
	case archLittleEndian:
		bo = binary.LittleEndian
	case archBigEndian:
		bo = binary.BigEndian
	default:
		return nil, decoderErrorf(start, "invalid architecture byte 0x%02X", arch)
	}

	def := &DefinitionMessage{
		LocalMesgNum: hdr & maskLocalMesg,
		Arch:         arch,
		ByteOrder:    bo,
	}
	if def.GlobalMesgNum, err = s.ReadUint16(bo); err != nil {
		return nil, err
	}

	numFields, err := s.ReadByte()
	if err != nil {
		return nil, err
	}
	def.Fields = make([]FieldDefinition, 0, numFields)
	for i := 0; i < int(numFields); i++ {
		fd, err := readFieldDefinition(s, def.GlobalMesgNum)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, fd)
	}

	if hdr&maskDevFields != 0 {
		numDevFields, err := s.ReadByte()
		if err != nil {
			return nil, err
		}
		def.DeveloperFields = make([]DeveloperFieldDefinition, 0, numDevFields)
		for i := 0; i < int(numDevFields); i++ {
			triple, err := s.ReadBytes(3)
			if err != nil {
				return nil, err
			}
			def.DeveloperFields = append(def.DeveloperFields, DeveloperFieldDefinition{
				Num:                triple[0],
				Size:               triple[1],
				DeveloperDataIndex: triple[2],
			})
		}
	}

	return def, nil
}

// readFieldDefinition parses one (field_id, field_size, base_type)
// triple. An unknown base type id, or a field size that is not a
// positive multiple of the base type size, downgrades the field to raw
// uint8 bytes so the record still decodes.
func readFieldDefinition(s *Stream, globalMesgNum uint16) (FieldDefinition, error) {
	triple, err := s.ReadBytes(3)
	if err != nil {
		return FieldDefinition{}, err
	}

	fd := FieldDefinition{Num: triple[0], Size: triple[1]}

	bt, ok := BaseTypeByID(triple[2])
	if !ok {
		Warnf("fitbin: mesg %d field %d: unknown base type 0x%02X, decoding %d raw bytes",
			globalMesgNum, fd.Num, triple[2], fd.Size)
		bt = baseTypesByID[BaseUint8]
	} else if fd.Size == 0 || int(fd.Size)%bt.Size != 0 {
		Warnf("fitbin: mesg %d field %d: size %d not a multiple of %s size %d, decoding raw bytes",
			globalMesgNum, fd.Num, fd.Size, bt.Name, bt.Size)
		bt = baseTypesByID[BaseUint8]
	}

	fd.BaseType = bt
	fd.Elements = int(fd.Size) / bt.Size
	return fd, nil
}
