// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitbin

import "io"

// Record is one record from the file body. The concrete type is either
// *DefinitionMessage or *DataMessage.
type Record interface {
	record()
}

// Decoder walks the records of a FIT file in order. It owns the stream
// and a 16-entry slot table mapping local message numbers to their most
// recent definition. Installing a definition under one slot never
// disturbs the bindings of the other slots.
type Decoder struct {
	stream *Stream
	header *FileHeader
	slots  [MaxLocalMesgs]*DefinitionMessage
}

// NewDecoder validates the trailing CRC, parses the file header, and
// returns a decoder positioned at the first record.
func NewDecoder(data []byte) (*Decoder, error) {
	if err := ValidateCRC(data); err != nil {
		return nil, err
	}

	s := NewStream(data)
	hdr, err := ReadFileHeader(s, true, false)
	if err != nil {
		return nil, err
	}
	if hdr.DataEnd() > len(data)-2 {
		return nil, decoderErrorf(0, "declared data size %d exceeds file length %d", hdr.DataSize, len(data))
	}

	return &Decoder{stream: s, header: hdr}, nil
}

// Header returns the parsed file header.
func (d *Decoder) Header() *FileHeader {
	return d.header
}

// Position returns the current byte offset in the file.
func (d *Decoder) Position() int {
	return d.stream.Position()
}

// Definition returns the definition currently bound to a local slot.
func (d *Decoder) Definition(localMesgNum uint8) *DefinitionMessage {
	if int(localMesgNum) >= MaxLocalMesgs {
		return nil
	}
	return d.slots[localMesgNum]
}

// Next returns the next record in file order, io.EOF once the declared
// data region is exhausted. Definition records are installed in the slot
// table before being returned.
func (d *Decoder) Next() (Record, error) {
	if d.stream.Position() >= d.header.DataEnd() {
		return nil, io.EOF
	}

	hdr, err := d.stream.ReadByte()
	if err != nil {
		return nil, err
	}

	switch {
	case hdr&maskCompressed != 0:
		return nil, decoderErrorf(d.stream.Position()-1,
			"compressed timestamp record header 0x%02X is not supported", hdr)

	case hdr&maskDefinition != 0:
		def, err := readDefinitionMessage(d.stream, hdr)
		if err != nil {
			return nil, err
		}
		d.slots[def.LocalMesgNum] = def
		return def, nil

	default:
		slot := hdr & maskLocalMesg
		def := d.slots[slot]
		if def == nil {
			return nil, decoderErrorf(d.stream.Position()-1,
				"data record for local mesg %d before any definition", slot)
		}
		return readDataMessage(d.stream, def, hdr)
	}
}
