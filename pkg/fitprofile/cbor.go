// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitprofile

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// The compact artefact encoding. Keys are single letters, message and
// field tables are integer-keyed maps, and scale/units are already
// normalized scalars, so a full vendor profile shrinks to a fraction of
// its JSON size.

type compactProfile struct {
	Messages map[uint16]compactMessage   `cbor:"m"`
	Types    map[string]map[int64]string `cbor:"t"`
}

type compactMessage struct {
	Name   string                 `cbor:"n"`
	Fields map[uint8]compactField `cbor:"f"`
}

type compactField struct {
	Name       string            `cbor:"n"`
	Type       string            `cbor:"t,omitempty"`
	Units      string            `cbor:"u,omitempty"`
	Scale      float64           `cbor:"s,omitempty"`
	Offset     float64           `cbor:"o,omitempty"`
	SubFields  []compactSubField `cbor:"x,omitempty"`
	Components bool              `cbor:"c,omitempty"`
}

type compactSubField struct {
	Name   string       `cbor:"n"`
	Type   string       `cbor:"t,omitempty"`
	Units  string       `cbor:"u,omitempty"`
	Scale  float64      `cbor:"s,omitempty"`
	Offset float64      `cbor:"o,omitempty"`
	Refs   []compactRef `cbor:"r,omitempty"`
}

type compactRef struct {
	Num      uint8 `cbor:"n"`
	RawValue int64 `cbor:"v"`
}

// LoadCBOR decodes a compact binary profile artefact.
func LoadCBOR(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read profile CBOR: %w", err)
	}

	var cp compactProfile
	if err := cbor.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode profile CBOR: %w", err)
	}

	messages := make([]*MessageType, 0, len(cp.Messages))
	for num, cm := range cp.Messages {
		fields := make([]*FieldType, 0, len(cm.Fields))
		for id, cf := range cm.Fields {
			ft := &FieldType{
				Num:        id,
				Name:       cf.Name,
				Type:       cf.Type,
				Units:      cf.Units,
				Scale:      scaleOrDefault(cf.Scale),
				Offset:     cf.Offset,
				Components: cf.Components,
			}
			for _, cs := range cf.SubFields {
				sub := &SubField{
					Name:   cs.Name,
					Type:   cs.Type,
					Units:  cs.Units,
					Scale:  scaleOrDefault(cs.Scale),
					Offset: cs.Offset,
				}
				for _, cr := range cs.Refs {
					sub.Refs = append(sub.Refs, RefField{Num: cr.Num, RawValue: cr.RawValue})
				}
				ft.SubFields = append(ft.SubFields, sub)
			}
			fields = append(fields, ft)
		}
		messages = append(messages, NewMessageType(num, cm.Name, fields))
	}

	types := make(map[string]EnumType, len(cp.Types))
	for name, values := range cp.Types {
		types[name] = EnumType(values)
	}

	return New(messages, types), nil
}

// SaveCBOR writes a profile as the compact binary artefact.
func SaveCBOR(p *Profile, w io.Writer) error {
	cp := compactProfile{
		Messages: make(map[uint16]compactMessage, len(p.messages)),
		Types:    make(map[string]map[int64]string, len(p.types)),
	}

	for num, m := range p.messages {
		cm := compactMessage{Name: m.Name, Fields: make(map[uint8]compactField, len(m.fields))}
		for id, f := range m.fields {
			cf := compactField{
				Name:       f.Name,
				Type:       f.Type,
				Units:      f.Units,
				Scale:      f.Scale,
				Offset:     f.Offset,
				Components: f.Components,
			}
			for _, s := range f.SubFields {
				cs := compactSubField{
					Name:   s.Name,
					Type:   s.Type,
					Units:  s.Units,
					Scale:  s.Scale,
					Offset: s.Offset,
				}
				for _, r := range s.Refs {
					cs.Refs = append(cs.Refs, compactRef{Num: r.Num, RawValue: r.RawValue})
				}
				cf.SubFields = append(cf.SubFields, cs)
			}
			cm.Fields[id] = cf
		}
		cp.Messages[num] = cm
	}

	for name, et := range p.types {
		cp.Types[name] = map[int64]string(et)
	}

	data, err := cbor.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode profile CBOR: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write profile CBOR: %w", err)
	}
	return nil
}

// scaleOrDefault maps the omitempty zero back to the neutral scale.
func scaleOrDefault(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}
