// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitprofile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Load reads a profile artefact from disk, dispatching on the file
// extension: .json, .json.gz/.gz (gzip-compressed JSON), or .cbor (the
// compact binary encoding).
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".cbor"):
		return LoadCBOR(f)
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", filepath.Base(path), err)
		}
		defer zr.Close()
		return LoadJSON(zr)
	default:
		return LoadJSON(f)
	}
}

// LoadJSON decodes a JSON profile artefact.
func LoadJSON(r io.Reader) (*Profile, error) {
	var raw rawProfile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode profile JSON: %w", err)
	}
	return raw.build()
}

// rawProfile is the on-disk JSON shape. Scale, offset, and units may be
// scalars or per-element vectors; vectors are normalized at load time.
type rawProfile struct {
	Messages map[string]rawMessage        `json:"messages"`
	Types    map[string]map[string]string `json:"types"`
}

type rawMessage struct {
	Name   string              `json:"name"`
	Fields map[string]rawField `json:"fields"`
}

type rawField struct {
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Units      flexStrings   `json:"units"`
	Scale      flexFloats    `json:"scale"`
	Offset     flexFloats    `json:"offset"`
	SubFields  []rawSubField `json:"sub_fields"`
	Components bool          `json:"components"`
}

type rawSubField struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Units  flexStrings `json:"units"`
	Scale  flexFloats  `json:"scale"`
	Offset flexFloats  `json:"offset"`
	Map    []rawRef    `json:"map"`
}

type rawRef struct {
	Num      uint8 `json:"num"`
	RawValue int64 `json:"raw_value"`
}

// flexStrings accepts a JSON string or an array of strings.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]string)(f))
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexStrings{s}
	return nil
}

// flexFloats accepts a JSON number or an array of numbers.
type flexFloats []float64

func (f *flexFloats) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]float64)(f))
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloats{v}
	return nil
}

func (raw *rawProfile) build() (*Profile, error) {
	messages := make([]*MessageType, 0, len(raw.Messages))
	for numStr, rm := range raw.Messages {
		num, err := strconv.ParseUint(numStr, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("profile message key %q is not a mesg num", numStr)
		}

		fields := make([]*FieldType, 0, len(rm.Fields))
		for idStr, rf := range rm.Fields {
			id, err := strconv.ParseUint(idStr, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("profile mesg %s field key %q is not a field id", rm.Name, idStr)
			}
			ft, err := rf.build(uint8(id), rm.Name)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ft)
		}
		messages = append(messages, NewMessageType(uint16(num), rm.Name, fields))
	}

	types := make(map[string]EnumType, len(raw.Types))
	for name, values := range raw.Types {
		et := make(EnumType, len(values))
		for rawStr, label := range values {
			rv, err := strconv.ParseInt(rawStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("profile type %s value key %q is not an integer", name, rawStr)
			}
			et[rv] = label
		}
		types[name] = et
	}

	return New(messages, types), nil
}

func (rf *rawField) build(num uint8, mesgName string) (*FieldType, error) {
	scale, err := normalizeNumbers(rf.Scale, 1, fmt.Sprintf("mesg %s field %s scale", mesgName, rf.Name))
	if err != nil {
		return nil, err
	}
	offset, err := normalizeNumbers(rf.Offset, 0, fmt.Sprintf("mesg %s field %s offset", mesgName, rf.Name))
	if err != nil {
		return nil, err
	}

	ft := &FieldType{
		Num:        num,
		Name:       rf.Name,
		Type:       rf.Type,
		Units:      normalizeUnits(rf.Units, mesgName, rf.Name),
		Scale:      scale,
		Offset:     offset,
		Components: rf.Components,
	}

	for _, rs := range rf.SubFields {
		sub, err := rs.build(mesgName)
		if err != nil {
			return nil, err
		}
		ft.SubFields = append(ft.SubFields, sub)
	}
	return ft, nil
}

func (rs *rawSubField) build(mesgName string) (*SubField, error) {
	scale, err := normalizeNumbers(rs.Scale, 1, fmt.Sprintf("mesg %s sub-field %s scale", mesgName, rs.Name))
	if err != nil {
		return nil, err
	}
	offset, err := normalizeNumbers(rs.Offset, 0, fmt.Sprintf("mesg %s sub-field %s offset", mesgName, rs.Name))
	if err != nil {
		return nil, err
	}

	sub := &SubField{
		Name:   rs.Name,
		Type:   rs.Type,
		Units:  normalizeUnits(rs.Units, mesgName, rs.Name),
		Scale:  scale,
		Offset: offset,
	}
	for _, r := range rs.Map {
		sub.Refs = append(sub.Refs, RefField{Num: r.Num, RawValue: r.RawValue})
	}
	return sub, nil
}

// SaveJSON writes a profile as the JSON artefact, normalized scalars
// only. Set compress to also gzip the output.
func SaveJSON(p *Profile, w io.Writer, compress bool) error {
	raw := rawProfile{
		Messages: make(map[string]rawMessage, len(p.messages)),
		Types:    make(map[string]map[string]string, len(p.types)),
	}

	for num, m := range p.messages {
		rm := rawMessage{Name: m.Name, Fields: make(map[string]rawField, len(m.fields))}
		for id, f := range m.fields {
			rf := rawField{
				Name:       f.Name,
				Type:       f.Type,
				Units:      unitsJSON(f.Units),
				Scale:      flexFloats{f.Scale},
				Offset:     flexFloats{f.Offset},
				Components: f.Components,
			}
			for _, s := range f.SubFields {
				rs := rawSubField{
					Name:   s.Name,
					Type:   s.Type,
					Units:  unitsJSON(s.Units),
					Scale:  flexFloats{s.Scale},
					Offset: flexFloats{s.Offset},
				}
				for _, r := range s.Refs {
					rs.Map = append(rs.Map, rawRef{Num: r.Num, RawValue: r.RawValue})
				}
				rf.SubFields = append(rf.SubFields, rs)
			}
			rm.Fields[strconv.Itoa(int(id))] = rf
		}
		raw.Messages[strconv.Itoa(int(num))] = rm
	}

	for name, et := range p.types {
		values := make(map[string]string, len(et))
		for rv, label := range et {
			values[strconv.FormatInt(rv, 10)] = label
		}
		raw.Types[name] = values
	}

	out := w
	if compress {
		zw := gzip.NewWriter(w)
		defer zw.Close()
		out = zw
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&raw); err != nil {
		return fmt.Errorf("encode profile JSON: %w", err)
	}
	return nil
}

func unitsJSON(u string) flexStrings {
	if u == "" {
		return nil
	}
	return flexStrings{u}
}

// MarshalJSON writes single-element vectors back as scalars.
func (f flexStrings) MarshalJSON() ([]byte, error) {
	if len(f) == 1 {
		return json.Marshal(f[0])
	}
	return json.Marshal([]string(f))
}

// MarshalJSON writes single-element vectors back as scalars.
func (f flexFloats) MarshalJSON() ([]byte, error) {
	if len(f) == 1 {
		return json.Marshal(f[0])
	}
	return json.Marshal([]float64(f))
}

// normalizeUnits collapses a per-element unit vector to its unique
// non-empty value. Disagreeing vectors keep the first non-empty element
// with an advisory warning.
func normalizeUnits(units flexStrings, mesgName, fieldName string) string {
	first := ""
	for _, u := range units {
		if u == "" {
			continue
		}
		if first == "" {
			first = u
		} else if u != first {
			Warnf("fitprofile: mesg %s field %s: per-element units disagree (%q vs %q), keeping %q",
				mesgName, fieldName, first, u, first)
			break
		}
	}
	return first
}

// normalizeNumbers collapses a scale or offset vector to a uniform
// scalar. Non-uniform vectors indicate schema corruption and fail the
// load.
func normalizeNumbers(values flexFloats, def float64, what string) (float64, error) {
	if len(values) == 0 {
		return def, nil
	}
	v := values[0]
	for _, x := range values[1:] {
		if x != v {
			return 0, fmt.Errorf("non-uniform %s vector %v", what, []float64(values))
		}
	}
	return v, nil
}
