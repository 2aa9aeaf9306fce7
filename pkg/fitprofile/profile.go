// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

// Package fitprofile models the FIT global profile: the schema catalog
// of messages, fields, enumerated types, and sub-fields extracted from
// the vendor SDK. A Profile is immutable after load and may be shared
// across any number of decoders.
//
// The profile artefact is loaded from JSON (optionally gzip-compressed)
// or from a compact CBOR encoding; see Load.
package fitprofile

import "log"

// Warnf is called for schema irregularities that are normalized away at
// load time, such as per-element unit vectors that disagree.
var Warnf = log.Printf

// EnumType maps raw wire values of a profile-defined type to labels.
type EnumType map[int64]string

// RefField is one sub-field map condition: the sub-field applies when
// the message's raw value at field Num equals RawValue. Conditions
// sharing a field id combine with OR, conditions across distinct field
// ids with AND.
type RefField struct {
	Num      uint8
	RawValue int64
}

// SubField is an alternate interpretation of a field, selected when its
// ref-field conditions hold against the raw values of the same message.
// A sub-field with no conditions never matches.
type SubField struct {
	Name   string
	Type   string
	Units  string
	Scale  float64
	Offset float64
	Refs   []RefField
}

// FieldType is the profile record for one field of a message.
type FieldType struct {
	Num        uint8
	Name       string
	Type       string // semantic type name, a base type or an EnumType key
	Units      string
	Scale      float64 // normalized to a uniform scalar at load time
	Offset     float64
	SubFields  []*SubField
	Components bool // component bit-unpacking declared; not expanded here
}

// MessageType is the profile record for one global message number.
type MessageType struct {
	Num    uint16
	Name   string
	fields map[uint8]*FieldType
}

// Field looks up a field record by profile field id.
func (m *MessageType) Field(num uint8) (*FieldType, bool) {
	f, ok := m.fields[num]
	return f, ok
}

// NumFields returns the number of fields the profile declares for this
// message.
func (m *MessageType) NumFields() int {
	return len(m.fields)
}

// Profile is the loaded schema catalog.
type Profile struct {
	messages map[uint16]*MessageType
	types    map[string]EnumType
}

// New assembles a profile from already-built message and type tables.
// Loaders and tests use it; production profiles come from Load.
func New(messages []*MessageType, types map[string]EnumType) *Profile {
	p := &Profile{
		messages: make(map[uint16]*MessageType, len(messages)),
		types:    types,
	}
	if p.types == nil {
		p.types = map[string]EnumType{}
	}
	for _, m := range messages {
		p.messages[m.Num] = m
	}
	return p
}

// NewMessageType builds a message record from its field list.
func NewMessageType(num uint16, name string, fields []*FieldType) *MessageType {
	m := &MessageType{Num: num, Name: name, fields: make(map[uint8]*FieldType, len(fields))}
	for _, f := range fields {
		m.fields[f.Num] = f
	}
	return m
}

// Message looks up a message record by global message number.
func (p *Profile) Message(num uint16) (*MessageType, bool) {
	m, ok := p.messages[num]
	return m, ok
}

// Type looks up an enumerated type by semantic type name.
func (p *Profile) Type(name string) (EnumType, bool) {
	t, ok := p.types[name]
	return t, ok
}

// NumMessages returns the number of messages in the catalog.
func (p *Profile) NumMessages() int {
	return len(p.messages)
}

// NumTypes returns the number of enumerated types in the catalog.
func (p *Profile) NumTypes() int {
	return len(p.types)
}

// Empty returns a profile with no messages and no types. Decoding
// against it yields unknown_msg_*/unknown_field_* names with raw values.
func Empty() *Profile {
	return New(nil, nil)
}
