// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

// Package fitdecode turns the raw messages produced by pkg/fitbin into
// profile-resolved, typed records: field names, units, enum labels,
// scale/offset transforms, and calendar timestamps.
package fitdecode

import "time"

// A decoded value is one of: nil, int64, uint64, float64, string,
// time.Time, an enum label string, []byte (developer fields), or a
// []interface{} of the preceding.

// DecodedField is a resolved value/unit pair.
type DecodedField struct {
	Value interface{}
	Units string
}

// DecodedMessage is one data message with its fields resolved against
// the profile. Field order follows the wire declaration order.
type DecodedMessage struct {
	Name   string
	fields map[string]DecodedField
	order  []string
}

func newDecodedMessage(name string, capacity int) *DecodedMessage {
	return &DecodedMessage{
		Name:   name,
		fields: make(map[string]DecodedField, capacity),
	}
}

func (m *DecodedMessage) add(name string, f DecodedField) {
	if _, dup := m.fields[name]; !dup {
		m.order = append(m.order, name)
	}
	m.fields[name] = f
}

// Has reports whether the message carries a field with the given name.
func (m *DecodedMessage) Has(name string) bool {
	_, ok := m.fields[name]
	return ok
}

// Field returns the decoded field with the given name.
func (m *DecodedMessage) Field(name string) (DecodedField, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Value returns just the value of the named field, nil if absent.
func (m *DecodedMessage) Value(name string) interface{} {
	return m.fields[name].Value
}

// FieldNames returns the field names in wire declaration order.
func (m *DecodedMessage) FieldNames() []string {
	return m.order
}

// NumFields returns the number of decoded fields.
func (m *DecodedMessage) NumFields() int {
	return len(m.order)
}

// Timestamp returns the message's timestamp field when present and
// converted to a calendar time.
func (m *DecodedMessage) Timestamp() (time.Time, bool) {
	t, ok := m.fields["timestamp"].Value.(time.Time)
	return t, ok
}

// DecodedFile groups decoded messages by message name. Keys keep the
// order of first appearance in the file; messages within a group keep
// file order.
type DecodedFile struct {
	order  []string
	groups map[string][]*DecodedMessage
}

// NewDecodedFile returns an empty grouped result.
func NewDecodedFile() *DecodedFile {
	return &DecodedFile{groups: make(map[string][]*DecodedMessage)}
}

// Add appends a message to its name group.
func (f *DecodedFile) Add(m *DecodedMessage) {
	if _, seen := f.groups[m.Name]; !seen {
		f.order = append(f.order, m.Name)
	}
	f.groups[m.Name] = append(f.groups[m.Name], m)
}

// MessageNames returns the distinct message names in order of first
// appearance.
func (f *DecodedFile) MessageNames() []string {
	return f.order
}

// Messages returns the ordered messages of one name group.
func (f *DecodedFile) Messages(name string) []*DecodedMessage {
	return f.groups[name]
}

// NumMessages returns the total message count across all groups.
func (f *DecodedFile) NumMessages() int {
	n := 0
	for _, msgs := range f.groups {
		n += len(msgs)
	}
	return n
}
