// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitdecode

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/veloforge/fitwire/pkg/fitbin"
	"github.com/veloforge/fitwire/pkg/fitprofile"
)

// ============================================================
// Test Fixtures
// ============================================================

// rawMessage assembles a DataMessage directly, bypassing the stream, so
// pipeline stages can be exercised with arbitrary raw values.
func rawMessage(global uint16, fields []fitbin.FieldDefinition, values []interface{}) *fitbin.DataMessage {
	return &fitbin.DataMessage{
		Definition: &fitbin.DefinitionMessage{
			GlobalMesgNum: global,
			ByteOrder:     binary.LittleEndian,
			Fields:        fields,
		},
		Values: values,
	}
}

func fieldDef(num uint8, typeName string, elements int) fitbin.FieldDefinition {
	bt, ok := fitbin.BaseTypeByName(typeName)
	if !ok {
		panic("unknown base type " + typeName)
	}
	return fitbin.FieldDefinition{
		Num:      num,
		Size:     uint8(bt.Size * elements),
		BaseType: bt,
		Elements: elements,
	}
}

// testProfile covers the pipeline stages: enum decode, scale/offset,
// date-time, and a sub-field gated on the event field.
func testProfile() *fitprofile.Profile {
	record := fitprofile.NewMessageType(20, "record", []*fitprofile.FieldType{
		{Num: 253, Name: "timestamp", Type: "date_time", Units: "s", Scale: 1},
		{Num: 3, Name: "heart_rate", Type: "uint8", Units: "bpm", Scale: 1},
		{Num: 5, Name: "distance", Type: "uint32", Units: "m", Scale: 100},
		{Num: 2, Name: "altitude", Type: "uint16", Units: "m", Scale: 5, Offset: 500},
		{Num: 7, Name: "speed_1s", Type: "uint8", Units: "m/s", Scale: 16},
		{Num: 9, Name: "broken", Type: "uint8", Scale: 0},
	})

	event := fitprofile.NewMessageType(21, "event", []*fitprofile.FieldType{
		{Num: 0, Name: "event", Type: "event", Scale: 1},
		{Num: 1, Name: "event_type", Type: "uint8", Scale: 1},
		{Num: 3, Name: "data", Type: "uint32", Scale: 1, SubFields: []*fitprofile.SubField{
			{Name: "gear_change_data", Type: "uint32", Units: "gears", Scale: 1,
				Refs: []fitprofile.RefField{{Num: 0, RawValue: 9}}},
			{Name: "rider_position", Type: "rider_position_type", Scale: 1,
				Refs: []fitprofile.RefField{
					{Num: 0, RawValue: 42},
					{Num: 0, RawValue: 43},
					{Num: 1, RawValue: 7},
				}},
		}},
	})

	types := map[string]fitprofile.EnumType{
		"event":               {0: "timer", 9: "gear_change", 42: "rider_position_change"},
		"rider_position_type": {0: "seated", 1: "standing"},
	}

	return fitprofile.New([]*fitprofile.MessageType{record, event}, types)
}

func mustDecode(t *testing.T, msg *fitbin.DataMessage, p *fitprofile.Profile, opts Options) *DecodedMessage {
	t.Helper()
	out, err := DecodeMessage(msg, p, opts)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	return out
}

// ============================================================
// Invalid Masking
// ============================================================

func TestDecode_InvalidMasking(t *testing.T) {
	tests := []struct {
		typeName string
		invalid  interface{}
		valid    interface{}
	}{
		{"uint8", uint8(0xFF), uint8(150)},
		{"uint16", uint16(0xFFFF), uint16(7)},
		{"uint32z", uint32(0), uint32(0x44332211)},
		{"sint16", int16(0x7FFF), int16(-40)},
	}

	p := fitprofile.Empty()
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			msg := rawMessage(99, []fitbin.FieldDefinition{fieldDef(1, tt.typeName, 1)},
				[]interface{}{tt.invalid})
			out := mustDecode(t, msg, p, DefaultOptions())
			if v := out.Value("unknown_field_1"); v != nil {
				t.Errorf("invalid sentinel survived: %v", v)
			}

			msg = rawMessage(99, []fitbin.FieldDefinition{fieldDef(1, tt.typeName, 1)},
				[]interface{}{tt.valid})
			out = mustDecode(t, msg, p, DefaultOptions())
			if v := out.Value("unknown_field_1"); v == nil {
				t.Error("valid value masked to nil")
			}
		})
	}
}

func TestDecode_InvalidMaskingDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.ProcessInvalids = false

	msg := rawMessage(99, []fitbin.FieldDefinition{fieldDef(1, "uint8", 1)},
		[]interface{}{uint8(0xFF)})
	out := mustDecode(t, msg, fitprofile.Empty(), opts)
	if v, ok := out.Value("unknown_field_1").(uint64); !ok || v != 0xFF {
		t.Errorf("sentinel should survive with masking off, got %v", out.Value("unknown_field_1"))
	}
}

func TestDecode_InvalidMaskingElementWise(t *testing.T) {
	msg := rawMessage(99, []fitbin.FieldDefinition{fieldDef(1, "uint16", 3)},
		[]interface{}{[]interface{}{uint16(1), uint16(0xFFFF), uint16(3)}})
	out := mustDecode(t, msg, fitprofile.Empty(), DefaultOptions())

	arr, ok := out.Value("unknown_field_1").([]interface{})
	if !ok || len(arr) != 3 {
		t.Fatalf("value = %v", out.Value("unknown_field_1"))
	}
	if arr[0] == nil || arr[1] != nil || arr[2] == nil {
		t.Errorf("element-wise masking wrong: %v", arr)
	}
}

// ============================================================
// Scale / Offset
// ============================================================

func TestDecode_ScaleAndOffset(t *testing.T) {
	// altitude: scale 5, offset 500 -> 3000/5 - 500 = 100 m
	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(2, "uint16", 1)},
		[]interface{}{uint16(3000)})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())

	f, ok := out.Field("altitude")
	if !ok {
		t.Fatal("missing altitude")
	}
	if v, ok := f.Value.(float64); !ok || v != 100 {
		t.Errorf("altitude = %v (%T), want 100.0", f.Value, f.Value)
	}
	if f.Units != "m" {
		t.Errorf("units = %q, want m", f.Units)
	}
}

func TestDecode_ScaleOne_Idempotent(t *testing.T) {
	// heart_rate has scale 1 and offset 0: value and type are untouched.
	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(3, "uint8", 1)},
		[]interface{}{uint8(150)})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())

	if v, ok := out.Value("heart_rate").(uint64); !ok || v != 150 {
		t.Errorf("heart_rate = %v (%T), want uint64 150", out.Value("heart_rate"), out.Value("heart_rate"))
	}
}

func TestDecode_ScaleOffsetDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.ApplyScaleOffset = false

	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(5, "uint32", 1)},
		[]interface{}{uint32(123456)})
	out := mustDecode(t, msg, testProfile(), opts)

	if v, ok := out.Value("distance").(uint64); !ok || v != 123456 {
		t.Errorf("distance = %v, want raw 123456", out.Value("distance"))
	}
}

func TestDecode_ZeroScaleFatal(t *testing.T) {
	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(9, "uint8", 1)},
		[]interface{}{uint8(10)})
	_, err := DecodeMessage(msg, testProfile(), DefaultOptions())
	if err == nil {
		t.Fatal("zero scale should be fatal")
	}
	if _, ok := err.(*fitbin.DecoderError); !ok {
		t.Errorf("expected *fitbin.DecoderError, got %T", err)
	}
}

func TestDecode_ScaleArray(t *testing.T) {
	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(5, "uint32", 2)},
		[]interface{}{[]interface{}{uint32(100), uint32(250)}})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())

	arr := out.Value("distance").([]interface{})
	if arr[0].(float64) != 1 || arr[1].(float64) != 2.5 {
		t.Errorf("scaled array = %v, want [1 2.5]", arr)
	}
}

func TestDecode_NullPassesScale(t *testing.T) {
	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(5, "uint32", 1)},
		[]interface{}{uint32(0xFFFFFFFF)})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())
	if v := out.Value("distance"); v != nil {
		t.Errorf("masked value should stay nil through scaling, got %v", v)
	}
}

// ============================================================
// Enum Lookup
// ============================================================

func TestDecode_EnumLookup(t *testing.T) {
	msg := rawMessage(21, []fitbin.FieldDefinition{fieldDef(0, "enum", 1)},
		[]interface{}{uint8(0)})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())
	if v := out.Value("event"); v != "timer" {
		t.Errorf("event = %v, want \"timer\"", v)
	}

	// A raw value absent from the mapping stays raw.
	msg = rawMessage(21, []fitbin.FieldDefinition{fieldDef(0, "enum", 1)},
		[]interface{}{uint8(99)})
	out = mustDecode(t, msg, testProfile(), DefaultOptions())
	if v, ok := out.Value("event").(uint64); !ok || v != 99 {
		t.Errorf("unmapped enum = %v (%T), want raw 99", out.Value("event"), out.Value("event"))
	}
}

// ============================================================
// Sub-Field Resolution
// ============================================================

func TestDecode_SubFieldMatch(t *testing.T) {
	// rider_position needs (event == 42 OR 43) AND event_type == 7.
	tests := []struct {
		name      string
		event     uint8
		eventType uint8
		wantField string
	}{
		{"first alternative", 42, 7, "rider_position"},
		{"second alternative", 43, 7, "rider_position"},
		{"and leg fails", 42, 8, "data"},
		{"or group fails", 40, 7, "data"},
		{"first sub-field matches", 9, 0, "gear_change_data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := rawMessage(21,
				[]fitbin.FieldDefinition{
					fieldDef(0, "enum", 1),
					fieldDef(1, "uint8", 1),
					fieldDef(3, "uint32", 1),
				},
				[]interface{}{tt.event, tt.eventType, uint32(1)})
			out := mustDecode(t, msg, testProfile(), DefaultOptions())

			if !out.Has(tt.wantField) {
				t.Fatalf("fields = %v, want %s", out.FieldNames(), tt.wantField)
			}
		})
	}
}

func TestDecode_SubFieldUsesRawValues(t *testing.T) {
	// event 42 decodes to the label "rider_position_change", but the
	// sub-field condition must match on the raw 42, not the label.
	msg := rawMessage(21,
		[]fitbin.FieldDefinition{
			fieldDef(0, "enum", 1),
			fieldDef(1, "uint8", 1),
			fieldDef(3, "uint32", 1),
		},
		[]interface{}{uint8(42), uint8(7), uint32(1)})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())

	if out.Value("event") != "rider_position_change" {
		t.Errorf("event = %v", out.Value("event"))
	}
	f, ok := out.Field("rider_position")
	if !ok {
		t.Fatalf("sub-field not resolved: %v", out.FieldNames())
	}
	// The sub-field's own type drives the enum lookup.
	if f.Value != "standing" {
		t.Errorf("rider_position = %v, want \"standing\"", f.Value)
	}
}

func TestDecode_SubFieldAbsentRefFieldFails(t *testing.T) {
	// The message carries no event_type field: the AND leg over field 1
	// cannot hold, so the plain field name stays.
	msg := rawMessage(21,
		[]fitbin.FieldDefinition{
			fieldDef(0, "enum", 1),
			fieldDef(3, "uint32", 1),
		},
		[]interface{}{uint8(42), uint32(1)})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())

	if !out.Has("data") {
		t.Errorf("fields = %v, want data", out.FieldNames())
	}
}

// ============================================================
// Date-Time Conversion
// ============================================================

func TestDecode_DateTime(t *testing.T) {
	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(253, "uint32", 1)},
		[]interface{}{uint32(1000000000)})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())

	f, ok := out.Field("timestamp")
	if !ok {
		t.Fatal("missing timestamp")
	}
	ts, ok := f.Value.(time.Time)
	if !ok {
		t.Fatalf("timestamp = %T, want time.Time", f.Value)
	}
	want := time.Date(2021, time.September, 8, 1, 46, 40, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("timestamp = %v, want %v", ts, want)
	}
	if f.Units != "" {
		t.Errorf("date-time conversion should clear units, got %q", f.Units)
	}
}

func TestDecode_DateTimeDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.ConvertDateTime = false

	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(253, "uint32", 1)},
		[]interface{}{uint32(1000000000)})
	out := mustDecode(t, msg, testProfile(), opts)

	if v, ok := out.Value("timestamp").(uint64); !ok || v != 1000000000 {
		t.Errorf("timestamp = %v (%T), want raw 1000000000", out.Value("timestamp"), out.Value("timestamp"))
	}
}

func TestDecode_DateTimeInvalidStaysNil(t *testing.T) {
	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(253, "uint32", 1)},
		[]interface{}{uint32(0xFFFFFFFF)})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())
	if v := out.Value("timestamp"); v != nil {
		t.Errorf("invalid timestamp should stay nil, got %v", v)
	}
}

// ============================================================
// Unknown Messages and Fields
// ============================================================

func TestDecode_UnknownMessage(t *testing.T) {
	msg := rawMessage(4242,
		[]fitbin.FieldDefinition{fieldDef(7, "uint16", 1), fieldDef(8, "uint16", 1)},
		[]interface{}{uint16(12), uint16(0xFFFF)})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())

	if out.Name != "unknown_msg_4242" {
		t.Errorf("name = %q", out.Name)
	}
	if v, ok := out.Value("unknown_field_7").(uint64); !ok || v != 12 {
		t.Errorf("unknown_field_7 = %v", out.Value("unknown_field_7"))
	}
	// Invalid masking still applies on the unknown path.
	if v := out.Value("unknown_field_8"); v != nil {
		t.Errorf("unknown_field_8 = %v, want nil", v)
	}
}

func TestDecode_UnknownFieldInKnownMessage(t *testing.T) {
	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(200, "uint8", 1)},
		[]interface{}{uint8(5)})
	out := mustDecode(t, msg, testProfile(), DefaultOptions())

	if out.Name != "record" {
		t.Errorf("name = %q", out.Name)
	}
	f, ok := out.Field("unknown_field_200")
	if !ok {
		t.Fatalf("fields = %v", out.FieldNames())
	}
	if f.Units != "" {
		t.Errorf("unknown field units = %q, want empty", f.Units)
	}
}

// ============================================================
// Numeric Promotion
// ============================================================

func TestDecode_Promotion(t *testing.T) {
	msg := rawMessage(99,
		[]fitbin.FieldDefinition{
			fieldDef(0, "sint8", 1),
			fieldDef(1, "uint16", 1),
			fieldDef(2, "float32", 1),
		},
		[]interface{}{int8(-5), uint16(40000), float32(2.5)})
	out := mustDecode(t, msg, fitprofile.Empty(), DefaultOptions())

	if v, ok := out.Value("unknown_field_0").(int64); !ok || v != -5 {
		t.Errorf("sint8 promoted to %T %v, want int64 -5", out.Value("unknown_field_0"), out.Value("unknown_field_0"))
	}
	if v, ok := out.Value("unknown_field_1").(uint64); !ok || v != 40000 {
		t.Errorf("uint16 promoted to %T, want uint64", out.Value("unknown_field_1"))
	}
	if v, ok := out.Value("unknown_field_2").(float64); !ok || v != 2.5 {
		t.Errorf("float32 promoted to %T, want float64", out.Value("unknown_field_2"))
	}
}

// ============================================================
// Developer Fields
// ============================================================

func TestDecode_DeveloperFieldsPassThrough(t *testing.T) {
	msg := rawMessage(20, []fitbin.FieldDefinition{fieldDef(3, "uint8", 1)},
		[]interface{}{uint8(150)})
	msg.Definition.DeveloperFields = []fitbin.DeveloperFieldDefinition{{Num: 5, Size: 2, DeveloperDataIndex: 0}}
	msg.DeveloperValues = [][]byte{{0xAB, 0xCD}}

	out := mustDecode(t, msg, testProfile(), DefaultOptions())
	raw, ok := out.Value("developer_field_5").([]byte)
	if !ok || len(raw) != 2 {
		t.Fatalf("developer_field_5 = %v (%T)", out.Value("developer_field_5"), out.Value("developer_field_5"))
	}
}
