// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitdecode

import (
	"fmt"
	"time"

	"github.com/veloforge/fitwire/pkg/fitbin"
	"github.com/veloforge/fitwire/pkg/fitprofile"
)

// FIT timestamps count seconds since 1989-12-31T00:00:00Z.
var fitEpoch = time.Date(1989, time.December, 31, 0, 0, 0, 0, time.UTC)

// Options controls the per-field transform pipeline.
type Options struct {
	// ConvertDateTime turns date_time values into calendar timestamps.
	ConvertDateTime bool
	// ProcessInvalids masks base-type invalid sentinels to nil.
	ProcessInvalids bool
	// ApplyScaleOffset applies physical = raw/scale - offset.
	ApplyScaleOffset bool
}

// DefaultOptions enables every transform.
func DefaultOptions() Options {
	return Options{ConvertDateTime: true, ProcessInvalids: true, ApplyScaleOffset: true}
}

// DecodeMessage resolves one raw data message against the profile. Field
// values run the pipeline: sub-field resolution, invalid masking, enum
// lookup, scale/offset, date-time conversion, numeric promotion.
// Messages or fields the profile does not know keep their raw values
// under unknown_msg_<n> / unknown_field_<id> names, with invalid masking
// and promotion still applied.
func DecodeMessage(msg *fitbin.DataMessage, profile *fitprofile.Profile, opts Options) (*DecodedMessage, error) {
	def := msg.Definition

	var mesgType *fitprofile.MessageType
	name := fmt.Sprintf("unknown_msg_%d", def.GlobalMesgNum)
	if mt, ok := profile.Message(def.GlobalMesgNum); ok {
		mesgType = mt
		name = mt.Name
	}

	out := newDecodedMessage(name, len(def.Fields)+len(def.DeveloperFields))

	for i, fd := range def.Fields {
		raw := msg.Values[i]

		var field *fitprofile.FieldType
		if mesgType != nil {
			field, _ = mesgType.Field(fd.Num)
		}

		if field == nil {
			v := raw
			if opts.ProcessInvalids {
				v = maskInvalid(v, fd.BaseType)
			}
			out.add(fmt.Sprintf("unknown_field_%d", fd.Num), DecodedField{Value: promote(v)})
			continue
		}

		fieldName, units, typeName, scale, offset := field.Name, field.Units, field.Type, field.Scale, field.Offset
		if sub := resolveSubField(field, msg); sub != nil {
			fieldName, units, typeName, scale, offset = sub.Name, sub.Units, sub.Type, sub.Scale, sub.Offset
		}

		v := raw
		if opts.ProcessInvalids {
			v = maskInvalid(v, fd.BaseType)
		}

		v = decodeEnum(v, typeName, profile)

		if opts.ApplyScaleOffset {
			var err error
			if v, err = applyScaleOffset(v, scale, offset, fieldName); err != nil {
				return nil, err
			}
		}

		if opts.ConvertDateTime && typeName == "date_time" {
			if t, ok := toTimestamp(v); ok {
				v = t
				units = ""
			}
		}

		out.add(fieldName, DecodedField{Value: promote(v), Units: units})
	}

	for i, dd := range def.DeveloperFields {
		out.add(fmt.Sprintf("developer_field_%d", dd.Num), DecodedField{Value: msg.DeveloperValues[i]})
	}

	return out, nil
}

// resolveSubField returns the first sub-field, in declaration order,
// whose map conditions hold against the raw values of the message.
// Conditions sharing a ref field id combine with OR, across distinct ids
// with AND; a referenced field absent from the message fails its group.
func resolveSubField(field *fitprofile.FieldType, msg *fitbin.DataMessage) *fitprofile.SubField {
	for _, sub := range field.SubFields {
		if len(sub.Refs) == 0 {
			continue
		}
		if matchRefs(sub.Refs, msg) {
			return sub
		}
	}
	return nil
}

func matchRefs(refs []fitprofile.RefField, msg *fitbin.DataMessage) bool {
	byNum := make(map[uint8]bool)
	order := make([]uint8, 0, len(refs))
	for _, ref := range refs {
		if _, seen := byNum[ref.Num]; !seen {
			order = append(order, ref.Num)
			byNum[ref.Num] = false
		}
		if byNum[ref.Num] {
			continue
		}
		raw, ok := msg.RawValue(ref.Num)
		if !ok {
			continue // group stays false; absent field fails the AND below
		}
		if rv, ok := toInt64(raw); ok && rv == ref.RawValue {
			byNum[ref.Num] = true
		}
	}
	for _, num := range order {
		if !byNum[num] {
			return false
		}
	}
	return true
}

// maskInvalid replaces invalid sentinels with nil, element-wise for
// arrays.
func maskInvalid(v interface{}, bt *fitbin.BaseType) interface{} {
	if arr, ok := v.([]interface{}); ok {
		out := make([]interface{}, len(arr))
		for i, e := range arr {
			out[i] = maskInvalid(e, bt)
		}
		return out
	}
	if bt.IsInvalid(v) {
		return nil
	}
	return v
}

// decodeEnum swaps raw values for labels when the semantic type is a
// profile-registered enumeration. Misses keep the raw value; nils pass
// through.
func decodeEnum(v interface{}, typeName string, profile *fitprofile.Profile) interface{} {
	et, ok := profile.Type(typeName)
	if !ok {
		return v
	}
	if arr, isArr := v.([]interface{}); isArr {
		out := make([]interface{}, len(arr))
		for i, e := range arr {
			out[i] = decodeEnum(e, typeName, profile)
		}
		return out
	}
	rv, ok := toInt64(v)
	if !ok {
		return v
	}
	if label, hit := et[rv]; hit {
		return label
	}
	return v
}

// applyScaleOffset applies physical = raw/scale - offset to numeric
// values, element-wise for arrays. A zero scale indicates schema
// corruption and is fatal. Scale 1 with offset 0 leaves the value and
// its type untouched.
func applyScaleOffset(v interface{}, scale, offset float64, fieldName string) (interface{}, error) {
	if scale == 0 {
		return nil, &fitbin.DecoderError{Msg: fmt.Sprintf("field %s has zero scale", fieldName), Pos: -1}
	}
	if scale == 1 && offset == 0 {
		return v, nil
	}

	if arr, ok := v.([]interface{}); ok {
		out := make([]interface{}, len(arr))
		for i, e := range arr {
			scaled, err := applyScaleOffset(e, scale, offset, fieldName)
			if err != nil {
				return nil, err
			}
			out[i] = scaled
		}
		return out, nil
	}

	f, ok := toFloat64(v)
	if !ok {
		return v, nil
	}
	return f/scale - offset, nil
}

// toTimestamp converts a non-nil numeric seconds-since-FIT-epoch value.
func toTimestamp(v interface{}) (time.Time, bool) {
	if f, ok := toFloat64(v); ok {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * float64(time.Second))
		return fitEpoch.Add(time.Duration(sec)*time.Second + time.Duration(nsec)).UTC(), true
	}
	return time.Time{}, false
}

// promote widens integers to 64 bits and floats to float64 so decoded
// numbers have a uniform shape; everything else passes through.
func promote(v interface{}) interface{} {
	switch x := v.(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case float32:
		return float64(x)
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = promote(e)
		}
		return out
	}
	return v
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
