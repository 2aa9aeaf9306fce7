// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitbin

import "math"

// Kind tags the host representation of a FIT base type.
type Kind int

// Host representation kinds
const (
	KindInt8 Kind = iota
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
)

// BaseType is an immutable descriptor for one of the 16 FIT primitive
// types. The identifier byte carries an endian-sensitive flag in the top
// bit and the type number in the low 5 bits. Invalid holds the raw bit
// pattern each type reserves to mean "no data".
type BaseType struct {
	ID      byte
	Name    string
	Size    int
	Signed  bool
	Numeric bool
	Kind    Kind
	Invalid uint64
}

// FIT base type identifier bytes
const (
	BaseEnum    = 0x00
	BaseSint8   = 0x01
	BaseUint8   = 0x02
	BaseSint16  = 0x83
	BaseUint16  = 0x84
	BaseSint32  = 0x85
	BaseUint32  = 0x86
	BaseString  = 0x07
	BaseFloat32 = 0x88
	BaseFloat64 = 0x89
	BaseUint8z  = 0x0A
	BaseUint16z = 0x8B
	BaseUint32z = 0x8C
	BaseByte    = 0x0D
	BaseSint64  = 0x8E
	BaseUint64  = 0x8F
	BaseUint64z = 0x90
)

var baseTypes = [...]BaseType{
	{ID: BaseEnum, Name: "enum", Size: 1, Numeric: true, Kind: KindUint8, Invalid: 0xFF},
	{ID: BaseSint8, Name: "sint8", Size: 1, Signed: true, Numeric: true, Kind: KindInt8, Invalid: 0x7F},
	{ID: BaseUint8, Name: "uint8", Size: 1, Numeric: true, Kind: KindUint8, Invalid: 0xFF},
	{ID: BaseSint16, Name: "sint16", Size: 2, Signed: true, Numeric: true, Kind: KindInt16, Invalid: 0x7FFF},
	{ID: BaseUint16, Name: "uint16", Size: 2, Numeric: true, Kind: KindUint16, Invalid: 0xFFFF},
	{ID: BaseSint32, Name: "sint32", Size: 4, Signed: true, Numeric: true, Kind: KindInt32, Invalid: 0x7FFFFFFF},
	{ID: BaseUint32, Name: "uint32", Size: 4, Numeric: true, Kind: KindUint32, Invalid: 0xFFFFFFFF},
	{ID: BaseString, Name: "string", Size: 1, Kind: KindString, Invalid: 0x00},
	{ID: BaseFloat32, Name: "float32", Size: 4, Signed: true, Numeric: true, Kind: KindFloat32, Invalid: 0xFFFFFFFF},
	{ID: BaseFloat64, Name: "float64", Size: 8, Signed: true, Numeric: true, Kind: KindFloat64, Invalid: 0xFFFFFFFFFFFFFFFF},
	{ID: BaseUint8z, Name: "uint8z", Size: 1, Numeric: true, Kind: KindUint8, Invalid: 0x00},
	{ID: BaseUint16z, Name: "uint16z", Size: 2, Numeric: true, Kind: KindUint16, Invalid: 0x0000},
	{ID: BaseUint32z, Name: "uint32z", Size: 4, Numeric: true, Kind: KindUint32, Invalid: 0x00000000},
	{ID: BaseByte, Name: "byte", Size: 1, Numeric: true, Kind: KindBytes, Invalid: 0xFF},
	{ID: BaseSint64, Name: "sint64", Size: 8, Signed: true, Numeric: true, Kind: KindInt64, Invalid: 0x7FFFFFFFFFFFFFFF},
	{ID: BaseUint64, Name: "uint64", Size: 8, Numeric: true, Kind: KindUint64, Invalid: 0xFFFFFFFFFFFFFFFF},
	{ID: BaseUint64z, Name: "uint64z", Size: 8, Numeric: true, Kind: KindUint64, Invalid: 0x0000000000000000},
}

var (
	baseTypesByID   map[byte]*BaseType
	baseTypesByName map[string]*BaseType
)

func init() {
	baseTypesByID = make(map[byte]*BaseType, len(baseTypes))
	baseTypesByName = make(map[string]*BaseType, len(baseTypes))
	for i := range baseTypes {
		bt := &baseTypes[i]
		baseTypesByID[bt.ID] = bt
		baseTypesByName[bt.Name] = bt
	}
}

// BaseTypeByID looks up a base type by its identifier byte.
func BaseTypeByID(id byte) (*BaseType, bool) {
	bt, ok := baseTypesByID[id]
	return bt, ok
}

// BaseTypeByName looks up a base type by its symbolic name.
func BaseTypeByName(name string) (*BaseType, bool) {
	bt, ok := baseTypesByName[name]
	return bt, ok
}

// IsInvalid reports whether a raw decoded value equals this type's
// invalid sentinel. Floats are compared on the bit pattern: the float32
// and float64 sentinels are NaN payloads that never compare equal
// numerically.
func (bt *BaseType) IsInvalid(v interface{}) bool {
	switch x := v.(type) {
	case int8:
		return uint64(uint8(x)) == bt.Invalid
	case uint8:
		return uint64(x) == bt.Invalid
	case int16:
		return uint64(uint16(x)) == bt.Invalid
	case uint16:
		return uint64(x) == bt.Invalid
	case int32:
		return uint64(uint32(x)) == bt.Invalid
	case uint32:
		return uint64(x) == bt.Invalid
	case int64:
		return uint64(x) == bt.Invalid
	case uint64:
		return x == bt.Invalid
	case float32:
		return uint64(math.Float32bits(x)) == bt.Invalid
	case float64:
		return math.Float64bits(x) == bt.Invalid
	case string:
		return x == ""
	}
	return false
}
