// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitbin

import (
	"encoding/binary"
	"testing"
)

// ============================================================
// Stream Tests
// ============================================================

func TestStream_ReadByte(t *testing.T) {
	s := NewStream([]byte{0x10, 0x20})

	b, err := s.ReadByte()
	if err != nil || b != 0x10 {
		t.Fatalf("ReadByte = (0x%02X, %v), want (0x10, nil)", b, err)
	}
	if s.Position() != 1 {
		t.Errorf("position = %d, want 1", s.Position())
	}

	if _, err := s.ReadByte(); err != nil {
		t.Fatalf("second ReadByte: %v", err)
	}
	if _, err := s.ReadByte(); err == nil {
		t.Error("expected error reading past end")
	}
}

func TestStream_PeekDoesNotAdvance(t *testing.T) {
	s := NewStream([]byte{0xAA, 0xBB, 0xCC})

	b, err := s.PeekByte()
	if err != nil || b != 0xAA {
		t.Fatalf("PeekByte = (0x%02X, %v)", b, err)
	}
	bs, err := s.PeekBytes(3)
	if err != nil || len(bs) != 3 {
		t.Fatalf("PeekBytes = (%v, %v)", bs, err)
	}
	if s.Position() != 0 {
		t.Errorf("peek moved the cursor to %d", s.Position())
	}
}

func TestStream_Endianness(t *testing.T) {
	s := NewStream([]byte{0x11, 0x22, 0x11, 0x22})

	le, err := s.ReadUint16(binary.LittleEndian)
	if err != nil || le != 0x2211 {
		t.Errorf("LE uint16 = 0x%04X, want 0x2211", le)
	}
	be, err := s.ReadUint16(binary.BigEndian)
	if err != nil || be != 0x1122 {
		t.Errorf("BE uint16 = 0x%04X, want 0x1122", be)
	}
}

func TestStream_ReadUint32(t *testing.T) {
	s := NewStream([]byte{0x11, 0x22, 0x33, 0x44})
	v, err := s.ReadUint32(binary.LittleEndian)
	if err != nil || v != 0x44332211 {
		t.Errorf("LE uint32 = 0x%08X, want 0x44332211", v)
	}
}

func TestStream_ReadString(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		n     int
		want  string
		wantN int // cursor after the read
	}{
		{"nul terminated early", []byte{'h', 'i', 0x00, 'x', 'y'}, 5, "hi", 5},
		{"full width", []byte{'a', 'b', 'c'}, 3, "abc", 3},
		{"empty", []byte{0x00, 0x00}, 2, "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStream(tt.data)
			got, err := s.ReadString(tt.n)
			if err != nil {
				t.Fatalf("ReadString: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadString = %q, want %q", got, tt.want)
			}
			if s.Position() != tt.wantN {
				t.Errorf("position = %d, want %d (strings consume the full field)", s.Position(), tt.wantN)
			}
		})
	}
}

func TestStream_Seek(t *testing.T) {
	s := NewStream([]byte{1, 2, 3, 4})

	if err := s.Seek(4); err != nil {
		t.Errorf("seek to end should succeed: %v", err)
	}
	if err := s.Seek(5); err == nil {
		t.Error("seek past end should fail")
	}
	if err := s.Seek(-1); err == nil {
		t.Error("negative seek should fail")
	}

	s.SeekStart()
	if s.Position() != 0 {
		t.Errorf("SeekStart left cursor at %d", s.Position())
	}
}

func TestStream_AtEnd(t *testing.T) {
	// 6 bytes: offsets 0..3 are data, 4..5 the trailing CRC.
	s := NewStream([]byte{1, 2, 3, 4, 5, 6})

	if s.AtEnd() {
		t.Error("AtEnd at start of 6-byte stream")
	}
	if err := s.Seek(3); err != nil {
		t.Fatal(err)
	}
	if s.AtEnd() {
		t.Error("AtEnd with one data byte left")
	}
	if err := s.Seek(4); err != nil {
		t.Fatal(err)
	}
	if !s.AtEnd() {
		t.Error("not AtEnd at the CRC trailer")
	}
}

func TestStream_Slice(t *testing.T) {
	s := NewStream([]byte{1, 2, 3, 4, 5})
	b, err := s.Slice(1, 3)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if len(b) != 3 || b[0] != 2 || b[2] != 4 {
		t.Errorf("Slice = %v, want [2 3 4]", b)
	}
	if s.Position() != 0 {
		t.Error("Slice moved the cursor")
	}
	if _, err := s.Slice(3, 4); err == nil {
		t.Error("out-of-range slice should fail")
	}
}

func TestStream_ErrorsCarryPosition(t *testing.T) {
	s := NewStream([]byte{1, 2})
	if err := s.Seek(2); err != nil {
		t.Fatal(err)
	}
	_, err := s.ReadBytes(1)
	se, ok := err.(*StreamError)
	if !ok {
		t.Fatalf("expected *StreamError, got %T", err)
	}
	if se.Pos != 2 {
		t.Errorf("error position = %d, want 2", se.Pos)
	}
}
