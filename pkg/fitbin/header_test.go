// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitbin

import "testing"

// ============================================================
// File Header Tests
// ============================================================

func TestReadFileHeader_14Byte(t *testing.T) {
	data := []byte{
		0x0E, 0x20, 0xD3, 0x07, 0x58, 0x17, 0x01, 0x00,
		0x2E, 0x46, 0x49, 0x54, 0x09, 0xCC,
	}

	hdr, err := ReadFileHeader(NewStream(data), false, false)
	if err != nil {
		t.Fatalf("ReadFileHeader: %v", err)
	}

	if hdr.Size != 14 {
		t.Errorf("Size = %d, want 14", hdr.Size)
	}
	if hdr.ProtocolVersion != 32 {
		t.Errorf("ProtocolVersion = %d, want 32", hdr.ProtocolVersion)
	}
	if hdr.ProfileVersion != 2003 {
		t.Errorf("ProfileVersion = %d, want 2003", hdr.ProfileVersion)
	}
	if hdr.DataSize != 0x00011758 {
		t.Errorf("DataSize = %d, want %d", hdr.DataSize, 0x00011758)
	}
	if hdr.CRC != 0xCC09 {
		t.Errorf("CRC = 0x%04X, want 0xCC09", hdr.CRC)
	}
	if !hdr.HasCRC() {
		t.Error("HasCRC should be true for a 14-byte header")
	}
}

func TestReadFileHeader_12Byte(t *testing.T) {
	data := []byte{
		0x0C, 0x10, 0xD3, 0x07, 0x10, 0x00, 0x00, 0x00,
		0x2E, 0x46, 0x49, 0x54,
	}

	hdr, err := ReadFileHeader(NewStream(data), true, false)
	if err != nil {
		t.Fatalf("ReadFileHeader: %v", err)
	}
	if hdr.Size != 12 || hdr.HasCRC() {
		t.Errorf("12-byte header parsed as size=%d hasCRC=%v", hdr.Size, hdr.HasCRC())
	}
	if hdr.DataEnd() != 12+16 {
		t.Errorf("DataEnd = %d, want 28", hdr.DataEnd())
	}
}

func TestReadFileHeader_ValidCRC(t *testing.T) {
	head := []byte{
		0x0E, 0x20, 0xD3, 0x07, 0x10, 0x00, 0x00, 0x00,
		0x2E, 0x46, 0x49, 0x54,
	}
	crc := CalculateCRC(head)
	data := append(append([]byte(nil), head...), byte(crc), byte(crc>>8))

	if _, err := ReadFileHeader(NewStream(data), true, false); err != nil {
		t.Errorf("header with correct CRC should validate: %v", err)
	}
}

func TestReadFileHeader_CRCMismatch(t *testing.T) {
	head := []byte{
		0x0E, 0x20, 0xD3, 0x07, 0x10, 0x00, 0x00, 0x00,
		0x2E, 0x46, 0x49, 0x54,
	}
	crc := CalculateCRC(head) ^ 0x5555
	data := append(append([]byte(nil), head...), byte(crc), byte(crc>>8))

	_, err := ReadFileHeader(NewStream(data), true, false)
	if err == nil {
		t.Fatal("expected header CRC mismatch")
	}
	if _, ok := err.(*DecoderError); !ok {
		t.Errorf("expected *DecoderError, got %T", err)
	}
}

func TestReadFileHeader_ZeroCRCSkipsCheck(t *testing.T) {
	data := []byte{
		0x0E, 0x20, 0xD3, 0x07, 0x10, 0x00, 0x00, 0x00,
		0x2E, 0x46, 0x49, 0x54, 0x00, 0x00,
	}
	if _, err := ReadFileHeader(NewStream(data), true, false); err != nil {
		t.Errorf("zero header CRC should be accepted: %v", err)
	}
}

func TestReadFileHeader_BadSignature(t *testing.T) {
	data := []byte{
		0x0C, 0x10, 0xD3, 0x07, 0x10, 0x00, 0x00, 0x00,
		0x2E, 0x46, 0x49, 0x00,
	}
	if _, err := ReadFileHeader(NewStream(data), false, false); err == nil {
		t.Error("expected bad signature error")
	}
}

func TestReadFileHeader_BadSize(t *testing.T) {
	for _, size := range []byte{0, 11, 13, 15, 0xFF} {
		data := append([]byte{size}, make([]byte, 16)...)
		if _, err := ReadFileHeader(NewStream(data), false, false); err == nil {
			t.Errorf("header size %d should be rejected", size)
		}
	}
}

func TestReadFileHeader_SeekBack(t *testing.T) {
	data := []byte{
		0x0C, 0x10, 0xD3, 0x07, 0x10, 0x00, 0x00, 0x00,
		0x2E, 0x46, 0x49, 0x54,
	}

	s := NewStream(data)
	if _, err := ReadFileHeader(s, false, true); err != nil {
		t.Fatalf("ReadFileHeader: %v", err)
	}
	if s.Position() != 0 {
		t.Errorf("seekBack left cursor at %d, want 0", s.Position())
	}

	// Cursor is restored on the failure path too.
	bad := append([]byte{0x0D}, data[1:]...)
	s = NewStream(bad)
	if _, err := ReadFileHeader(s, false, true); err == nil {
		t.Fatal("expected error")
	}
	if s.Position() != 0 {
		t.Errorf("seekBack after failure left cursor at %d, want 0", s.Position())
	}
}
