// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitbin

import (
	"encoding/binary"
	"os"
)

// Stream is a random-access cursor over an in-memory byte buffer. The
// cursor only moves through explicit reads and seeks. A Stream is not
// safe for concurrent use; one decoder owns one stream for its lifetime.
type Stream struct {
	data []byte
	pos  int
}

// NewStream creates a stream over the given buffer. The buffer is
// borrowed, not copied.
func NewStream(data []byte) *Stream {
	return &Stream{data: data}
}

// OpenStream reads an entire file into memory and returns a stream
// positioned at the start.
func OpenStream(path string) (*Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StreamError{Msg: "unreadable file: " + err.Error(), Pos: -1}
	}
	return NewStream(data), nil
}

// Len returns the total buffer length in bytes.
func (s *Stream) Len() int {
	return len(s.data)
}

// Position returns the current cursor offset.
func (s *Stream) Position() int {
	return s.pos
}

// Remaining returns the number of unread bytes.
func (s *Stream) Remaining() int {
	return len(s.data) - s.pos
}

// AtEnd reports whether the cursor has reached the two-byte trailing CRC
// region. Message reads must stop here; the trailer is not record data.
func (s *Stream) AtEnd() bool {
	return s.pos >= len(s.data)-2
}

// Seek moves the cursor to an absolute offset in [0, Len].
func (s *Stream) Seek(pos int) error {
	if pos < 0 || pos > len(s.data) {
		return streamErrorf(s.pos, "seek target %d out of range [0, %d]", pos, len(s.data))
	}
	s.pos = pos
	return nil
}

// SeekStart rewinds the cursor to offset zero.
func (s *Stream) SeekStart() {
	s.pos = 0
}

// PeekByte returns the next byte without advancing the cursor.
func (s *Stream) PeekByte() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, streamErrorf(s.pos, "peek past end of stream")
	}
	return s.data[s.pos], nil
}

// PeekBytes returns the next n bytes without advancing the cursor.
func (s *Stream) PeekBytes(n int) ([]byte, error) {
	if n < 0 || s.pos+n > len(s.data) {
		return nil, streamErrorf(s.pos, "peek of %d bytes past end of stream", n)
	}
	return s.data[s.pos : s.pos+n], nil
}

// ReadByte reads a single byte.
func (s *Stream) ReadByte() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, streamErrorf(s.pos, "read past end of stream")
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes.
func (s *Stream) ReadBytes(n int) ([]byte, error) {
	if n < 0 || s.pos+n > len(s.data) {
		return nil, streamErrorf(s.pos, "read of %d bytes past end of stream", n)
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// ReadUint16 reads a 16-bit value with the given byte order.
func (s *Stream) ReadUint16(bo binary.ByteOrder) (uint16, error) {
	b, err := s.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return bo.Uint16(b), nil
}

// ReadUint32 reads a 32-bit value with the given byte order.
func (s *Stream) ReadUint32(bo binary.ByteOrder) (uint32, error) {
	b, err := s.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return bo.Uint32(b), nil
}

// ReadString consumes an n-byte string field and returns the bytes
// before the first NUL. FIT strings are NUL-terminated within a
// fixed-width field; trailing padding is discarded.
func (s *Stream) ReadString(n int) (string, error) {
	b, err := s.ReadBytes(n)
	if err != nil {
		return "", err
	}
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}

// Slice returns n bytes at an absolute offset without moving the cursor.
func (s *Stream) Slice(start, n int) ([]byte, error) {
	if start < 0 || n < 0 || start+n > len(s.data) {
		return nil, streamErrorf(start, "slice [%d:%d] out of range", start, start+n)
	}
	return s.data[start : start+n], nil
}
