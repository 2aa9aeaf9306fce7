// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitdecode

import (
	"io"
	"os"

	"github.com/veloforge/fitwire/pkg/fitbin"
	"github.com/veloforge/fitwire/pkg/fitprofile"
)

// File is a handle on one FIT file: the validated byte buffer plus the
// record decoder. Messages are produced lazily through Next.
type File struct {
	path    string
	decoder *fitbin.Decoder
}

// Open reads a FIT file from disk, validates its CRC and header, and
// returns a handle positioned at the first record.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &fitbin.StreamError{Msg: "unreadable file: " + err.Error(), Pos: -1}
	}
	f, err := NewFile(data)
	if err != nil {
		return nil, err
	}
	f.path = path
	return f, nil
}

// NewFile builds a handle over an in-memory FIT file.
func NewFile(data []byte) (*File, error) {
	dec, err := fitbin.NewDecoder(data)
	if err != nil {
		return nil, err
	}
	return &File{decoder: dec}, nil
}

// Path returns the source path, empty for in-memory files.
func (f *File) Path() string {
	return f.path
}

// Header returns the parsed file header.
func (f *File) Header() *fitbin.FileHeader {
	return f.decoder.Header()
}

// Next returns the next raw record in file order, io.EOF at data end.
func (f *File) Next() (fitbin.Record, error) {
	return f.decoder.Next()
}

// DecodeAll walks the remaining records, decodes every data message
// against the profile, and groups the results by message name.
func (f *File) DecodeAll(profile *fitprofile.Profile, opts Options) (*DecodedFile, error) {
	out := NewDecodedFile()
	for {
		rec, err := f.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		data, ok := rec.(*fitbin.DataMessage)
		if !ok {
			continue
		}
		msg, err := DecodeMessage(data, profile, opts)
		if err != nil {
			return nil, err
		}
		out.Add(msg)
	}
}

// DecodeFile is the one-call convenience: open, walk, decode, group.
func DecodeFile(path string, profile *fitprofile.Profile, opts Options) (*DecodedFile, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	return f.DecodeAll(profile, opts)
}
