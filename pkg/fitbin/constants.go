// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

// Package fitbin implements the wire layer of the Garmin FIT file format:
// the byte stream, the FIT CRC, the file header, and the stateful
// definition/data record decoder.
//
// A FIT file is a short header, a body of self-describing records, and a
// two-byte trailing CRC. Definition records bind a schema to one of 16
// local message slots; data records reference the slot they were defined
// under. This package produces raw, profile-agnostic messages; semantic
// decoding against the vendor profile lives in pkg/fitdecode.
package fitbin

import "log"

// File header layout
const (
	HeaderSizeNoCRC = 12
	HeaderSizeCRC   = 14

	// FileSignature is the required 4-byte data-type tag, ".FIT"
	FileSignature = ".FIT"
)

// Record header bits
const (
	maskCompressed = 0x80 // compressed-timestamp record (unsupported)
	maskDefinition = 0x40 // definition record
	maskDevFields  = 0x20 // definition carries developer field definitions
	maskLocalMesg  = 0x0F // local message slot, 0..15
)

// Architecture byte values in a definition record
const (
	archLittleEndian = 0x00
	archBigEndian    = 0x01
)

// MaxLocalMesgs is the number of local message slots (the slot tag is
// four bits wide).
const MaxLocalMesgs = 16

// Warnf is called for recoverable decode irregularities: unknown base
// type ids, field sizes that are not a multiple of the base type size.
// The record still decodes, downgraded to raw uint8 bytes. Replace to
// redirect or silence warnings.
var Warnf = log.Printf
