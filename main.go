// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge
//
// Fitwire - FIT File Decoder
//
// A CLI tool for decoding Garmin FIT activity files into structured,
// profile-resolved records.

package main

import (
	"os"

	"github.com/veloforge/fitwire/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
