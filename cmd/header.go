// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Mara Veldt, Veloforge

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/veloforge/fitwire/pkg/fitbin"
)

var headerCmd = &cobra.Command{
	Use:   "header FILE",
	Short: "Inspect a FIT file header and its CRCs",
	Long: `Parse and print the file header without scanning the message body,
along with the header and file CRC check results and a short hex
preview of the leading bytes.`,
	Args: cobra.ExactArgs(1),
	RunE: runHeader,
}

func init() {
	rootCmd.AddCommand(headerCmd)
}

func runHeader(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	s := fitbin.NewStream(data)
	hdr, err := fitbin.ReadFileHeader(s, false, true)
	if err != nil {
		return err
	}

	fmt.Printf("size:             %d bytes\n", hdr.Size)
	fmt.Printf("protocol version: %d.%d\n", hdr.ProtocolVersion>>4, hdr.ProtocolVersion&0x0F)
	fmt.Printf("profile version:  %d\n", hdr.ProfileVersion)
	fmt.Printf("data size:        %d bytes\n", hdr.DataSize)
	fmt.Printf("signature:        %q\n", fitbin.FileSignature)

	if hdr.HasCRC() {
		computed := fitbin.CalculateCRC(data[:fitbin.HeaderSizeNoCRC])
		status := "OK"
		if hdr.CRC == 0 {
			status = "not set"
		} else if computed != hdr.CRC {
			status = fmt.Sprintf("MISMATCH (computed 0x%04X)", computed)
		}
		fmt.Printf("header crc:       0x%04X (%s)\n", hdr.CRC, status)
	} else {
		fmt.Printf("header crc:       none (12-byte header)\n")
	}

	if trailer, err := fitbin.ExtractTrailerCRC(data); err == nil {
		status := "OK"
		if fitbin.CalculateCRC(data[:len(data)-2]) != trailer {
			status = "MISMATCH"
		}
		fmt.Printf("file crc:         0x%04X (%s)\n", trailer, status)
	}

	fmt.Printf("\n%s\n", hexPreview(data))
	return nil
}

// hexPreview renders the leading bytes of the file, sized to the
// terminal width when stdout is a terminal.
func hexPreview(data []byte) string {
	perLine := 16
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w >= 100 {
		perLine = 32
	}

	n := 4 * perLine
	if n > len(data) {
		n = len(data)
	}

	out := ""
	for i := 0; i < n; i += perLine {
		end := i + perLine
		if end > n {
			end = n
		}
		out += fmt.Sprintf("%08X  % X\n", i, data[i:end])
	}
	return out
}
