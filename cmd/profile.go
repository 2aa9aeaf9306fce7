// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Mara Veldt, Veloforge

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veloforge/fitwire/pkg/fitprofile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect and convert profile artefacts",
}

var profileConvertCmd = &cobra.Command{
	Use:   "convert IN OUT",
	Short: "Re-encode a profile artefact",
	Long: `Convert a profile artefact between encodings, chosen by the output
extension: .json, .json.gz, or .cbor (the compact binary encoding).

The vendor SDK export is a multi-megabyte JSON file; the compact CBOR
encoding is the one to ship.`,
	Args: cobra.ExactArgs(2),
	RunE: runProfileConvert,
}

var profileInfoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print profile artefact summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileInfo,
}

func init() {
	profileCmd.AddCommand(profileConvertCmd)
	profileCmd.AddCommand(profileInfoCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileConvert(cmd *cobra.Command, args []string) error {
	p, err := fitprofile.Load(args[0])
	if err != nil {
		return err
	}

	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer out.Close()

	switch {
	case strings.HasSuffix(args[1], ".cbor"):
		err = fitprofile.SaveCBOR(p, out)
	case strings.HasSuffix(args[1], ".gz"):
		err = fitprofile.SaveJSON(p, out, true)
	default:
		err = fitprofile.SaveJSON(p, out, false)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s (%d messages, %d types)\n",
		args[0], args[1], p.NumMessages(), p.NumTypes())
	return nil
}

func runProfileInfo(cmd *cobra.Command, args []string) error {
	p, err := fitprofile.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("messages: %d\n", p.NumMessages())
	fmt.Printf("types:    %d\n", p.NumTypes())
	return nil
}
