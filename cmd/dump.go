// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Mara Veldt, Veloforge

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/veloforge/fitwire/pkg/fitbin"
	"github.com/veloforge/fitwire/pkg/fitdecode"
)

var dumpDefinitions bool

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Decode a FIT file and print every message",
	Long: `Decode a FIT file and print each message in file order, one block per
message with its resolved field names, values, and units.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().BoolVarP(&dumpDefinitions, "definitions", "d", false, "Also print definition records")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	opts := decodeOptions()

	f, err := fitdecode.Open(args[0])
	if err != nil {
		return err
	}

	fmt.Println(fitdecode.FormatHeader(f.Header()))
	fmt.Println()

	for {
		rec, err := f.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch r := rec.(type) {
		case *fitbin.DefinitionMessage:
			if dumpDefinitions {
				fmt.Printf("definition: local=%d global=%d fields=%d dev_fields=%d\n",
					r.LocalMesgNum, r.GlobalMesgNum, len(r.Fields), len(r.DeveloperFields))
			}
		case *fitbin.DataMessage:
			msg, err := fitdecode.DecodeMessage(r, profile, opts)
			if err != nil {
				return err
			}
			fmt.Print(fitdecode.FormatMessage(msg))
		}
	}
}
