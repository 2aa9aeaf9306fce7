// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Mara Veldt, Veloforge

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/veloforge/fitwire/pkg/fitdecode"
	"github.com/veloforge/fitwire/pkg/fitprofile"
)

var (
	// Profile artefact flag
	profilePath string

	// Decode pipeline flags
	noDateTime   bool
	keepInvalids bool
	noScale      bool
)

var rootCmd = &cobra.Command{
	Use:   "fitwire",
	Short: "FIT File Decoder",
	Long: `Fitwire - A CLI tool for decoding Garmin FIT activity files.

Decodes the binary FIT container into profile-resolved records: field
names, units, enum labels, scaled physical values, and calendar
timestamps.

Most commands want a profile artefact (--profile) extracted from the
vendor SDK: profile.json, profile.json.gz, or the compact profile.cbor.
Without one, messages decode with unknown_msg_*/unknown_field_* names
and raw values.`,
	Version: "1.2.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profilePath, "profile", "P", "", "Profile artefact (.json, .json.gz, or .cbor)")
	rootCmd.PersistentFlags().BoolVar(&noDateTime, "no-datetime", false, "Keep date_time fields as raw epoch offsets")
	rootCmd.PersistentFlags().BoolVar(&keepInvalids, "keep-invalids", false, "Keep invalid sentinel values instead of masking to null")
	rootCmd.PersistentFlags().BoolVar(&noScale, "no-scale", false, "Skip the scale/offset transform")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadProfile loads the --profile artefact, or an empty profile when the
// flag is unset.
func loadProfile() (*fitprofile.Profile, error) {
	if profilePath == "" {
		return fitprofile.Empty(), nil
	}
	return fitprofile.Load(profilePath)
}

// decodeOptions maps the pipeline flags onto decoder options.
func decodeOptions() fitdecode.Options {
	opts := fitdecode.DefaultOptions()
	opts.ConvertDateTime = !noDateTime
	opts.ProcessInvalids = !keepInvalids
	opts.ApplyScaleOffset = !noScale
	return opts
}
