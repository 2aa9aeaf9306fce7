// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Mara Veldt, Veloforge

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/veloforge/fitwire/pkg/fitdecode"
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Summary statistics over the record time series",
	Long: `Decode an activity and print per-channel summary statistics (mean,
standard deviation, min, median, p95, max) over the record messages.

Requires a profile artefact so record fields resolve to named channels.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}

	df, err := fitdecode.DecodeFile(args[0], profile, decodeOptions())
	if err != nil {
		return err
	}

	samples := fitdecode.ExtractSamples(df)
	if len(samples) == 0 {
		return fmt.Errorf("no record messages in %s (missing --profile?)", args[0])
	}

	channels := []struct {
		name string
		unit string
		pick func(fitdecode.Sample) *float64
	}{
		{"power", "W", func(s fitdecode.Sample) *float64 { return s.PowerW }},
		{"heart_rate", "bpm", func(s fitdecode.Sample) *float64 { return s.HeartRateBPM }},
		{"cadence", "rpm", func(s fitdecode.Sample) *float64 { return s.CadenceRPM }},
		{"speed", "m/s", func(s fitdecode.Sample) *float64 { return s.SpeedMPS }},
		{"altitude", "m", func(s fitdecode.Sample) *float64 { return s.AltitudeM }},
		{"temperature", "C", func(s fitdecode.Sample) *float64 { return s.TemperatureC }},
	}

	duration := samples[len(samples)-1].ElapsedS
	fmt.Printf("%d samples over %.0f seconds\n\n", len(samples), duration)
	fmt.Printf("%-12s %8s %8s %8s %8s %8s %8s %6s\n",
		"channel", "mean", "stddev", "min", "median", "p95", "max", "n")

	for _, ch := range channels {
		values := fitdecode.Channel(samples, ch.pick)
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)

		mean, stddev := stat.MeanStdDev(values, nil)
		fmt.Printf("%-12s %8.1f %8.1f %8.1f %8.1f %8.1f %8.1f %6d  %s\n",
			ch.name,
			mean,
			stddev,
			values[0],
			stat.Quantile(0.5, stat.Empirical, values, nil),
			stat.Quantile(0.95, stat.Empirical, values, nil),
			values[len(values)-1],
			len(values),
			ch.unit)
	}

	return nil
}
