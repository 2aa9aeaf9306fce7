// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Mara Veldt, Veloforge

package cmd

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	parquetlocal "github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/veloforge/fitwire/pkg/fitdecode"
)

var (
	recordsFormat string
	recordsOut    string
)

var recordsCmd = &cobra.Command{
	Use:   "records FILE",
	Short: "Export the record time series as CSV or Parquet",
	Long: `Project the record messages of an activity onto canonical sample rows
(timestamp, power, heart rate, cadence, speed, distance, altitude,
temperature) and write them as CSV or Parquet.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecords,
}

func init() {
	recordsCmd.Flags().StringVarP(&recordsFormat, "format", "f", "csv", "Output format: csv or parquet")
	recordsCmd.Flags().StringVarP(&recordsOut, "out", "o", "", "Output path (default FILE.csv / FILE.parquet)")
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, args []string) error {
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

	out := recordsOut
	if out == "" {
		out = args[0] + "." + recordsFormat
	}

	switch recordsFormat {
	case "csv":
		err = writeSamplesCSV(samples, out)
	case "parquet":
		err = writeSamplesParquet(samples, out)
	default:
		return fmt.Errorf("unknown format %q, want csv or parquet", recordsFormat)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d samples to %s\n", len(samples), out)
	return nil
}

func writeSamplesCSV(samples []fitdecode.Sample, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"ts_utc_iso", "elapsed_s", "power_w", "hr_bpm", "cadence_rpm",
		"speed_mps", "distance_m", "altitude_m", "temperature_c"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range samples {
		row := []string{
			s.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(s.ElapsedS, 'f', 3, 64),
			csvFloat(s.PowerW),
			csvFloat(s.HeartRateBPM),
			csvFloat(s.CadenceRPM),
			csvFloat(s.SpeedMPS),
			csvFloat(s.DistanceM),
			csvFloat(s.AltitudeM),
			csvFloat(s.TemperatureC),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

type sampleParquetRow struct {
	TSUTCISO     string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS     float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	PowerW       float64 `parquet:"name=power_w, type=DOUBLE"`
	HRBPM        float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM   float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	SpeedMPS     float64 `parquet:"name=speed_mps, type=DOUBLE"`
	DistanceM    float64 `parquet:"name=distance_m, type=DOUBLE"`
	AltitudeM    float64 `parquet:"name=altitude_m, type=DOUBLE"`
	TemperatureC float64 `parquet:"name=temperature_c, type=DOUBLE"`
}

func writeSamplesParquet(samples []fitdecode.Sample, path string) error {
	fw, err := parquetlocal.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(sampleParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, s := range samples {
		row := sampleParquetRow{
			TSUTCISO:     s.Timestamp.Format(time.RFC3339),
			ElapsedS:     s.ElapsedS,
			PowerW:       valueOrNaN(s.PowerW),
			HRBPM:        valueOrNaN(s.HeartRateBPM),
			CadenceRPM:   valueOrNaN(s.CadenceRPM),
			SpeedMPS:     valueOrNaN(s.SpeedMPS),
			DistanceM:    valueOrNaN(s.DistanceM),
			AltitudeM:    valueOrNaN(s.AltitudeM),
			TemperatureC: valueOrNaN(s.TemperatureC),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}

	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
