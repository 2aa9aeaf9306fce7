// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitdecode

import "time"

// Sample is the canonical projection of one record message: the common
// telemetry channels, absent channels nil.
type Sample struct {
	Timestamp    time.Time
	ElapsedS     float64
	PowerW       *float64
	HeartRateBPM *float64
	CadenceRPM   *float64
	SpeedMPS     *float64
	DistanceM    *float64
	AltitudeM    *float64
	TemperatureC *float64
}

// ExtractSamples projects the record messages of a decoded file onto
// canonical sample rows, ordered by file position. Records without a
// timestamp are skipped; elapsed time is measured from the first
// timestamped record.
func ExtractSamples(df *DecodedFile) []Sample {
	records := df.Messages("record")
	samples := make([]Sample, 0, len(records))

	var start time.Time
	for _, rec := range records {
		ts, ok := rec.Timestamp()
		if !ok {
			continue
		}
		if start.IsZero() {
			start = ts
		}

		samples = append(samples, Sample{
			Timestamp:    ts,
			ElapsedS:     ts.Sub(start).Seconds(),
			PowerW:       numericField(rec, "power"),
			HeartRateBPM: numericField(rec, "heart_rate"),
			CadenceRPM:   numericField(rec, "cadence"),
			SpeedMPS:     numericField(rec, "speed", "enhanced_speed"),
			DistanceM:    numericField(rec, "distance"),
			AltitudeM:    numericField(rec, "altitude", "enhanced_altitude"),
			TemperatureC: numericField(rec, "temperature"),
		})
	}
	return samples
}

// numericField returns the first named field that carries a non-nil
// numeric value.
func numericField(m *DecodedMessage, names ...string) *float64 {
	for _, name := range names {
		f, ok := m.Field(name)
		if !ok {
			continue
		}
		if v, ok := toFloat64(f.Value); ok {
			return &v
		}
	}
	return nil
}

// Channel extracts one named channel from a sample slice, skipping nil
// entries.
func Channel(samples []Sample, pick func(Sample) *float64) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if v := pick(s); v != nil {
			out = append(out, *v)
		}
	}
	return out
}
