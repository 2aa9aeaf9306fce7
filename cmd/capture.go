// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Mara Veldt, Veloforge

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/veloforge/fitwire/pkg/fitbin"
)

var (
	capturePort string
	captureBaud int
	captureOut  string
	captureIdle time.Duration
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a FIT dump from a serial-attached device",
	Long: `Read raw bytes from a serial port until the line goes idle, then verify
the capture is a well-formed FIT file (header signature and trailing
CRC) and write it to disk.

Intended for devices that dump their activity files over a serial
bridge. The capture ends after --idle with no traffic.`,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVarP(&capturePort, "port", "p", "", "Serial port device (e.g. /dev/ttyACM0)")
	captureCmd.Flags().IntVarP(&captureBaud, "baud", "b", 115200, "Baud rate")
	captureCmd.Flags().StringVarP(&captureOut, "out", "o", "capture.fit", "Output file")
	captureCmd.Flags().DurationVar(&captureIdle, "idle", 2*time.Second, "Idle time that ends the capture")
	_ = captureCmd.MarkFlagRequired("port")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	mode := &serial.Mode{
		BaudRate: captureBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(capturePort, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %v", capturePort, err)
	}
	defer port.Close()

	if err := port.SetReadTimeout(captureIdle); err != nil {
		return err
	}

	fmt.Printf("Fitwire - capturing from %s @ %d baud\n", capturePort, captureBaud)

	var data []byte
	buf := make([]byte, 4096)
	for {
		n, err := port.Read(buf)
		if err != nil {
			return fmt.Errorf("read error: %v", err)
		}
		if n == 0 {
			// Read timeout: the line went idle.
			if len(data) > 0 {
				break
			}
			continue
		}
		data = append(data, buf[:n]...)
	}

	fmt.Printf("Captured %d bytes\n", len(data))

	s := fitbin.NewStream(data)
	hdr, err := fitbin.ReadFileHeader(s, true, true)
	if err != nil {
		return fmt.Errorf("capture is not a FIT file: %w", err)
	}
	if err := fitbin.ValidateCRC(data); err != nil {
		return fmt.Errorf("capture failed CRC check: %w", err)
	}

	if err := os.WriteFile(captureOut, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (protocol %d.%d, %d data bytes)\n",
		captureOut, hdr.ProtocolVersion>>4, hdr.ProtocolVersion&0x0F, hdr.DataSize)
	return nil
}
