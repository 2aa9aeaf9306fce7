// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mara Veldt, Veloforge

package fitdecode

import (
	"fmt"
	"strings"
	"time"

	"github.com/veloforge/fitwire/pkg/fitbin"
)

// FormatHeader renders a parsed file header on one line.
func FormatHeader(h *fitbin.FileHeader) string {
	crc := "none"
	if h.HasCRC() {
		crc = fmt.Sprintf("0x%04X", h.CRC)
	}
	return fmt.Sprintf("header: size=%d protocol=%d.%d profile=%d data_size=%d crc=%s",
		h.Size, h.ProtocolVersion>>4, h.ProtocolVersion&0x0F, h.ProfileVersion, h.DataSize, crc)
}

// FormatMessage renders a decoded message with one indented line per
// field.
func FormatMessage(m *DecodedMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d fields)\n", m.Name, m.NumFields())
	for _, name := range m.FieldNames() {
		f, _ := m.Field(name)
		fmt.Fprintf(&b, "  %s: %s", name, FormatValue(f.Value))
		if f.Units != "" {
			fmt.Fprintf(&b, " [%s]", f.Units)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatValue renders a decoded value: nils as "--", timestamps in
// RFC 3339, floats trimmed, byte payloads as hex.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "--"
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return trimFloat(x)
	case string:
		return x
	case []byte:
		return fmt.Sprintf("% X", x)
	case []interface{}:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// trimFloat drops trailing zeros so scaled integers print cleanly.
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.6f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
