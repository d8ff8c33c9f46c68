package dmem

import (
	"fmt"
	"strconv"
	"strings"
)

// FromBinaryString parses a DM image: each line is 64 ASCII '0'/'1'
// characters, most-significant-bit first, grouped into 8 bytes in MSB-first
// order within the line. Spaces are ignored.
func FromBinaryString(s string) (*DataMemory, error) {
	var data []byte
	for _, rawLine := range strings.Split(s, "\n") {
		line := strings.ReplaceAll(rawLine, " ", "")
		if line == "" {
			continue
		}
		if len(line) != 64 {
			return nil, fmt.Errorf("dmem: expected a 64-character line, got length %d", len(line))
		}
		for chunk := 0; chunk < 8; chunk++ {
			start := chunk * 8
			v, err := strconv.ParseUint(line[start:start+8], 2, 8)
			if err != nil {
				return nil, fmt.Errorf("dmem: invalid binary chunk %q: %w", line[start:start+8], err)
			}
			data = append(data, byte(v))
		}
	}
	return &DataMemory{Data: data}, nil
}

// ToBinaryString renders the DM image back to the line format FromBinaryString
// accepts. The buffer length must be a multiple of 8.
func (m *DataMemory) ToBinaryString() (string, error) {
	if len(m.Data)%8 != 0 {
		return "", fmt.Errorf("dmem: data memory length %d is not a multiple of 8", len(m.Data))
	}
	var b strings.Builder
	for i := 0; i < len(m.Data); i += 8 {
		for j := 0; j < 8; j++ {
			fmt.Fprintf(&b, "%08b", m.Data[i+j])
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Dump renders the memory as a readable hex table, 32 bytes per line,
// grouped in blocks of 8.
func (m *DataMemory) Dump() string {
	var b strings.Builder
	for i := 0; i < len(m.Data); i += 32 {
		if i > 0 {
			b.WriteByte('\n')
		}
		end := i + 32
		if end > len(m.Data) {
			end = len(m.Data)
		}
		chunk := m.Data[i:end]
		for j := 0; j < len(chunk); j += 8 {
			if j > 0 {
				b.WriteString(" | ")
			}
			blockEnd := j + 8
			if blockEnd > len(chunk) {
				blockEnd = len(chunk)
			}
			for k, v := range chunk[j:blockEnd] {
				if k > 0 {
					b.WriteByte(' ')
				}
				fmt.Fprintf(&b, "%02x", v)
			}
		}
	}
	return b.String()
}
