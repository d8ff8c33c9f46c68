package isa

import (
	"encoding/binary"
	"fmt"
)

// DecodeProgramBytes decodes a binary program image: a sequence of 8-byte
// little-endian configuration words, one per cycle of the PE's local
// schedule.
func DecodeProgramBytes(data []byte) (Program, error) {
	if len(data)%8 != 0 {
		return Program{}, fmt.Errorf("isa: program image length %d is not a multiple of 8", len(data))
	}
	n := len(data) / 8
	configs := make([]Configuration, n)
	for i := 0; i < n; i++ {
		word := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		config, err := Decode(word)
		if err != nil {
			return Program{}, fmt.Errorf("isa: configuration %d: %w", i, err)
		}
		configs[i] = config
	}
	return Program{Configurations: configs}, nil
}

// EncodeProgramBytes packs a Program back into its binary image form.
func EncodeProgramBytes(p Program) ([]byte, error) {
	data := make([]byte, 8*len(p.Configurations))
	for i, config := range p.Configurations {
		word, err := config.Encode()
		if err != nil {
			return nil, fmt.Errorf("isa: configuration %d: %w", i, err)
		}
		binary.LittleEndian.PutUint64(data[i*8:i*8+8], word)
	}
	return data, nil
}
