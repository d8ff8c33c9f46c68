package agu

import (
	"fmt"
	"strconv"
	"strings"
)

// Program is a fully parsed AGU control memory plus its initial address
// register file and termination count, as produced by ParseMnemonic.
type Program struct {
	CM       []Instruction
	ARF      []uint16
	MaxCount uint32
}

var instTypeTokens = map[string]InstType{
	"LOAD":  InstLoad,
	"STORE": InstStore,
}

var instModeTokens = map[string]InstMode{
	"STRIDED": Strided,
	"CONST":   Const,
}

var dataWidthTokens = map[string]DataWidth{
	"B8":  B8,
	"B16": B16,
	"B64": B64,
}

// ParseMnemonic parses the text AGU program format:
//
//	CM:
//	LOAD,STRIDED,B16,1
//	LOAD,CONST,B64,0
//	ARF:
//	0,10
//	MAX COUNT:
//	5
//
// Blank lines are ignored. len(ARF) must equal len(CM).
func ParseMnemonic(text string) (Program, error) {
	const (
		sectionNone = iota
		sectionCM
		sectionARF
		sectionMaxCount
	)

	section := sectionNone
	var prog Program

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		switch line {
		case "CM:":
			section = sectionCM
			continue
		case "ARF:":
			section = sectionARF
			continue
		case "MAX COUNT:":
			section = sectionMaxCount
			continue
		}

		switch section {
		case sectionCM:
			inst, err := parseInstructionMnemonic(line)
			if err != nil {
				return Program{}, err
			}
			prog.CM = append(prog.CM, inst)
		case sectionARF:
			for _, tok := range strings.Split(line, ",") {
				tok = strings.TrimSpace(tok)
				if tok == "" {
					continue
				}
				v, err := strconv.ParseUint(tok, 10, 16)
				if err != nil {
					return Program{}, fmt.Errorf("agu: invalid ARF entry %q: %w", tok, err)
				}
				prog.ARF = append(prog.ARF, uint16(v))
			}
		case sectionMaxCount:
			v, err := strconv.ParseUint(line, 10, 32)
			if err != nil {
				return Program{}, fmt.Errorf("agu: invalid MAX COUNT value %q: %w", line, err)
			}
			prog.MaxCount = uint32(v)
		default:
			return Program{}, fmt.Errorf("agu: mnemonic line %q precedes any section header", line)
		}
	}

	if len(prog.CM) != len(prog.ARF) {
		return Program{}, fmt.Errorf("agu: cm has %d instructions but arf has %d entries", len(prog.CM), len(prog.ARF))
	}
	return prog, nil
}

func parseInstructionMnemonic(line string) (Instruction, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 4 {
		return Instruction{}, fmt.Errorf("agu: instruction %q must have 4 comma-separated fields", line)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	instType, ok := instTypeTokens[fields[0]]
	if !ok {
		return Instruction{}, fmt.Errorf("agu: unknown instruction type %q", fields[0])
	}
	instMode, ok := instModeTokens[fields[1]]
	if !ok {
		return Instruction{}, fmt.Errorf("agu: unknown instruction mode %q", fields[1])
	}
	width, ok := dataWidthTokens[fields[2]]
	if !ok {
		return Instruction{}, fmt.Errorf("agu: unknown data width %q", fields[2])
	}
	stride, err := strconv.ParseUint(fields[3], 10, 8)
	if err != nil {
		return Instruction{}, fmt.Errorf("agu: invalid stride %q: %w", fields[3], err)
	}

	return Instruction{
		InstType:  instType,
		InstMode:  instMode,
		DataWidth: width,
		Stride:    uint8(stride),
	}, nil
}
