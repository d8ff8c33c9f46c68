package asmload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/pace-sim/isa"
)

// ParseProgramMnemonic parses the per-cycle instruction-per-line PE assembly
// grammar: one isa.Configuration per non-blank, non-comment line.
//
//	OPCODE [#immediate] [RES] [; sink=Source ... ] [; bypass=N,E] [; latch=S]
//
// OPCODE is an isa.Opcode mnemonic (ADD, LOAD, JUMP, ...). For JUMP the
// operands are positional: "JUMP loopStart loopEnd". For ALU and memory
// opcodes, "#N" sets an immediate and "RES" sets update_res (ALU only).
// Everything after the first ';' configures the router for that cycle: sink
// clauses name one of the seven RouterSwitchConfig fields (predicate,
// alu_op1, alu_op2, north_out, south_out, west_out, east_out) and a source
// mnemonic (ALUOut, ALURes, NorthIn, SouthIn, WestIn, EastIn, Open);
// unmentioned sinks default to Open. "bypass=" and "latch=" each take a
// comma-separated list of N/S/W/E marking directions whose
// input_register_used / input_register_write bit is set.
func ParseProgramMnemonic(text string) (isa.Program, error) {
	var prog isa.Program
	for lineNo, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cfg, err := parseConfigurationLine(line)
		if err != nil {
			return isa.Program{}, fmt.Errorf("asmload: line %d: %w", lineNo+1, err)
		}
		prog.Configurations = append(prog.Configurations, cfg)
	}
	return prog, nil
}

func parseConfigurationLine(line string) (isa.Configuration, error) {
	body, routerClause, _ := strings.Cut(line, ";")
	fields := strings.Fields(strings.TrimSpace(body))
	if len(fields) == 0 {
		return isa.Configuration{}, fmt.Errorf("empty instruction")
	}

	opcode, err := isa.OpcodeFromName(fields[0])
	if err != nil {
		return isa.Configuration{}, err
	}

	op := isa.Operation{Opcode: opcode}
	if opcode == isa.JUMP {
		if len(fields) != 3 {
			return isa.Configuration{}, fmt.Errorf("JUMP requires loopStart and loopEnd operands, got %q", line)
		}
		start, err := strconv.ParseUint(fields[1], 10, 8)
		if err != nil {
			return isa.Configuration{}, fmt.Errorf("invalid loopStart %q: %w", fields[1], err)
		}
		end, err := strconv.ParseUint(fields[2], 10, 8)
		if err != nil {
			return isa.Configuration{}, fmt.Errorf("invalid loopEnd %q: %w", fields[2], err)
		}
		op.HasLoop = true
		op.LoopStart, op.LoopEnd = uint8(start), uint8(end)
	} else {
		for _, tok := range fields[1:] {
			switch {
			case tok == "RES":
				op.UpdateRes = true
			case strings.HasPrefix(tok, "#"):
				imm, err := strconv.ParseUint(tok[1:], 10, 16)
				if err != nil {
					return isa.Configuration{}, fmt.Errorf("invalid immediate %q: %w", tok, err)
				}
				op.HasImm = true
				op.Immediate = uint16(imm)
			default:
				return isa.Configuration{}, fmt.Errorf("unrecognized operand %q in %q", tok, line)
			}
		}
	}

	router, err := parseRouterClause(strings.TrimSpace(routerClause))
	if err != nil {
		return isa.Configuration{}, fmt.Errorf("%q: %w", line, err)
	}

	return isa.Configuration{Operation: op, RouterConfig: router}, nil
}

var sinkSetters = map[string]func(*isa.RouterSwitchConfig, isa.RouterInDir){
	"predicate": func(c *isa.RouterSwitchConfig, d isa.RouterInDir) { c.Predicate = d },
	"alu_op1":   func(c *isa.RouterSwitchConfig, d isa.RouterInDir) { c.ALUOp1 = d },
	"alu_op2":   func(c *isa.RouterSwitchConfig, d isa.RouterInDir) { c.ALUOp2 = d },
	"north_out": func(c *isa.RouterSwitchConfig, d isa.RouterInDir) { c.NorthOut = d },
	"south_out": func(c *isa.RouterSwitchConfig, d isa.RouterInDir) { c.SouthOut = d },
	"west_out":  func(c *isa.RouterSwitchConfig, d isa.RouterInDir) { c.WestOut = d },
	"east_out":  func(c *isa.RouterSwitchConfig, d isa.RouterInDir) { c.EastOut = d },
}

func parseRouterClause(clause string) (isa.RouterConfig, error) {
	rc := isa.RouterConfig{SwitchConfig: isa.NewRouterSwitchConfig()}
	if clause == "" {
		return rc, nil
	}
	for _, field := range strings.Fields(strings.ReplaceAll(clause, ";", " ")) {
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			return isa.RouterConfig{}, fmt.Errorf("malformed router clause %q", field)
		}
		switch key {
		case "bypass":
			dirs, err := parseDirections(val)
			if err != nil {
				return isa.RouterConfig{}, err
			}
			rc.InputRegisterUsed = dirs
		case "latch":
			dirs, err := parseDirections(val)
			if err != nil {
				return isa.RouterConfig{}, err
			}
			rc.InputRegisterWrite = dirs
		default:
			setter, ok := sinkSetters[key]
			if !ok {
				return isa.RouterConfig{}, fmt.Errorf("unknown router field %q", key)
			}
			dir, err := isa.RouterInDirFromName(val)
			if err != nil {
				return isa.RouterConfig{}, err
			}
			setter(&rc.SwitchConfig, dir)
		}
	}
	return rc, nil
}

func parseDirections(val string) (isa.DirectionsOpt, error) {
	var d isa.DirectionsOpt
	if val == "" {
		return d, nil
	}
	for _, tok := range strings.Split(val, ",") {
		switch strings.ToUpper(strings.TrimSpace(tok)) {
		case "N":
			d.North = true
		case "S":
			d.South = true
		case "W":
			d.West = true
		case "E":
			d.East = true
		default:
			return isa.DirectionsOpt{}, fmt.Errorf("unknown direction %q", tok)
		}
	}
	return d, nil
}
