// Package isa defines the instruction set architecture of a PACE processing
// element: opcodes, operations, router configuration, and the bit-exact
// 64-bit configuration word codec.
package isa

import "fmt"

// Opcode identifies the operation a PE's ALU, router, or memory interface
// performs during one cycle.
type Opcode int

const (
	NOP Opcode = iota
	ADD
	SUB
	MULT
	SEXT
	DIV
	VADD
	VMUL
	LS
	RS
	ASR
	AND
	OR
	XOR
	LOADD
	STORED
	SEL
	CMERGE
	CMP
	CLT
	BR
	CGT
	MOVCL
	LOAD
	LOADB
	STORE
	STOREB
	JUMP
	MOVC
)

// opcodeCodes maps each opcode to its 5-bit wire encoding. The numbering is
// not contiguous: several codes are reserved and never assigned to an
// opcode.
var opcodeCodes = map[Opcode]uint8{
	NOP:    0,
	ADD:    1,
	SUB:    2,
	MULT:   3,
	SEXT:   4,
	DIV:    5,
	VADD:   6,
	VMUL:   7,
	LS:     8,
	RS:     9,
	ASR:    10,
	AND:    11,
	OR:     12,
	XOR:    13,
	LOADD:  14,
	STORED: 15,
	SEL:    16,
	CMERGE: 17,
	CMP:    18,
	CLT:    19,
	BR:     20,
	CGT:    21,
	MOVCL:  23,
	LOAD:   24,
	LOADB:  26,
	STORE:  27,
	STOREB: 29,
	JUMP:   30,
	MOVC:   31,
}

var codeToOpcode = func() map[uint8]Opcode {
	m := make(map[uint8]Opcode, len(opcodeCodes))
	for op, code := range opcodeCodes {
		m[code] = op
	}
	return m
}()

var opcodeNames = map[Opcode]string{
	NOP: "NOP", ADD: "ADD", SUB: "SUB", MULT: "MULT", SEXT: "SEXT", DIV: "DIV",
	VADD: "VADD", VMUL: "VMUL", LS: "LS", RS: "RS", ASR: "ASR", AND: "AND",
	OR: "OR", XOR: "XOR", LOADD: "LOADD", STORED: "STORED", SEL: "SEL",
	CMERGE: "CMERGE", CMP: "CMP", CLT: "CLT", BR: "BR", CGT: "CGT",
	MOVCL: "MOVCL", LOAD: "LOAD", LOADB: "LOADB", STORE: "STORE",
	STOREB: "STOREB", JUMP: "JUMP", MOVC: "MOVC",
}

// String implements fmt.Stringer.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", int(o))
}

// Code returns the 5-bit wire encoding for the opcode.
func (o Opcode) Code() (uint8, error) {
	code, ok := opcodeCodes[o]
	if !ok {
		return 0, fmt.Errorf("isa: opcode %v has no wire encoding", o)
	}
	return code, nil
}

// OpcodeFromCode decodes a 5-bit wire encoding into an Opcode.
func OpcodeFromCode(code uint8) (Opcode, error) {
	op, ok := codeToOpcode[code]
	if !ok {
		return 0, &InvalidEncodingError{Reason: fmt.Sprintf("opcode code %d is not assigned", code)}
	}
	return op, nil
}

var nameToOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		m[name] = op
	}
	return m
}()

// OpcodeFromName looks up an opcode by its mnemonic name, e.g. "ADD" or
// "JUMP". Used by assembly-style program loaders.
func OpcodeFromName(name string) (Opcode, error) {
	op, ok := nameToOpcode[name]
	if !ok {
		return 0, fmt.Errorf("isa: unknown opcode mnemonic %q", name)
	}
	return op, nil
}

// IsALU reports whether the opcode is an arithmetic/logic opcode that
// produces wire_alu_out combinationally.
func (o Opcode) IsALU() bool {
	switch o {
	case ADD, SUB, MULT, DIV, LS, RS, ASR, AND, OR, XOR:
		return true
	}
	return false
}

// IsMemory reports whether the opcode drives a DMemPort.
func (o Opcode) IsMemory() bool {
	switch o {
	case LOAD, LOADB, LOADD, STORE, STOREB, STORED:
		return true
	}
	return false
}

// IsLoad reports whether the opcode is a load variant.
func (o Opcode) IsLoad() bool {
	switch o {
	case LOAD, LOADB, LOADD:
		return true
	}
	return false
}

// IsStore reports whether the opcode is a store variant.
func (o Opcode) IsStore() bool {
	switch o {
	case STORE, STOREB, STORED:
		return true
	}
	return false
}

// IsUnimplemented reports whether the opcode has no execution semantics in
// this simulator; encountering it at runtime is an Unimplemented error.
func (o Opcode) IsUnimplemented() bool {
	switch o {
	case SEL, CMERGE, CMP, CLT, CGT, MOVC, MOVCL, SEXT, VADD, VMUL, BR:
		return true
	}
	return false
}
