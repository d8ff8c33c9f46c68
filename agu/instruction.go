// Package agu implements the address generation unit that drives a data
// memory port's address and mode on the array's edges.
package agu

import (
	"fmt"

	"github.com/sarchlab/pace-sim/isa"
)

// InstType selects whether an AGU instruction issues a load or a store.
type InstType int

const (
	InstLoad InstType = iota
	InstStore
)

// InstMode selects whether the AGU's address register auto-increments by
// Stride after issuing (Strided) or stays fixed (Const).
type InstMode int

const (
	Strided InstMode = iota
	Const
)

// DataWidth selects the width of the memory access an instruction issues.
type DataWidth int

const (
	B8 DataWidth = iota
	B16
	B64
)

// Instruction is one entry of an AGU's control memory: a one-byte encoded
// directive for the paired DM port.
type Instruction struct {
	InstType  InstType
	InstMode  InstMode
	DataWidth DataWidth
	Stride    uint8
}

// Mode returns the DMemMode this instruction drives for the given InstType
// and DataWidth combination.
func (i Instruction) Mode() isa.DMemMode {
	switch i.InstType {
	case InstLoad:
		switch i.DataWidth {
		case B8:
			return isa.Read8
		case B16:
			return isa.Read16
		default:
			return isa.Read64
		}
	default:
		switch i.DataWidth {
		case B8:
			return isa.Write8
		case B16:
			return isa.Write16
		default:
			return isa.Write64
		}
	}
}

// ToByte encodes the instruction to its one-byte wire representation:
// bit0=inst_type, bit1=inst_mode, bits2-3=data_width, bits4-7=stride.
func (i Instruction) ToByte() byte {
	var b byte
	if i.InstType == InstStore {
		b |= 1 << 0
	}
	if i.InstMode == Const {
		b |= 1 << 1
	}
	b |= byte(i.DataWidth&0b11) << 2
	b |= (i.Stride & 0xF) << 4
	return b
}

// InstructionFromByte decodes the one-byte wire representation produced by
// ToByte.
func InstructionFromByte(b byte) (Instruction, error) {
	width := DataWidth((b >> 2) & 0b11)
	if width > B64 {
		return Instruction{}, fmt.Errorf("agu: invalid data width code %d", width)
	}
	instType := InstLoad
	if b&(1<<0) != 0 {
		instType = InstStore
	}
	instMode := Strided
	if b&(1<<1) != 0 {
		instMode = Const
	}
	return Instruction{
		InstType:  instType,
		InstMode:  instMode,
		DataWidth: width,
		Stride:    (b >> 4) & 0xF,
	}, nil
}
