package agu

import (
	"fmt"

	"github.com/sarchlab/pace-sim/dmem"
	"github.com/sarchlab/pace-sim/isa"
)

// AGU is a small sequencer that drives a data memory port's address and mode
// once per cycle, optionally auto-incrementing the address and signaling
// termination after a fixed number of passes over its control memory.
type AGU struct {
	PC       uint32
	CM       []Instruction
	ARF      []uint16
	Count    uint32
	MaxCount uint32
}

// New constructs an AGU from a control memory and matching address register
// file. len(arf) must equal len(cm).
func New(cm []Instruction, arf []uint16, maxCount uint32) (*AGU, error) {
	if len(cm) != len(arf) {
		return nil, fmt.Errorf("agu: control memory length %d does not match arf length %d", len(cm), len(arf))
	}
	return &AGU{CM: cm, ARF: arf, MaxCount: maxCount}, nil
}

// UpdateInterface drives the paired DM port for this cycle from cm[pc],
// overriding any address the PE itself set, and applies the STRIDED
// auto-increment to arf[pc].
func (a *AGU) UpdateInterface(port *dmem.Port) {
	inst := a.CM[a.PC]
	port.Drive(isa.MemDrive{
		Mode: inst.Mode(),
		Addr: uint64(a.ARF[a.PC]),
	})
	if inst.InstMode == Strided {
		a.ARF[a.PC] += uint16(inst.Stride)
	}
}

// Next advances the AGU's program counter. It returns isa.ErrSimulationEnd
// once the control memory has been traversed MaxCount times.
func (a *AGU) Next() error {
	if int(a.PC) == len(a.CM)-1 {
		a.PC = 0
		a.Count++
		if a.Count >= a.MaxCount {
			return isa.ErrSimulationEnd
		}
		return nil
	}
	a.PC++
	return nil
}
