// Package pe implements the four-phase per-cycle execution engine of one
// processing element: combinational ALU, memory interface, router outputs,
// and register latch.
package pe

import (
	"fmt"

	"github.com/sarchlab/pace-sim/dmem"
	"github.com/sarchlab/pace-sim/isa"
)

// PE is one processing element of the array: its register file, transient
// signal wires, program counter, local program, and (for edge PEs) whether
// its previous cycle issued a load.
type PE struct {
	Regs    isa.PERegisters
	Signals isa.PESignals
	PC      int
	Program isa.Program

	// IsMemPE is true for PEs on the left/right edge of the array that are
	// wired to a DataMemory port.
	IsMemPE          bool
	PreviousOpIsLoad bool
}

// New constructs a non-memory PE with the given program.
func New(program isa.Program) *PE {
	return &PE{Program: program}
}

// NewMemPE constructs an edge PE wired to a DataMemory port.
func NewMemPE(program isa.Program) *PE {
	return &PE{Program: program, IsMemPE: true}
}

func (p *PE) currentConfig() isa.Configuration {
	return p.Program.Configurations[p.PC]
}

// PEError wraps a phase failure with the coordinates of the offending PE.
type PEError struct {
	X, Y   int
	Reason error
}

func (e *PEError) Error() string {
	return fmt.Sprintf("pe (%d,%d): %v", e.X, e.Y, e.Reason)
}

func (e *PEError) Unwrap() error { return e.Reason }

// UpdateALUOut runs phase 1: if the current configuration's operation is an
// ALU opcode, evaluate it and assign wire_alu_out. An opcode with no
// execution semantics fails with isa.UnimplementedError.
func (p *PE) UpdateALUOut() error {
	op := p.currentConfig().Operation
	if err := op.CheckUnimplemented(); err != nil {
		return err
	}
	if err := op.ExecuteALU(&p.Regs, &p.Signals); err != nil {
		return err
	}
	return nil
}

// UpdateMem runs phase 2 for a memory PE: it drives {mode, addr, data} onto
// port from the current operation, then, if the previous cycle issued a
// load, overrides wire_alu_out with the value port captured last cycle. It
// is a no-op for non-memory PEs.
func (p *PE) UpdateMem(port *dmem.Port) error {
	if !p.IsMemPE {
		return nil
	}

	op := p.currentConfig().Operation
	drive, err := op.MemEffect(&p.Regs)
	if err != nil {
		return err
	}
	port.Drive(drive)

	if p.PreviousOpIsLoad {
		if op.Opcode.IsALU() {
			return fmt.Errorf("pe: memory PE's ALU op conflicts with pending load result on wire_alu_out")
		}
		p.Signals.WireALUOut = port.RegDmemData
	}
	return nil
}

func (p *PE) resolveSource(src isa.RouterInDir, router isa.RouterConfig) (uint64, bool) {
	switch src {
	case isa.ALUOut:
		return p.Signals.WireALUOut, true
	case isa.ALURes:
		return p.Regs.RegRes, true
	case isa.Open:
		return 0, false
	default:
		dir := directionalOutFor(src)
		if router.InputRegisterUsed.Get(dir) {
			return p.Signals.InWire(dir)
		}
		return p.Regs.InDirValue(dir), true
	}
}

// directionalOutFor maps a directional RouterInDir (NorthIn/SouthIn/WestIn/
// EastIn) to the RouterOutDir used to index registers and wires.
func directionalOutFor(src isa.RouterInDir) isa.RouterOutDir {
	switch src {
	case isa.NorthIn:
		return isa.NorthOut
	case isa.SouthIn:
		return isa.SouthOut
	case isa.WestIn:
		return isa.WestOut
	case isa.EastIn:
		return isa.EastOut
	default:
		panic(fmt.Sprintf("pe: %v is not a directional router source", src))
	}
}

// UpdateRouterOutput runs phase 3: set each of the four output wires from
// its configured source (Open leaves the wire unset).
func (p *PE) UpdateRouterOutput() {
	router := p.currentConfig().RouterConfig
	for _, dir := range isa.OutputDirections() {
		src := router.SwitchConfig.Sink(dir)
		if v, ok := p.resolveSource(src, router); ok {
			val := v
			p.Signals.SetOutWire(dir, &val)
		} else {
			p.Signals.SetOutWire(dir, nil)
		}
	}
}

// SetInWire sets the incoming wire for a direction, as driven by the grid
// during router propagation. It does not recompute the output wires; the
// grid calls UpdateRouterOutput afterwards so a bypass chain continues
// within the same cycle.
func (p *PE) SetInWire(dir isa.RouterOutDir, v uint64) {
	p.Signals.SetInWire(dir, v)
}

// UpdateRegisters runs phase 4: latch reg_res, operand registers, and input
// registers, update previous-load tracking, and advance pc. It returns
// isa.ErrSimulationEnd when the program ends without looping.
func (p *PE) UpdateRegisters() error {
	config := p.currentConfig()
	op := config.Operation
	router := config.RouterConfig

	if op.UpdateRes {
		p.Regs.RegRes = p.Signals.WireALUOut
	}

	if v, ok := p.resolveSource(router.SwitchConfig.ALUOp1, router); ok {
		p.Regs.RegOp1 = v
	}
	if v, ok := p.resolveSource(router.SwitchConfig.ALUOp2, router); ok {
		p.Regs.RegOp2 = v
	}
	if v, ok := p.resolveSource(router.SwitchConfig.Predicate, router); ok {
		p.Regs.RegPredicate = v != 0
	}

	for _, dir := range isa.OutputDirections() {
		if !router.InputRegisterWrite.Get(dir) {
			continue
		}
		if v, ok := p.Signals.InWire(dir); ok {
			p.setInDirRegister(dir, v)
		}
	}

	if p.IsMemPE {
		p.PreviousOpIsLoad = op.Opcode.IsLoad()
	}

	nextPC, err := op.NextPC(p.PC, p.Program.Len())
	p.PC = nextPC
	return err
}

func (p *PE) setInDirRegister(dir isa.RouterOutDir, v uint64) {
	switch dir {
	case isa.NorthOut:
		p.Regs.RegNorthIn = v
	case isa.SouthOut:
		p.Regs.RegSouthIn = v
	case isa.WestOut:
		p.Regs.RegWestIn = v
	case isa.EastOut:
		p.Regs.RegEastIn = v
	}
}

// ResetSignals clears the transient wires at the start of a cycle.
func (p *PE) ResetSignals() {
	p.Signals.Reset()
}

// CloneSignals returns a copy of the PE's current signals, used by the grid
// to propagate a snapshot of a source PE's outputs without holding a
// long-lived reference to it.
func (p *PE) CloneSignals() isa.PESignals {
	return p.Signals
}
