package pe

import (
	"errors"
	"testing"

	"github.com/sarchlab/pace-sim/isa"
)

func addConfig(imm uint16, updateRes bool) isa.Configuration {
	return isa.Configuration{
		Operation: isa.Operation{Opcode: isa.ADD, Immediate: imm, HasImm: true, UpdateRes: updateRes},
		RouterConfig: isa.RouterConfig{
			SwitchConfig: isa.NewRouterSwitchConfig(),
		},
	}
}

func TestUpdateALUOutAdd(t *testing.T) {
	p := New(isa.Program{Configurations: []isa.Configuration{addConfig(5, true)}})
	p.Regs.RegOp1 = 10

	if err := p.UpdateALUOut(); err != nil {
		t.Fatalf("UpdateALUOut: %v", err)
	}
	if p.Signals.WireALUOut != 15 {
		t.Fatalf("wire_alu_out = %d, want 15", p.Signals.WireALUOut)
	}

	// The program has a single configuration, so latching it ends the program.
	if err := p.UpdateRegisters(); !errors.Is(err, isa.ErrSimulationEnd) {
		t.Fatalf("UpdateRegisters: got %v, want isa.ErrSimulationEnd", err)
	}
	if p.Regs.RegRes != 15 {
		t.Fatalf("reg_res = %d, want 15", p.Regs.RegRes)
	}
}

func TestUpdateRegistersAdvancesPC(t *testing.T) {
	p := New(isa.Program{Configurations: []isa.Configuration{addConfig(1, false), addConfig(2, false)}})
	if err := p.UpdateRegisters(); err != nil {
		t.Fatalf("UpdateRegisters: %v", err)
	}
	if p.PC != 1 {
		t.Fatalf("pc = %d, want 1", p.PC)
	}
}

func TestJumpLoop(t *testing.T) {
	jump := isa.Operation{Opcode: isa.JUMP, LoopStart: 3, LoopEnd: 5, HasLoop: true}
	configs := make([]isa.Configuration, 6)
	for i := range configs {
		configs[i] = isa.Configuration{
			Operation:    jump,
			RouterConfig: isa.RouterConfig{SwitchConfig: isa.NewRouterSwitchConfig()},
		}
	}
	p := New(isa.Program{Configurations: configs})
	p.PC = 5
	if err := p.UpdateRegisters(); err != nil {
		t.Fatalf("UpdateRegisters: %v", err)
	}
	if p.PC != 3 {
		t.Fatalf("pc after loop-end = %d, want 3", p.PC)
	}
}
