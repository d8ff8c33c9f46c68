package grid_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pace-sim/agu"
	"github.com/sarchlab/pace-sim/dmem"
	"github.com/sarchlab/pace-sim/grid"
	"github.com/sarchlab/pace-sim/isa"
	"github.com/sarchlab/pace-sim/pe"
)

func nopProgram(n int) isa.Program {
	configs := make([]isa.Configuration, n)
	for i := range configs {
		configs[i] = isa.Configuration{
			Operation:    isa.Operation{Opcode: isa.NOP},
			RouterConfig: isa.RouterConfig{SwitchConfig: isa.NewRouterSwitchConfig()},
		}
	}
	return isa.Program{Configurations: configs}
}

var _ = Describe("Grid", func() {
	Context("single-PE scalar add through a memory edge", func() {
		It("loads two operands, adds them, and stores the result", func() {
			// PE (0,0) runs: LOAD 0x10 -> LOAD 0x20 (latching the first
			// load's override into reg_op1) -> NOP (latching the second
			// load's override into reg_op2) -> ADD! (copying reg_res into
			// reg_op2, since STORE always reads reg_op2) -> STORE 0x30.
			// The second LOAD's result only becomes visible as a
			// wire_alu_out override on the cycle after it issues, and an
			// ALU opcode may not run on a cycle where that override is
			// pending, so an extra latching cycle separates the second
			// LOAD from the ADD.
			loadOp1 := isa.Configuration{
				Operation:    isa.Operation{Opcode: isa.LOAD, Immediate: 0x10, HasImm: true},
				RouterConfig: isa.RouterConfig{SwitchConfig: isa.NewRouterSwitchConfig()},
			}
			loadOp2 := isa.Configuration{
				Operation: isa.Operation{Opcode: isa.LOAD, Immediate: 0x20, HasImm: true},
				RouterConfig: func() isa.RouterConfig {
					sw := isa.NewRouterSwitchConfig()
					sw.ALUOp1 = isa.ALUOut
					return isa.RouterConfig{SwitchConfig: sw}
				}(),
			}
			latchOp2 := isa.Configuration{
				Operation: isa.Operation{Opcode: isa.NOP},
				RouterConfig: func() isa.RouterConfig {
					sw := isa.NewRouterSwitchConfig()
					sw.ALUOp2 = isa.ALUOut
					return isa.RouterConfig{SwitchConfig: sw}
				}(),
			}
			add := isa.Configuration{
				Operation: isa.Operation{Opcode: isa.ADD, UpdateRes: true},
				RouterConfig: func() isa.RouterConfig {
					sw := isa.NewRouterSwitchConfig()
					sw.ALUOp2 = isa.ALURes
					return isa.RouterConfig{SwitchConfig: sw}
				}(),
			}
			store := isa.Configuration{
				Operation:    isa.Operation{Opcode: isa.STORE, Immediate: 0x30, HasImm: true},
				RouterConfig: isa.RouterConfig{SwitchConfig: isa.NewRouterSwitchConfig()},
			}
			activeProgram := isa.Program{Configurations: []isa.Configuration{loadOp1, loadOp2, latchOp2, add, store}}

			g := grid.New(2, 2, nil)
			g.PEs[0][0] = pe.NewMemPE(activeProgram)
			g.PEs[0][1] = pe.NewMemPE(nopProgram(5))
			g.PEs[1][0] = pe.NewMemPE(nopProgram(5))
			g.PEs[1][1] = pe.NewMemPE(nopProgram(5))

			dmLeft := dmem.New(256)
			dmLeft.Data[0x10] = 0x11
			dmLeft.Data[0x20] = 0x22
			g.DMems[0] = []*dmem.DataMemory{dmLeft}
			g.DMems[1] = []*dmem.DataMemory{dmem.New(256)}

			err := g.Simulate(5)
			Expect(errors.Is(err, isa.ErrSimulationEnd)).To(BeTrue())
			Expect(dmLeft.Data[0x30]).To(Equal(byte(0x33)))
		})
	})

	Context("bypass propagation through a three-PE chain", func() {
		It("delivers a source PE's register value to the far PE's input wire within one cycle", func() {
			g := grid.New(3, 2, nil)

			sourceRouter := isa.RouterConfig{SwitchConfig: isa.NewRouterSwitchConfig()}
			sourceRouter.SwitchConfig.WestOut = isa.ALURes
			source := pe.NewMemPE(isa.Program{Configurations: []isa.Configuration{{
				Operation:    isa.Operation{Opcode: isa.NOP},
				RouterConfig: sourceRouter,
			}}})
			source.Regs.RegRes = 0x1234

			middleRouter := isa.RouterConfig{SwitchConfig: isa.NewRouterSwitchConfig()}
			middleRouter.SwitchConfig.WestOut = isa.EastIn
			middleRouter.InputRegisterUsed.East = true
			middle := pe.New(isa.Program{Configurations: []isa.Configuration{{
				Operation:    isa.Operation{Opcode: isa.NOP},
				RouterConfig: middleRouter,
			}}})

			west := pe.NewMemPE(isa.Program{Configurations: []isa.Configuration{{
				Operation:    isa.Operation{Opcode: isa.NOP},
				RouterConfig: isa.RouterConfig{SwitchConfig: isa.NewRouterSwitchConfig()},
			}}})

			g.PEs[0][0] = west
			g.PEs[0][1] = middle
			g.PEs[0][2] = source
			g.PEs[1][0] = pe.NewMemPE(nopProgram(1))
			g.PEs[1][1] = pe.New(nopProgram(1))
			g.PEs[1][2] = pe.NewMemPE(nopProgram(1))

			g.DMems[0] = []*dmem.DataMemory{dmem.New(16)}
			g.DMems[1] = []*dmem.DataMemory{dmem.New(16)}

			err := g.SimulateCycle()
			Expect(errors.Is(err, isa.ErrSimulationEnd)).To(BeTrue())

			v, ok := west.Signals.InWire(isa.EastOut)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(uint64(0x1234)))
		})
	})

	Context("IsAGUEnabled", func() {
		It("reports false for a grid with no AGU programs", func() {
			g := grid.New(2, 2, nil)
			Expect(g.IsAGUEnabled(0)).To(BeFalse())
			Expect(g.IsAGUEnabled(1)).To(BeFalse())
		})
	})

	Context("edge memory pass with an AGU driving the address", func() {
		It("lets the AGU override the PE's address and auto-increments it", func() {
			g := grid.New(2, 2, nil)

			openRouter := func() isa.RouterConfig {
				return isa.RouterConfig{SwitchConfig: isa.NewRouterSwitchConfig()}
			}
			loadProgram := isa.Program{Configurations: []isa.Configuration{
				{Operation: isa.Operation{Opcode: isa.LOAD, Immediate: 0x00, HasImm: true}, RouterConfig: openRouter()},
				{Operation: isa.Operation{Opcode: isa.LOAD, Immediate: 0x00, HasImm: true}, RouterConfig: openRouter()},
			}}
			g.PEs[0][0] = pe.NewMemPE(loadProgram)
			g.PEs[0][1] = pe.NewMemPE(nopProgram(2))
			g.PEs[1][0] = pe.NewMemPE(nopProgram(2))
			g.PEs[1][1] = pe.NewMemPE(nopProgram(2))

			dmLeft := dmem.New(256)
			dmLeft.Data[0x10] = 0x7
			dmLeft.Data[0x20] = 0x9
			g.DMems[0] = []*dmem.DataMemory{dmLeft}
			g.DMems[1] = []*dmem.DataMemory{dmem.New(256)}

			a, err := agu.New(
				[]agu.Instruction{{InstType: agu.InstLoad, InstMode: agu.Strided, DataWidth: agu.B64, Stride: 0x10}},
				[]uint16{0x10},
				10,
			)
			Expect(err).NotTo(HaveOccurred())
			idleAGU, err := agu.New(
				[]agu.Instruction{{InstType: agu.InstLoad, InstMode: agu.Const, DataWidth: agu.B64}},
				[]uint16{0x00},
				10,
			)
			Expect(err).NotTo(HaveOccurred())
			g.AGUs[0] = []*agu.AGU{a, idleAGU}
			Expect(g.IsAGUEnabled(0)).To(BeTrue())

			Expect(g.SimulateCycle()).NotTo(HaveOccurred())
			Expect(g.PEs[0][0].Signals.WireALUOut).To(Equal(uint64(0)))

			Expect(g.SimulateCycle()).To(HaveOccurred())
			Expect(g.PEs[0][0].Signals.WireALUOut).To(Equal(uint64(0x7)))
			// The strided AGU advanced its address from 0x10 to 0x20.
			Expect(dmLeft.Port1.RegDmemData).To(Equal(uint64(0x9)))
		})
	})
})
