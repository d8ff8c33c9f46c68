// Package grid implements the global per-cycle orchestration of the array:
// the ALU pass, the edge memory pass (with optional AGU), the multi-hop
// router propagation pass, and the register-latch pass.
package grid

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/pace-sim/agu"
	"github.com/sarchlab/pace-sim/dmem"
	"github.com/sarchlab/pace-sim/isa"
	"github.com/sarchlab/pace-sim/pe"
)

// edge identifies the left or right column of memory-attached PEs.
type edge int

const (
	left edge = iota
	right
)

func (e edge) String() string {
	if e == left {
		return "left"
	}
	return "right"
}

// PEIdx is a coordinate in the array, x=column, y=row.
type PEIdx struct {
	X, Y int
}

func (i PEIdx) neighbor(dir isa.RouterOutDir) PEIdx {
	switch dir {
	case isa.NorthOut:
		return PEIdx{X: i.X, Y: i.Y - 1}
	case isa.SouthOut:
		return PEIdx{X: i.X, Y: i.Y + 1}
	case isa.WestOut:
		return PEIdx{X: i.X - 1, Y: i.Y}
	case isa.EastOut:
		return PEIdx{X: i.X + 1, Y: i.Y}
	default:
		panic(fmt.Sprintf("grid: unknown direction %v", dir))
	}
}

// Grid owns the whole array: the 2-D mesh of PEs, the edge-attached data
// memories (one DataMemory shared by each pair of adjacent rows), and
// (optionally) the AGUs driving them.
type Grid struct {
	Width, Height int
	PEs           [][]*pe.PE // PEs[y][x]

	// DMems[left|right] holds one DataMemory per pair of adjacent rows:
	// even y uses Port1, odd y uses Port2 of DMems[e][y/2].
	DMems [2][]*dmem.DataMemory

	// AGUs[left|right] holds one AGU per row, present only when that edge
	// was loaded with AGU programs.
	AGUs [2][]*agu.AGU

	Logger *slog.Logger
}

// New constructs an empty grid of the given shape. Callers populate PEs,
// DMems, and AGUs directly or via LoadFromFolder.
func New(width, height int, logger *slog.Logger) *Grid {
	if logger == nil {
		logger = slog.Default()
	}
	pes := make([][]*pe.PE, height)
	for y := range pes {
		pes[y] = make([]*pe.PE, width)
	}
	return &Grid{Width: width, Height: height, PEs: pes, Logger: logger}
}

// IsAGUEnabled reports whether this grid was constructed with AGU programs
// on the given edge.
func (g *Grid) IsAGUEnabled(e edge) bool {
	return len(g.AGUs[e]) > 0
}

// Simulate runs up to cycles cycles, stopping early and returning
// isa.ErrSimulationEnd if the array or any AGU signals termination.
func (g *Grid) Simulate(cycles int) error {
	for c := 0; c < cycles; c++ {
		if err := g.SimulateCycle(); err != nil {
			return err
		}
	}
	return nil
}

// SimulateCycle runs the four barrier-separated phases of one cycle: ALU,
// edge memory (with AGU), router propagation, and register latch. Register
// latch also advances every PE's and AGU's program counter, so a single
// SimulateCycle call fully advances the array by one cycle.
func (g *Grid) SimulateCycle() error {
	g.Logger.Debug("cycle phase: ALU")
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := g.PEs[y][x]
			p.ResetSignals()
			if err := p.UpdateALUOut(); err != nil {
				return &pe.PEError{X: x, Y: y, Reason: err}
			}
		}
	}

	g.Logger.Debug("cycle phase: edge memory")
	if err := g.runEdgeMemoryPass(left, 0); err != nil {
		return err
	}
	if err := g.runEdgeMemoryPass(right, g.Width-1); err != nil {
		return err
	}

	g.Logger.Debug("cycle phase: router propagation")
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			idx := PEIdx{X: x, Y: y}
			p := g.PEs[y][x]
			router := p.Program.Configurations[p.PC].RouterConfig
			if !router.IsPathSource() {
				continue
			}
			p.UpdateRouterOutput()
			for _, dir := range router.OutputsFromRegister() {
				dst := idx.neighbor(dir)
				if dst.X < 0 || dst.X >= g.Width || dst.Y < 0 || dst.Y >= g.Height {
					return &pe.PEError{X: x, Y: y, Reason: fmt.Errorf("grid: edge PE cannot send out of the array (direction %v)", dir)}
				}
				if err := g.propagate(idx, dst, dir.OppositeSide()); err != nil {
					return err
				}
			}
		}
	}

	g.Logger.Debug("cycle phase: register latch")
	var simEnd error
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := g.PEs[y][x]
			if err := p.UpdateRegisters(); err != nil {
				if errors.Is(err, isa.ErrSimulationEnd) {
					simEnd = err
					continue
				}
				return &pe.PEError{X: x, Y: y, Reason: err}
			}
		}
	}

	for _, e := range []edge{left, right} {
		for y, a := range g.AGUs[e] {
			if err := a.Next(); err != nil {
				if errors.Is(err, isa.ErrSimulationEnd) {
					simEnd = err
					continue
				}
				return fmt.Errorf("grid: agu (%v, row %d): %w", e, y, err)
			}
		}
	}

	return simEnd
}

// runEdgeMemoryPass drives one cycle of the edge memory interface for every
// row on edge e at column col: the row's PE computes its own mode/address
// (overridden by the row's AGU when present), then the shared DataMemory
// performs the physical access for both rows sharing it.
func (g *Grid) runEdgeMemoryPass(e edge, col int) error {
	dms := g.DMems[e]
	aguEnabled := g.IsAGUEnabled(e)

	for y := 0; y < g.Height; y++ {
		p := g.PEs[y][col]
		dm := dms[y/2]
		port := &dm.Port1
		if y%2 != 0 {
			port = &dm.Port2
		}

		if err := p.UpdateMem(port); err != nil {
			return &pe.PEError{X: col, Y: y, Reason: err}
		}

		if aguEnabled {
			if port.HasAddr && port.Mode != isa.MemNOP {
				g.Logger.Warn("AGU and PE are both setting the address, ignoring the PE's address",
					"edge", e, "row", y)
			}
			g.AGUs[e][y].UpdateInterface(port)
		}
	}

	for i, dm := range dms {
		if err := dm.UpdateInterface(); err != nil {
			return fmt.Errorf("grid: dm%d (edge %v): %w", i, e, err)
		}
	}
	return nil
}

// propagate delivers the value the PE at src drove on the side facing dst
// onto dst's corresponding incoming wire, recomputes dst's own router
// outputs, and recurses along any of dst's outputs that are sourced (via
// bypass) from that same incoming direction. arrivingSide is the side of dst
// that receives the signal, e.g. if src sent on its EastOut, dst receives on
// its West side.
//
// Each (PE, arriving side) pair is visited at most once per cycle, since a
// PE's switch config binds each output to exactly one source: the recursion
// cannot revisit an edge already traversed this cycle, so it always
// terminates.
func (g *Grid) propagate(src, dst PEIdx, arrivingSide isa.RouterOutDir) error {
	srcPE := g.PEs[src.Y][src.X]
	dstPE := g.PEs[dst.Y][dst.X]

	facingSide := arrivingSide.OppositeSide()
	srcSignals := srcPE.CloneSignals()
	val := srcSignals.OutWire(facingSide)
	if val == nil {
		return nil
	}
	dstPE.SetInWire(arrivingSide, *val)
	dstPE.UpdateRouterOutput()

	router := dstPE.Program.Configurations[dstPE.PC].RouterConfig
	if !router.InputRegisterUsed.Get(arrivingSide) {
		// Outputs sourced from this side read the latched input register,
		// not the wire just delivered, so the chain stops here.
		return nil
	}
	for _, outDir := range router.SwitchConfig.FindOutputDirections(arrivingSide.AsRouterInDir()) {
		next := dst.neighbor(outDir)
		if next.X < 0 || next.X >= g.Width || next.Y < 0 || next.Y >= g.Height {
			return fmt.Errorf("grid: edge PE (%d,%d) cannot send out of the array (direction %v)", dst.X, dst.Y, outDir)
		}
		if err := g.propagate(dst, next, outDir.OppositeSide()); err != nil {
			return err
		}
	}
	return nil
}
