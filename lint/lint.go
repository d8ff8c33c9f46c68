// Package lint performs static checks over an already-loaded grid before
// cycle 0: checks that can be decided without running a single cycle, and
// that exist to catch mistakes in hand-authored or generated programs
// rather than bugs in the core engine itself.
package lint

import (
	"fmt"

	"github.com/sarchlab/pace-sim/grid"
	"github.com/sarchlab/pace-sim/isa"
)

// IssueType categorizes a lint finding by how the CLI should react to it.
type IssueType string

const (
	// Error issues should cause the CLI to refuse to run the grid.
	Error IssueType = "ERROR"
	// Warning issues are reported but do not block execution.
	Warning IssueType = "WARNING"
)

// Issue is a single lint finding. Coord is nil when the finding does not
// pin down a single PE (e.g. a grid-wide mismatch).
type Issue struct {
	Type    IssueType
	Coord   *grid.PEIdx
	Message string
}

func (i Issue) String() string {
	if i.Coord != nil {
		return fmt.Sprintf("[%s] PE(%d,%d): %s", i.Type, i.Coord.X, i.Coord.Y, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Type, i.Message)
}

// HasErrors reports whether any issue in the slice is an Error.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Type == Error {
			return true
		}
	}
	return false
}

// Check runs every static check over g and returns the combined issue list.
// It never mutates g.
func Check(g *grid.Grid) []Issue {
	var issues []Issue
	issues = append(issues, checkEqualProgramLengths(g)...)
	issues = append(issues, checkJumpTargets(g)...)
	issues = append(issues, checkRouterSinks(g)...)
	issues = append(issues, checkAGUPairing(g)...)
	return issues
}

// checkEqualProgramLengths flags any PE whose program length differs from
// the first PE's. LoadFromFolder already enforces this as a hard
// construction error, but a grid assembled programmatically (as the unit
// and scenario tests do) can still violate it, so lint reports it as an
// Issue rather than assuming the invariant already holds.
func checkEqualProgramLengths(g *grid.Grid) []Issue {
	var issues []Issue
	want := -1
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			n := g.PEs[y][x].Program.Len()
			if want < 0 {
				want = n
				continue
			}
			if n != want {
				coord := grid.PEIdx{X: x, Y: y}
				issues = append(issues, Issue{
					Type:    Error,
					Coord:   &coord,
					Message: fmt.Sprintf("program has %d configurations, expected %d (from PE(0,0))", n, want),
				})
			}
		}
	}
	return issues
}

// checkJumpTargets flags every JUMP configuration whose loop bounds cannot
// possibly be legal: loop_start must not exceed loop_end, and loop_end must
// be a valid index into the program. The wire-level JumpDst field is not
// separately represented once a Configuration is decoded (Encode always
// derives it from LoopStart), so the bit-for-bit "JumpDst == LoopStart"
// check is enforced structurally by the codec at decode time; this check
// instead catches the cases a hand-assembled program (not run through the
// codec) could still get wrong.
func checkJumpTargets(g *grid.Grid) []Issue {
	var issues []Issue
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := g.PEs[y][x]
			progLen := p.Program.Len()
			for pc, cfg := range p.Program.Configurations {
				if cfg.Operation.Opcode != isa.JUMP {
					continue
				}
				coord := grid.PEIdx{X: x, Y: y}
				if !cfg.Operation.HasLoop {
					issues = append(issues, Issue{
						Type:    Error,
						Coord:   &coord,
						Message: fmt.Sprintf("configuration %d: JUMP is missing loop_start/loop_end", pc),
					})
					continue
				}
				if cfg.Operation.LoopStart > cfg.Operation.LoopEnd {
					issues = append(issues, Issue{
						Type:    Error,
						Coord:   &coord,
						Message: fmt.Sprintf("configuration %d: JUMP loop_start %d exceeds loop_end %d", pc, cfg.Operation.LoopStart, cfg.Operation.LoopEnd),
					})
				}
				if int(cfg.Operation.LoopEnd) >= progLen {
					issues = append(issues, Issue{
						Type:    Error,
						Coord:   &coord,
						Message: fmt.Sprintf("configuration %d: JUMP loop_end %d is out of range for a %d-configuration program", pc, cfg.Operation.LoopEnd, progLen),
					})
				}
			}
		}
	}
	return issues
}

// checkRouterSinks flags any of the seven RouterSwitchConfig selectors
// (predicate, alu_op1, alu_op2, and the four directional outputs) that
// resolves to the reserved, invalid code. Configurations built through
// isa.Decode can never carry this value (decoding the reserved code 6
// already fails with InvalidEncodingError), so this only fires for
// configurations assembled directly by a loader that bypasses the codec.
func checkRouterSinks(g *grid.Grid) []Issue {
	var issues []Issue
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := g.PEs[y][x]
			for pc, cfg := range p.Program.Configurations {
				coord := grid.PEIdx{X: x, Y: y}
				sw := cfg.RouterConfig.SwitchConfig

				check := func(name string, src isa.RouterInDir) {
					if _, err := src.Code(); err != nil {
						issues = append(issues, Issue{
							Type:    Error,
							Coord:   &coord,
							Message: fmt.Sprintf("configuration %d: router sink %s decodes to an invalid source", pc, name),
						})
					}
				}

				check("predicate", sw.Predicate)
				check("alu_op1", sw.ALUOp1)
				check("alu_op2", sw.ALUOp2)
				for _, dir := range isa.OutputDirections() {
					check(dir.String(), sw.Sink(dir))
				}
			}
		}
	}
	return issues
}

// checkAGUPairing flags a grid where only one of the two memory edges was
// loaded with AGU programs. Each row's memory access spans both the left
// and right edge ports, so an AGU enabled on one edge but not the other
// leaves that row's other port permanently PE-driven, which is very likely
// a missing file rather than an intentional design.
func checkAGUPairing(g *grid.Grid) []Issue {
	left, right := g.IsAGUEnabled(0), g.IsAGUEnabled(1)
	if left == right {
		return nil
	}
	enabledEdge, missingEdge := "left", "right"
	if right {
		enabledEdge, missingEdge = "right", "left"
	}
	return []Issue{{
		Type:    Warning,
		Message: fmt.Sprintf("AGU programs are present on the %s edge but not the %s edge", enabledEdge, missingEdge),
	}}
}
