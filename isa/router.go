package isa

import "fmt"

// RouterInDir names a source a router sink may be wired to: one of the four
// cardinal incoming wires, this PE's own ALU output or result register, or
// Open (unconnected).
type RouterInDir int

const (
	EastIn RouterInDir = iota
	SouthIn
	WestIn
	NorthIn
	ALUOut
	ALURes
	invalidRouterInDir // reserved code 6, must never appear in a legal config
	Open
)

var routerInDirCodes = map[RouterInDir]uint8{
	EastIn:  0,
	SouthIn: 1,
	WestIn:  2,
	NorthIn: 3,
	ALUOut:  4,
	ALURes:  5,
	Open:    7,
}

var codeToRouterInDir = func() map[uint8]RouterInDir {
	m := make(map[uint8]RouterInDir, len(routerInDirCodes))
	for dir, code := range routerInDirCodes {
		m[code] = dir
	}
	m[6] = invalidRouterInDir
	return m
}()

// Code returns the 3-bit wire encoding for the source.
func (d RouterInDir) Code() (uint8, error) {
	code, ok := routerInDirCodes[d]
	if !ok {
		return 0, fmt.Errorf("isa: router source %v has no wire encoding", d)
	}
	return code, nil
}

// RouterInDirFromCode decodes a 3-bit wire encoding. It returns an
// InvalidEncodingError for the reserved code 6.
func RouterInDirFromCode(code uint8) (RouterInDir, error) {
	dir, ok := codeToRouterInDir[code]
	if !ok || dir == invalidRouterInDir {
		return 0, &InvalidEncodingError{Reason: fmt.Sprintf("router source code %d is reserved/invalid", code)}
	}
	return dir, nil
}

var nameToRouterInDir = map[string]RouterInDir{
	"EastIn":  EastIn,
	"SouthIn": SouthIn,
	"WestIn":  WestIn,
	"NorthIn": NorthIn,
	"ALUOut":  ALUOut,
	"ALURes":  ALURes,
	"Open":    Open,
}

// RouterInDirFromName looks up a router source by its mnemonic name, e.g.
// "ALUOut" or "NorthIn". Used by assembly-style program loaders.
func RouterInDirFromName(name string) (RouterInDir, error) {
	dir, ok := nameToRouterInDir[name]
	if !ok {
		return 0, fmt.Errorf("isa: unknown router source mnemonic %q", name)
	}
	return dir, nil
}

func (d RouterInDir) String() string {
	switch d {
	case EastIn:
		return "EastIn"
	case SouthIn:
		return "SouthIn"
	case WestIn:
		return "WestIn"
	case NorthIn:
		return "NorthIn"
	case ALUOut:
		return "ALUOut"
	case ALURes:
		return "ALURes"
	case Open:
		return "Open"
	default:
		return "Invalid"
	}
}

// RouterSwitchConfig selects, for each of the seven router sinks, which
// source feeds it this cycle. A zero-value RouterSwitchConfig has every
// sink set to EastIn (the Go zero value for RouterInDir), not Open; use
// NewRouterSwitchConfig for a config whose sinks default to Open.
type RouterSwitchConfig struct {
	Predicate RouterInDir
	ALUOp1    RouterInDir
	ALUOp2    RouterInDir
	NorthOut  RouterInDir
	SouthOut  RouterInDir
	WestOut   RouterInDir
	EastOut   RouterInDir
}

// NewRouterSwitchConfig returns a RouterSwitchConfig with every sink
// defaulted to Open.
func NewRouterSwitchConfig() RouterSwitchConfig {
	return RouterSwitchConfig{
		Predicate: Open,
		ALUOp1:    Open,
		ALUOp2:    Open,
		NorthOut:  Open,
		SouthOut:  Open,
		WestOut:   Open,
		EastOut:   Open,
	}
}

// RouterOutDir names one of the four cardinal output sinks of a router
// switch.
type RouterOutDir int

const (
	NorthOut RouterOutDir = iota
	SouthOut
	WestOut
	EastOut
)

func (d RouterOutDir) String() string {
	switch d {
	case NorthOut:
		return "north"
	case SouthOut:
		return "south"
	case WestOut:
		return "west"
	case EastOut:
		return "east"
	default:
		return fmt.Sprintf("RouterOutDir(%d)", int(d))
	}
}

// Opposite returns the RouterInDir a neighbor sees when this PE sends along
// d: e.g. a PE's EastOut arrives at its eastern neighbor as WestIn.
func (d RouterOutDir) Opposite() RouterInDir {
	switch d {
	case NorthOut:
		return SouthIn
	case SouthOut:
		return NorthIn
	case WestOut:
		return EastIn
	case EastOut:
		return WestIn
	default:
		panic(fmt.Sprintf("isa: unknown RouterOutDir %d", d))
	}
}

// OppositeSide returns the geometrically opposite side: North<->South,
// West<->East. Used to translate "the side a PE receives on" into "the side
// of its neighbor that faces it".
func (d RouterOutDir) OppositeSide() RouterOutDir {
	switch d {
	case NorthOut:
		return SouthOut
	case SouthOut:
		return NorthOut
	case WestOut:
		return EastOut
	case EastOut:
		return WestOut
	default:
		panic(fmt.Sprintf("isa: unknown RouterOutDir %d", d))
	}
}

// AsRouterInDir returns the RouterInDir with the same side name, e.g.
// WestOut.AsRouterInDir() == WestIn. Used when indexing a router switch
// config by "the direction this PE just received a wire from".
func (d RouterOutDir) AsRouterInDir() RouterInDir {
	switch d {
	case NorthOut:
		return NorthIn
	case SouthOut:
		return SouthIn
	case WestOut:
		return WestIn
	case EastOut:
		return EastIn
	default:
		panic(fmt.Sprintf("isa: unknown RouterOutDir %d", d))
	}
}

// Sink returns the configured source for the given output direction.
func (c RouterSwitchConfig) Sink(d RouterOutDir) RouterInDir {
	switch d {
	case NorthOut:
		return c.NorthOut
	case SouthOut:
		return c.SouthOut
	case WestOut:
		return c.WestOut
	case EastOut:
		return c.EastOut
	default:
		panic(fmt.Sprintf("isa: unknown RouterOutDir %d", d))
	}
}

// OutputDirections returns the four output directions in a fixed order.
func OutputDirections() []RouterOutDir {
	return []RouterOutDir{NorthOut, SouthOut, WestOut, EastOut}
}

// DirectionsOpt carries four independent per-direction booleans, used for
// both the input-register-bypass set and the input-register-write set.
type DirectionsOpt struct {
	North bool
	South bool
	West  bool
	East  bool
}

// Get returns the bit for the given cardinal direction (only NorthOut,
// SouthOut, WestOut, EastOut are meaningful here; they double as direction
// selectors).
func (d DirectionsOpt) Get(dir RouterOutDir) bool {
	switch dir {
	case NorthOut:
		return d.North
	case SouthOut:
		return d.South
	case WestOut:
		return d.West
	case EastOut:
		return d.East
	default:
		panic(fmt.Sprintf("isa: unknown direction %d", dir))
	}
}

// RouterConfig is the full per-cycle router configuration for one PE.
type RouterConfig struct {
	SwitchConfig        RouterSwitchConfig
	InputRegisterUsed  DirectionsOpt // bypass: true = feed sink from wire this cycle
	InputRegisterWrite DirectionsOpt // latch: true = capture wire into input register
}

// IsPathSource reports whether this router can drive at least one of its
// four directional outputs without waiting on a wire delivered by
// propagation this cycle: either the output is sourced from this PE's own
// ALU result or register (always available once the ALU pass has run), or
// it is sourced from a directional input that is read from the latched
// input register rather than bypassed from this cycle's wire. Such a PE
// originates a multi-hop propagation chain this cycle rather than merely
// forwarding one.
func (c RouterConfig) IsPathSource() bool {
	return len(c.OutputsFromRegister()) > 0
}

// OutputsFromRegister returns the output directions whose source is ready
// without waiting on this cycle's wire propagation: ALUOut, ALURes, or a
// directional input currently read from its latched register rather than
// bypassed. These are the directions a path-source PE must initiate
// propagation along.
func (c RouterConfig) OutputsFromRegister() []RouterOutDir {
	var result []RouterOutDir
	for _, dir := range OutputDirections() {
		src := c.SwitchConfig.Sink(dir)
		switch src {
		case ALUOut, ALURes:
			result = append(result, dir)
		case Open, invalidRouterInDir:
			// no source, nothing to propagate
		default:
			if !c.InputRegisterUsed.Get(directionOf(src)) {
				result = append(result, dir)
			}
		}
	}
	return result
}

// FindOutputDirections returns the output directions this cycle that are
// sourced from the given incoming RouterInDir (used to continue a
// propagation chain once a neighbor has received that input). It does not
// look at the bypass bits; the caller checks InputRegisterUsed.
func (c RouterSwitchConfig) FindOutputDirections(from RouterInDir) []RouterOutDir {
	var result []RouterOutDir
	for _, dir := range OutputDirections() {
		if c.Sink(dir) == from {
			result = append(result, dir)
		}
	}
	return result
}

func directionOf(d RouterInDir) RouterOutDir {
	switch d {
	case NorthIn:
		return NorthOut
	case SouthIn:
		return SouthOut
	case WestIn:
		return WestOut
	case EastIn:
		return EastOut
	default:
		panic(fmt.Sprintf("isa: %v is not a directional source", d))
	}
}
