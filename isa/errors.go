package isa

import (
	"errors"
	"fmt"
)

// ErrSimulationEnd signals that the array has reached the end of its
// program, either because an AGU exhausted its max count or because a PE
// ran off the end of its configuration list without looping. Callers should
// test for it with errors.Is; it is not a failure.
var ErrSimulationEnd = errors.New("isa: simulation end")

// InvalidEncodingError reports a configuration word that does not decode to
// a legal Configuration.
type InvalidEncodingError struct {
	Reason string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("isa: invalid encoding: %s", e.Reason)
}

// UnimplementedError reports an opcode with no execution semantics.
type UnimplementedError struct {
	Opcode Opcode
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("isa: opcode %v is unimplemented", e.Opcode)
}

// InvalidMemoryAccessError reports an out-of-range address or a same-address
// write conflict between a data memory's two ports.
type InvalidMemoryAccessError struct {
	Reason string
}

func (e *InvalidMemoryAccessError) Error() string {
	return fmt.Sprintf("isa: invalid memory access: %s", e.Reason)
}
