// Package dmem implements the byte-addressable, dual-ported data memory at
// the edges of the array.
package dmem

import (
	"fmt"
	"strings"

	"github.com/sarchlab/pace-sim/isa"
)

// Port is one of a DataMemory's two independent interfaces: a mode, the
// address/data wires a PE or AGU drives, and the register that captures a
// load's result for the following cycle.
type Port struct {
	Mode        isa.DMemMode
	WireAddr    uint64
	HasAddr     bool
	WireData    uint64
	HasData     bool
	RegDmemData uint64
	HasRegData  bool
}

// Drive sets this cycle's mode and address/data wires, clearing whatever was
// set the previous cycle. RegDmemData is untouched here; it is written by
// DataMemory.UpdateInterface.
func (p *Port) Drive(d isa.MemDrive) {
	p.Mode = d.Mode
	p.WireAddr, p.HasAddr = d.Addr, true
	p.WireData, p.HasData = d.Data, d.HasData
}

// Reset clears the port back to an idle NOP state.
func (p *Port) Reset() {
	*p = Port{}
}

func (p Port) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode: %s\n", p.Mode)
	if p.HasAddr {
		fmt.Fprintf(&b, "wire_dmem_addr: 0x%x\n", p.WireAddr)
	} else {
		b.WriteString("wire_dmem_addr: None\n")
	}
	if p.HasData {
		fmt.Fprintf(&b, "wire_dmem_data: 0x%x\n", p.WireData)
	} else {
		b.WriteString("wire_dmem_data: None\n")
	}
	if p.HasRegData {
		fmt.Fprintf(&b, "reg_dmem_data: 0x%x", p.RegDmemData)
	} else {
		b.WriteString("reg_dmem_data: None")
	}
	return b.String()
}

// DataMemory is a byte-addressable store with two independent ports.
type DataMemory struct {
	Data  []byte
	Port1 Port
	Port2 Port
}

// New allocates a zeroed DataMemory of the given size in bytes.
func New(size int) *DataMemory {
	return &DataMemory{Data: make([]byte, size)}
}

func (m *DataMemory) checkRange(addr uint64, width int) error {
	if addr+uint64(width) > uint64(len(m.Data)) {
		return &isa.InvalidMemoryAccessError{
			Reason: fmt.Sprintf("address 0x%x with width %d exceeds memory size %d", addr, width, len(m.Data)),
		}
	}
	return nil
}

func (m *DataMemory) read8(addr uint64) uint8 { return m.Data[addr] }

func (m *DataMemory) write8(addr uint64, v uint8) { m.Data[addr] = v }

func (m *DataMemory) read16(addr uint64) uint16 {
	return uint16(m.Data[addr]) | uint16(m.Data[addr+1])<<8
}

func (m *DataMemory) write16(addr uint64, v uint16) {
	m.Data[addr] = byte(v)
	m.Data[addr+1] = byte(v >> 8)
}

func (m *DataMemory) read64(addr uint64) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(m.Data[addr+uint64(i)]) << (8 * i)
	}
	return v
}

func (m *DataMemory) write64(addr uint64, v uint64) {
	for i := 0; i < 8; i++ {
		m.Data[addr+uint64(i)] = byte(v >> (8 * i))
	}
}

func widthOf(mode isa.DMemMode) int {
	switch mode {
	case isa.Read8, isa.Write8:
		return 1
	case isa.Read16, isa.Write16:
		return 2
	case isa.Read64, isa.Write64:
		return 8
	default:
		return 0
	}
}

func (m *DataMemory) updatePort(p *Port) error {
	if p.Mode == isa.MemNOP {
		return nil
	}
	if err := m.checkRange(p.WireAddr, widthOf(p.Mode)); err != nil {
		return err
	}
	switch p.Mode {
	case isa.Read8:
		p.RegDmemData, p.HasRegData = uint64(m.read8(p.WireAddr)), true
	case isa.Read16:
		p.RegDmemData, p.HasRegData = uint64(m.read16(p.WireAddr)), true
	case isa.Read64:
		p.RegDmemData, p.HasRegData = m.read64(p.WireAddr), true
	case isa.Write8:
		m.write8(p.WireAddr, uint8(p.WireData))
	case isa.Write16:
		m.write16(p.WireAddr, uint16(p.WireData))
	case isa.Write64:
		m.write64(p.WireAddr, p.WireData)
	}
	return nil
}

// UpdateInterface performs the physical reads/writes each port requested
// this cycle. It is a fatal InvalidMemoryAccessError if both ports are
// driving a write to the same address.
func (m *DataMemory) UpdateInterface() error {
	if m.Port1.Mode.IsStore() && m.Port2.Mode.IsStore() && m.Port1.WireAddr == m.Port2.WireAddr {
		return &isa.InvalidMemoryAccessError{
			Reason: fmt.Sprintf("both ports write to the same address 0x%x", m.Port1.WireAddr),
		}
	}
	if err := m.updatePort(&m.Port1); err != nil {
		return err
	}
	if err := m.updatePort(&m.Port2); err != nil {
		return err
	}
	return nil
}

// Capacity returns the memory size in bytes.
func (m *DataMemory) Capacity() int {
	return len(m.Data)
}
