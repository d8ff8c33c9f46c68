package agu

import (
	"errors"
	"testing"

	"github.com/sarchlab/pace-sim/dmem"
	"github.com/sarchlab/pace-sim/isa"
)

func TestInstructionByteRoundTrip(t *testing.T) {
	cases := []Instruction{
		{InstType: InstLoad, InstMode: Strided, DataWidth: B16, Stride: 1},
		{InstType: InstStore, InstMode: Const, DataWidth: B64, Stride: 0},
		{InstType: InstLoad, InstMode: Const, DataWidth: B8, Stride: 15},
	}
	for _, c := range cases {
		b := c.ToByte()
		got, err := InstructionFromByte(b)
		if err != nil {
			t.Fatalf("InstructionFromByte: %v", err)
		}
		if got != c {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
		}
	}
}

func TestStrideSequence(t *testing.T) {
	cm := []Instruction{
		{InstType: InstLoad, InstMode: Strided, DataWidth: B16, Stride: 1},
		{InstType: InstLoad, InstMode: Const, DataWidth: B64, Stride: 0},
	}
	arf := []uint16{0, 10}
	a, err := New(cm, arf, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var addrs []uint64
	var port dmem.Port
	for pass := 0; pass < 5; pass++ {
		for i := 0; i < len(cm); i++ {
			a.UpdateInterface(&port)
			addrs = append(addrs, port.WireAddr)
			err := a.Next()
			if pass == 4 && i == len(cm)-1 {
				if !errors.Is(err, isa.ErrSimulationEnd) {
					t.Fatalf("expected ErrSimulationEnd on final instruction, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	}

	want := []uint64{0, 10, 1, 10, 2, 10, 3, 10, 4, 10}
	if len(addrs) != len(want) {
		t.Fatalf("len(addrs) = %d, want %d", len(addrs), len(want))
	}
	for i := range want {
		if addrs[i] != want[i] {
			t.Fatalf("addrs[%d] = %d, want %d (full: %v)", i, addrs[i], want[i], addrs)
		}
	}
}
