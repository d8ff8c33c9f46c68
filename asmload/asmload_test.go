package asmload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sarchlab/pace-sim/isa"
)

func TestParseProgramMnemonicBasicProgram(t *testing.T) {
	text := `
LOAD #16
LOAD #32 ; alu_op1=ALUOut
NOP ; alu_op2=ALUOut
ADD RES ; alu_op2=ALURes
STORE #48
`
	prog, err := ParseProgramMnemonic(text)
	if err != nil {
		t.Fatalf("ParseProgramMnemonic: %v", err)
	}
	if len(prog.Configurations) != 5 {
		t.Fatalf("expected 5 configurations, got %d", len(prog.Configurations))
	}
	if prog.Configurations[1].RouterConfig.SwitchConfig.ALUOp1 != isa.ALUOut {
		t.Fatalf("expected configuration 1 alu_op1 = ALUOut, got %v", prog.Configurations[1].RouterConfig.SwitchConfig.ALUOp1)
	}
	if !prog.Configurations[3].Operation.UpdateRes {
		t.Fatalf("expected configuration 3 to set update_res")
	}
	if prog.Configurations[4].Operation.Opcode != isa.STORE || prog.Configurations[4].Operation.Immediate != 48 {
		t.Fatalf("expected configuration 4 to be STORE #48, got %+v", prog.Configurations[4].Operation)
	}
	// Every encoded word must round-trip through the bit-exact codec.
	for i, cfg := range prog.Configurations {
		word, err := cfg.Encode()
		if err != nil {
			t.Fatalf("configuration %d: Encode: %v", i, err)
		}
		if _, err := isa.Decode(word); err != nil {
			t.Fatalf("configuration %d: Decode: %v", i, err)
		}
	}
}

func TestParseProgramMnemonicJump(t *testing.T) {
	prog, err := ParseProgramMnemonic("JUMP 0 2\nNOP\nNOP")
	if err != nil {
		t.Fatalf("ParseProgramMnemonic: %v", err)
	}
	op := prog.Configurations[0].Operation
	if op.Opcode != isa.JUMP || !op.HasLoop || op.LoopStart != 0 || op.LoopEnd != 2 {
		t.Fatalf("unexpected JUMP operation: %+v", op)
	}
}

func TestParseProgramMnemonicRejectsUnknownOpcode(t *testing.T) {
	if _, err := ParseProgramMnemonic("FROB #1"); err == nil {
		t.Fatalf("expected an error for an unknown opcode")
	}
}

func TestParseProgramMnemonicRejectsBadRouterField(t *testing.T) {
	if _, err := ParseProgramMnemonic("NOP ; not_a_field=Open"); err == nil {
		t.Fatalf("expected an error for an unknown router field")
	}
}

func yamlArrayDefinition(imageLine string) []byte {
	return []byte(fmt.Sprintf(`
array_config:
  rows: 2
  columns: 2
  pes:
    - row: 0
      column: 0
      program: |
        LOAD #0
    - row: 0
      column: 1
      program: |
        NOP
    - row: 1
      column: 0
      program: |
        NOP
    - row: 1
      column: 1
      program: |
        NOP
  memories:
    - index: 0
      edge: left
      image: |
        %s
    - index: 0
      edge: right
      image: |
        %s
`, imageLine, imageLine))
}

func TestParseYAMLRejectsMalformedMemoryImage(t *testing.T) {
	_, err := ParseYAML(yamlArrayDefinition(strings.Repeat("0", 63)))
	if err == nil {
		t.Fatalf("expected an error: image lines must be exactly 64 characters")
	}
}

func TestParseYAMLAndWriteFolderRoundTrips(t *testing.T) {
	spec, err := ParseYAML(yamlArrayDefinition(strings.Repeat("0", 64)))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if spec.Width != 2 || spec.Height != 2 {
		t.Fatalf("expected a 2x2 array, got %dx%d", spec.Width, spec.Height)
	}
	if len(spec.Programs) != 4 {
		t.Fatalf("expected 4 PE programs, got %d", len(spec.Programs))
	}

	dir := t.TempDir()
	if err := WriteFolder(spec, dir); err != nil {
		t.Fatalf("WriteFolder: %v", err)
	}
	for _, name := range []string{"PE-Y0X0", "PE-Y0X1", "PE-Y1X0", "PE-Y1X1", "dm0", "dm1"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to be written: %v", name, err)
		}
	}
}
